package calendar

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bryan-buckman/condominio/internal/model"
)

// ICS constants
const (
	ICSProductID = "-//Condominio//Calendario//ES"
	ICSTimezone  = "America/Guatemala"
)

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// WriteICS writes events as all-day VEVENTs of an iCalendar feed.
// stamp is used for every DTSTAMP so output is reproducible.
func WriteICS(w io.Writer, name string, events []model.CalendarEvent, stamp time.Time) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\r\n", args...)
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", ICSProductID)
	line("X-WR-CALNAME:%s", icsEscaper.Replace(name))
	line("X-WR-TIMEZONE:%s", ICSTimezone)
	line("CALSCALE:GREGORIAN")

	seen := make(map[string]int)
	for _, e := range events {
		date := e.Date.Format("20060102")
		// Stable per date and position within that date.
		uid := fmt.Sprintf("%s-%d@condominio", date, seen[date])
		seen[date]++

		line("BEGIN:VEVENT")
		line("UID:%s", uid)
		line("DTSTAMP:%s", stamp.UTC().Format("20060102T150405Z"))
		line("DTSTART;VALUE=DATE:%s", date)
		line("DTEND;VALUE=DATE:%s", e.Date.AddDate(0, 0, 1).Format("20060102"))
		line("SUMMARY:%s", icsEscaper.Replace(e.Title))
		if e.Description != "" {
			line("DESCRIPTION:%s", icsEscaper.Replace(e.Description))
		}
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return bw.Flush()
}
