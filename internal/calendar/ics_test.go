package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/condominio/internal/model"
)

func TestWriteICS(t *testing.T) {
	day := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	events := []model.CalendarEvent{
		{Date: day, Title: "Asamblea", Description: "Salón comunal, 7pm; traer DPI"},
		{Date: day, Title: "Fumigación"},
	}
	stamp := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, "Calendario 2025-08", events, stamp))
	body := buf.String()

	for _, field := range []string{
		"BEGIN:VCALENDAR\r\n",
		"PRODID:" + ICSProductID,
		"DTSTART;VALUE=DATE:20250815",
		"DTEND;VALUE=DATE:20250816",
		"SUMMARY:Asamblea",
		`DESCRIPTION:Salón comunal\, 7pm\; traer DPI`,
		"UID:20250815-0@condominio",
		"UID:20250815-1@condominio",
		"DTSTAMP:20250801T100000Z",
		"END:VCALENDAR\r\n",
	} {
		assert.Contains(t, body, field)
	}
	assert.Equal(t, 2, strings.Count(body, "BEGIN:VEVENT"))
	assert.Equal(t, 1, strings.Count(body, "DESCRIPTION:"), "events without description omit the field")
}

func TestWriteICS_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, "vacío", nil, time.Now()))
	assert.NotContains(t, buf.String(), "BEGIN:VEVENT")
	assert.True(t, strings.HasSuffix(buf.String(), "END:VCALENDAR\r\n"))
}
