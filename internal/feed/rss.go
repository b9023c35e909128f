// Package feed exports community news as an RSS 2.0 document.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bryan-buckman/condominio/internal/model"
)

// TitleLength is how many characters of the text become the item title.
const TitleLength = 80

// RSS represents the root of an RSS document.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

// Channel contains the feed metadata and items.
type Channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	Language      string `xml:"language,omitempty"`
	LastBuildDate string `xml:"lastBuildDate,omitempty"`
	Items         []Item `xml:"item"`
}

// Item is a single news entry.
type Item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link,omitempty"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        GUID   `xml:"guid"`
}

// GUID identifies an item. News rows have no URL of their own.
type GUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// Info describes the channel.
type Info struct {
	Title       string
	Link        string // absolute URL of the news page
	Description string
}

// Write generates an RSS document with one item per news entry.
func Write(w io.Writer, info Info, items []model.NewsItem, built time.Time) error {
	doc := RSS{
		Version: "2.0",
		Channel: Channel{
			Title:         info.Title,
			Link:          info.Link,
			Description:   info.Description,
			Language:      "es",
			LastBuildDate: built.Format(time.RFC1123Z),
		},
	}
	for i, n := range items {
		doc.Channel.Items = append(doc.Channel.Items, Item{
			Title:       title(n.Text),
			Link:        info.Link,
			Description: n.Text,
			PubDate:     n.Date.Format(time.RFC1123Z),
			GUID:        GUID{Value: fmt.Sprintf("noticia-%s-%d", n.Date.Format(model.DateLayout), i)},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode rss: %w", err)
	}
	return nil
}

// title cuts text at the first line break or TitleLength characters.
func title(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	if utf8.RuneCountInString(text) <= TitleLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:TitleLength])) + "…"
}
