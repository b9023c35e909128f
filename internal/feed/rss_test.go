package feed

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/condominio/internal/model"
)

func TestWrite_ParsesWithGofeed(t *testing.T) {
	items := []model.NewsItem{
		{Date: time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC), Text: "La asamblea general será el 15 de septiembre & habrá café."},
		{Date: time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC), Text: "Nuevo horario de recolección de basura."},
	}

	var buf bytes.Buffer
	err := Write(&buf, Info{
		Title:       "Noticias",
		Link:        "http://localhost:8080/noticias",
		Description: "Noticias del condominio",
	}, items, time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, "rss", parsed.FeedType)
	assert.Equal(t, "Noticias", parsed.Title)
	assert.Equal(t, "es", parsed.Language)
	require.Len(t, parsed.Items, 2)

	first := parsed.Items[0]
	assert.Equal(t, items[0].Text, first.Description)
	assert.Equal(t, "noticia-2025-08-18-0", first.GUID)
	require.NotNil(t, first.PublishedParsed)
	assert.True(t, first.PublishedParsed.Equal(items[0].Date))
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Info{Title: "Noticias"}, nil, time.Now()))

	parsed, err := gofeed.NewParser().Parse(&buf)
	require.NoError(t, err)
	assert.Empty(t, parsed.Items)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Corte de agua", title("  Corte de agua\nDetalles más abajo"))

	long := strings.Repeat("á", TitleLength+10)
	got := title(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, TitleLength+1, len([]rune(got)))
}
