package view

import (
	"context"
	"fmt"

	"github.com/bryan-buckman/condominio/internal/database"
	"github.com/bryan-buckman/condominio/internal/model"
)

// NoNews is shown in place of an empty news list.
const NoNews = "No hay noticias"

// NewsPage is the data behind the news section.
type NewsPage struct {
	Items        []model.NewsItem
	Empty        bool
	EmptyMessage string
}

// News renders the most recent announcements, newest first.
func News(ctx context.Context, q Queries) (NewsPage, error) {
	items, err := q.LatestNews(ctx, database.DefaultNewsLimit)
	if err != nil {
		return NewsPage{}, fmt.Errorf("latest news: %w", err)
	}
	page := NewsPage{Items: items}
	if len(items) == 0 {
		page.Empty = true
		page.EmptyMessage = NoNews
	}
	return page, nil
}
