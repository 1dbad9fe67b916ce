package scraper

import (
	"context"

	"github.com/deusflow/newsalert/internal/logger"
	"github.com/deusflow/newsalert/internal/news"
)

// pageFunc fetches a single 1-based listing page.
type pageFunc func(ctx context.Context, page int) ([]news.Article, error)

// FetchNews walks listing pages 1..maxPages and returns their articles in
// first-seen order with duplicate URLs removed. It stops at the first page
// that yields nothing. Any page error discards everything collected so far.
func (c *Client) FetchNews(ctx context.Context, allowedSources []string, maxPages int) ([]news.Article, error) {
	return paginate(ctx, maxPages, func(ctx context.Context, page int) ([]news.Article, error) {
		return c.FetchPage(ctx, page, allowedSources)
	})
}

func paginate(ctx context.Context, maxPages int, fetch pageFunc) ([]news.Article, error) {
	var all []news.Article
	seen := make(map[string]struct{})

	pages := 0
	for page := 1; page <= maxPages; page++ {
		items, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}
		pages = page

		for _, item := range items {
			if _, dup := seen[item.URL]; dup {
				continue
			}
			seen[item.URL] = struct{}{}
			all = append(all, item)
		}

		if len(items) == 0 {
			break
		}
	}

	logger.Debug("fetched listing", "items", len(all), "pages", pages)
	return all, nil
}
