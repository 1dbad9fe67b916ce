package app

import (
	"context"
	"time"

	"github.com/deusflow/newsalert/internal/news"
)

// Ledger remembers which articles have already been delivered.
type Ledger interface {
	IsSentByURL(ctx context.Context, url string) (bool, error)
	IsSentBySimilarTitle(ctx context.Context, title string, threshold float64) (bool, error)
	MarkSent(ctx context.Context, url, title string) error
	PruneOlderThan(ctx context.Context, days int) (int64, error)
}

// Store is everything a run reads from or writes to persistent state.
type Store interface {
	Ledger
	EnabledKeywordTexts(ctx context.Context) ([]string, error)
	SaveAlert(ctx context.Context, article news.MatchedArticle) (int64, error)
}

// Fetcher returns the current listing, deduplicated by URL.
type Fetcher interface {
	FetchNews(ctx context.Context, allowedSources []string, maxPages int) ([]news.Article, error)
}

// Notifier delivers alerts. Failures are reported as false, never as errors.
type Notifier interface {
	Notify(ctx context.Context, article news.MatchedArticle) bool
	NotifyError(ctx context.Context, message, details string) bool
}

// Gate decides whether live notifications are allowed at a given instant.
type Gate interface {
	Allows(now time.Time) bool
}

// GateFunc adapts a plain function to Gate.
type GateFunc func(now time.Time) bool

func (f GateFunc) Allows(now time.Time) bool { return f(now) }
