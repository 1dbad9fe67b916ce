// Package app runs the news check pipeline: fetch, match, dedup, persist,
// notify, mark sent and prune.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deusflow/newsalert/internal/logger"
	"github.com/deusflow/newsalert/internal/metrics"
	"github.com/deusflow/newsalert/internal/news"
)

// SentRetentionDays is how long delivered articles stay in the ledger.
const SentRetentionDays = 7

// Options are the per-run knobs read from configuration.
type Options struct {
	AllowedSources      []string
	MaxPages            int
	SimilarityThreshold float64

	// Metrics defaults to metrics.Global.
	Metrics *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

// RunStats summarises one run.
type RunStats struct {
	RunID          string        `json:"run_id"`
	StartedAt      time.Time     `json:"started_at"`
	Fetched        int           `json:"fetched"`
	Matched        int           `json:"matched"`
	SkippedURL     int           `json:"skipped_url"`
	SkippedSimilar int           `json:"skipped_similar"`
	Saved          int           `json:"saved"`
	Notified       int           `json:"notified"`
	NotifyFailed   int           `json:"notify_failed"`
	Pruned         int64         `json:"pruned"`
	Duration       time.Duration `json:"duration_ns"`
	Err            error         `json:"-"`
	Error          string        `json:"error,omitempty"`
}

func (s RunStats) sample() metrics.Run {
	return metrics.Run{
		Fetched:        s.Fetched,
		Matched:        s.Matched,
		SkippedURL:     s.SkippedURL,
		SkippedSimilar: s.SkippedSimilar,
		Saved:          s.Saved,
		Notified:       s.Notified,
		NotifyFailed:   s.NotifyFailed,
		Pruned:         s.Pruned,
		Duration:       s.Duration,
		Err:            s.Err,
	}
}

// Checker owns the collaborators of a run. Runs are serialised: a manual
// check waits for a scheduled one to finish and vice versa.
type Checker struct {
	store    Store
	fetcher  Fetcher
	notifier Notifier
	gate     Gate
	opts     Options

	runMu sync.Mutex

	mu      sync.RWMutex
	lastRun *RunStats
}

func NewChecker(store Store, fetcher Fetcher, notifier Notifier, gate Gate, opts Options) *Checker {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Global
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxPages < 1 {
		opts.MaxPages = 1
	}
	return &Checker{
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
		gate:     gate,
		opts:     opts,
	}
}

// RunOnce performs one run. Every failure stops at this boundary.
func (c *Checker) RunOnce(ctx context.Context) {
	c.Run(ctx)
}

// Run performs one run and returns its statistics. Errors and panics are
// logged, reported through the notifier and recorded in the result.
func (c *Checker) Run(ctx context.Context) (stats RunStats) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	stats.RunID = uuid.NewString()
	stats.StartedAt = c.opts.Now()
	log := logger.With("run_id", stats.RunID)

	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			stats.Err = fmt.Errorf("panic: %v", r)
			log.Error("news check panicked", "panic", r, "stack", stack)
			c.notifier.NotifyError(ctx, "Error during news check: "+stats.Err.Error(), stack)
		}
		if stats.Err != nil {
			stats.Error = stats.Err.Error()
		}
		stats.Duration = c.opts.Now().Sub(stats.StartedAt)
		c.finish(stats)
	}()

	log.Info("running news check")
	if err := c.run(ctx, log, &stats); err != nil {
		stats.Err = err
		log.Error("news check failed", "error", err)
		c.notifier.NotifyError(ctx, "Error during news check: "+err.Error(), "run_id: "+stats.RunID)
		return stats
	}

	log.Info("news check finished",
		"fetched", stats.Fetched,
		"matched", stats.Matched,
		"saved", stats.Saved,
		"notified", stats.Notified,
		"skipped_url", stats.SkippedURL,
		"skipped_similar", stats.SkippedSimilar,
		"pruned", stats.Pruned,
	)
	return stats
}

func (c *Checker) run(ctx context.Context, log *slog.Logger, stats *RunStats) error {
	keywords, err := c.store.EnabledKeywordTexts(ctx)
	if err != nil {
		return fmt.Errorf("load keywords: %w", err)
	}
	if len(keywords) == 0 {
		log.Info("no enabled keywords configured, skipping check")
		return nil
	}

	articles, err := c.fetcher.FetchNews(ctx, c.opts.AllowedSources, c.opts.MaxPages)
	if err != nil {
		return fmt.Errorf("fetch news: %w", err)
	}
	stats.Fetched = len(articles)
	log.Info("fetched news", "count", len(articles))
	if len(articles) == 0 {
		return nil
	}

	matched := news.MatchKeywords(articles, keywords)
	stats.Matched = len(matched)
	log.Info("found matching news", "count", len(matched))

	notify := c.gate.Allows(c.opts.Now())

	for _, m := range matched {
		title := news.ShortTitle(m.Title)

		sent, err := c.store.IsSentByURL(ctx, m.URL)
		if err != nil {
			return fmt.Errorf("check sent url: %w", err)
		}
		if sent {
			stats.SkippedURL++
			log.Debug("already sent (url)", "title", title)
			continue
		}

		similar, err := c.store.IsSentBySimilarTitle(ctx, m.Title, c.opts.SimilarityThreshold)
		if err != nil {
			return fmt.Errorf("check similar title: %w", err)
		}
		if similar {
			stats.SkippedSimilar++
			log.Debug("already sent (similar title)", "title", title)
			continue
		}

		if _, err := c.store.SaveAlert(ctx, m); err != nil {
			return fmt.Errorf("save alert: %w", err)
		}
		stats.Saved++

		if notify {
			if c.notifier.Notify(ctx, m) {
				stats.Notified++
				log.Info("sent notification", "title", title)
			} else {
				stats.NotifyFailed++
				log.Error("notification failed, marking as sent anyway", "title", title, "url", m.URL)
			}
		} else {
			log.Info("saved outside notification hours", "title", title)
		}

		if err := c.store.MarkSent(ctx, m.URL, m.Title); err != nil {
			return fmt.Errorf("mark sent: %w", err)
		}
	}

	pruned, err := c.store.PruneOlderThan(ctx, SentRetentionDays)
	if err != nil {
		return fmt.Errorf("prune sent news: %w", err)
	}
	stats.Pruned = pruned
	return nil
}

func (c *Checker) finish(stats RunStats) {
	c.opts.Metrics.RecordRun(stats.sample())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRun = &stats
}

// LastRun returns the statistics of the most recent run, if any.
func (c *Checker) LastRun() (RunStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastRun == nil {
		return RunStats{}, false
	}
	return *c.lastRun, true
}
