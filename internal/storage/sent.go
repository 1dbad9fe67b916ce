package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/deusflow/newsalert/internal/logger"
	"github.com/deusflow/newsalert/internal/news"
	"github.com/deusflow/newsalert/internal/similarity"
)

// IsSentByURL reports whether the exact URL is in the ledger.
func (s *Store) IsSentByURL(ctx context.Context, url string) (bool, error) {
	var count int
	query := s.db.Rebind(`SELECT COUNT(*) FROM sent_news WHERE news_url = ?`)
	if err := s.db.QueryRowxContext(ctx, query, url).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check sent url: %w", err)
	}
	return count > 0, nil
}

// IsSentBySimilarTitle compares title with the most recent ledger titles,
// newest first, and reports whether any scores at or above threshold.
// Records without a title never match.
func (s *Store) IsSentBySimilarTitle(ctx context.Context, title string, threshold float64) (bool, error) {
	query := s.db.Rebind(`
		SELECT id, news_url, news_title, sent_at FROM sent_news
		WHERE news_title IS NOT NULL AND news_title <> ''
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`)

	var recent []news.SentRecord
	if err := s.db.SelectContext(ctx, &recent, query, similarityLookback); err != nil {
		return false, fmt.Errorf("failed to load recent titles: %w", err)
	}

	for _, rec := range recent {
		if similarity.Ratio(title, rec.Title) >= threshold {
			logger.Debug("similar title already sent",
				"title", news.ShortTitle(title),
				"previous", news.ShortTitle(rec.Title),
				"previous_url", rec.URL,
				"sent_at", rec.SentAt,
			)
			return true, nil
		}
	}
	return false, nil
}

// MarkSent records a URL in the ledger. Re-marking an existing URL is a
// no-op. An empty title is stored as NULL.
func (s *Store) MarkSent(ctx context.Context, url, title string) error {
	query := s.db.Rebind(`
		INSERT INTO sent_news (news_url, news_title, sent_at)
		VALUES (?, ?, ?)
		ON CONFLICT (news_url) DO NOTHING
	`)

	nullableTitle := sql.NullString{String: title, Valid: title != ""}
	if _, err := s.db.ExecContext(ctx, query, url, nullableTitle, s.timestamp()); err != nil {
		return fmt.Errorf("failed to mark as sent: %w", err)
	}
	return nil
}

// PruneOlderThan deletes ledger entries sent more than days ago.
func (s *Store) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := s.timestamp().Add(-time.Duration(days) * 24 * time.Hour)

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sent_news WHERE sent_at < ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sent news: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if deleted > 0 {
		logger.Info("pruned old sent news", "deleted", deleted, "days", days)
	}
	return deleted, nil
}

// SentCount returns the number of ledger entries.
func (s *Store) SentCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sent_news`); err != nil {
		return 0, fmt.Errorf("failed to count sent news: %w", err)
	}
	return count, nil
}
