package storage

import (
	"context"
	"fmt"

	"github.com/deusflow/newsalert/internal/news"
)

// SaveAlert appends an alert row for a newly accepted match.
func (s *Store) SaveAlert(ctx context.Context, a news.MatchedArticle) (int64, error) {
	query := s.db.Rebind(`
		INSERT INTO alerts (title, url, matched_keywords, news_time, news_source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	var id int64
	err := s.db.QueryRowxContext(ctx, query,
		a.Title, a.URL, news.JoinKeywords(a.MatchedKeywords), a.PublishedAt, a.Source, s.timestamp(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save alert: %w", err)
	}
	return id, nil
}

// ListAlerts returns up to limit alerts, newest first.
func (s *Store) ListAlerts(ctx context.Context, limit int) ([]news.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	query := s.db.Rebind(`
		SELECT id, title, url, matched_keywords, news_time, news_source, created_at
		FROM alerts
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)

	alerts := []news.Alert{}
	if err := s.db.SelectContext(ctx, &alerts, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// DeleteAlert removes one alert by id.
func (s *Store) DeleteAlert(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM alerts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return expectAffected(res)
}

// ClearAlerts deletes every alert and returns how many were removed.
// The dedup ledger is not touched.
func (s *Store) ClearAlerts(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear alerts: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}
