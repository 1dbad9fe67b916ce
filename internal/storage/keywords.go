package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deusflow/newsalert/internal/news"
)

// AddKeyword inserts a trimmed keyword, enabled. An existing identical
// keyword yields ErrDuplicateKeyword and leaves the table unchanged.
func (s *Store) AddKeyword(ctx context.Context, text string) (news.Keyword, error) {
	kw := news.Keyword{
		Text:      strings.TrimSpace(text),
		Enabled:   true,
		CreatedAt: s.timestamp(),
	}

	query := s.db.Rebind(`
		INSERT INTO keywords (keyword, enabled, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (keyword) DO NOTHING
		RETURNING id
	`)

	err := s.db.QueryRowxContext(ctx, query, kw.Text, kw.Enabled, kw.CreatedAt).Scan(&kw.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return news.Keyword{}, ErrDuplicateKeyword
	}
	if err != nil {
		return news.Keyword{}, fmt.Errorf("failed to add keyword: %w", err)
	}

	return kw, nil
}

// DeleteKeyword removes a keyword by id.
func (s *Store) DeleteKeyword(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM keywords WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete keyword: %w", err)
	}
	return expectAffected(res)
}

// ToggleKeyword flips the enabled flag and returns the new value.
func (s *Store) ToggleKeyword(ctx context.Context, id int64) (bool, error) {
	query := s.db.Rebind(`UPDATE keywords SET enabled = NOT enabled WHERE id = ? RETURNING enabled`)

	var enabled bool
	err := s.db.QueryRowxContext(ctx, query, id).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle keyword: %w", err)
	}

	return enabled, nil
}

// ListKeywords returns keywords newest first, optionally only enabled ones.
func (s *Store) ListKeywords(ctx context.Context, onlyEnabled bool) ([]news.Keyword, error) {
	query := `SELECT id, keyword, enabled, created_at FROM keywords`
	if onlyEnabled {
		query += ` WHERE enabled`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	keywords := []news.Keyword{}
	if err := s.db.SelectContext(ctx, &keywords, query); err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	return keywords, nil
}

// EnabledKeywordTexts returns the texts of enabled keywords in list order.
func (s *Store) EnabledKeywordTexts(ctx context.Context) ([]string, error) {
	keywords, err := s.ListKeywords(ctx, true)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(keywords))
	for i, k := range keywords {
		texts[i] = k.Text
	}
	return texts, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
