package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsalert/internal/news"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)}
	s, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "test.db"), WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, clock
}

func keywordTexts(ks []news.Keyword) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.Text
	}
	return out
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "whatever")
	assert.Error(t, err)
}

func TestOpen_MigrateIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestKeywords_AddAndList(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	kw, err := s.AddKeyword(ctx, "  삼성전자  ")
	require.NoError(t, err)
	assert.Equal(t, "삼성전자", kw.Text)
	assert.True(t, kw.Enabled)
	assert.NotZero(t, kw.ID)

	clock.Advance(time.Second)
	_, err = s.AddKeyword(ctx, "현대차")
	require.NoError(t, err)

	keywords, err := s.ListKeywords(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"현대차", "삼성전자"}, keywordTexts(keywords))
	assert.True(t, keywords[1].CreatedAt.Equal(time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)))
}

func TestKeywords_DuplicateDoesNotMutate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddKeyword(ctx, "삼성전자")
	require.NoError(t, err)

	_, err = s.AddKeyword(ctx, "삼성전자")
	assert.ErrorIs(t, err, ErrDuplicateKeyword)

	// Uniqueness is case-sensitive.
	_, err = s.AddKeyword(ctx, "lg전자")
	require.NoError(t, err)
	_, err = s.AddKeyword(ctx, "LG전자")
	require.NoError(t, err)

	keywords, err := s.ListKeywords(ctx, false)
	require.NoError(t, err)
	assert.Len(t, keywords, 3)
}

func TestKeywords_DeleteAndToggle(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	active, err := s.AddKeyword(ctx, "활성")
	require.NoError(t, err)
	clock.Advance(time.Second)
	inactive, err := s.AddKeyword(ctx, "비활성")
	require.NoError(t, err)

	enabled, err := s.ToggleKeyword(ctx, inactive.ID)
	require.NoError(t, err)
	assert.False(t, enabled)

	texts, err := s.EnabledKeywordTexts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"활성"}, texts)

	enabled, err = s.ToggleKeyword(ctx, inactive.ID)
	require.NoError(t, err)
	assert.True(t, enabled)

	_, err = s.ToggleKeyword(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteKeyword(ctx, active.ID))
	assert.ErrorIs(t, s.DeleteKeyword(ctx, active.ID), ErrNotFound)

	texts, err = s.EnabledKeywordTexts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"비활성"}, texts)
}

func TestSent_ByURL(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sent, err := s.IsSentByURL(ctx, "https://example.com/1")
	require.NoError(t, err)
	assert.False(t, sent)

	require.NoError(t, s.MarkSent(ctx, "https://example.com/1", "뉴스 제목"))

	sent, err = s.IsSentByURL(ctx, "https://example.com/1")
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = s.IsSentByURL(ctx, "https://example.com/10")
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestSent_MarkTwiceIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkSent(ctx, "https://example.com/1", "첫 제목"))
	require.NoError(t, s.MarkSent(ctx, "https://example.com/1", "다른 제목"))

	count, err := s.SentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The original title is kept.
	similar, err := s.IsSentBySimilarTitle(ctx, "첫 제목", 1.0)
	require.NoError(t, err)
	assert.True(t, similar)
}

func TestSent_SimilarTitle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkSent(ctx, "https://example.com/1", "삼성전자 실적 발표 예정"))

	for _, tt := range []struct {
		title string
		want  bool
	}{
		{"삼성전자 실적 발표 예정", true},
		{"삼성전자 실적 발표 예정일", true},
		{"삼성전자 실적 발표 예고", true},
		{"완전히 다른 뉴스 제목입니다", false},
	} {
		got, err := s.IsSentBySimilarTitle(ctx, tt.title, 0.8)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.title)
	}
}

func TestSent_EmptyTitleNeverMatches(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkSent(ctx, "https://example.com/untitled", ""))

	sent, err := s.IsSentByURL(ctx, "https://example.com/untitled")
	require.NoError(t, err)
	assert.True(t, sent)

	similar, err := s.IsSentBySimilarTitle(ctx, "", 0.0)
	require.NoError(t, err)
	assert.False(t, similar)
}

func TestSent_PruneOlderThan(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkSent(ctx, "https://example.com/old", "오래된 뉴스"))

	deleted, err := s.PruneOlderThan(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	clock.Advance(6 * 24 * time.Hour)
	require.NoError(t, s.MarkSent(ctx, "https://example.com/new", "새 뉴스"))

	clock.Advance(24*time.Hour + time.Minute)
	deleted, err = s.PruneOlderThan(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	sent, err := s.IsSentByURL(ctx, "https://example.com/old")
	require.NoError(t, err)
	assert.False(t, sent)

	sent, err = s.IsSentByURL(ctx, "https://example.com/new")
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestAlerts_SaveListClear(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	id, err := s.SaveAlert(ctx, news.MatchedArticle{
		Article:         news.Article{Title: "테스트 뉴스", URL: "https://example.com/1", PublishedAt: "12:00", Source: "한국경제"},
		MatchedKeywords: []string{"삼성전자", "LG전자"},
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	clock.Advance(time.Second)
	_, err = s.SaveAlert(ctx, news.MatchedArticle{
		Article:         news.Article{Title: "뉴스2", URL: "https://example.com/2"},
		MatchedKeywords: []string{"키워드"},
	})
	require.NoError(t, err)

	alerts, err := s.ListAlerts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "뉴스2", alerts[0].Title)
	assert.Equal(t, "테스트 뉴스", alerts[1].Title)
	assert.Equal(t, "삼성전자, LG전자", alerts[1].MatchedKeywords)
	assert.Equal(t, "한국경제", alerts[1].NewsSource)
	assert.Equal(t, "12:00", alerts[1].NewsTime)

	limited, err := s.ListAlerts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, s.DeleteAlert(ctx, id))
	assert.ErrorIs(t, s.DeleteAlert(ctx, id), ErrNotFound)

	require.NoError(t, s.MarkSent(ctx, "https://example.com/2", "뉴스2"))
	deleted, err := s.ClearAlerts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	alerts, err = s.ListAlerts(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	// Clearing history leaves the dedup ledger alone.
	sent, err := s.IsSentByURL(ctx, "https://example.com/2")
	require.NoError(t, err)
	assert.True(t, sent)
}
