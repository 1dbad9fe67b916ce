package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsalert/internal/scraper"
)

var envKeys = []string{
	"CHECK_INTERVAL_MINUTES", "NOTIFICATION_START_TIME", "NOTIFICATION_END_TIME",
	"ENABLE_WEEKEND_NOTIFICATIONS", "ALLOWED_NEWS_SOURCES", "TITLE_SIMILARITY_THRESHOLD",
	"MAX_PAGES", "SLACK_WEBHOOK_URL", "ENABLE_ERROR_NOTIFICATIONS", "DB_DRIVER",
	"DATABASE_URL", "PORT", "REQUEST_TIMEOUT_SECONDS", "SELECTORS_FILE", "NEWS_LIST_URL",
	"TIMEZONE", "DEBUG",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.CheckInterval)
	assert.Empty(t, cfg.NotificationStart)
	assert.Empty(t, cfg.NotificationEnd)
	assert.False(t, cfg.EnableWeekend)
	assert.Empty(t, cfg.AllowedSources)
	assert.InDelta(t, 0.8, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, 3, cfg.MaxPages)
	assert.Empty(t, cfg.WebhookURL)
	assert.True(t, cfg.EnableErrorNotifications)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, "news_alerts.db", cfg.DatabaseURL)
	assert.Equal(t, 5001, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, scraper.DefaultListURL, cfg.ListURL)
	assert.Equal(t, time.Local, cfg.Location)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHECK_INTERVAL_MINUTES", "5")
	t.Setenv("NOTIFICATION_START_TIME", "09:00")
	t.Setenv("NOTIFICATION_END_TIME", "15:30")
	t.Setenv("ENABLE_WEEKEND_NOTIFICATIONS", "TRUE")
	t.Setenv("ALLOWED_NEWS_SOURCES", "한국경제, 연합뉴스 ,,")
	t.Setenv("TITLE_SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("MAX_PAGES", "5")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/X")
	t.Setenv("ENABLE_ERROR_NOTIFICATIONS", "false")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/news?sslmode=disable")
	t.Setenv("PORT", "8080")
	t.Setenv("TIMEZONE", "Asia/Seoul")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.CheckInterval)
	assert.True(t, cfg.EnableWeekend)
	assert.Equal(t, []string{"한국경제", "연합뉴스"}, cfg.AllowedSources)
	assert.InDelta(t, 0.9, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, 5, cfg.MaxPages)
	assert.False(t, cfg.EnableErrorNotifications)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "Asia/Seoul", cfg.Location.String())
	assert.True(t, cfg.Debug)

	w := cfg.Window()
	assert.True(t, w.EnableWeekend)
	assert.Equal(t, "09:00", w.Start)
	assert.Equal(t, "15:30", w.End)
	assert.Equal(t, cfg.Location, w.Location)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_PAGES", "many")
	t.Setenv("TITLE_SIMILARITY_THRESHOLD", "high")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxPages)
	assert.InDelta(t, 0.8, cfg.SimilarityThreshold, 1e-9)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			CheckInterval:       time.Minute,
			MaxPages:            1,
			SimilarityThreshold: 0.8,
			DBDriver:            "sqlite3",
			RequestTimeout:      time.Second,
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"interval", func(c *Config) { c.CheckInterval = 0 }, "CHECK_INTERVAL_MINUTES"},
		{"pages", func(c *Config) { c.MaxPages = 0 }, "MAX_PAGES"},
		{"threshold high", func(c *Config) { c.SimilarityThreshold = 1.5 }, "TITLE_SIMILARITY_THRESHOLD"},
		{"threshold low", func(c *Config) { c.SimilarityThreshold = -0.1 }, "TITLE_SIMILARITY_THRESHOLD"},
		{"driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"timeout", func(c *Config) { c.RequestTimeout = 0 }, "REQUEST_TIMEOUT_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ValidationErrorReturnsConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_PAGES", "0")

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 0, cfg.MaxPages)
}
