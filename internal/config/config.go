// Package config loads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/deusflow/newsalert/internal/scraper"
	"github.com/deusflow/newsalert/internal/storage"
	"github.com/deusflow/newsalert/internal/window"
)

type Config struct {
	// Scheduling
	CheckInterval time.Duration

	// Notification window
	NotificationStart string
	NotificationEnd   string
	EnableWeekend     bool
	Location          *time.Location

	// Scraper settings
	ListURL        string
	AllowedSources []string
	MaxPages       int
	SelectorsFile  string
	RequestTimeout time.Duration

	// Dedup
	SimilarityThreshold float64

	// Slack
	WebhookURL               string
	EnableErrorNotifications bool

	// Storage
	DBDriver    string
	DatabaseURL string

	// App settings
	Port  int
	Debug bool
}

// Load reads a .env file when present, then the environment. Malformed
// numeric values fall back to their defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		CheckInterval:            time.Duration(getEnvIntOrDefault("CHECK_INTERVAL_MINUTES", 1)) * time.Minute,
		NotificationStart:        strings.TrimSpace(os.Getenv("NOTIFICATION_START_TIME")),
		NotificationEnd:          strings.TrimSpace(os.Getenv("NOTIFICATION_END_TIME")),
		EnableWeekend:            getEnvBoolOrDefault("ENABLE_WEEKEND_NOTIFICATIONS", false),
		ListURL:                  getEnvOrDefault("NEWS_LIST_URL", scraper.DefaultListURL),
		AllowedSources:           splitList(os.Getenv("ALLOWED_NEWS_SOURCES")),
		MaxPages:                 getEnvIntOrDefault("MAX_PAGES", 3),
		SelectorsFile:            os.Getenv("SELECTORS_FILE"),
		RequestTimeout:           time.Duration(getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		SimilarityThreshold:      getEnvFloatOrDefault("TITLE_SIMILARITY_THRESHOLD", 0.8),
		WebhookURL:               strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
		EnableErrorNotifications: getEnvBoolOrDefault("ENABLE_ERROR_NOTIFICATIONS", true),
		DBDriver:                 getEnvOrDefault("DB_DRIVER", storage.DriverSQLite),
		DatabaseURL:              getEnvOrDefault("DATABASE_URL", "news_alerts.db"),
		Port:                     getEnvIntOrDefault("PORT", 5001),
		Debug:                    getEnvBoolOrDefault("DEBUG", false),
		Location:                 time.Local,
	}

	if tz := strings.TrimSpace(os.Getenv("TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("TIMEZONE %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if c.CheckInterval < time.Minute {
		errs = append(errs, errors.New("CHECK_INTERVAL_MINUTES must be at least 1"))
	}
	if c.MaxPages < 1 {
		errs = append(errs, errors.New("MAX_PAGES must be at least 1"))
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		errs = append(errs, errors.New("TITLE_SIMILARITY_THRESHOLD must be within [0, 1]"))
	}
	if c.DBDriver != storage.DriverSQLite && c.DBDriver != storage.DriverPostgres {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q", storage.DriverSQLite, storage.DriverPostgres))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT_SECONDS must be positive"))
	}
	return errors.Join(errs...)
}

// Window is the notification gate described by this configuration.
func (c *Config) Window() window.Window {
	return window.Window{
		EnableWeekend: c.EnableWeekend,
		Start:         c.NotificationStart,
		End:           c.NotificationEnd,
		Location:      c.Location,
	}
}

// ScraperOptions builds the listing client options. Selectors are loaded
// separately because they come from a file.
func (c *Config) ScraperOptions(selectors scraper.Selectors) scraper.Options {
	return scraper.Options{
		ListURL:   c.ListURL,
		Timeout:   c.RequestTimeout,
		Selectors: selectors,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// Booleans follow the "true" convention: anything else is false.
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return strings.EqualFold(value, "true")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
