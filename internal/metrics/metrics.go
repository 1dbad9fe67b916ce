// Package metrics keeps process-wide run counters and exports them to
// prometheus.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	articlesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsalert_articles_fetched_total",
		Help: "Total articles fetched from listing pages",
	})

	alertsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsalert_alerts_saved_total",
		Help: "Total alerts persisted for new matched articles",
	})

	duplicatesFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsalert_duplicates_filtered_total",
		Help: "Matched articles skipped as already sent",
	}, []string{"reason"})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsalert_notifications_total",
		Help: "Webhook notifications attempted by result",
	}, []string{"result"})

	runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsalert_runs_total",
		Help: "Pipeline runs by result",
	}, []string{"result"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsalert_run_duration_seconds",
		Help:    "Wall time of one pipeline run",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
)

func init() {
	// Expose every labelled series from the first scrape.
	for _, reason := range []string{"url", "similar_title"} {
		duplicatesFiltered.WithLabelValues(reason)
	}
	for _, result := range []string{"sent", "failed"} {
		notifications.WithLabelValues(result)
	}
	for _, result := range []string{"ok", "error"} {
		runs.WithLabelValues(result)
	}
}

// Run is what one pipeline run reports.
type Run struct {
	Fetched        int
	Matched        int
	SkippedURL     int
	SkippedSimilar int
	Saved          int
	Notified       int
	NotifyFailed   int
	Pruned         int64
	Duration       time.Duration
	Err            error
}

type Metrics struct {
	mu sync.RWMutex

	// Counters
	TotalArticlesFetched int64
	TotalMatched         int64
	DuplicatesFiltered   int64
	AlertsSaved          int64
	NotificationsSent    int64
	NotificationsFailed  int64
	SentRecordsPruned    int64
	Runs                 int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

// Handler serves the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRun folds one run into the snapshot and the prometheus collectors.
func (m *Metrics) RecordRun(r Run) {
	articlesFetched.Add(float64(r.Fetched))
	alertsSaved.Add(float64(r.Saved))
	duplicatesFiltered.WithLabelValues("url").Add(float64(r.SkippedURL))
	duplicatesFiltered.WithLabelValues("similar_title").Add(float64(r.SkippedSimilar))
	notifications.WithLabelValues("sent").Add(float64(r.Notified))
	notifications.WithLabelValues("failed").Add(float64(r.NotifyFailed))
	runDuration.Observe(r.Duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalArticlesFetched += int64(r.Fetched)
	m.TotalMatched += int64(r.Matched)
	m.DuplicatesFiltered += int64(r.SkippedURL + r.SkippedSimilar)
	m.AlertsSaved += int64(r.Saved)
	m.NotificationsSent += int64(r.Notified)
	m.NotificationsFailed += int64(r.NotifyFailed)
	m.SentRecordsPruned += r.Pruned

	m.Runs++
	m.LastProcessingTime = r.Duration
	m.TotalProcessingTime += r.Duration
	m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.Runs)
	m.LastRunTime = time.Now()

	if r.Err != nil {
		runs.WithLabelValues("error").Inc()
		m.setErrorLocked(r.Err.Error())
		return
	}
	runs.WithLabelValues("ok").Inc()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErrorLocked(err)
}

func (m *Metrics) setErrorLocked(err string) {
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := map[string]interface{}{
		"total_articles_fetched":     m.TotalArticlesFetched,
		"total_matched":              m.TotalMatched,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"alerts_saved":               m.AlertsSaved,
		"notifications_sent":         m.NotificationsSent,
		"notifications_failed":       m.NotificationsFailed,
		"sent_records_pruned":        m.SentRecordsPruned,
		"runs":                       m.Runs,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
	if !m.LastRunTime.IsZero() {
		stats["last_run_time"] = m.LastRunTime.Format(time.RFC3339)
	}
	if !m.LastErrorTime.IsZero() {
		stats["last_error_time"] = m.LastErrorTime.Format(time.RFC3339)
	}
	return stats
}
