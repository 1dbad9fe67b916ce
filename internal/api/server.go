// Package api serves the management HTTP API: keyword CRUD, alert
// history, manual checks, status and monitoring endpoints.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/newsalert/internal/app"
	"github.com/deusflow/newsalert/internal/metrics"
	"github.com/deusflow/newsalert/internal/news"
	"github.com/deusflow/newsalert/internal/window"
)

const (
	dashboardAlertLimit = 50
	alertListLimit      = 100
	maxKeywordRunes     = 100
)

// Store is the slice of persistence the API manages.
type Store interface {
	ListKeywords(ctx context.Context, onlyEnabled bool) ([]news.Keyword, error)
	AddKeyword(ctx context.Context, text string) (news.Keyword, error)
	DeleteKeyword(ctx context.Context, id int64) error
	ToggleKeyword(ctx context.Context, id int64) (bool, error)
	ListAlerts(ctx context.Context, limit int) ([]news.Alert, error)
	DeleteAlert(ctx context.Context, id int64) error
	ClearAlerts(ctx context.Context) (int64, error)
}

// Checker runs the pipeline on demand.
type Checker interface {
	Run(ctx context.Context) app.RunStats
	LastRun() (app.RunStats, bool)
}

// Scheduler reports whether periodic checks are active.
type Scheduler interface {
	Running() bool
}

// Settings is the configuration summary shown by the dashboard and
// status endpoints.
type Settings struct {
	CheckInterval       time.Duration
	Window              window.Window
	WebhookConfigured   bool
	AllowedSources      []string
	MaxPages            int
	SimilarityThreshold float64
}

type Server struct {
	store     Store
	checker   Checker
	scheduler Scheduler
	settings  Settings
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewServer(store Store, checker Checker, scheduler Scheduler, settings Settings, m *metrics.Metrics) *Server {
	if m == nil {
		m = metrics.Global
	}
	return &Server{
		store:     store,
		checker:   checker,
		scheduler: scheduler,
		settings:  settings,
		metrics:   m,
		now:       time.Now,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/", s.dashboard)

	r.GET("/keywords", s.listKeywords)
	r.POST("/keywords", s.createKeyword)
	r.DELETE("/keywords/:id", s.deleteKeyword)
	r.POST("/keywords/:id/toggle", s.toggleKeyword)

	r.POST("/check-now", s.checkNow)
	r.GET("/status", s.status)

	r.GET("/alerts", s.listAlerts)
	r.DELETE("/alerts", s.clearAlerts)
	r.DELETE("/alerts/:id", s.deleteAlert)

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}
