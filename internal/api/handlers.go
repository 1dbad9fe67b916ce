package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/newsalert/internal/logger"
	"github.com/deusflow/newsalert/internal/storage"
)

type keywordRequest struct {
	Keyword string `json:"keyword"`
}

func (s *Server) dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	keywords, err := s.store.ListKeywords(ctx, false)
	if err != nil {
		internalError(c, "failed to list keywords", err)
		return
	}
	alerts, err := s.store.ListAlerts(ctx, dashboardAlertLimit)
	if err != nil {
		internalError(c, "failed to list alerts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"keywords": keywords,
		"alerts":   alerts,
		"config": gin.H{
			"check_interval_minutes":       int(s.settings.CheckInterval.Minutes()),
			"notification_window":          s.settings.Window.String(),
			"enable_weekend_notifications": s.settings.Window.EnableWeekend,
			"allowed_sources":              s.settings.AllowedSources,
			"max_pages":                    s.settings.MaxPages,
			"similarity_threshold":         s.settings.SimilarityThreshold,
			"webhook_configured":           s.settings.WebhookConfigured,
		},
	})
}

func (s *Server) listKeywords(c *gin.Context) {
	keywords, err := s.store.ListKeywords(c.Request.Context(), false)
	if err != nil {
		internalError(c, "failed to list keywords", err)
		return
	}
	c.JSON(http.StatusOK, keywords)
}

func (s *Server) createKeyword(c *gin.Context) {
	var req keywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "키워드를 입력해주세요."})
		return
	}

	text := strings.TrimSpace(req.Keyword)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "키워드를 입력해주세요."})
		return
	}
	if utf8.RuneCountInString(text) > maxKeywordRunes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "키워드는 100자 이하로 입력해주세요."})
		return
	}

	kw, err := s.store.AddKeyword(c.Request.Context(), text)
	if errors.Is(err, storage.ErrDuplicateKeyword) {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("'%s' 키워드가 이미 존재합니다.", text)})
		return
	}
	if err != nil {
		internalError(c, "failed to add keyword", err)
		return
	}

	logger.Info("keyword added", "keyword", text)
	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("'%s' 키워드가 추가되었습니다.", text),
		"keyword": kw,
	})
}

func (s *Server) deleteKeyword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		keywordNotFound(c)
		return
	}

	err := s.store.DeleteKeyword(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		keywordNotFound(c)
		return
	}
	if err != nil {
		internalError(c, "failed to delete keyword", err)
		return
	}

	logger.Info("keyword deleted", "id", id)
	c.JSON(http.StatusOK, gin.H{"message": "키워드가 삭제되었습니다."})
}

func (s *Server) toggleKeyword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		keywordNotFound(c)
		return
	}

	enabled, err := s.store.ToggleKeyword(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		keywordNotFound(c)
		return
	}
	if err != nil {
		internalError(c, "failed to toggle keyword", err)
		return
	}

	status := "비활성화"
	if enabled {
		status = "활성화"
	}
	logger.Info("keyword toggled", "id", id, "enabled", enabled)
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("키워드가 %s되었습니다.", status),
		"enabled": enabled,
	})
}

func (s *Server) checkNow(c *gin.Context) {
	stats := s.checker.Run(c.Request.Context())
	if stats.Err != nil {
		logger.Error("manual check failed", "run_id", stats.RunID, "error", stats.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": stats.Err.Error(), "stats": stats})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "뉴스 확인 완료", "stats": stats})
}

func (s *Server) status(c *gin.Context) {
	keywords, err := s.store.ListKeywords(c.Request.Context(), false)
	if err != nil {
		internalError(c, "failed to list keywords", err)
		return
	}

	enabled := 0
	for _, k := range keywords {
		if k.Enabled {
			enabled++
		}
	}

	body := gin.H{
		"scheduler_running":     s.scheduler != nil && s.scheduler.Running(),
		"webhook_configured":    s.settings.WebhookConfigured,
		"keyword_count":         len(keywords),
		"enabled_keyword_count": enabled,
		"check_interval":        int(s.settings.CheckInterval.Minutes()),
		"notification_window":   s.settings.Window.String(),
		"is_notification_time":  s.settings.Window.Allows(s.now()),
	}
	if last, ok := s.checker.LastRun(); ok {
		body["last_run"] = last
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) listAlerts(c *gin.Context) {
	alerts, err := s.store.ListAlerts(c.Request.Context(), alertListLimit)
	if err != nil {
		internalError(c, "failed to list alerts", err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (s *Server) clearAlerts(c *gin.Context) {
	deleted, err := s.store.ClearAlerts(c.Request.Context())
	if err != nil {
		internalError(c, "failed to clear alerts", err)
		return
	}
	logger.Info("cleared alerts", "count", deleted)
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d개의 알림이 삭제되었습니다.", deleted),
		"deleted": deleted,
	})
}

func (s *Server) deleteAlert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		alertNotFound(c)
		return
	}

	err := s.store.DeleteAlert(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		alertNotFound(c)
		return
	}
	if err != nil {
		internalError(c, "failed to delete alert", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "알림이 삭제되었습니다."})
}

func (s *Server) health(c *gin.Context) {
	stats := s.metrics.GetStats()

	code, status := http.StatusOK, "ok"
	if !s.metrics.Healthy() {
		code, status = http.StatusServiceUnavailable, "error"
	}

	c.JSON(code, gin.H{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
		"metrics":    stats,
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func keywordNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "키워드를 찾을 수 없습니다."})
}

func alertNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "알림을 찾을 수 없습니다."})
}

func internalError(c *gin.Context, msg string, err error) {
	logger.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
