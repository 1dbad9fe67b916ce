package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/newsalert/internal/logger"
	"github.com/deusflow/newsalert/internal/news"
)

const (
	DefaultTimeout = 10 * time.Second

	alertHeader    = "📰 증권 뉴스 알림"
	errorHeader    = "⚠️ 뉴스 알림 시스템 오류"
	maxDetailRunes = 500
)

// Notifier posts block-kit messages to an incoming Slack webhook. Every
// method reports success as a bool and never returns an error to the
// caller; delivery is attempted once.
type Notifier struct {
	webhookURL    string
	errorsEnabled bool
	client        *http.Client
	now           func() time.Time
}

// New returns a notifier for webhookURL. An empty URL yields a notifier
// that logs and skips every delivery.
func New(webhookURL string, timeout time.Duration, errorsEnabled bool) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{
		webhookURL:    strings.TrimSpace(webhookURL),
		errorsEnabled: errorsEnabled,
		client:        &http.Client{Timeout: timeout},
		now:           time.Now,
	}
}

// Configured reports whether a webhook URL is set.
func (n *Notifier) Configured() bool {
	return n.webhookURL != ""
}

// Notify sends the alert for one matched article.
func (n *Notifier) Notify(ctx context.Context, article news.MatchedArticle) bool {
	if !n.Configured() {
		logger.Warn("SLACK_WEBHOOK_URL not set, skipping notification")
		return false
	}

	if err := n.send(ctx, alertMessage(article)); err != nil {
		logger.Error("failed to send slack notification", "title", news.ShortTitle(article.Title), "error", err)
		return false
	}
	logger.Info("slack notification sent", "title", news.ShortTitle(article.Title))
	return true
}

// NotifyError reports a pipeline failure. It is a no-op when error
// notifications are disabled.
func (n *Notifier) NotifyError(ctx context.Context, message, details string) bool {
	if !n.errorsEnabled {
		return false
	}
	if !n.Configured() {
		logger.Warn("SLACK_WEBHOOK_URL not set, skipping error notification")
		return false
	}

	if err := n.send(ctx, errorMessage(message, details, n.now())); err != nil {
		logger.Error("failed to send error notification", "error", err)
		return false
	}
	logger.Info("error notification sent to slack")
	return true
}

// NotifySimple posts a plain text message.
func (n *Notifier) NotifySimple(ctx context.Context, text string) bool {
	if !n.Configured() {
		logger.Warn("SLACK_WEBHOOK_URL not set, skipping notification")
		return false
	}

	if err := n.send(ctx, message{Text: text}); err != nil {
		logger.Error("failed to send slack notification", "error", err)
		return false
	}
	return true
}

func (n *Notifier) send(ctx context.Context, msg message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("failed to close response body", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func alertMessage(article news.MatchedArticle) message {
	published := article.PublishedAt
	if published == "" {
		published = "N/A"
	}

	fields := []text{
		mrkdwn("*매칭된 키워드:*\n" + news.JoinKeywords(article.MatchedKeywords)),
		mrkdwn("*시간:*\n" + published),
	}
	if article.Source != "" {
		fields = append(fields, mrkdwn("*출처:*\n"+article.Source))
	}

	return message{
		Blocks: []block{
			{Type: "header", Text: plain(alertHeader)},
			{Type: "section", Text: mrkdwnPtr("*" + article.Title + "*")},
			{Type: "section", Fields: fields},
			{Type: "actions", Elements: []any{button{
				Type:     "button",
				Text:     plain("기사 보기"),
				URL:      article.URL,
				ActionID: "view_article",
			}}},
			{Type: "divider"},
		},
		Text: "증권 뉴스 알림: " + article.Title,
	}
}

func errorMessage(msg, details string, at time.Time) message {
	blocks := []block{
		{Type: "header", Text: plain(errorHeader)},
		{Type: "section", Text: mrkdwnPtr("*오류 내용:*\n" + msg)},
	}
	if details != "" {
		blocks = append(blocks, block{
			Type: "section",
			Text: mrkdwnPtr("*상세 정보:*\n```" + truncateRunes(details, maxDetailRunes) + "```"),
		})
	}
	blocks = append(blocks, block{
		Type:     "context",
		Elements: []any{mrkdwn("발생 시간: " + at.Format("2006-01-02 15:04:05"))},
	})

	return message{
		Blocks: blocks,
		Text:   "뉴스 알림 시스템 오류: " + msg,
	}
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
