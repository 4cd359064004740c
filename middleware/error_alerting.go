package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"

	"chatrouter/core/log"
)

const defaultAlertCooldown = 10 * time.Minute

type AlertConfig struct {
	WebhookURL  string
	Environment string
	AppName     string
	LogsURL     string
}

type ErrorAlertMiddleware struct {
	config        AlertConfig
	alertedErrors map[string]time.Time // hash -> last alert time
	mutex         sync.Mutex
	alertCooldown time.Duration
	now           func() time.Time
	post          func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

func NewErrorAlertMiddleware(config AlertConfig) *ErrorAlertMiddleware {
	return &ErrorAlertMiddleware{
		config:        config,
		alertedErrors: make(map[string]time.Time),
		alertCooldown: defaultAlertCooldown,
		now:           time.Now,
		post:          slack.PostWebhookContext,
	}
}

// HTTPMiddleware recovers panics in HTTP handlers, answers 500 and raises an alert
func (m *ErrorAlertMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				m.reportPanic(fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path), rec)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// WrapBackgroundTask recovers panics and alerts on errors of a periodic task
func (m *ErrorAlertMiddleware) WrapBackgroundTask(taskName string, task func() error) func() error {
	return func() (err error) {
		source := "Background task: " + taskName
		defer func() {
			if rec := recover(); rec != nil {
				m.reportPanic(source, rec)
				err = fmt.Errorf("%s panicked: %v", taskName, rec)
			}
		}()

		if err := task(); err != nil {
			m.AlertOnError(err, source)
			return err
		}
		return nil
	}
}

// AlertOnError sends an alert unless the same error was alerted within the cooldown
func (m *ErrorAlertMiddleware) AlertOnError(err error, source string) {
	errorMsg := fmt.Sprintf("%s: %v", source, err)
	log.Error("❌ "+source+" failed", "error", err)

	if !m.shouldAlert(errorMsg) {
		return
	}
	go m.sendAlert(errorMsg, source)
}

func (m *ErrorAlertMiddleware) shouldAlert(errorMsg string) bool {
	sum := sha256.Sum256([]byte(errorMsg))
	hash := hex.EncodeToString(sum[:])

	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	if lastAlert, exists := m.alertedErrors[hash]; exists && now.Sub(lastAlert) < m.alertCooldown {
		return false
	}
	m.alertedErrors[hash] = now
	return true
}

func (m *ErrorAlertMiddleware) reportPanic(source string, rec any) {
	errorMsg := fmt.Sprintf("%s: PANIC - %v", source, rec)
	log.Error("❌ Recovered from panic", "source", source, "panic", rec)
	go m.sendAlert(errorMsg, source+" (PANIC)")
}

func (m *ErrorAlertMiddleware) sendAlert(errorMsg, source string) {
	if m.config.WebhookURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.post(ctx, m.config.WebhookURL, m.alertMessage(errorMsg, source)); err != nil {
		log.Error("❌ Failed to send error alert", "error", err)
	}
}

func (m *ErrorAlertMiddleware) alertMessage(errorMsg, source string) *slack.WebhookMessage {
	prefix := ""
	if m.config.Environment == "dev" {
		prefix = "[dev] "
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(
			slack.PlainTextType, fmt.Sprintf("🚨 %s[%s] Error Alert", prefix, m.config.AppName), true, false,
		)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, "*Service:* "+m.config.AppName, false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "*Environment:* "+m.config.Environment, false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "*Context:* "+source, false, false),
		}, nil),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Error:*\n```%s```", errorMsg), false, false),
			nil, nil,
		),
	}
	if m.config.LogsURL != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("🔗 <%s|View Logs>", m.config.LogsURL), false, false),
			nil, nil,
		))
	}

	return &slack.WebhookMessage{
		Text:   errorMsg,
		Blocks: &slack.Blocks{BlockSet: blocks},
	}
}
