package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPoster struct {
	mu   sync.Mutex
	msgs []*slack.WebhookMessage
	sent chan struct{}
}

func newRecordingPoster() *recordingPoster {
	return &recordingPoster{sent: make(chan struct{}, 10)}
}

func (p *recordingPoster) post(_ context.Context, _ string, msg *slack.WebhookMessage) error {
	p.mu.Lock()
	p.msgs = append(p.msgs, msg)
	p.mu.Unlock()
	p.sent <- struct{}{}
	return nil
}

func (p *recordingPoster) waitFor(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-p.sent:
		case <-time.After(time.Second):
			t.Fatalf("expected %d alerts, got %d", n, i)
		}
	}
}

func newTestMiddleware(poster *recordingPoster) *ErrorAlertMiddleware {
	m := NewErrorAlertMiddleware(AlertConfig{WebhookURL: "https://hooks.example.com/x", Environment: "dev", AppName: "chatrouter"})
	m.post = poster.post
	return m
}

func TestHTTPMiddleware_RecoversPanic(t *testing.T) {
	poster := newRecordingPoster()
	m := newTestMiddleware(poster)
	handler := m.HTTPMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/slack/actions", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	poster.waitFor(t, 1)
	poster.mu.Lock()
	defer poster.mu.Unlock()
	assert.Contains(t, poster.msgs[0].Text, "HTTP POST /slack/actions: PANIC - boom")
	require.NotNil(t, poster.msgs[0].Blocks)
	assert.Len(t, poster.msgs[0].Blocks.BlockSet, 3)
}

func TestHTTPMiddleware_PassesThrough(t *testing.T) {
	m := newTestMiddleware(newRecordingPoster())
	handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestWrapBackgroundTask(t *testing.T) {
	t.Run("error is alerted once within cooldown", func(t *testing.T) {
		poster := newRecordingPoster()
		m := newTestMiddleware(poster)
		task := m.WrapBackgroundTask("sweep", func() error { return errors.New("store unavailable") })

		assert.Error(t, task())
		assert.Error(t, task())

		poster.waitFor(t, 1)
		select {
		case <-poster.sent:
			t.Fatal("duplicate alert within cooldown")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("alert repeats after cooldown", func(t *testing.T) {
		poster := newRecordingPoster()
		m := newTestMiddleware(poster)
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		m.now = func() time.Time { return now }
		task := m.WrapBackgroundTask("sweep", func() error { return errors.New("store unavailable") })

		_ = task()
		now = now.Add(defaultAlertCooldown)
		_ = task()

		poster.waitFor(t, 2)
	})

	t.Run("panic becomes an error", func(t *testing.T) {
		poster := newRecordingPoster()
		m := newTestMiddleware(poster)
		task := m.WrapBackgroundTask("sweep", func() error { panic("nil map") })

		err := task()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "sweep panicked: nil map")
		poster.waitFor(t, 1)
	})

	t.Run("success is silent", func(t *testing.T) {
		poster := newRecordingPoster()
		m := newTestMiddleware(poster)

		assert.NoError(t, m.WrapBackgroundTask("sweep", func() error { return nil })())
		assert.Empty(t, poster.sent)
	})
}

func TestSendAlert_DisabledWithoutWebhook(t *testing.T) {
	poster := newRecordingPoster()
	m := NewErrorAlertMiddleware(AlertConfig{})
	m.post = poster.post

	m.sendAlert("boom", "test")

	assert.Empty(t, poster.sent)
}
