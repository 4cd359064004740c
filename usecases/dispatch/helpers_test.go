package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chatrouter/clients"
	"chatrouter/listener"
	"chatrouter/models"
	"chatrouter/services/processedmessages"
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

// setupRouter registers the declarations through a Registry wired to a mock transport.
func setupRouter(t *testing.T, decls ...listener.Declaration) (*Router, *clients.MockTransport, *fakeClock) {
	t.Helper()

	transport := &clients.MockTransport{}
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	processed := processedmessages.NewProcessedMessagesService(15 * time.Minute).WithClock(clock.Now)
	router := NewRouter(transport, processed)

	registry := NewRegistry(router, 4)
	require.NoError(t, registry.Register(listener.ControllerFunc(func() []listener.Declaration {
		return decls
	})))

	return router, transport, clock
}

// counter records handler invocations safely across goroutines.
type counter struct {
	mu    sync.Mutex
	calls []string
}

func (c *counter) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
}

func (c *counter) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *counter) count(name string) int {
	n := 0
	for _, call := range c.get() {
		if call == name {
			n++
		}
	}
	return n
}

func textMessage(ts, content string) models.TextMessage {
	return models.TextMessage{Timestamp: ts, ChannelID: "C100", SenderID: "U200", Content: content}
}

func threadMessage(ts, threadID, content string) models.ThreadMessage {
	return models.ThreadMessage{Timestamp: ts, ChannelID: "C100", SenderID: "U200", ThreadID: threadID, Content: content}
}
