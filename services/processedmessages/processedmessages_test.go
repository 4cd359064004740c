package processedmessages

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
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

func newTestService() (*ProcessedMessagesService, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewProcessedMessagesService(15 * time.Minute).WithClock(clock.Now), clock
}

func TestMarkProcessed(t *testing.T) {
	t.Run("DuplicateWithinWindow", func(t *testing.T) {
		svc, clock := newTestService()

		assert.True(t, svc.MarkProcessed("C1", "1700000000.000100"))
		clock.Advance(14 * time.Minute)
		assert.False(t, svc.MarkProcessed("C1", "1700000000.000100"))
	})

	t.Run("RepeatAfterWindowIsNew", func(t *testing.T) {
		svc, clock := newTestService()

		assert.True(t, svc.MarkProcessed("C1", "1.0"))
		clock.Advance(15 * time.Minute)
		assert.True(t, svc.MarkProcessed("C1", "1.0"))
	})

	t.Run("KeyIncludesChannel", func(t *testing.T) {
		svc, _ := newTestService()

		assert.True(t, svc.MarkProcessed("C1", "1.0"))
		assert.True(t, svc.MarkProcessed("C2", "1.0"))
		assert.Equal(t, 2, svc.Len())
	})

	t.Run("SeparatorInIdsDoesNotCollide", func(t *testing.T) {
		svc, _ := newTestService()

		assert.True(t, svc.MarkProcessed("C1/x", "1.0"))
		assert.True(t, svc.MarkProcessed("C1", "x/1.0"))
		assert.False(t, svc.MarkProcessed("C1", "x/1.0"))
		assert.Equal(t, 2, svc.Len())
	})

	t.Run("InsertEvictsExpired", func(t *testing.T) {
		svc, clock := newTestService()

		svc.MarkProcessed("C1", "1.0")
		svc.MarkProcessed("C1", "2.0")
		clock.Advance(10 * time.Minute)
		svc.MarkProcessed("C1", "3.0")
		clock.Advance(6 * time.Minute)
		svc.MarkProcessed("C1", "4.0")

		assert.Equal(t, 2, svc.Len())
	})

	t.Run("ReinsertedKeySurvivesStaleQueueEntry", func(t *testing.T) {
		svc, clock := newTestService()

		svc.MarkProcessed("C1", "1.0")
		clock.Advance(15 * time.Minute)
		// expired and re-added: the old queue entry must not delete the new one
		assert.True(t, svc.MarkProcessed("C1", "1.0"))
		clock.Advance(time.Minute)
		assert.False(t, svc.MarkProcessed("C1", "1.0"))
	})

	t.Run("DefaultWindow", func(t *testing.T) {
		svc := NewProcessedMessagesService(0)
		assert.Equal(t, DefaultWindow, svc.window)
	})
}

func TestSweep(t *testing.T) {
	svc, clock := newTestService()

	for i := 0; i < 5; i++ {
		svc.MarkProcessed("C1", fmt.Sprintf("%d.0", i))
	}
	assert.Equal(t, 0, svc.Sweep())

	clock.Advance(16 * time.Minute)
	assert.Equal(t, 5, svc.Sweep())
	assert.Equal(t, 0, svc.Len())
}

func TestMarkProcessed_Concurrent(t *testing.T) {
	svc, _ := newTestService()

	const goroutines = 16
	const messages = 100
	var accepted atomic.Int64
	var wg sync.WaitGroup

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := 0; m < messages; m++ {
				if svc.MarkProcessed("C1", fmt.Sprintf("%d.0", m)) {
					accepted.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(messages), accepted.Load())
	assert.Equal(t, messages, svc.Len())
}
