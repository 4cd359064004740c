package processedmessages

import (
	"sync"
	"time"

	"github.com/gammazero/deque"

	"chatrouter/core/log"
)

// DefaultWindow is how long a delivered message is remembered.
const DefaultWindow = 15 * time.Minute

type messageKey struct {
	channelID string
	timestamp string
}

type entry struct {
	key messageKey
	at  time.Time
}

// ProcessedMessagesService remembers recently delivered channel messages so that a
// re-delivered message is not handled twice.
type ProcessedMessagesService struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	seen   map[messageKey]time.Time
	// arrival order, oldest first
	order *deque.Deque[entry]
}

func NewProcessedMessagesService(window time.Duration) *ProcessedMessagesService {
	if window <= 0 {
		window = DefaultWindow
	}
	return &ProcessedMessagesService{
		window: window,
		now:    time.Now,
		seen:   make(map[messageKey]time.Time),
		order:  deque.New[entry](),
	}
}

// WithClock replaces the time source. Meant for tests.
func (s *ProcessedMessagesService) WithClock(now func() time.Time) *ProcessedMessagesService {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// MarkProcessed records the message and reports whether it was new. Expired entries are
// evicted first, so a message seen longer than the window ago counts as new again.
func (s *ProcessedMessagesService) MarkProcessed(channelID, timestamp string) bool {
	key := messageKey{channelID: channelID, timestamp: timestamp}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = now
	s.order.PushBack(entry{key: key, at: now})
	return true
}

// Sweep evicts expired entries without inserting anything and returns how many were dropped.
func (s *ProcessedMessagesService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := s.evictLocked(s.now())
	if evicted > 0 {
		log.Debug("🧹 Evicted processed messages", "count", evicted, "remaining", len(s.seen))
	}
	return evicted
}

func (s *ProcessedMessagesService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func (s *ProcessedMessagesService) evictLocked(now time.Time) int {
	cutoff := now.Add(-s.window)
	evicted := 0
	for s.order.Len() > 0 {
		oldest := s.order.Front()
		if oldest.at.After(cutoff) {
			break
		}
		s.order.PopFront()
		if at, ok := s.seen[oldest.key]; ok && at.Equal(oldest.at) {
			delete(s.seen, oldest.key)
			evicted++
		}
	}
	return evicted
}
