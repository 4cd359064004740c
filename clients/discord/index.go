package discord

import (
	"sync"

	"github.com/gammazero/deque"
)

// defaultIndexCapacity bounds how many messages an index remembers
const defaultIndexCapacity = 10000

// messageIndex maps message ids to a string, forgetting the oldest entries beyond capacity
type messageIndex struct {
	mu       sync.Mutex
	capacity int
	values   map[string]string
	order    *deque.Deque[string]
}

func newMessageIndex(capacity int) *messageIndex {
	return &messageIndex{
		capacity: capacity,
		values:   make(map[string]string),
		order:    deque.New[string](),
	}
}

func (i *messageIndex) Store(messageID, value string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.values[messageID]; !ok {
		i.order.PushBack(messageID)
	}
	i.values[messageID] = value

	for i.order.Len() > i.capacity {
		delete(i.values, i.order.PopFront())
	}
}

func (i *messageIndex) Load(messageID string) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	value, ok := i.values[messageID]
	return value, ok
}
