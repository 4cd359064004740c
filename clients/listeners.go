package clients

import (
	"context"
	"sync"

	"chatrouter/models"
)

// Listeners keeps the subscriptions of a transport and fans events out to them.
// Transports embed it to satisfy the On* half of Transport.
type Listeners struct {
	mu               sync.RWMutex
	messages         []MessageListener
	threadMessages   []ThreadMessageListener
	reactionsAdded   []ReactionListener
	reactionsRemoved []ReactionListener
	actions          []ActionListener
}

func (l *Listeners) OnMessage(listener MessageListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, listener)
}

func (l *Listeners) OnThreadMessage(listener ThreadMessageListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.threadMessages = append(l.threadMessages, listener)
}

func (l *Listeners) OnReactionAdded(listener ReactionListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reactionsAdded = append(l.reactionsAdded, listener)
}

func (l *Listeners) OnReactionRemoved(listener ReactionListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reactionsRemoved = append(l.reactionsRemoved, listener)
}

func (l *Listeners) OnAction(listener ActionListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = append(l.actions, listener)
}

func (l *Listeners) EmitMessage(ctx context.Context, msg models.TextMessage) {
	l.mu.RLock()
	listeners := l.messages
	l.mu.RUnlock()
	for _, listener := range listeners {
		listener(ctx, msg)
	}
}

func (l *Listeners) EmitThreadMessage(ctx context.Context, msg models.ThreadMessage) {
	l.mu.RLock()
	listeners := l.threadMessages
	l.mu.RUnlock()
	for _, listener := range listeners {
		listener(ctx, msg)
	}
}

// EmitReaction routes by kind to the added or removed subscriptions.
func (l *Listeners) EmitReaction(ctx context.Context, reaction models.Reaction) {
	l.mu.RLock()
	listeners := l.reactionsAdded
	if reaction.Kind == models.ReactionRemoved {
		listeners = l.reactionsRemoved
	}
	l.mu.RUnlock()
	for _, listener := range listeners {
		listener(ctx, reaction)
	}
}

func (l *Listeners) EmitAction(ctx context.Context, action models.Action) {
	l.mu.RLock()
	listeners := l.actions
	l.mu.RUnlock()
	for _, listener := range listeners {
		listener(ctx, action)
	}
}
