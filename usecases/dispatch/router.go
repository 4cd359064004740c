package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/mo"

	"chatrouter/clients"
	"chatrouter/core/log"
	"chatrouter/listener"
	"chatrouter/models"
)

// ProcessedMessages remembers which channel messages were already delivered.
type ProcessedMessages interface {
	MarkProcessed(channelID, timestamp string) bool
}

// Router matches incoming events against the registered descriptors and invokes every match
// on the calling goroutine, in registration order.
type Router struct {
	transport clients.Transport
	processed ProcessedMessages
	responder *Responder
	reporter  *ErrorReporter

	mu          sync.RWMutex
	descriptors map[models.Category][]*listener.Descriptor

	subscribeOnce sync.Once
}

func NewRouter(transport clients.Transport, processed ProcessedMessages) *Router {
	return &Router{
		transport:   transport,
		processed:   processed,
		responder:   NewResponder(transport),
		reporter:    NewErrorReporter(transport),
		descriptors: make(map[models.Category][]*listener.Descriptor),
	}
}

// Add appends descriptors. Dispatches already in flight keep the table they started with.
func (r *Router) Add(descriptors ...*listener.Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range descriptors {
		current := r.descriptors[d.Category()]
		next := make([]*listener.Descriptor, len(current), len(current)+1)
		copy(next, current)
		r.descriptors[d.Category()] = append(next, d)
	}
}

func (r *Router) Descriptors(category models.Category) []*listener.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descriptors[category]
}

// Subscribe hooks the router into the transport. Calling it more than once is a no-op.
func (r *Router) Subscribe() {
	r.subscribeOnce.Do(func() {
		r.transport.OnMessage(r.HandleMessage)
		r.transport.OnThreadMessage(r.HandleThreadMessage)
		r.transport.OnReactionAdded(r.HandleReaction)
		r.transport.OnReactionRemoved(r.HandleReaction)
		r.transport.OnAction(r.HandleAction)
		log.Info("📡 Router subscribed to transport events")
	})
}

func (r *Router) HandleMessage(ctx context.Context, msg models.TextMessage) {
	if msg.Timestamp == "" || msg.ChannelID == "" {
		log.Debug("⏭️ Dropping malformed message", "channel", msg.ChannelID, "ts", msg.Timestamp)
		return
	}
	if !r.processed.MarkProcessed(msg.ChannelID, msg.Timestamp) {
		log.Debug("⏭️ Skipping already processed message", "channel", msg.ChannelID, "ts", msg.Timestamp)
		return
	}

	for _, d := range r.Descriptors(models.CategoryMessage) {
		if match, ok := d.MatchText(msg.Content); ok {
			r.dispatch(ctx, d, msg, match)
		}
	}
}

func (r *Router) HandleThreadMessage(ctx context.Context, msg models.ThreadMessage) {
	if msg.Timestamp == "" || msg.ChannelID == "" || msg.ThreadID == "" {
		log.Debug("⏭️ Dropping malformed thread message", "channel", msg.ChannelID, "ts", msg.Timestamp, "thread", msg.ThreadID)
		return
	}

	for _, d := range r.Descriptors(models.CategoryThreadMessage) {
		if match, ok := d.MatchText(msg.Content); ok {
			r.dispatch(ctx, d, msg, match)
		}
	}
}

func (r *Router) HandleReaction(ctx context.Context, reaction models.Reaction) {
	if reaction.Timestamp == "" || reaction.ChannelID == "" {
		log.Debug("⏭️ Dropping malformed reaction", "channel", reaction.ChannelID, "ts", reaction.Timestamp)
		return
	}

	for _, d := range r.Descriptors(models.CategoryReaction) {
		if d.MatchReaction(reaction.EmojiCode, reaction.Kind) {
			r.dispatch(ctx, d, reaction, nil)
		}
	}
}

func (r *Router) HandleAction(ctx context.Context, action models.Action) {
	if action.MessageTS == "" || action.ChannelID == "" {
		log.Debug("⏭️ Dropping malformed action", "channel", action.ChannelID, "ts", action.MessageTS)
		return
	}

	for _, d := range r.Descriptors(models.CategoryAction) {
		if d.MatchAction(action.ActionName, action.ActionValue) {
			r.dispatch(ctx, d, action, nil)
		}
	}
}

// dispatch runs one handler. Failures are reported to the channel and never reach the caller.
func (r *Router) dispatch(ctx context.Context, d *listener.Descriptor, event models.Event, match []mo.Option[string]) {
	inv := listener.NewInvocationContext(event, match)
	log.Debug("🎯 Handling event",
		"handler", d.Name(),
		"category", event.Category().String(),
		"channel", event.Channel(),
		"invocation", inv.ID)

	if err := r.invoke(ctx, d, inv); err != nil {
		log.Error("❌ Can't handle event",
			"handler", d.Name(),
			"category", event.Category().String(),
			"channel", event.Channel(),
			"invocation", inv.ID,
			"error", err)
		r.reporter.Report(ctx, event.Channel(), err)
	}
}

func (r *Router) invoke(ctx context.Context, d *listener.Descriptor, inv *listener.InvocationContext) (err error) {
	// Handler panics are caught by the descriptor; this covers the transport calls
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while dispatching %s: %v", d.Name(), rec)
		}
	}()

	if d.SendTyping() {
		if err := r.transport.SendTyping(ctx, inv.Event.Channel()); err != nil {
			return fmt.Errorf("failed to send typing indicator: %w", err)
		}
	}

	resp, err := d.Invoke(ctx, inv)
	if err != nil {
		return err
	}

	return r.responder.Dispatch(ctx, resp, inv)
}
