package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"chatrouter/models"
)

func TestListeners_EmitReactionRoutesByKind(t *testing.T) {
	var l Listeners
	var added, removed []string

	l.OnReactionAdded(func(_ context.Context, r models.Reaction) { added = append(added, r.EmojiCode) })
	l.OnReactionRemoved(func(_ context.Context, r models.Reaction) { removed = append(removed, r.EmojiCode) })

	l.EmitReaction(context.Background(), models.Reaction{EmojiCode: "tada", Kind: models.ReactionAdded})
	l.EmitReaction(context.Background(), models.Reaction{EmojiCode: "eyes", Kind: models.ReactionRemoved})

	assert.Equal(t, []string{"tada"}, added)
	assert.Equal(t, []string{"eyes"}, removed)
}

func TestListeners_EmitInSubscriptionOrder(t *testing.T) {
	var l Listeners
	var calls []string

	l.OnMessage(func(context.Context, models.TextMessage) { calls = append(calls, "first") })
	l.OnMessage(func(context.Context, models.TextMessage) { calls = append(calls, "second") })
	l.OnThreadMessage(func(context.Context, models.ThreadMessage) { calls = append(calls, "thread") })
	l.OnAction(func(context.Context, models.Action) { calls = append(calls, "action") })

	l.EmitMessage(context.Background(), models.TextMessage{})
	l.EmitThreadMessage(context.Background(), models.ThreadMessage{})
	l.EmitAction(context.Background(), models.Action{})

	assert.Equal(t, []string{"first", "second", "thread", "action"}, calls)
}

func TestListeners_NoSubscribers(t *testing.T) {
	var l Listeners
	assert.NotPanics(t, func() {
		l.EmitMessage(context.Background(), models.TextMessage{})
		l.EmitReaction(context.Background(), models.Reaction{Kind: models.ReactionRemoved})
	})
}
