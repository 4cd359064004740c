package listener

import (
	"github.com/samber/mo"

	"chatrouter/core"
	"chatrouter/models"
)

// InvocationContext is built for a single matched event and owned by one invocation.
type InvocationContext struct {
	ID       string
	Event    models.Event
	UserID   string
	Text     mo.Option[string]
	ThreadID mo.Option[string]
	// Match holds the pattern submatches, nil when no pattern is active.
	// Groups that did not take part in the match are None.
	Match []mo.Option[string]
}

func NewInvocationContext(event models.Event, match []mo.Option[string]) *InvocationContext {
	inv := &InvocationContext{
		ID:       core.NewID("inv"),
		Event:    event,
		Text:     mo.None[string](),
		ThreadID: mo.None[string](),
		Match:    match,
	}

	switch e := event.(type) {
	case models.TextMessage:
		inv.UserID = e.SenderID
		inv.Text = mo.Some(e.Content)
	case models.ThreadMessage:
		inv.UserID = e.SenderID
		inv.Text = mo.Some(e.Content)
		inv.ThreadID = mo.Some(e.ThreadID)
	case models.Reaction:
		inv.UserID = e.UserID
	case models.Action:
		inv.UserID = e.UserID
	}

	return inv
}

// Group returns capture group n, or None when no pattern is active or the group did not take part.
func (inv *InvocationContext) Group(n int) mo.Option[string] {
	if n < 0 || n >= len(inv.Match) {
		return mo.None[string]()
	}
	return inv.Match[n]
}
