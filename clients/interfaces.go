package clients

import (
	"context"

	"chatrouter/models"
)

type (
	MessageListener       func(ctx context.Context, msg models.TextMessage)
	ThreadMessageListener func(ctx context.Context, msg models.ThreadMessage)
	ReactionListener      func(ctx context.Context, reaction models.Reaction)
	ActionListener        func(ctx context.Context, action models.Action)
)

// Transport is the part of a chat connection the dispatch core needs. Implementations
// filter out the bot's own traffic before calling listeners.
type Transport interface {
	OnMessage(listener MessageListener)
	OnThreadMessage(listener ThreadMessageListener)
	OnReactionAdded(listener ReactionListener)
	OnReactionRemoved(listener ReactionListener)
	OnAction(listener ActionListener)

	SendChannelMessage(ctx context.Context, channelID, text string) (models.MessageRef, error)
	SendThreadMessage(ctx context.Context, channelID, threadID, text string) (models.MessageRef, error)
	SendTyping(ctx context.Context, channelID string) error
	AddReactions(ctx context.Context, ref models.MessageRef, codes ...string) error
}

// ChatClient is a full chat connection: the Transport plus lifecycle and the extra
// outbound calls controllers use directly.
type ChatClient interface {
	Transport

	// Start connects and delivers events until ctx is cancelled
	Start(ctx context.Context) error
	IsConnected() bool

	SendDirectMessage(ctx context.Context, userID, text string) (models.MessageRef, error)
	SendActionPrompt(ctx context.Context, channelID string, prompt models.ActionPrompt) (models.MessageRef, error)
	UpdateMessage(ctx context.Context, ref models.MessageRef, text string) (models.MessageRef, error)
}
