package models

// Category selects the matching discipline and parameter roles of a handler.
type Category int

const (
	CategoryMessage Category = iota + 1
	CategoryThreadMessage
	CategoryReaction
	CategoryAction
)

func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "message"
	case CategoryThreadMessage:
		return "thread_message"
	case CategoryReaction:
		return "reaction"
	case CategoryAction:
		return "action"
	default:
		return "unknown"
	}
}

type ReactionKind int

const (
	ReactionAdded ReactionKind = iota
	ReactionRemoved
)

func (k ReactionKind) String() string {
	if k == ReactionRemoved {
		return "removed"
	}
	return "added"
}

// Event is a normalized chat event delivered by a transport. The set of implementations is closed.
type Event interface {
	Category() Category
	// Channel is the conversation the event happened in
	Channel() string
	// MessageTimestamp identifies the message the event originates from or refers to
	MessageTimestamp() string
	isEvent()
}

// TextMessage is a plain message posted to a channel (not a thread reply).
type TextMessage struct {
	Timestamp string
	ChannelID string
	SenderID  string
	Content   string
}

func (m TextMessage) Category() Category       { return CategoryMessage }
func (m TextMessage) Channel() string          { return m.ChannelID }
func (m TextMessage) MessageTimestamp() string { return m.Timestamp }
func (TextMessage) isEvent()                   {}

type ThreadMessage struct {
	Timestamp string
	ChannelID string
	SenderID  string
	ThreadID  string
	Content   string
}

func (m ThreadMessage) Category() Category       { return CategoryThreadMessage }
func (m ThreadMessage) Channel() string          { return m.ChannelID }
func (m ThreadMessage) MessageTimestamp() string { return m.Timestamp }
func (ThreadMessage) isEvent()                   {}

// Reaction is an emoji added to or removed from the message at Timestamp.
type Reaction struct {
	Timestamp string
	ChannelID string
	UserID    string
	EmojiCode string
	Kind      ReactionKind
}

func (r Reaction) Category() Category       { return CategoryReaction }
func (r Reaction) Channel() string          { return r.ChannelID }
func (r Reaction) MessageTimestamp() string { return r.Timestamp }
func (Reaction) isEvent()                   {}

// Action is a click on an interactive button attached to the message at MessageTS.
type Action struct {
	UserID      string
	ChannelID   string
	MessageTS   string
	ActionName  string
	ActionValue string
	CallbackID  string
}

func (a Action) Category() Category       { return CategoryAction }
func (a Action) Channel() string          { return a.ChannelID }
func (a Action) MessageTimestamp() string { return a.MessageTS }
func (Action) isEvent()                   {}

// MessageRef points at a message posted through a transport.
type MessageRef struct {
	ChannelID string
	Timestamp string
}

// RefTo returns a reference to the message an event originates from.
func RefTo(event Event) MessageRef {
	return MessageRef{ChannelID: event.Channel(), Timestamp: event.MessageTimestamp()}
}
