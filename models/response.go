package models

type ResponseKind int

const (
	ResponseNone ResponseKind = iota
	ResponsePlainText
	ResponseReactions
	ResponseChannelMessage
	ResponseThreadMessage
)

func (k ResponseKind) String() string {
	switch k {
	case ResponsePlainText:
		return "plain_text"
	case ResponseReactions:
		return "reactions"
	case ResponseChannelMessage:
		return "channel_message"
	case ResponseThreadMessage:
		return "thread_message"
	default:
		return "none"
	}
}

// Response is what a handler asks to be done once it returns. The zero value does nothing.
type Response struct {
	Kind      ResponseKind
	Text      string
	Reactions []string
}

func NoResponse() Response {
	return Response{}
}

// PlainText replies where the event happened: in the thread for thread replies, in the channel otherwise.
func PlainText(text string) Response {
	return Response{Kind: ResponsePlainText, Text: text}
}

// Reactions adds each code as a reaction to the originating message.
func Reactions(codes ...string) Response {
	return Response{Kind: ResponseReactions, Reactions: append([]string(nil), codes...)}
}

// ChannelMessage always posts to the channel, even when triggered from a thread.
func ChannelMessage(text string) Response {
	return Response{Kind: ResponseChannelMessage, Text: text}
}

// ThreadReply replies in the event's thread, starting one on the triggering message if needed.
func ThreadReply(text string) Response {
	return Response{Kind: ResponseThreadMessage, Text: text}
}
