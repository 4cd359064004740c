package dispatch

import (
	"context"
	"fmt"

	"chatrouter/clients"
	"chatrouter/listener"
	"chatrouter/models"
)

// Responder turns a handler's Response into at most one outbound transport call.
type Responder struct {
	transport clients.Transport
}

func NewResponder(transport clients.Transport) *Responder {
	return &Responder{transport: transport}
}

func (r *Responder) Dispatch(ctx context.Context, resp models.Response, inv *listener.InvocationContext) error {
	channelID := inv.Event.Channel()

	var err error
	switch resp.Kind {
	case models.ResponseNone:
		return nil
	case models.ResponsePlainText:
		if threadID, ok := inv.ThreadID.Get(); ok {
			_, err = r.transport.SendThreadMessage(ctx, channelID, threadID, resp.Text)
		} else {
			_, err = r.transport.SendChannelMessage(ctx, channelID, resp.Text)
		}
	case models.ResponseReactions:
		if len(resp.Reactions) == 0 {
			return nil
		}
		err = r.transport.AddReactions(ctx, models.RefTo(inv.Event), resp.Reactions...)
	case models.ResponseChannelMessage:
		_, err = r.transport.SendChannelMessage(ctx, channelID, resp.Text)
	case models.ResponseThreadMessage:
		// Without a thread, start one rooted at the triggering message
		threadID := inv.ThreadID.OrElse(inv.Event.MessageTimestamp())
		_, err = r.transport.SendThreadMessage(ctx, channelID, threadID, resp.Text)
	default:
		return fmt.Errorf("unknown response kind %d", int(resp.Kind))
	}

	if err != nil {
		return fmt.Errorf("failed to send %s response: %w", resp.Kind, err)
	}
	return nil
}
