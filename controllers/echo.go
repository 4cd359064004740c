package controllers

import (
	"fmt"

	"github.com/samber/mo"

	"chatrouter/listener"
	"chatrouter/models"
)

type EchoController struct{}

func NewEchoController() *EchoController {
	return &EchoController{}
}

func (c *EchoController) Listeners() []listener.Declaration {
	return []listener.Declaration{
		listener.OnMessage(`echo (.+)`, c.Echo).
			WithParams(listener.RegexGroup(1)),
		listener.OnThreadMessage(`echo (.+)`, c.EchoInThread).
			WithParams(listener.RegexGroup(1)),
		listener.OnMessage(`whoami`, c.WhoAmI).
			WithParams(listener.UserID(), listener.ChannelID(), listener.ThreadID()),
		listener.OnThreadMessage(`whoami`, c.WhoAmI).
			WithParams(listener.UserID(), listener.ChannelID(), listener.ThreadID()).
			Named("WhoAmIInThread"),
	}
}

// Echo replies in a thread started on the triggering message
func (c *EchoController) Echo(text string) models.Response {
	return models.ThreadReply(text)
}

func (c *EchoController) EchoInThread(text string) models.Response {
	return models.PlainText(text)
}

func (c *EchoController) WhoAmI(userID, channelID string, threadID mo.Option[string]) models.Response {
	where := "channel " + channelID
	if thread, ok := threadID.Get(); ok {
		where = fmt.Sprintf("thread %s of channel %s", thread, channelID)
	}
	return models.PlainText(fmt.Sprintf("You are %s, talking to me in %s.", userID, where))
}
