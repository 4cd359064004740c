package slack

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"chatrouter/clients"
	"chatrouter/core/log"
	"chatrouter/models"
	"chatrouter/utils"
)

// SlackClient implements clients.ChatClient on top of the slack-go Web API and socket mode
type SlackClient struct {
	clients.Listeners

	api    *slack.Client
	socket *socketmode.Client

	botUserID string
	botID     string
	connected atomic.Bool
}

// NewSlackClient creates a client using the bot token for Web API calls and the app-level
// token for the socket mode connection
func NewSlackClient(botToken, appToken string) *SlackClient {
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	return &SlackClient{
		api:    api,
		socket: socketmode.New(api),
	}
}

// Start resolves the bot identity and runs the socket mode loop until ctx is cancelled
func (c *SlackClient) Start(ctx context.Context) error {
	auth, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate slack bot: %w", err)
	}
	c.botUserID = auth.UserID
	c.botID = auth.BotID
	log.Info("🤖 Slack bot authenticated", "user_id", auth.UserID, "team", auth.Team)

	go c.consumeEvents(ctx)

	return c.socket.RunContext(ctx)
}

func (c *SlackClient) IsConnected() bool {
	return c.connected.Load()
}

func (c *SlackClient) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-c.socket.Events:
			if !ok {
				return
			}
			c.handleSocketEvent(ctx, evt)
		}
	}
}

func (c *SlackClient) handleSocketEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Info("🔌 Connecting to Slack socket mode")
	case socketmode.EventTypeConnected:
		c.connected.Store(true)
		log.Info("✅ Connected to Slack socket mode")
	case socketmode.EventTypeConnectionError:
		c.connected.Store(false)
		log.Warn("⚠️ Slack socket mode connection lost, waiting for reconnect")
	case socketmode.EventTypeEventsAPI:
		eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			log.Debug("⏭️ Ignoring unexpected events API payload", "type", evt.Type)
			return
		}
		if evt.Request != nil {
			c.socket.Ack(*evt.Request)
		}
		c.HandleEventsAPIEvent(ctx, eventsAPIEvent)
	case socketmode.EventTypeInteractive:
		callback, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			log.Debug("⏭️ Ignoring unexpected interactive payload", "type", evt.Type)
			return
		}
		if evt.Request != nil {
			c.socket.Ack(*evt.Request)
		}
		action, err := ActionFromCallback(callback)
		if err != nil {
			log.Debug("⏭️ Dropping undecodable interaction", "error", err)
			return
		}
		c.EmitAction(ctx, action)
	}
}

// HandleEventsAPIEvent maps a callback event to the normalized model and notifies listeners
func (c *SlackClient) HandleEventsAPIEvent(ctx context.Context, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}

	switch inner := event.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		c.handleMessageEvent(ctx, inner)
	case *slackevents.ReactionAddedEvent:
		c.handleReaction(ctx, inner.User, inner.Reaction, inner.Item.Type, inner.Item.Channel, inner.Item.Timestamp, models.ReactionAdded)
	case *slackevents.ReactionRemovedEvent:
		c.handleReaction(ctx, inner.User, inner.Reaction, inner.Item.Type, inner.Item.Channel, inner.Item.Timestamp, models.ReactionRemoved)
	default:
		log.Debug("⏭️ Ignoring unsupported Slack event", "type", event.InnerEvent.Type)
	}
}

func (c *SlackClient) handleMessageEvent(ctx context.Context, ev *slackevents.MessageEvent) {
	if c.isSelf(ev.User, ev.BotID) {
		return
	}
	// Edits, deletions and joins carry a subtype and are not new messages
	if ev.SubType != "" {
		log.Debug("⏭️ Ignoring message with subtype", "subtype", ev.SubType, "channel", ev.Channel)
		return
	}

	if ev.ThreadTimeStamp != "" && ev.ThreadTimeStamp != ev.TimeStamp {
		c.EmitThreadMessage(ctx, models.ThreadMessage{
			Timestamp: ev.TimeStamp,
			ChannelID: ev.Channel,
			SenderID:  ev.User,
			ThreadID:  ev.ThreadTimeStamp,
			Content:   ev.Text,
		})
		return
	}

	c.EmitMessage(ctx, models.TextMessage{
		Timestamp: ev.TimeStamp,
		ChannelID: ev.Channel,
		SenderID:  ev.User,
		Content:   ev.Text,
	})
}

func (c *SlackClient) handleReaction(
	ctx context.Context,
	user, reaction, itemType, channel, ts string,
	kind models.ReactionKind,
) {
	if c.isSelf(user, "") {
		return
	}
	if itemType != "message" {
		log.Debug("⏭️ Ignoring reaction on non-message item", "item_type", itemType)
		return
	}

	c.EmitReaction(ctx, models.Reaction{
		Timestamp: ts,
		ChannelID: channel,
		UserID:    user,
		EmojiCode: reaction,
		Kind:      kind,
	})
}

func (c *SlackClient) isSelf(userID, botID string) bool {
	return (c.botUserID != "" && userID == c.botUserID) || (c.botID != "" && botID == c.botID)
}

// SendChannelMessage posts text to a channel
func (c *SlackClient) SendChannelMessage(ctx context.Context, channelID, text string) (models.MessageRef, error) {
	return c.postMessage(ctx, channelID, slack.MsgOptionText(utils.ConvertMarkdownToSlack(text), false))
}

// SendThreadMessage replies in the thread rooted at threadID
func (c *SlackClient) SendThreadMessage(ctx context.Context, channelID, threadID, text string) (models.MessageRef, error) {
	return c.postMessage(ctx, channelID,
		slack.MsgOptionText(utils.ConvertMarkdownToSlack(text), false),
		slack.MsgOptionTS(threadID),
	)
}

// SendTyping is a no-op: the Web API has no typing indicator
func (c *SlackClient) SendTyping(ctx context.Context, channelID string) error {
	log.Debug("⌨️ Typing indicator not supported over socket mode", "channel", channelID)
	return nil
}

// AddReactions adds each code to the referenced message, stopping at the first failure
func (c *SlackClient) AddReactions(ctx context.Context, ref models.MessageRef, codes ...string) error {
	item := slack.NewRefToMessage(ref.ChannelID, ref.Timestamp)
	for _, code := range codes {
		if err := c.api.AddReactionContext(ctx, code, item); err != nil {
			return fmt.Errorf("failed to add reaction %s to %s/%s: %w", code, ref.ChannelID, ref.Timestamp, err)
		}
	}
	return nil
}

// SendDirectMessage opens (or reuses) the IM channel with userID and posts text there
func (c *SlackClient) SendDirectMessage(ctx context.Context, userID, text string) (models.MessageRef, error) {
	channel, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("failed to open direct conversation with %s: %w", userID, err)
	}
	return c.SendChannelMessage(ctx, channel.ID, text)
}

// SendActionPrompt posts a message with one button per prompt button. The action block id
// carries the prompt's callback id.
func (c *SlackClient) SendActionPrompt(ctx context.Context, channelID string, prompt models.ActionPrompt) (models.MessageRef, error) {
	return c.postMessage(ctx, channelID,
		slack.MsgOptionText(prompt.Text, false),
		slack.MsgOptionBlocks(promptBlocks(prompt)...),
	)
}

// UpdateMessage replaces the text of a message posted by the bot
func (c *SlackClient) UpdateMessage(ctx context.Context, ref models.MessageRef, text string) (models.MessageRef, error) {
	channel, ts, _, err := c.api.UpdateMessageContext(ctx, ref.ChannelID, ref.Timestamp,
		slack.MsgOptionText(utils.ConvertMarkdownToSlack(text), false),
	)
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("failed to update message %s/%s: %w", ref.ChannelID, ref.Timestamp, err)
	}
	return models.MessageRef{ChannelID: channel, Timestamp: ts}, nil
}

func (c *SlackClient) postMessage(ctx context.Context, channelID string, options ...slack.MsgOption) (models.MessageRef, error) {
	log.Debug("📤 Sending Slack message", "channel", channelID)
	channel, ts, err := c.api.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("failed to post message to %s: %w", channelID, err)
	}
	return models.MessageRef{ChannelID: channel, Timestamp: ts}, nil
}

func promptBlocks(prompt models.ActionPrompt) []slack.Block {
	var blocks []slack.Block
	if prompt.Title != "" {
		blocks = append(blocks, slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, prompt.Title, false, false),
		))
	}
	if prompt.Text != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, utils.ConvertMarkdownToSlack(prompt.Text), false, false),
			nil, nil,
		))
	}

	buttons := make([]slack.BlockElement, 0, len(prompt.Buttons))
	for _, b := range prompt.Buttons {
		buttons = append(buttons, slack.NewButtonBlockElement(
			ActionID(b.Name, b.Value), b.Value,
			slack.NewTextBlockObject(slack.PlainTextType, b.Text, false, false),
		))
	}
	if len(buttons) > 0 {
		blocks = append(blocks, slack.NewActionBlock(prompt.CallbackID, buttons...))
	}
	return blocks
}
