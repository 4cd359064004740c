package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"chatrouter/clients"
	"chatrouter/core/log"
	"chatrouter/models"
)

const (
	// threadArchiveMinutes is the auto-archive duration of threads started by the bot
	threadArchiveMinutes = 1440
	maxButtonsPerRow     = 5
	customIDSeparator    = ":"
)

// ErrNotComponentInteraction is returned for interactions that are not button clicks
var ErrNotComponentInteraction = errors.New("interaction is not a message component")

// DiscordClient implements clients.ChatClient on top of a discordgo gateway session.
// Discord threads are channels whose id equals the id of the message they were started from.
// Events from a thread report the parent channel as their channel and the thread channel as
// their thread id; the thread channel of each such message is remembered so reactions and
// edits can still reach it.
type DiscordClient struct {
	clients.Listeners

	session   *discordgo.Session
	selfID    atomic.Value
	connected atomic.Bool

	// callback ids of prompts posted by this process, keyed by message id
	callbacks *messageIndex
	// thread channel of messages seen inside threads, keyed by message id
	threads *messageIndex
}

// NewDiscordClient creates a client for the given bot token. The gateway is not opened
// until Start is called.
func NewDiscordClient(botToken string) (*DiscordClient, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsDirectMessageReactions |
		discordgo.IntentsMessageContent

	c := &DiscordClient{
		session:   session,
		callbacks: newMessageIndex(defaultIndexCapacity),
		threads:   newMessageIndex(defaultIndexCapacity),
	}
	c.selfID.Store("")

	session.AddHandler(c.onReady)
	session.AddHandler(c.onDisconnect)
	session.AddHandler(c.onMessageCreate)
	session.AddHandler(c.onReactionAdd)
	session.AddHandler(c.onReactionRemove)
	session.AddHandler(c.onInteractionCreate)

	return c, nil
}

// Start opens the gateway connection and blocks until ctx is cancelled
func (c *DiscordClient) Start(ctx context.Context) error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord gateway: %w", err)
	}
	log.Info("✅ Discord gateway opened")

	<-ctx.Done()

	c.connected.Store(false)
	if err := c.session.Close(); err != nil {
		return fmt.Errorf("failed to close Discord gateway: %w", err)
	}
	log.Info("📋 Discord gateway closed")
	return nil
}

func (c *DiscordClient) IsConnected() bool {
	return c.connected.Load()
}

func (c *DiscordClient) botUserID() string {
	return c.selfID.Load().(string)
}

func (c *DiscordClient) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r.User != nil {
		c.selfID.Store(r.User.ID)
	}
	c.connected.Store(true)
	log.Info("🤖 Discord bot ready", "user_id", c.botUserID(), "guilds", len(r.Guilds))
}

func (c *DiscordClient) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	c.connected.Store(false)
	log.Warn("⚠️ Discord gateway disconnected, waiting for reconnect")
}

func (c *DiscordClient) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	c.handleMessage(context.Background(), m.Message)
}

func (c *DiscordClient) onReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	c.handleReaction(context.Background(), r.MessageReaction, models.ReactionAdded)
}

func (c *DiscordClient) onReactionRemove(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
	c.handleReaction(context.Background(), r.MessageReaction, models.ReactionRemoved)
}

func (c *DiscordClient) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, err := c.actionFromInteraction(i.Interaction)
	if err != nil {
		log.Debug("⏭️ Dropping interaction", "error", err)
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.Warn("⚠️ Failed to acknowledge interaction", "interaction_id", i.ID, "error", err)
	}

	c.EmitAction(context.Background(), action)
}

func (c *DiscordClient) handleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil {
		return
	}
	if m.Author.ID == c.botUserID() {
		return
	}

	if parentID, ok := c.threadParent(m.ChannelID); ok {
		c.threads.Store(m.ID, m.ChannelID)
		c.EmitThreadMessage(ctx, models.ThreadMessage{
			Timestamp: m.ID,
			ChannelID: parentID,
			SenderID:  m.Author.ID,
			ThreadID:  m.ChannelID,
			Content:   m.Content,
		})
		return
	}

	c.EmitMessage(ctx, models.TextMessage{
		Timestamp: m.ID,
		ChannelID: m.ChannelID,
		SenderID:  m.Author.ID,
		Content:   m.Content,
	})
}

func (c *DiscordClient) handleReaction(ctx context.Context, r *discordgo.MessageReaction, kind models.ReactionKind) {
	if r == nil || r.UserID == c.botUserID() {
		return
	}

	channelID := r.ChannelID
	if parentID, ok := c.threadParent(r.ChannelID); ok {
		c.threads.Store(r.MessageID, r.ChannelID)
		channelID = parentID
	}

	c.EmitReaction(ctx, models.Reaction{
		Timestamp: r.MessageID,
		ChannelID: channelID,
		UserID:    r.UserID,
		EmojiCode: r.Emoji.APIName(),
		Kind:      kind,
	})
}

// threadParent returns the parent channel when channelID is a thread, preferring the
// gateway state cache
func (c *DiscordClient) threadParent(channelID string) (string, bool) {
	channel, err := c.session.State.Channel(channelID)
	if err != nil {
		channel, err = c.session.Channel(channelID)
		if err != nil {
			log.Debug("⏭️ Could not resolve channel type, treating as top-level", "channel", channelID, "error", err)
			return "", false
		}
	}
	if !channel.IsThread() || channel.ParentID == "" {
		return "", false
	}
	return channel.ParentID, true
}

// messageChannel is the channel that actually holds the referenced message
func (c *DiscordClient) messageChannel(ref models.MessageRef) string {
	if threadID, ok := c.threads.Load(ref.Timestamp); ok {
		return threadID
	}
	return ref.ChannelID
}

func (c *DiscordClient) actionFromInteraction(i *discordgo.Interaction) (models.Action, error) {
	if i == nil || i.Type != discordgo.InteractionMessageComponent {
		return models.Action{}, ErrNotComponentInteraction
	}

	var userID string
	switch {
	case i.Member != nil && i.Member.User != nil:
		userID = i.Member.User.ID
	case i.User != nil:
		userID = i.User.ID
	}

	name, value, ok := ParseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return models.Action{}, fmt.Errorf("malformed custom id %q", i.MessageComponentData().CustomID)
	}

	var messageID string
	if i.Message != nil {
		messageID = i.Message.ID
	}
	if userID == "" || i.ChannelID == "" || messageID == "" {
		return models.Action{}, fmt.Errorf("incomplete interaction %s", i.ID)
	}

	callbackID := messageID
	if stored, found := c.callbacks.Load(messageID); found {
		callbackID = stored
	}

	channelID := i.ChannelID
	if parentID, ok := c.threadParent(i.ChannelID); ok {
		c.threads.Store(messageID, i.ChannelID)
		channelID = parentID
	}

	return models.Action{
		UserID:      userID,
		ChannelID:   channelID,
		MessageTS:   messageID,
		ActionName:  name,
		ActionValue: value,
		CallbackID:  callbackID,
	}, nil
}

// CustomID encodes a button as "name:value"
func CustomID(name, value string) string {
	return name + customIDSeparator + value
}

// ParseCustomID splits a button custom id at the first separator
func ParseCustomID(customID string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(customID, customIDSeparator)
	if !ok || name == "" || value == "" {
		return "", "", false
	}
	return name, value, true
}

func (c *DiscordClient) SendChannelMessage(ctx context.Context, channelID, text string) (models.MessageRef, error) {
	msg, err := c.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	return refOf(msg), nil
}

// SendThreadMessage posts into the thread whose id is threadID. When no such thread exists yet,
// a thread is started on the message threadID in channelID.
func (c *DiscordClient) SendThreadMessage(ctx context.Context, channelID, threadID, text string) (models.MessageRef, error) {
	msg, err := c.session.ChannelMessageSend(threadID, text, discordgo.WithContext(ctx))
	if err == nil {
		return refOf(msg), nil
	}
	log.Debug("🧵 Thread not found, starting one", "channel", channelID, "message", threadID, "error", err)

	thread, err := c.session.MessageThreadStart(channelID, threadID, threadName(text), threadArchiveMinutes, discordgo.WithContext(ctx))
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("failed to start thread on %s/%s: %w", channelID, threadID, err)
	}
	return c.SendChannelMessage(ctx, thread.ID, text)
}

func (c *DiscordClient) SendTyping(ctx context.Context, channelID string) error {
	if err := c.session.ChannelTyping(channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send typing to %s: %w", channelID, err)
	}
	return nil
}

func (c *DiscordClient) AddReactions(ctx context.Context, ref models.MessageRef, codes ...string) error {
	channelID := c.messageChannel(ref)
	for _, code := range codes {
		if err := c.session.MessageReactionAdd(channelID, ref.Timestamp, code, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to add reaction %s to %s/%s: %w", code, ref.ChannelID, ref.Timestamp, err)
		}
	}
	return nil
}

func (c *DiscordClient) SendDirectMessage(ctx context.Context, userID, text string) (models.MessageRef, error) {
	channel, err := c.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("failed to open direct channel with %s: %w", userID, err)
	}
	return c.SendChannelMessage(ctx, channel.ID, text)
}

func (c *DiscordClient) SendActionPrompt(ctx context.Context, channelID string, prompt models.ActionPrompt) (models.MessageRef, error) {
	msg, err := c.session.ChannelMessageSendComplex(channelID, promptMessage(prompt), discordgo.WithContext(ctx))
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("failed to send action prompt to %s: %w", channelID, err)
	}
	if prompt.CallbackID != "" {
		c.callbacks.Store(msg.ID, prompt.CallbackID)
	}
	return refOf(msg), nil
}

func (c *DiscordClient) UpdateMessage(ctx context.Context, ref models.MessageRef, text string) (models.MessageRef, error) {
	msg, err := c.session.ChannelMessageEdit(c.messageChannel(ref), ref.Timestamp, text, discordgo.WithContext(ctx))
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("failed to update message %s/%s: %w", ref.ChannelID, ref.Timestamp, err)
	}
	return refOf(msg), nil
}

func promptMessage(prompt models.ActionPrompt) *discordgo.MessageSend {
	content := prompt.Text
	if prompt.Title != "" {
		content = "**" + prompt.Title + "**\n" + prompt.Text
	}

	var rows []discordgo.MessageComponent
	for start := 0; start < len(prompt.Buttons); start += maxButtonsPerRow {
		end := min(start+maxButtonsPerRow, len(prompt.Buttons))
		row := discordgo.ActionsRow{}
		for _, b := range prompt.Buttons[start:end] {
			row.Components = append(row.Components, discordgo.Button{
				Label:    b.Text,
				Style:    discordgo.PrimaryButton,
				CustomID: CustomID(b.Name, b.Value),
			})
		}
		rows = append(rows, row)
	}

	return &discordgo.MessageSend{Content: content, Components: rows}
}

func threadName(text string) string {
	const maxLen = 50
	name := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	if name == "" {
		return "Reply"
	}
	if runes := []rune(name); len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return name
}

func refOf(msg *discordgo.Message) models.MessageRef {
	return models.MessageRef{ChannelID: msg.ChannelID, Timestamp: msg.ID}
}
