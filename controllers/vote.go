package controllers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"chatrouter/core"
	"chatrouter/core/log"
	"chatrouter/listener"
	"chatrouter/models"
)

const voteAction = "vote"

var voteOptions = []models.ActionButton{
	{Name: voteAction, Text: "Yes", Value: "yes"},
	{Name: voteAction, Text: "No", Value: "no"},
}

// PromptSender posts interactive button prompts
type PromptSender interface {
	SendActionPrompt(ctx context.Context, channelID string, prompt models.ActionPrompt) (models.MessageRef, error)
}

type poll struct {
	callbackID string
	subject    string
	ballots    map[string]string // user -> value
	upvotes    int
}

// VoteEmojis holds the transport-specific reaction codes the controller uses. Slack takes
// short codes ("+1"), Discord takes the unicode emoji itself.
type VoteEmojis struct {
	// Ballot is added to the message that started a poll
	Ballot string
	// Upvote reactions on a poll message are counted
	Upvote string
}

// VoteController runs yes/no polls through interactive buttons. Polls live in memory and are
// keyed by the message carrying the buttons.
type VoteController struct {
	sender PromptSender
	emojis VoteEmojis

	mu    sync.Mutex
	polls map[models.MessageRef]*poll
}

func NewVoteController(sender PromptSender, emojis VoteEmojis) *VoteController {
	return &VoteController{
		sender: sender,
		emojis: emojis,
		polls:  make(map[models.MessageRef]*poll),
	}
}

func (c *VoteController) Listeners() []listener.Declaration {
	return []listener.Declaration{
		listener.OnMessage(`vote (.+)`, c.StartPoll).
			WithParams(listener.Auto(), listener.ChannelID(), listener.RegexGroup(1)),
		listener.OnAction(voteAction, listener.AnyValue, c.CastVote).
			WithParams(listener.FullEvent()),
		listener.OnThreadMessage(`results`, c.Results).
			WithParams(listener.ChannelID(), listener.ThreadID()),
		listener.OnReaction(c.emojis.Upvote, c.Upvote),
		listener.OnReactionRemoved(c.emojis.Upvote, c.Downvote),
	}
}

func (c *VoteController) StartPoll(ctx context.Context, channelID, subject string) (models.Response, error) {
	callbackID := core.NewID("cb")
	ref, err := c.sender.SendActionPrompt(ctx, channelID, models.ActionPrompt{
		CallbackID: callbackID,
		Title:      "Poll",
		Text:       subject,
		Buttons:    voteOptions,
	})
	if err != nil {
		return models.NoResponse(), fmt.Errorf("failed to post poll: %w", err)
	}

	c.mu.Lock()
	c.polls[ref] = &poll{callbackID: callbackID, subject: subject, ballots: make(map[string]string)}
	c.mu.Unlock()

	log.Info("🗳️ Poll started", "channel", channelID, "message", ref.Timestamp, "callback_id", callbackID)
	return models.Reactions(c.emojis.Ballot), nil
}

func (c *VoteController) CastVote(action models.Action) (models.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.polls[models.RefTo(action)]
	if !ok {
		return models.NoResponse(), core.NewStatusError(http.StatusNotFound, "This poll is no longer open.")
	}
	if _, voted := p.ballots[action.UserID]; voted {
		return models.NoResponse(), core.NewStatusError(http.StatusConflict, "You already voted in this poll.")
	}
	p.ballots[action.UserID] = action.ActionValue

	return models.ThreadReply(fmt.Sprintf("%s voted %s. %s", action.UserID, action.ActionValue, p.tally())), nil
}

// Results reports the tally of the poll the thread was started on
func (c *VoteController) Results(channelID, threadID string) (models.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.polls[models.MessageRef{ChannelID: channelID, Timestamp: threadID}]
	if !ok {
		return models.NoResponse(), core.NewStatusError(http.StatusNotFound, "There is no poll in this thread.")
	}
	return models.PlainText(fmt.Sprintf("*%s*\n%s", p.subject, p.tally())), nil
}

func (c *VoteController) Upvote(reaction models.Reaction) {
	c.adjustUpvotes(reaction, 1)
}

func (c *VoteController) Downvote(reaction models.Reaction) {
	c.adjustUpvotes(reaction, -1)
}

func (c *VoteController) adjustUpvotes(reaction models.Reaction, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.polls[models.RefTo(reaction)]; ok {
		p.upvotes = max(p.upvotes+delta, 0)
	}
}

func (p *poll) tally() string {
	counts := make(map[string]int, len(voteOptions))
	for _, value := range p.ballots {
		counts[value]++
	}

	values := make([]string, 0, len(counts))
	for _, option := range voteOptions {
		values = append(values, fmt.Sprintf("%s=%d", option.Value, counts[option.Value]))
		delete(counts, option.Value)
	}
	others := make([]string, 0, len(counts))
	for value := range counts {
		others = append(others, value)
	}
	sort.Strings(others)
	for _, value := range others {
		values = append(values, fmt.Sprintf("%s=%d", value, counts[value]))
	}

	return fmt.Sprintf("Tally: %s (upvotes: %d)", strings.Join(values, " "), p.upvotes)
}
