package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatrouter/clients"
	"chatrouter/listener"
	"chatrouter/models"
)

func TestResponder_Dispatch(t *testing.T) {
	ctx := context.Background()
	plain := listener.NewInvocationContext(textMessage("1.0", "hi"), nil)
	thread := listener.NewInvocationContext(threadMessage("2.0", "1.0", "hi"), nil)
	action := listener.NewInvocationContext(models.Action{UserID: "U1", ChannelID: "C100", MessageTS: "5.0", ActionName: "vote", ActionValue: "yes"}, nil)

	t.Run("None", func(t *testing.T) {
		transport := &clients.MockTransport{}
		require.NoError(t, NewResponder(transport).Dispatch(ctx, models.NoResponse(), plain))
		transport.AssertExpectations(t)
		assert.Empty(t, transport.Calls)
	})

	t.Run("PlainTextInChannel", func(t *testing.T) {
		transport := &clients.MockTransport{}
		transport.On("SendChannelMessage", mock.Anything, "C100", "pong").Return(models.MessageRef{}, nil).Once()

		require.NoError(t, NewResponder(transport).Dispatch(ctx, models.PlainText("pong"), plain))
		transport.AssertExpectations(t)
	})

	t.Run("PlainTextInThread", func(t *testing.T) {
		transport := &clients.MockTransport{}
		transport.On("SendThreadMessage", mock.Anything, "C100", "1.0", "pong").Return(models.MessageRef{}, nil).Once()

		require.NoError(t, NewResponder(transport).Dispatch(ctx, models.PlainText("pong"), thread))
		transport.AssertExpectations(t)
	})

	t.Run("ChannelMessageIgnoresThread", func(t *testing.T) {
		transport := &clients.MockTransport{}
		transport.On("SendChannelMessage", mock.Anything, "C100", "everyone").Return(models.MessageRef{}, nil).Once()

		require.NoError(t, NewResponder(transport).Dispatch(ctx, models.ChannelMessage("everyone"), thread))
		transport.AssertExpectations(t)
	})

	t.Run("ThreadReplyKeepsExistingThread", func(t *testing.T) {
		transport := &clients.MockTransport{}
		transport.On("SendThreadMessage", mock.Anything, "C100", "1.0", "in thread").Return(models.MessageRef{}, nil).Once()

		require.NoError(t, NewResponder(transport).Dispatch(ctx, models.ThreadReply("in thread"), thread))
		transport.AssertExpectations(t)
	})

	t.Run("ThreadReplyStartsThreadOnMessage", func(t *testing.T) {
		transport := &clients.MockTransport{}
		transport.On("SendThreadMessage", mock.Anything, "C100", "1.0", "new thread").Return(models.MessageRef{}, nil).Once()

		require.NoError(t, NewResponder(transport).Dispatch(ctx, models.ThreadReply("new thread"), plain))
		transport.AssertExpectations(t)
	})

	t.Run("ReactionsOnOriginatingMessage", func(t *testing.T) {
		transport := &clients.MockTransport{}
		transport.On("AddReactions", mock.Anything, models.MessageRef{ChannelID: "C100", Timestamp: "5.0"}, []string{"white_check_mark", "tada"}).
			Return(nil).Once()

		require.NoError(t, NewResponder(transport).Dispatch(ctx, models.Reactions("white_check_mark", "tada"), action))
		transport.AssertExpectations(t)
	})

	t.Run("EmptyReactionsDoNothing", func(t *testing.T) {
		transport := &clients.MockTransport{}
		require.NoError(t, NewResponder(transport).Dispatch(ctx, models.Reactions(), plain))
		assert.Empty(t, transport.Calls)
	})

	t.Run("TransportErrorIsReturned", func(t *testing.T) {
		transport := &clients.MockTransport{}
		sendErr := errors.New("rate_limited")
		transport.On("SendChannelMessage", mock.Anything, "C100", "pong").Return(models.MessageRef{}, sendErr).Once()

		err := NewResponder(transport).Dispatch(ctx, models.PlainText("pong"), plain)
		require.Error(t, err)
		assert.ErrorIs(t, err, sendErr)
		assert.Contains(t, err.Error(), "plain_text")
	})

	t.Run("UnknownKind", func(t *testing.T) {
		transport := &clients.MockTransport{}
		err := NewResponder(transport).Dispatch(ctx, models.Response{Kind: models.ResponseKind(42)}, plain)
		assert.Error(t, err)
	})
}
