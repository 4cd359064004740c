package clients

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chatrouter/models"
)

// MockTransport is a mock implementation of ChatClient. Subscriptions are recorded in the
// embedded Listeners so tests can emit events through it.
type MockTransport struct {
	mock.Mock
	Listeners
}

func (m *MockTransport) SendChannelMessage(ctx context.Context, channelID, text string) (models.MessageRef, error) {
	args := m.Called(ctx, channelID, text)
	return args.Get(0).(models.MessageRef), args.Error(1)
}

func (m *MockTransport) SendThreadMessage(ctx context.Context, channelID, threadID, text string) (models.MessageRef, error) {
	args := m.Called(ctx, channelID, threadID, text)
	return args.Get(0).(models.MessageRef), args.Error(1)
}

func (m *MockTransport) SendTyping(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockTransport) AddReactions(ctx context.Context, ref models.MessageRef, codes ...string) error {
	args := m.Called(ctx, ref, codes)
	return args.Error(0)
}

func (m *MockTransport) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransport) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockTransport) SendDirectMessage(ctx context.Context, userID, text string) (models.MessageRef, error) {
	args := m.Called(ctx, userID, text)
	return args.Get(0).(models.MessageRef), args.Error(1)
}

func (m *MockTransport) SendActionPrompt(ctx context.Context, channelID string, prompt models.ActionPrompt) (models.MessageRef, error) {
	args := m.Called(ctx, channelID, prompt)
	return args.Get(0).(models.MessageRef), args.Error(1)
}

func (m *MockTransport) UpdateMessage(ctx context.Context, ref models.MessageRef, text string) (models.MessageRef, error) {
	args := m.Called(ctx, ref, text)
	return args.Get(0).(models.MessageRef), args.Error(1)
}
