package controllers

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"chatrouter/models"
)

func TestPingController(t *testing.T) {
	transport := setupControllers(t, NewPingController())
	var order []string
	transport.On("SendTyping", anyCtx, "C1").Return(nil).Run(func(mock.Arguments) {
		order = append(order, "typing")
	}).Once()
	transport.On("SendChannelMessage", anyCtx, "C1", "pong").Return(models.MessageRef{}, nil).Run(func(mock.Arguments) {
		order = append(order, "pong")
	}).Once()

	transport.EmitMessage(background(), models.TextMessage{Timestamp: "1.1", ChannelID: "C1", SenderID: "U1", Content: "PING"})
	transport.EmitMessage(background(), models.TextMessage{Timestamp: "1.2", ChannelID: "C1", SenderID: "U1", Content: "ping pong"})

	transport.AssertExpectations(t)
	if len(order) != 2 || order[0] != "typing" || order[1] != "pong" {
		t.Fatalf("unexpected call order %v", order)
	}
}
