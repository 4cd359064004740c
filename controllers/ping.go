package controllers

import (
	"chatrouter/listener"
	"chatrouter/models"
)

// PingController answers liveness checks in chat
type PingController struct{}

func NewPingController() *PingController {
	return &PingController{}
}

func (c *PingController) Listeners() []listener.Declaration {
	return []listener.Declaration{
		listener.OnMessage(`(?i)ping`, c.Ping).WithTyping(),
	}
}

func (c *PingController) Ping() models.Response {
	return models.PlainText("pong")
}
