package controllers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatrouter/clients"
	"chatrouter/listener"
	"chatrouter/services/processedmessages"
	"chatrouter/usecases/dispatch"
)

// setupControllers wires the controllers to a fresh mock transport through the real registry and router
func setupControllers(t *testing.T, controllers ...listener.Controller) *clients.MockTransport {
	t.Helper()
	transport := &clients.MockTransport{}
	register(t, transport, controllers...)
	return transport
}

func register(t *testing.T, transport *clients.MockTransport, controllers ...listener.Controller) {
	t.Helper()
	router := dispatch.NewRouter(transport, processedmessages.NewProcessedMessagesService(15*time.Minute))
	require.NoError(t, dispatch.NewRegistry(router, 2).Register(controllers...))
}

var anyCtx = mock.Anything

func background() context.Context { return context.Background() }
