package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/slack-go/slack"

	slackclient "chatrouter/clients/slack"
	"chatrouter/core/log"
	"chatrouter/models"
)

// ActionSink receives decoded interactive actions
type ActionSink interface {
	EmitAction(ctx context.Context, action models.Action)
}

type SlackActionsHandler struct {
	signingSecret string
	sink          ActionSink
}

func NewSlackActionsHandler(signingSecret string, sink ActionSink) *SlackActionsHandler {
	return &SlackActionsHandler{
		signingSecret: signingSecret,
		sink:          sink,
	}
}

// HandleSlackAction accepts Slack interactive payloads delivered over HTTP
func (h *SlackActionsHandler) HandleSlackAction(w http.ResponseWriter, r *http.Request) {
	log.Info("🖱️ Slack action received", "remote_addr", r.RemoteAddr)
	var buf bytes.Buffer
	tee := io.TeeReader(r.Body, &buf)

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		log.Warn("❌ Invalid secret verifier", "error", err)
		http.Error(w, "invalid secret verifier", http.StatusUnauthorized)
		return
	}

	if _, err := io.Copy(&verifier, tee); err != nil {
		log.Error("❌ Failed to read request body", "error", err)
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		log.Warn("❌ Slack signature verification failed", "error", err)
		http.Error(w, "signature verification failed", http.StatusUnauthorized)
		return
	}

	r.Body = io.NopCloser(&buf)
	if err := r.ParseForm(); err != nil {
		log.Warn("❌ Failed to parse form body", "error", err)
		http.Error(w, "failed to parse body", http.StatusBadRequest)
		return
	}

	payload := r.PostFormValue("payload")
	if payload == "" {
		http.Error(w, "missing payload", http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		log.Warn("❌ Failed to decode interaction payload", "error", err)
		http.Error(w, "failed to decode payload", http.StatusBadRequest)
		return
	}

	action, err := slackclient.ActionFromCallback(callback)
	if err != nil {
		log.Warn("❌ Rejecting interaction payload", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info("✅ Slack action accepted", "action", action.ActionName, "value", action.ActionValue, "channel", action.ChannelID)
	w.WriteHeader(http.StatusOK)

	// Slack expects an answer within three seconds; handlers run after the acknowledgement
	go h.sink.EmitAction(context.Background(), action)
}
