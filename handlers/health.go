package handlers

import (
	"encoding/json"
	"net/http"

	"chatrouter/core/log"
)

// ConnectionChecker reports whether the chat transport is connected
type ConnectionChecker interface {
	IsConnected() bool
}

type HealthHandler struct {
	checker ConnectionChecker
}

func NewHealthHandler(checker ConnectionChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if !h.checker.IsConnected() {
		status, code = "down", http.StatusServiceUnavailable
		log.Debug("💔 Health check reports transport down")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(healthResponse{Status: status}); err != nil {
		log.Error("❌ Failed to encode health response", "error", err)
	}
}
