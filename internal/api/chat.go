package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campuscare/campuscare/internal/knowledge"
)

// maxBodyBytes caps the chat request body. A student message has no
// business being larger than this.
const maxBodyBytes = 1 << 20 // 1 MB

// Client-facing error strings. The wire contract pins these exactly.
const (
	errInvalidJSON    = "Invalid JSON body."
	errMissingMessage = "Missing 'message' in request body."
	errServer         = "Server error processing your message."
)

// ChatRequest is the request body for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the success body for POST /api/chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// chatHandler handles the chat endpoint.
type chatHandler struct {
	logger    *slog.Logger
	assistant Replier
}

// chat handles POST /api/chat.
//
// Outcome mapping: malformed body or blank message → 400 before any
// knowledge base access or model call; missing knowledge base file → 500
// naming the resource; other failures → 500 with a generic body, provider
// detail logged but never sent to the client.
func (h *chatHandler) chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSON, h.logger)
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, errMissingMessage, h.logger)
		return
	}

	reply, err := h.assistant.Reply(r.Context(), message)
	if err != nil {
		if errors.Is(err, knowledge.ErrNotFound) {
			// The missing resource is an operational fact worth naming,
			// unlike provider internals.
			writeError(w, http.StatusInternalServerError, err.Error(), h.logger)
			return
		}
		h.logger.Error("chat request failed",
			"error", err,
			"request_id", requestIDFromContext(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, errServer, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply}, h.logger)
}
