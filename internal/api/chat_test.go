package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/campuscare/campuscare/internal/knowledge"
)

// stubReplier is a deterministic Replier for handler tests.
type stubReplier struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (s *stubReplier) Reply(_ context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.reply != "" {
		return s.reply, nil
	}
	return "echo: " + message, nil
}

func (s *stubReplier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestChatHandler(stub *stubReplier) *chatHandler {
	return &chatHandler{
		logger:    slog.New(slog.DiscardHandler),
		assistant: stub,
	}
}

func postChat(t *testing.T, h *chatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	h.chat(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response body %q: %v", w.Body.String(), err)
	}
	return v
}

func TestChat_Success(t *testing.T) {
	stub := &stubReplier{reply: "Try a 5-minute breathing break before returning to your notes."}
	w := postChat(t, newTestChatHandler(stub), `{"message": "I'm stressed about exams"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("chat() status = %d, want %d\nbody: %s", w.Code, http.StatusOK, w.Body.String())
	}

	resp := decodeBody[ChatResponse](t, w)
	if resp.Reply != stub.reply {
		t.Errorf("reply = %q, want %q", resp.Reply, stub.reply)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestChat_InvalidJSON(t *testing.T) {
	stub := &stubReplier{}
	w := postChat(t, newTestChatHandler(stub), `this is not json`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("chat() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decodeBody[ErrorResponse](t, w)
	if resp.Error != "Invalid JSON body." {
		t.Errorf("error = %q, want %q", resp.Error, "Invalid JSON body.")
	}
	if stub.callCount() != 0 {
		t.Errorf("assistant called %d times for malformed body, want 0", stub.callCount())
	}
}

func TestChat_MissingMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"absent field", `{}`},
		{"empty string", `{"message": ""}`},
		{"whitespace only", `{"message": "   \n\t "}`},
		{"wrong field", `{"query": "hello"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubReplier{}
			w := postChat(t, newTestChatHandler(stub), tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("chat() status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			resp := decodeBody[ErrorResponse](t, w)
			if resp.Error != "Missing 'message' in request body." {
				t.Errorf("error = %q, want %q", resp.Error, "Missing 'message' in request body.")
			}
			if stub.callCount() != 0 {
				t.Errorf("assistant called %d times for blank message, want 0", stub.callCount())
			}
		})
	}
}

func TestChat_KnowledgeBaseMissing(t *testing.T) {
	kbErr := fmt.Errorf("%w: /etc/campuscare/knowledge_base.json", knowledge.ErrNotFound)
	stub := &stubReplier{err: kbErr}

	w := postChat(t, newTestChatHandler(stub), `{"message": "hello"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("chat() status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	resp := decodeBody[ErrorResponse](t, w)
	if !strings.Contains(resp.Error, "knowledge_base.json") {
		t.Errorf("error should name the missing resource, got %q", resp.Error)
	}
}

func TestChat_ProviderFailureIsGeneric(t *testing.T) {
	stub := &stubReplier{err: errors.New("googleai: 403 invalid API key sk-secret")}

	w := postChat(t, newTestChatHandler(stub), `{"message": "hello"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("chat() status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	resp := decodeBody[ErrorResponse](t, w)
	if resp.Error != "Server error processing your message." {
		t.Errorf("error = %q, want the generic server error", resp.Error)
	}
	// Provider detail must never leak to the client.
	if strings.Contains(w.Body.String(), "sk-secret") || resp.Detail != "" {
		t.Errorf("response leaked provider detail: %s", w.Body.String())
	}
}

func TestChat_TrimsMessageBeforeReply(t *testing.T) {
	stub := &stubReplier{}
	w := postChat(t, newTestChatHandler(stub), `{"message": "  hello  "}`)

	if w.Code != http.StatusOK {
		t.Fatalf("chat() status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := decodeBody[ChatResponse](t, w)
	if resp.Reply != "echo: hello" {
		t.Errorf("reply = %q, message should be trimmed before the model call", resp.Reply)
	}
}

func TestChat_Idempotent(t *testing.T) {
	stub := &stubReplier{reply: "steady answer"}
	h := newTestChatHandler(stub)

	first := postChat(t, h, `{"message": "same question"}`)
	second := postChat(t, h, `{"message": "same question"}`)

	if first.Body.String() != second.Body.String() {
		t.Errorf("identical requests produced different bodies:\n%s\n%s",
			first.Body.String(), second.Body.String())
	}
}

func TestChat_OversizedBody(t *testing.T) {
	stub := &stubReplier{}
	big := bytes.Repeat([]byte("a"), maxBodyBytes+1)
	body := `{"message": "` + string(big) + `"}`

	w := postChat(t, newTestChatHandler(stub), body)

	if w.Code != http.StatusBadRequest {
		t.Errorf("chat() status = %d for oversized body, want %d", w.Code, http.StatusBadRequest)
	}
	if stub.callCount() != 0 {
		t.Errorf("assistant called %d times for oversized body, want 0", stub.callCount())
	}
}
