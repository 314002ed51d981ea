package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campuscare/campuscare/internal/testutil"
)

func TestRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", errors.New("googleai: rate limit exceeded"), true},
		{"quota", errors.New("Quota Exceeded for project"), true},
		{"http 429", errors.New("unexpected status 429"), true},
		{"http 503", errors.New("503 Service Unavailable"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"auth failure", errors.New("403: invalid API key"), false},
		{"bad request", errors.New("400: invalid argument"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryableError(tt.err); got != tt.want {
				t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxRetries <= 0 {
		t.Error("default MaxRetries should be positive")
	}
	if cfg.InitialInterval <= 0 || cfg.MaxInterval < cfg.InitialInterval {
		t.Errorf("default intervals are inconsistent: %+v", cfg)
	}
}

func TestGenerateWithRetry_NonRetryableFailsFast(t *testing.T) {
	mock := testutil.NewMockLLM("unused")
	providerErr := errors.New("403: permission denied")
	mock.AddError("question", providerErr)

	a := newTestAssistant(t, mock, "")

	start := time.Now()
	_, err := a.Reply(context.Background(), "question")
	if err == nil {
		t.Fatal("Reply() = nil error, want provider failure")
	}
	// A non-retryable error must not burn backoff delays.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("non-retryable failure took %v, should fail fast", elapsed)
	}
}
