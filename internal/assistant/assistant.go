// Package assistant wraps the Gemini generation call behind a small adapter.
//
// The adapter owns the fixed generation parameters (model, temperature,
// output-token cap, safety thresholds), composes the prompt from the
// knowledge base, and normalizes provider outcomes: transport and auth
// failures become ErrProvider, and a safety block becomes a fixed fallback
// message rather than an error.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"google.golang.org/genai"

	"github.com/campuscare/campuscare/internal/knowledge"
	"github.com/campuscare/campuscare/internal/log"
	"github.com/campuscare/campuscare/internal/prompt"
)

// ErrProvider indicates the model provider call failed (transport, auth,
// quota, or deadline). The raw provider detail stays in logs; callers map
// this to a generic 500.
var ErrProvider = errors.New("model provider request failed")

// SafetyFallbackMessage is returned with a nil error when the provider
// withholds all candidates on safety grounds. Matches the deployed wording.
const SafetyFallbackMessage = "I am unable to process that specific request due to safety guidelines. " +
	"If you are experiencing a crisis, please seek immediate help or contact a professional counsellor using the booking link."

// generateTimeout bounds a single provider call, including retries of
// transient failures. The upstream SDK has no default deadline.
const generateTimeout = 60 * time.Second

// Config contains all required parameters for the Assistant.
type Config struct {
	Genkit *genkit.Genkit
	Logger log.Logger

	// Knowledge is optional: nil selects the instruction-only variant where
	// the bare student message is sent without a serialized knowledge base.
	Knowledge *knowledge.Store

	ModelName       string  // Provider-qualified model name (e.g. "googleai/gemini-2.5-flash")
	Temperature     float32 // Low values favor deterministic, on-policy output
	MaxOutputTokens int     // Upper bound on generated tokens per reply

	Retry RetryConfig // Zero value uses defaults
}

// validate checks required parameters.
func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.ModelName == "" {
		return errors.New("model name is required")
	}
	if cfg.MaxOutputTokens <= 0 {
		return errors.New("max output tokens must be positive")
	}
	return nil
}

// Assistant generates support replies. All configuration is captured
// immutably at construction, so an Assistant is safe for concurrent use.
type Assistant struct {
	g         *genkit.Genkit
	logger    log.Logger
	knowledge *knowledge.Store

	modelName string
	genConfig *genai.GenerateContentConfig
	retry     RetryConfig
}

// New creates an Assistant from cfg.
func New(cfg Config) (*Assistant, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	retry := cfg.Retry
	if retry.MaxRetries == 0 {
		retry = DefaultRetryConfig()
	}

	return &Assistant{
		g:         cfg.Genkit,
		logger:    cfg.Logger,
		knowledge: cfg.Knowledge,
		modelName: cfg.ModelName,
		genConfig: generationConfig(cfg.Temperature, cfg.MaxOutputTokens),
		retry:     retry,
	}, nil
}

// generationConfig builds the fixed per-process generation parameters.
//
// Safety thresholds block only the highest-severity category per harm type.
// Lower severities stay permissive so the assistant can engage with
// sensitive but legitimate student distress.
func generationConfig(temperature float32, maxOutputTokens int) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: int32(maxOutputTokens),
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		},
	}
}

// Reply generates a support reply for the student's message.
//
// Knowledge base errors (knowledge.ErrNotFound, knowledge.ErrFormat)
// propagate unwrapped so the HTTP layer can map them. Provider failures are
// wrapped in ErrProvider. A safety block returns SafetyFallbackMessage with
// a nil error.
func (a *Assistant) Reply(ctx context.Context, message string) (string, error) {
	payload := strings.TrimSpace(message)

	if a.knowledge != nil {
		entries, err := a.knowledge.Entries(ctx)
		if err != nil {
			return "", err
		}
		payload, err = prompt.BuildPayload(message, entries)
		if err != nil {
			return "", err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	resp, err := a.generateWithRetry(ctx, payload)
	if err != nil {
		if blockedError(err) {
			a.logger.Warn("provider withheld response on safety grounds", "error", err)
			return SafetyFallbackMessage, nil
		}
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}

	if resp.FinishReason == ai.FinishReasonBlocked {
		a.logger.Warn("provider blocked all candidates")
		return SafetyFallbackMessage, nil
	}

	// An empty reply without a block is a legitimate (if unusual) provider
	// outcome; pass it through rather than inventing content.
	return strings.TrimSpace(resp.Text()), nil
}

// blockedError reports whether err indicates the provider withheld the
// response on safety grounds rather than failing outright.
//
// NOTE: string matching, because the provider SDK does not expose typed
// errors for blocked content.
func blockedError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "blocked") ||
		strings.Contains(s, "safety") ||
		strings.Contains(s, "prohibited_content")
}
