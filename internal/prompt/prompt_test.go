package prompt

import (
	"strings"
	"testing"

	"github.com/campuscare/campuscare/internal/knowledge"
)

func TestSystemInstruction_Policies(t *testing.T) {
	si := SystemInstruction()

	for _, want := range []string{
		"compassionate",
		"counsellor",
		"knowledge base",
		"150 words",
	} {
		if !strings.Contains(si, want) {
			t.Errorf("system instruction missing %q", want)
		}
	}
}

func TestBuildPayload_Structure(t *testing.T) {
	entries := []knowledge.Entry{
		{Context: "exam stress", Response: "Try a 5-minute breathing break before returning to your notes."},
	}

	payload, err := BuildPayload("  I'm stressed about exams  ", entries)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}

	if !strings.Contains(payload, "Student message:\nI'm stressed about exams\n") {
		t.Errorf("payload should contain the trimmed message under its label:\n%s", payload)
	}
	if !strings.Contains(payload, `[{"Context":"exam stress","Response":"Try a 5-minute breathing break before returning to your notes."}]`) {
		t.Errorf("payload should serialize entries with Context before Response:\n%s", payload)
	}
	if !strings.Contains(payload, "best-matching Response") {
		t.Errorf("payload should restate the output policy:\n%s", payload)
	}
}

func TestBuildPayload_EmptyKnowledgeBase(t *testing.T) {
	payload, err := BuildPayload("hello", nil)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}
	if !strings.Contains(payload, "[]") {
		t.Errorf("nil entries should serialize as an empty JSON array:\n%s", payload)
	}
}

func TestBuildPayload_Deterministic(t *testing.T) {
	entries := []knowledge.Entry{{Context: "a", Response: "b"}}

	first, err := BuildPayload("same message", entries)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}
	second, err := BuildPayload("same message", entries)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}
	if first != second {
		t.Error("BuildPayload() is not deterministic for identical inputs")
	}
}
