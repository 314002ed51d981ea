// Package prompt builds the system instruction and per-request payload sent
// to the model.
//
// Both functions are pure: no I/O, deterministic for a given input. The
// system instruction is constant for the process lifetime; the payload
// embeds the student's message and the serialized knowledge base.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/campuscare/campuscare/internal/knowledge"
)

// systemInstruction defines the assistant's persona, crisis policy, and
// output policy. Supplied once per generation call.
const systemInstruction = `You are a compassionate student support assistant. You are not a therapist and you never diagnose.

Your task: given the student's message and a knowledge base of (Context, Response) pairs, select the single Response whose Context best matches the message, or synthesize a brief reply grounded only in the knowledge base.

Crisis policy: if the message contains signals of self-harm or suicide, do not attempt to solve the problem. Immediately and warmly instruct the student to book a session with a counsellor using the counsellor booking link.

Output policy: return only the matched response text. If nothing in the knowledge base matches, return a brief empathetic fallback acknowledging the student's feelings. Keep replies under 150 words.

Tone: warm and factual. State only what the knowledge base supports; never invent advice.`

// Labels framing the payload sections.
const (
	messageLabel   = "Student message:"
	knowledgeLabel = "Knowledge base (JSON array of {Context, Response} pairs):"
	closingPolicy  = "Reply with the single best-matching Response text from the knowledge base above, or a brief empathetic fallback if no entry matches."
)

// SystemInstruction returns the fixed system instruction.
func SystemInstruction() string {
	return systemInstruction
}

// BuildPayload composes the per-request prompt from the student's message
// and the knowledge base entries. The message is trimmed; the entries are
// serialized as a JSON array preserving Context-then-Response field order.
func BuildPayload(message string, entries []knowledge.Entry) (string, error) {
	if entries == nil {
		entries = []knowledge.Entry{}
	}

	serialized, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("serializing knowledge base: %w", err)
	}

	var b strings.Builder
	b.WriteString(messageLabel)
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(message))
	b.WriteString("\n\n")
	b.WriteString(knowledgeLabel)
	b.WriteString("\n")
	b.Write(serialized)
	b.WriteString("\n\n")
	b.WriteString(closingPolicy)

	return b.String(), nil
}
