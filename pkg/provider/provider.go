package provider

import (
	"context"
	"fmt"
	"strings"
)

// Kind identifies a provider family.
type Kind string

const (
	KindGroq      Kind = "groq"
	KindGemini    Kind = "gemini"
	KindAnthropic Kind = "anthropic"
)

// Message is one turn of a structured conversation.
type Message struct {
	Role    string
	Content string
}

// Request carries a generation request in both calling conventions.
// Messages is the structured form; Prompt is the single-string form for
// kinds that only accept a plain prompt. Either or both may be set.
type Request struct {
	Messages []Message
	Prompt   string
}

// FlattenedPrompt returns the prompt-style rendering of the request.
// When Prompt is empty the messages are flattened to "role: content" lines.
func (r Request) FlattenedPrompt() string {
	if r.Prompt != "" {
		return r.Prompt
	}
	lines := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}

// Provider is one validated client for a provider kind.
type Provider interface {
	// Kind returns the provider family this client belongs to.
	Kind() Kind

	// Generate sends a request and returns the generated text.
	Generate(ctx context.Context, req Request) (string, error)

	// Probe issues one minimal request to validate the credential.
	Probe(ctx context.Context) error
}

// New constructs a client for the given kind and API key. The client is
// not validated; callers run Probe before trusting it.
func New(ctx context.Context, kind Kind, apiKey string) (Provider, error) {
	switch kind {
	case KindGroq:
		return NewGroq(apiKey)
	case KindGemini:
		return NewGemini(ctx, apiKey)
	case KindAnthropic:
		return NewAnthropic(apiKey)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", kind)
	}
}
