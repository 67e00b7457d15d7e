package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// geminiModelCandidates is tried in order by the construction-time probe;
// the first model that answers becomes the bound model for this credential.
var geminiModelCandidates = []string{
	"gemini-2.5-flash",
	"gemini-2.5-pro",
	"gemini-1.5-pro",
	"gemini-1.5-flash",
}

// Gemini implements Provider for Google Gemini models. Gemini is a
// prompt-style kind: structured messages are flattened before sending.
//
// The model binding is written once, by the first successful Probe during
// pool construction; after that the credential is immutable and safe for
// concurrent Generate and diagnostic Probe calls.
type Gemini struct {
	client *genai.Client
	model  string

	// generate is the transport; swapped out in tests.
	generate func(ctx context.Context, model, prompt string) (string, error)
}

// NewGemini creates a Gemini client for the given API key.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	g := &Gemini{client: client}
	g.generate = g.generateContent
	return g, nil
}

// Kind returns the provider family.
func (g *Gemini) Kind() Kind {
	return KindGemini
}

// Model returns the model this credential is bound to, empty before the
// construction-time probe.
func (g *Gemini) Model() string {
	return g.model
}

// Generate flattens the request to a prompt and returns the response text.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	model := g.model
	if model == "" {
		model = geminiModelCandidates[0]
	}
	return g.generate(ctx, model, req.FlattenedPrompt())
}

// Probe validates the credential. The first successful probe walks the
// candidate models and binds the first one that answers; once bound, later
// probes re-validate against the bound model and never rebind it.
func (g *Gemini) Probe(ctx context.Context) error {
	if g.model != "" {
		_, err := g.generate(ctx, g.model, "test")
		return err
	}

	var lastErr error
	for _, model := range geminiModelCandidates {
		if _, err := g.generate(ctx, model, "test"); err != nil {
			lastErr = err
			continue
		}
		g.model = model
		return nil
	}
	return &Error{Kind: KindGemini, Err: fmt.Errorf("no working model found: %w", lastErr)}
}

func (g *Gemini) generateContent(ctx context.Context, model, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", &Error{Kind: KindGemini, Err: err}
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &Error{Kind: KindGemini, Empty: true}
	}

	var content string
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content += part.Text
			}
		}
	}
	if strings.TrimSpace(content) == "" {
		return "", &Error{Kind: KindGemini, Empty: true}
	}
	return content, nil
}
