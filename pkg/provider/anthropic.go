package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicModel = "claude-3-5-haiku-latest"

// Anthropic implements Provider for Claude models.
type Anthropic struct {
	client anthropic.Client
}

// NewAnthropic creates an Anthropic client for the given API key.
func NewAnthropic(apiKey string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Anthropic{client: client}, nil
}

// Kind returns the provider family.
func (a *Anthropic) Kind() Kind {
	return KindAnthropic
}

// Generate sends the request in message form and returns the response text.
func (a *Anthropic) Generate(ctx context.Context, req Request) (string, error) {
	return a.complete(ctx, req, 1024)
}

// Probe issues a minimal completion to validate the credential.
func (a *Anthropic) Probe(ctx context.Context) error {
	_, err := a.complete(ctx, Request{Prompt: "test"}, 8)
	return err
}

func (a *Anthropic) complete(ctx context.Context, req Request, maxTokens int64) (string, error) {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if len(messages) == 0 {
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.FlattenedPrompt())))
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(anthropicModel),
		MaxTokens:   maxTokens,
		Messages:    messages,
		System:      system,
		Temperature: anthropic.Float(0.1),
	})
	if err != nil {
		return "", &Error{Kind: KindAnthropic, Err: err}
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	if strings.TrimSpace(content) == "" {
		return "", &Error{Kind: KindAnthropic, Empty: true}
	}
	return content, nil
}
