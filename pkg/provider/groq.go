package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Groq exposes its chat API in the OpenAI-compatible format, so the client
// is the OpenAI SDK pointed at the Groq endpoint.
const (
	groqBaseURL = "https://api.groq.com/openai/v1"
	groqModel   = "llama-3.1-8b-instant"
)

// Groq implements Provider for Groq-hosted models.
type Groq struct {
	client openai.Client
}

// NewGroq creates a Groq client for the given API key.
func NewGroq(apiKey string) (*Groq, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(groqBaseURL),
	)
	return &Groq{client: client}, nil
}

// Kind returns the provider family.
func (g *Groq) Kind() Kind {
	return KindGroq
}

// Generate sends the request in message form and returns the response text.
func (g *Groq) Generate(ctx context.Context, req Request) (string, error) {
	return g.complete(ctx, chatMessages(req), 1024)
}

// Probe issues a minimal completion to validate the credential.
func (g *Groq) Probe(ctx context.Context) error {
	_, err := g.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage("test"),
	}, 5)
	return err
}

func (g *Groq) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, maxTokens int64) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(groqModel),
		Messages:    messages,
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", &Error{Kind: KindGroq, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindGroq, Empty: true}
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &Error{Kind: KindGroq, Empty: true}
	}
	return content, nil
}

func chatMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	if len(req.Messages) == 0 {
		return []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.FlattenedPrompt()),
		}
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	return messages
}
