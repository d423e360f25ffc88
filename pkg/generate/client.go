// Package generate performs the documentation call against an
// OpenAI-compatible chat completion endpoint. Remote providers use the
// hosted API; local models go through the Ollama compatibility endpoint.
// The request is built 1:1 from the prompt builder's message sequence,
// the same sequence the estimator priced.
package generate

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docufy-ai/docufy/pkg/billing"
	"github.com/docufy-ai/docufy/pkg/pricing"
	"github.com/docufy-ai/docufy/pkg/prompt"
)

// DefaultOllamaBaseURL is the local Ollama OpenAI-compatible endpoint.
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

// Options configures a Client.
type Options struct {
	// APIKey authenticates remote providers. Local models ignore it.
	APIKey string
	// BaseURL overrides the endpoint, for local models and tests.
	BaseURL string
}

// Client sends documentation requests for one resolved model.
type Client struct {
	api   *openai.Client
	model pricing.Model
}

// NewClient builds a client for the resolved model. Remote models
// require an API key; local models default to the Ollama endpoint.
func NewClient(model pricing.Model, opts Options) (*Client, error) {
	apiKey := opts.APIKey
	baseURL := opts.BaseURL

	if model.Kind == pricing.KindLocal {
		if baseURL == "" {
			baseURL = DefaultOllamaBaseURL
		}
		if apiKey == "" {
			apiKey = "ollama" // endpoint ignores it but the SDK requires one
		}
	} else if apiKey == "" {
		return nil, fmt.Errorf("provider %s requires an API key", model.Provider)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{api: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Generate sends the message sequence and returns the rewritten file
// content plus normalized usage counters.
func (c *Client) Generate(ctx context.Context, messages []prompt.Message) (string, billing.UsageStats, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model.Name,
		Messages: toChatMessages(messages),
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", billing.UsageStats{}, fmt.Errorf("chat completion: %w", err)
	}

	usage := normalizeUsage(resp.Usage)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", usage, fmt.Errorf("provider returned no content")
	}

	return stripFences(resp.Choices[0].Message.Content), usage, nil
}

func toChatMessages(messages []prompt.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == prompt.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		out[i] = openai.ChatCompletionMessage{Role: role, Content: msg.Content}
	}
	return out
}

// normalizeUsage flattens the provider usage payload into the fixed
// UsageStats shape. Reasoning tokens default to zero when the provider
// does not report them.
func normalizeUsage(u openai.Usage) billing.UsageStats {
	stats := billing.UsageStats{
		InputTokens:  int64(u.PromptTokens),
		OutputTokens: int64(u.CompletionTokens),
	}
	if u.CompletionTokensDetails != nil {
		stats.ReasoningTokens = int64(u.CompletionTokensDetails.ReasoningTokens)
	}
	return stats
}

// stripFences removes a markdown code fence the model may have wrapped
// around the file despite instructions.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return content
	}

	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		return content
	}
	trimmed = strings.TrimSuffix(strings.TrimRight(trimmed, " \n"), "```")
	return strings.TrimRight(trimmed, " \n") + "\n"
}
