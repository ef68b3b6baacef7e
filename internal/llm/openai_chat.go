// Package llm provides the language-model boundary for the dialog engine.
// This file contains the OpenAI-compatible implementation of the Chatter
// interface. It works with OpenAI itself or any compatible inference
// provider via a custom BaseURL.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiChatter sends chat requests to an OpenAI-compatible endpoint.
// It implements the Chatter interface.
type openaiChatter struct {
	client openai.Client
	model  string
	kind   Kind
}

// NewOpenAIChatter creates an OpenAI-compatible Chatter for the given kind.
func NewOpenAIChatter(cfg ProviderConfig, kind Kind) (Chatter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &openaiChatter{
		client: client,
		model:  cfg.Model(ProviderOpenAI, kind),
		kind:   kind,
	}, nil
}

// Chat sends one request and returns the model's text response.
func (c *openaiChatter) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if system := systemText(req); system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, msg := range req.History {
		if msg.Role == RoleBot {
			messages = append(messages, openai.AssistantMessage(msg.Text))
		} else {
			messages = append(messages, openai.UserMessage(msg.Text))
		}
	}
	messages = append(messages, openai.UserMessage(req.Message))

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "chat API call failed",
			"provider", ProviderOpenAI,
			"kind", c.kind,
			"model", c.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, WrapError(fmt.Errorf("chat completion failed: %w", err), ProviderOpenAI, 0)
	}

	if len(resp.Choices) == 0 {
		return nil, WrapError(fmt.Errorf("empty response from model"), ProviderOpenAI, 0)
	}

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "chat completed",
			"provider", ProviderOpenAI,
			"kind", c.kind,
			"model", c.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
			"duration_ms", duration.Milliseconds())
	}

	return &ChatResponse{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}

// Provider returns the provider type for this chatter.
func (c *openaiChatter) Provider() Provider {
	return ProviderOpenAI
}

// Close releases resources.
// Safe to call on nil receiver.
func (c *openaiChatter) Close() error {
	// openai-go client doesn't require cleanup
	return nil
}
