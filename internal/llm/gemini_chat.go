// Package llm provides the language-model boundary for the dialog engine.
// This file contains the Gemini implementation of the Chatter interface.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiChatter sends chat requests to the Gemini API.
// It implements the Chatter interface.
type geminiChatter struct {
	client *genai.Client
	model  string
	kind   Kind
}

// NewGeminiChatter creates a Gemini-backed Chatter for the given kind.
func NewGeminiChatter(ctx context.Context, cfg ProviderConfig, kind Kind) (Chatter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiChatter{
		client: client,
		model:  cfg.Model(ProviderGemini, kind),
		kind:   kind,
	}, nil
}

// Chat sends one request and returns the model's text response.
func (c *geminiChatter) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, msg := range req.History {
		contents = append(contents, genai.NewContentFromText(msg.Text, geminiRole(msg.Role)))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if system := systemText(req); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "chat API call failed",
			"provider", ProviderGemini,
			"kind", c.kind,
			"model", c.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, WrapError(fmt.Errorf("generate content failed: %w", err), ProviderGemini, 0)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, WrapError(fmt.Errorf("empty response from model"), ProviderGemini, 0)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	if resp.UsageMetadata != nil {
		slog.DebugContext(ctx, "chat completed",
			"provider", ProviderGemini,
			"kind", c.kind,
			"model", c.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens", resp.UsageMetadata.TotalTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return &ChatResponse{Text: strings.TrimSpace(text.String())}, nil
}

// Provider returns the provider type for this chatter.
func (c *geminiChatter) Provider() Provider {
	return ProviderGemini
}

// Close releases resources.
// Safe to call on nil receiver.
func (c *geminiChatter) Close() error {
	if c == nil {
		return nil
	}
	// Note: genai.Client does not require explicit cleanup in current SDK version
	return nil
}

// geminiRole maps a conversation role onto the genai role vocabulary.
// Everything that is not the assistant counts as user input.
func geminiRole(r Role) genai.Role {
	if r == RoleBot {
		return genai.RoleModel
	}
	return genai.RoleUser
}

// systemText assembles the system instruction from the preamble and any
// grounding documents.
func systemText(req ChatRequest) string {
	if len(req.Documents) == 0 {
		return req.Preamble
	}
	var b strings.Builder
	b.WriteString(req.Preamble)
	b.WriteString("\n\nReference documents:\n")
	for i, doc := range req.Documents {
		fmt.Fprintf(&b, "\n[Document %d]\n%s\n", i+1, doc)
	}
	return b.String()
}
