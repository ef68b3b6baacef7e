// Package llm provides the language-model boundary for the dialog engine.
// This file contains the chatter factory.
package llm

import (
	"context"
	"fmt"
)

// New creates a Chatter for the given provider and kind.
func New(ctx context.Context, provider Provider, cfg ProviderConfig, kind Kind) (Chatter, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiChatter(ctx, cfg, kind)
	case ProviderOpenAI:
		return NewOpenAIChatter(cfg, kind)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
