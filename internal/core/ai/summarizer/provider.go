// Package summarizer turns transcripts into structured summaries with an LLM.
package summarizer

import (
	"context"
	"fmt"

	"github.com/guiyumin/vsum/internal/core/config"
)

// Request is one completion call.
type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64

	// Thinking enables the provider's extended reasoning mode with
	// ThinkingBudget tokens set aside for it.
	Thinking       bool
	ThinkingBudget int
}

// Provider sends a prompt to an LLM and returns the answer text.
// Reasoning output is never part of the returned text.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Name returns the provider name.
	Name() string
}

// ProviderError wraps a failed provider call. The underlying SDK error is
// reachable with errors.As.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProvider creates a Provider based on configuration.
// The apiKey parameter is the resolved (decrypted) API key.
func NewProvider(cfg config.LLMConfig, apiKey string) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic, "":
		return NewAnthropic(cfg, apiKey)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg, apiKey)
	case config.ProviderQwen:
		return NewQwen(cfg, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
