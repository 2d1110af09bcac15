package perception

import (
	"context"
	"fmt"
	"time"

	"counsellor/internal/config"
	"counsellor/internal/logging"
)

// NewReasoner builds the Reasoner for the configured provider. This is the
// only place that branches on vendor identity.
func NewReasoner(ctx context.Context, cfg config.LLMConfig, timeout time.Duration) (Reasoner, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoProvider
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	switch cfg.Provider {
	case config.ProviderGroq:
		logging.Boot("Reasoning provider: groq")
		return NewGroqClient(GroqConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil
	case config.ProviderGemini:
		logging.Boot("Reasoning provider: gemini")
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNoProvider, cfg.Provider)
	}
}
