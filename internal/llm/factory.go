package llm

import (
	"context"
	"fmt"
)

// NewProvider creates a Provider from configuration, wrapped with audit
// logging when recorder is non-nil. No retries are applied here; the risk
// assessment makes exactly one attempt per invocation and callers that
// tolerate repeats (the chatbot) add WithRetry themselves.
func NewProvider(ctx context.Context, cfg Config, recorder EventRecorder) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if recorder == nil {
		return base, nil
	}
	return WithLogging(base, cfg.Provider, recorder), nil
}

// NewProviderFromEnv is NewProvider(ctx, ConfigFromEnv(), recorder).
func NewProviderFromEnv(ctx context.Context, recorder EventRecorder) (Provider, error) {
	return NewProvider(ctx, ConfigFromEnv(), recorder)
}
