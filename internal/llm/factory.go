package llm

import (
	"context"
	"fmt"

	"github.com/mathmaster/mathmaster/internal/logger"
	"github.com/mathmaster/mathmaster/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with
// retry and logging middleware. eventRepo may be nil.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
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
		return NewMockProvider(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → retry → timeout → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo, log)
	timed := WithTimeout(logged, cfg.Timeout)
	return WithRetry(timed, cfg.Retry), nil
}

// NewProviderFromEnv resolves configuration from MATHMASTER_* variables,
// falling back to the standard vendor key variables, and builds a provider.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	return NewProvider(ctx, ResolveConfig(), eventRepo, log)
}

// ResolveConfig is the configuration NewProviderFromEnv uses.
func ResolveConfig() Config {
	cfg := ConfigFromEnv()
	if cfg.Validate() != nil {
		if discovered, ok := DiscoverConfig(); ok {
			discovered.Retry = cfg.Retry
			discovered.Timeout = cfg.Timeout
			cfg = discovered
		}
	}
	return cfg
}
