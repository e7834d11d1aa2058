package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/jambcoach/internal/logger"
)

// New builds the configured provider wrapped, outermost first, in timeout,
// retry and logging decorators, so every attempt is logged individually.
// The mock provider is returned bare.
func New(ctx context.Context, cfg Config, rec EventRecorder, log *logger.Logger) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderDeepSeek:
		base, err = NewDeepSeekProvider(cfg.DeepSeek)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, rec, log)
	return WithTimeout(WithRetry(logged, cfg.Retry), cfg.Timeout), nil
}
