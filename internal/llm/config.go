package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderDeepSeek  = "deepseek"
	ProviderMock      = "mock"
)

// ProviderNames lists the selectable providers in display order.
var ProviderNames = []string{ProviderDeepSeek, ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderMock}

// Config selects and configures one provider.
type Config struct {
	Provider string

	Anthropic ProviderConfig
	OpenAI    ProviderConfig
	Gemini    ProviderConfig
	DeepSeek  ProviderConfig
	Retry     RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

// ProviderConfig is the credential and model of one provider. BaseURL is
// honored by the OpenAI-compatible providers only.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the DeepSeek-first defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  ProviderDeepSeek,
		Anthropic: ProviderConfig{Model: "claude-haiku"},
		OpenAI:    ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:    ProviderConfig{Model: "gemini-flash"},
		DeepSeek:  ProviderConfig{Model: "deepseek-chat", BaseURL: defaultDeepSeekBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 90 * time.Second,
	}
}

// ConfigFromEnv overlays JAMBCOACH_* variables on DefaultConfig. A nil
// getenv reads the process environment.
func ConfigFromEnv(getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := DefaultConfig()

	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Provider, "JAMBCOACH_LLM_PROVIDER")

	for _, p := range []struct {
		name string
		cfg  *ProviderConfig
	}{
		{"ANTHROPIC", &cfg.Anthropic},
		{"OPENAI", &cfg.OpenAI},
		{"GEMINI", &cfg.Gemini},
		{"DEEPSEEK", &cfg.DeepSeek},
	} {
		set(&p.cfg.APIKey, "JAMBCOACH_"+p.name+"_API_KEY")
		set(&p.cfg.Model, "JAMBCOACH_"+p.name+"_MODEL")
		set(&p.cfg.BaseURL, "JAMBCOACH_"+p.name+"_BASE_URL")
	}

	if v := getenv("JAMBCOACH_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := getenv("JAMBCOACH_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retry.MaxAttempts = n
		}
	}
	return cfg
}

// DiscoverConfig probes the vendors' standard key variables
// (DeepSeek, OpenAI, Anthropic, Gemini) and selects the first one found.
func DiscoverConfig(getenv func(string) string) (Config, bool) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := DefaultConfig()

	for _, p := range []struct {
		provider, key string
		cfg           *ProviderConfig
	}{
		{ProviderDeepSeek, "DEEPSEEK_API_KEY", &cfg.DeepSeek},
		{ProviderOpenAI, "OPENAI_API_KEY", &cfg.OpenAI},
		{ProviderAnthropic, "ANTHROPIC_API_KEY", &cfg.Anthropic},
		{ProviderGemini, "GEMINI_API_KEY", &cfg.Gemini},
	} {
		if k := getenv(p.key); k != "" {
			cfg.Provider = p.provider
			p.cfg.APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Selected returns the configuration of the chosen provider.
func (c Config) Selected() (ProviderConfig, bool) {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic, true
	case ProviderOpenAI:
		return c.OpenAI, true
	case ProviderGemini:
		return c.Gemini, true
	case ProviderDeepSeek:
		return c.DeepSeek, true
	}
	return ProviderConfig{}, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	pc, ok := c.Selected()
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if pc.APIKey == "" {
		return fmt.Errorf("an API key is required for the %s provider (set JAMBCOACH_%s_API_KEY)",
			c.Provider, strings.ToUpper(c.Provider))
	}
	return nil
}
