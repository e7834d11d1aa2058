package llm

import (
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestConfigFromEnv(t *testing.T) {
	cfg := ConfigFromEnv(envMap(map[string]string{
		"JAMBCOACH_LLM_PROVIDER":     "openai",
		"JAMBCOACH_OPENAI_API_KEY":   "sk-test",
		"JAMBCOACH_OPENAI_MODEL":     "gpt-4o",
		"JAMBCOACH_DEEPSEEK_API_KEY": "ds-test",
		"JAMBCOACH_LLM_TIMEOUT":      "45s",
		"JAMBCOACH_LLM_MAX_ATTEMPTS": "5",
	}))
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("openai config = %+v", cfg.OpenAI)
	}
	if cfg.DeepSeek.APIKey != "ds-test" || cfg.DeepSeek.BaseURL != defaultDeepSeekBaseURL {
		t.Errorf("deepseek config = %+v", cfg.DeepSeek)
	}
	if cfg.Timeout != 45*time.Second || cfg.Retry.MaxAttempts != 5 {
		t.Errorf("timeout/attempts = %v/%d", cfg.Timeout, cfg.Retry.MaxAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestDiscoverConfig(t *testing.T) {
	cfg, ok := DiscoverConfig(envMap(map[string]string{
		"OPENAI_API_KEY":   "sk",
		"DEEPSEEK_API_KEY": "ds",
	}))
	if !ok || cfg.Provider != ProviderDeepSeek || cfg.DeepSeek.APIKey != "ds" {
		t.Fatalf("discover = %+v, %v; want deepseek first", cfg, ok)
	}
	if _, ok := DiscoverConfig(envMap(nil)); ok {
		t.Fatal("expected no provider without keys")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"mock needs no key", func(c *Config) { c.Provider = ProviderMock }, false},
		{"deepseek without key", func(c *Config) {}, true},
		{"gemini with key", func(c *Config) { c.Provider = ProviderGemini; c.Gemini.APIKey = "g" }, false},
		{"unknown provider", func(c *Config) { c.Provider = "openrouter" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
