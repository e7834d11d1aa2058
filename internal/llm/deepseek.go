package llm

const defaultDeepSeekBaseURL = "https://api.deepseek.com"

var deepseekModels = map[string]string{
	"deepseek":          "deepseek-chat",
	"deepseek-reasoner": "deepseek-reasoner",
}

// NewDeepSeekProvider creates a provider for the DeepSeek API. DeepSeek is
// OpenAI-compatible but only supports JSON-object output, so the schema
// travels in the prompt and is enforced on the way back.
func NewDeepSeekProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultDeepSeekBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	return newCompatProvider("deepseek", cfg, deepseekModels, jsonObjectMode)
}
