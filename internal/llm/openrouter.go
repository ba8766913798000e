package llm

import "errors"

// NewOpenRouterProvider targets OpenRouter, which speaks the OpenAI chat
// completions protocol. Model IDs are OpenRouter's vendor/model form.
func NewOpenRouterProvider(cfg BackendConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}
	return newChatCompletionProvider(ProviderOpenRouter, cfg), nil
}
