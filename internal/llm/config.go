package llm

import (
	"fmt"
	"os"
	"time"
)

// Backend names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures one backend.
type Config struct {
	Provider string

	Anthropic  BackendConfig
	OpenAI     BackendConfig
	Gemini     BackendConfig
	OpenRouter BackendConfig

	Retry RetryConfig

	// Timeout bounds a whole Generate call including retries.
	Timeout time.Duration
}

// BackendConfig holds the credentials for a single backend.
type BackendConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig controls backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// DefaultConfig returns the mock backend with every model preset, so the
// application runs offline until a key is configured.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderMock,
		Anthropic:  BackendConfig{Model: "claude-haiku"},
		OpenAI:     BackendConfig{Model: "gpt-4o-mini"},
		Gemini:     BackendConfig{Model: "gemini-flash"},
		OpenRouter: BackendConfig{Model: "google/gemini-2.0-flash-001", BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 60 * time.Second,
	}
}

// Backend returns a pointer to the settings of the named backend, or nil.
func (c *Config) Backend(name string) *BackendConfig {
	switch name {
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderGemini:
		return &c.Gemini
	case ProviderOpenRouter:
		return &c.OpenRouter
	}
	return nil
}

// Select switches to provider and overrides its model and key when the
// given values are non-empty.
func (c *Config) Select(provider, model, apiKey string) error {
	if provider == "" {
		return nil
	}
	c.Provider = provider
	if provider == ProviderMock {
		return nil
	}
	b := c.Backend(provider)
	if b == nil {
		return fmt.Errorf("unknown llm provider %q", provider)
	}
	if model != "" {
		b.Model = model
	}
	if apiKey != "" {
		b.APIKey = apiKey
	}
	return nil
}

var standardKeyEnv = []struct {
	provider string
	env      string
}{
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// FillKeysFromEnv copies the vendors' usual API key variables into any
// backend that has no key yet.
func (c *Config) FillKeysFromEnv() {
	for _, s := range standardKeyEnv {
		b := c.Backend(s.provider)
		if b.APIKey == "" {
			b.APIKey = os.Getenv(s.env)
		}
	}
}

// Discover picks the first backend with a key when the mock backend is
// still selected. It reports whether a real backend was chosen.
func (c *Config) Discover() bool {
	if c.Provider != ProviderMock {
		return true
	}
	for _, s := range standardKeyEnv {
		if c.Backend(s.provider).APIKey != "" {
			c.Provider = s.provider
			return true
		}
	}
	return false
}

// Validate checks the selected backend is usable.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	b := c.Backend(c.Provider)
	if b == nil {
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	if b.APIKey == "" {
		return fmt.Errorf("llm provider %s needs an API key (set llm.api_key or EXAMPREP_LLM_API_KEY)", c.Provider)
	}
	if b.Model == "" {
		return fmt.Errorf("llm provider %s has no model configured", c.Provider)
	}
	return nil
}
