package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	withKey := func(p string) Config {
		c := DefaultConfig()
		require.NoError(t, c.Select(p, "", "k"))
		return c
	}
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default is mock", DefaultConfig(), false},
		{"anthropic keyed", withKey(ProviderAnthropic), false},
		{"openrouter keyed", withKey(ProviderOpenRouter), false},
		{"gemini without key", Config{Provider: ProviderGemini, Gemini: BackendConfig{Model: "gemini-flash"}}, true},
		{"openai without model", Config{Provider: ProviderOpenAI, OpenAI: BackendConfig{APIKey: "k"}}, true},
		{"unknown", Config{Provider: "watsonx"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigSelect(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Select(ProviderOpenAI, "gpt-4.1-mini", "sk-1"))
	assert.Equal(t, ProviderOpenAI, c.Provider)
	assert.Equal(t, "gpt-4.1-mini", c.OpenAI.Model)
	assert.Equal(t, "sk-1", c.OpenAI.APIKey)

	require.NoError(t, c.Select("", "ignored", "ignored"))
	assert.Equal(t, ProviderOpenAI, c.Provider)

	assert.Error(t, c.Select("nope", "", ""))
}

func TestConfigDiscoverFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENROUTER_API_KEY", "")

	c := DefaultConfig()
	c.FillKeysFromEnv()
	require.True(t, c.Discover())
	assert.Equal(t, ProviderGemini, c.Provider)
	assert.Equal(t, "g-key", c.Gemini.APIKey)
	assert.NoError(t, c.Validate())
}

func TestConfigDiscoverKeepsExplicitChoice(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Select(ProviderAnthropic, "", "a-key"))
	c.Gemini.APIKey = "g-key"
	assert.True(t, c.Discover())
	assert.Equal(t, ProviderAnthropic, c.Provider)

	empty := DefaultConfig()
	assert.False(t, empty.Discover())
	assert.Equal(t, ProviderMock, empty.Provider)
}
