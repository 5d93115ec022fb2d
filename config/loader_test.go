package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
providers:
  openai:
    model: gpt-4o-mini
  anthropic:
    api_key: sk-ant-explicit
    model: claude-3-5-haiku-latest
defaults:
  provider: openai
  temperature: 0.2
agents:
  - id: a1
    name: Analyst
    provider: openai
    personality:
      preset: analyst
  - id: a2
    name: Custom
    provider: anthropic
    personality:
      custom:
        name: Skeptic
        description: doubts everything
        system_prompt: "Be skeptical."
`

func TestLoad_ParsesAgentsAndProviders(t *testing.T) {
	cfg, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	require.NotNil(t, cfg.Providers.OpenAI)
	assert.Equal(t, "gpt-4o-mini", cfg.Providers.OpenAI.Model)
	require.NotNil(t, cfg.Providers.Anthropic)
	assert.Equal(t, "sk-ant-explicit", cfg.Providers.Anthropic.APIKey)

	require.Len(t, cfg.Agents, 2)
	assert.Equal(t, "analyst", cfg.Agents[0].Personality.Preset)
	require.NotNil(t, cfg.Agents[1].Personality.Custom)
	assert.Equal(t, "Skeptic", cfg.Agents[1].Personality.Custom.Name)

	assert.InDelta(t, 0.2, cfg.Defaults.Temperature, 0.001)
}

func TestLoad_EnvOverridesBlankAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.NotNil(t, cfg.Providers.OpenAI)
	assert.Equal(t, "sk-from-env", cfg.Providers.OpenAI.APIKey)
}

func TestLoad_EnvNeverOverridesExplicitKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-from-env")

	cfg, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-explicit", cfg.Providers.Anthropic.APIKey)
}

func TestProviderFor_UnconfiguredVendorIsError(t *testing.T) {
	cfg := Defaults()
	_, err := cfg.ProviderFor("gemini")
	require.ErrorIs(t, err, ErrNoProvider)
}

func TestProviderFor_ConfiguredVendorResolves(t *testing.T) {
	cfg, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	p, err := cfg.ProviderFor("openai")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", p.Model)
}
