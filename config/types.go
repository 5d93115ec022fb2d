package config

import "time"

// ProviderConfig describes how to reach one vendor's LLM API.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// ProvidersConfig lists the vendor credentials available to agents built
// from this configuration. A nil entry means that vendor is not configured.
type ProvidersConfig struct {
	OpenAI    *ProviderConfig `yaml:"openai,omitempty"`
	Anthropic *ProviderConfig `yaml:"anthropic,omitempty"`
	Gemini    *ProviderConfig `yaml:"gemini,omitempty"`
}

// DefaultsConfig supplies fallback values for agents that omit them.
type DefaultsConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// CustomPersonalityConfig is the declarative form of a hand-authored
// personality, mirroring agent.PersonalityBuilder's fields.
type CustomPersonalityConfig struct {
	Name               string            `yaml:"name"`
	Description        string            `yaml:"description"`
	SystemPrompt       string            `yaml:"system_prompt"`
	Expertise          string            `yaml:"expertise,omitempty"`
	Creativity         float32           `yaml:"creativity,omitempty"`
	Precision          float32           `yaml:"precision,omitempty"`
	CommunicationStyle string            `yaml:"communication_style,omitempty"`
	Traits             map[string]string `yaml:"traits,omitempty"`
}

// PersonalityConfig selects either a preset (e.g. "analyst", "expert:law")
// or a fully custom personality. Exactly one should be set; Preset wins if
// both are present.
type PersonalityConfig struct {
	Preset string                   `yaml:"preset,omitempty"`
	Custom *CustomPersonalityConfig `yaml:"custom,omitempty"`
}

// AgentConfig declares one agent to be built into a Session.
type AgentConfig struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Provider    string            `yaml:"provider"`
	Model       string            `yaml:"model,omitempty"`
	Personality PersonalityConfig `yaml:"personality"`
}

// TelemetryConfig holds the telemetry toggle. Enabled is loaded from
// configuration, but session.New does not read it: a session records
// against the collector given via session.WithMetrics, or metrics.Noop()
// when none is given.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// EngineConfig is the complete declarative configuration surface: vendor
// credentials, agent-wide defaults, the roster of agents, and telemetry.
type EngineConfig struct {
	Providers ProvidersConfig `yaml:"providers"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Agents    []AgentConfig   `yaml:"agents"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// RequestTimeout is part of the declarative surface (Defaults() sets
	// it to two minutes), but session does not pass it to the provider
	// clients it builds; provider calls are bounded by the caller's context
	// and each adapter's own client settings.
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
}
