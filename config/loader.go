package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoProvider is returned when an AgentConfig names a provider absent
// from Providers.
var ErrNoProvider = errors.New("config: referenced provider not configured")

// Load parses an EngineConfig from r, starting from Defaults() and
// overlaying the YAML document on top, then applying environment-variable
// overrides for provider API keys.
func Load(r io.Reader) (EngineConfig, error) {
	cfg := Defaults()
	data, err := io.ReadAll(r)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("config: read: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// LoadFile opens path and delegates to Load.
func LoadFile(path string) (EngineConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// applyEnvOverrides fills in provider API keys from the environment when
// the YAML document left them blank, mirroring the convention that
// secrets live outside version-controlled config files.
func applyEnvOverrides(cfg *EngineConfig) {
	override := func(p **ProviderConfig, envVar string) {
		key := os.Getenv(envVar)
		if key == "" {
			return
		}
		if *p == nil {
			*p = &ProviderConfig{}
		}
		if (*p).APIKey == "" {
			(*p).APIKey = key
		}
	}
	override(&cfg.Providers.OpenAI, "OPENAI_API_KEY")
	override(&cfg.Providers.Anthropic, "ANTHROPIC_API_KEY")
	override(&cfg.Providers.Gemini, "GEMINI_API_KEY")
}

// ProviderFor resolves the ProviderConfig a given vendor name refers to,
// or ErrNoProvider if it was never configured.
func (c EngineConfig) ProviderFor(name string) (ProviderConfig, error) {
	switch name {
	case "openai":
		if c.Providers.OpenAI != nil {
			return *c.Providers.OpenAI, nil
		}
	case "anthropic":
		if c.Providers.Anthropic != nil {
			return *c.Providers.Anthropic, nil
		}
	case "gemini":
		if c.Providers.Gemini != nil {
			return *c.Providers.Gemini, nil
		}
	}
	return ProviderConfig{}, fmt.Errorf("%w: %s", ErrNoProvider, name)
}
