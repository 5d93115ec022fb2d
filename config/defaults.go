package config

import "time"

const (
	defaultTemperature    = 0.7
	defaultMaxTokens      = 2048
	defaultRequestTimeout = 2 * time.Minute
)

// Defaults returns a sane EngineConfig with no credentials and no agents:
// callers populate Providers/Agents and leave Defaults/Telemetry/Timeout
// at these values unless they have a reason not to.
func Defaults() EngineConfig {
	return EngineConfig{
		Defaults: DefaultsConfig{
			Provider:    "openai",
			Temperature: defaultTemperature,
			MaxTokens:   defaultMaxTokens,
		},
		Telemetry:      TelemetryConfig{Enabled: false},
		RequestTimeout: defaultRequestTimeout,
	}
}
