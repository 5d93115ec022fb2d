package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults_SaneBaseline(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "openai", cfg.Defaults.Provider)
	assert.InDelta(t, 0.7, cfg.Defaults.Temperature, 0.001)
	assert.Equal(t, 2048, cfg.Defaults.MaxTokens)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Greater(t, cfg.RequestTimeout.Seconds(), 0.0)
	assert.Empty(t, cfg.Agents)
}
