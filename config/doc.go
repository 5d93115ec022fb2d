// Package config defines the declarative configuration surface for an
// engine session: provider credentials, per-agent defaults, the agent
// roster, and telemetry toggles. It loads from YAML via gopkg.in/yaml.v3
// and overlays secrets from the environment.
package config
