package session

import "errors"

// ErrUnknownPersonalityPreset is returned when an AgentConfig names a
// preset key agent.ResolvePreset does not recognize.
var ErrUnknownPersonalityPreset = errors.New("session: unknown personality preset")

// ErrNoPersonality is returned when an AgentConfig's PersonalityConfig
// sets neither Preset nor Custom.
var ErrNoPersonality = errors.New("session: agent config has no personality")

// ErrAgentNotFound is returned when a builder references an agent id the
// session never built.
var ErrAgentNotFound = errors.New("session: agent not found")
