package session

import (
	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/config"
)

// resolvePersonality converts a declarative PersonalityConfig into a
// concrete agent.Personality, preferring Preset over Custom when both are
// set.
func resolvePersonality(pc config.PersonalityConfig) (agent.Personality, error) {
	if pc.Preset != "" {
		p, ok := agent.ResolvePreset(pc.Preset)
		if !ok {
			return agent.Personality{}, ErrUnknownPersonalityPreset
		}
		return p, nil
	}
	if pc.Custom != nil {
		c := pc.Custom
		builder := agent.NewPersonalityBuilder(c.Name).
			WithDescription(c.Description).
			WithSystemPrompt(c.SystemPrompt).
			WithCreativity(c.Creativity).
			WithPrecision(c.Precision)
		if c.Expertise != "" {
			builder = builder.WithExpertise(c.Expertise)
		}
		if c.CommunicationStyle != "" {
			builder = builder.WithCommunicationStyle(agent.CommunicationStyle(c.CommunicationStyle))
		}
		for k, v := range c.Traits {
			builder = builder.WithTrait(k, v)
		}
		return builder.Build()
	}
	return agent.Personality{}, ErrNoPersonality
}
