package session

import (
	"github.com/cameron5906/conclave/agent"
)

// AgentBuilder fluently composes an agent against one of the session's
// configured provider vendors, registering the finished agent on the
// session when Build succeeds.
type AgentBuilder struct {
	session   *Session
	vendor    string
	inner     *agent.AgentBuilder
	presetErr error
}

// WithID overrides the generated agent id.
func (b *AgentBuilder) WithID(id string) *AgentBuilder {
	b.inner.WithID(id)
	return b
}

// WithPersonality sets the agent's personality descriptor directly.
func (b *AgentBuilder) WithPersonality(p agent.Personality) *AgentBuilder {
	b.inner.WithPersonality(p)
	return b
}

// WithPersonalityPreset resolves key against agent.ResolvePreset and sets
// the result as the agent's personality. Unknown keys surface on Build.
func (b *AgentBuilder) WithPersonalityPreset(key string) *AgentBuilder {
	p, ok := agent.ResolvePreset(key)
	if !ok {
		b.presetErr = ErrUnknownPersonalityPreset
		return b
	}
	b.inner.WithPersonality(p)
	return b
}

// WithTool registers one tool on the agent being built.
func (b *AgentBuilder) WithTool(t agent.Tool) *AgentBuilder {
	b.inner.WithTool(t)
	return b
}

// Build resolves the vendor provider, finishes the wrapped
// agent.AgentBuilder, and registers the result on the owning session.
func (b *AgentBuilder) Build() (*agent.Agent, error) {
	if b.presetErr != nil {
		return nil, b.presetErr
	}
	provider, err := b.session.providerFor(b.vendor)
	if err != nil {
		return nil, err
	}
	a, err := b.inner.
		WithProvider(provider).
		WithLogger(b.session.logger).
		WithMetrics(b.session.metrics).
		Build()
	if err != nil {
		return nil, err
	}
	b.session.AddAgent(a)
	return a, nil
}
