package agent

import (
	"github.com/cameron5906/conclave/internal/metrics"
	"github.com/cameron5906/conclave/llm"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AgentBuilder fluently composes an Agent. Validation errors accumulate
// and surface on Build rather than panicking mid-chain.
type AgentBuilder struct {
	id          string
	name        string
	personality Personality
	provider    llm.Provider
	tools       *ToolSet
	defaults    llm.CompletionOptions
	logger      *zap.Logger
	metrics     *metrics.Collector

	errs []error
}

// NewAgentBuilder starts building an agent with the given display name.
func NewAgentBuilder(name string) *AgentBuilder {
	return &AgentBuilder{
		name:  name,
		tools: NewToolSet(),
	}
}

// WithID overrides the generated agent id.
func (b *AgentBuilder) WithID(id string) *AgentBuilder {
	b.id = id
	return b
}

// WithProvider sets the LLM capability the agent invokes.
func (b *AgentBuilder) WithProvider(p llm.Provider) *AgentBuilder {
	b.provider = p
	return b
}

// WithPersonality sets the agent's personality descriptor.
func (b *AgentBuilder) WithPersonality(p Personality) *AgentBuilder {
	b.personality = p
	return b
}

// WithDefaults sets the default completion options merged under the
// personality-derived temperature/system prompt.
func (b *AgentBuilder) WithDefaults(opts llm.CompletionOptions) *AgentBuilder {
	b.defaults = opts
	return b
}

// WithTool registers one tool; duplicate names accumulate as a build error.
func (b *AgentBuilder) WithTool(t Tool) *AgentBuilder {
	if err := b.tools.Add(t); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// WithLogger sets the agent's scoped logger.
func (b *AgentBuilder) WithLogger(logger *zap.Logger) *AgentBuilder {
	b.logger = logger
	return b
}

// WithMetrics sets the metrics collector the agent records invocations against.
func (b *AgentBuilder) WithMetrics(m *metrics.Collector) *AgentBuilder {
	b.metrics = m
	return b
}

// Build validates and returns the finished Agent.
func (b *AgentBuilder) Build() (*Agent, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if b.name == "" {
		return nil, ErrEmptyName
	}
	if b.provider == nil {
		return nil, ErrProviderNotSet
	}

	id := b.id
	if id == "" {
		id = uuid.NewString()
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("agent_id", id), zap.String("agent_name", b.name))

	return &Agent{
		id:          id,
		name:        b.name,
		personality: b.personality,
		provider:    b.provider,
		tools:       b.tools,
		defaults:    b.defaults,
		logger:      logger,
		metrics:     b.metrics,
	}, nil
}
