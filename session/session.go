package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/config"
	"github.com/cameron5906/conclave/internal/metrics"
	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/voting"
	"github.com/cameron5906/conclave/workflow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is a configuration aggregate: it owns a set of vendor provider
// capabilities plus the agents built from them, and hands out builders for
// one-shot workflows and multi-round deliberations that share that roster.
// A Session is safe for concurrent use. Provider clients are built on
// first use, and agents can still be added after New via AddAgent or
// NewAgent.
type Session struct {
	id      string
	cfg     config.EngineConfig
	logger  *zap.Logger
	metrics *metrics.Collector

	mu        sync.Mutex
	providers map[string]llm.Provider
	agents    map[string]*agent.Agent
	order     []string
}

// ID returns the session's generated identifier, attached to its logger as
// the session_id field every agent and executor built from it inherits.
func (s *Session) ID() string { return s.id }

// Option configures a Session at construction.
type Option func(*Session)

// WithLogger sets the logger threaded through every agent the session builds.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithMetrics sets the Prometheus collector every agent and executor built
// from this session records against. Defaults to metrics.Noop() when no
// collector is supplied; the configuration's Telemetry.Enabled is not read.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Session) { s.metrics = m }
}

// New builds a Session from cfg, constructing one Agent per cfg.Agents
// entry. Provider clients are built lazily and cached per vendor.
func New(cfg config.EngineConfig, opts ...Option) (*Session, error) {
	s := &Session{
		id:        uuid.NewString(),
		cfg:       cfg,
		providers: make(map[string]llm.Provider),
		agents:    make(map[string]*agent.Agent),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.Noop()
	}
	s.logger = s.logger.With(zap.String("session_id", s.id))

	for _, ac := range cfg.Agents {
		a, err := s.buildConfiguredAgent(ac)
		if err != nil {
			return nil, fmt.Errorf("session: build agent %q: %w", ac.ID, err)
		}
		s.AddAgent(a)
	}
	return s, nil
}

func (s *Session) buildConfiguredAgent(ac config.AgentConfig) (*agent.Agent, error) {
	provider, err := s.providerFor(ac.Provider)
	if err != nil {
		return nil, err
	}
	personality, err := resolvePersonality(ac.Personality)
	if err != nil {
		return nil, err
	}

	defaults := llm.CompletionOptions{
		Model:       ac.Model,
		Temperature: floatPtr(s.cfg.Defaults.Temperature),
		MaxTokens:   s.cfg.Defaults.MaxTokens,
	}
	if ac.Model == "" {
		defaults.Model = s.cfg.Defaults.Model
	}

	return agent.NewAgentBuilder(ac.Name).
		WithID(ac.ID).
		WithProvider(provider).
		WithPersonality(personality).
		WithDefaults(defaults).
		WithLogger(s.logger).
		WithMetrics(s.metrics).
		Build()
}

func floatPtr(v float32) *float32 { return &v }

// providerFor returns the cached provider for vendor, building and
// caching it on first use.
func (s *Session) providerFor(vendor string) (llm.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.providers[vendor]; ok {
		return p, nil
	}
	pc, err := s.cfg.ProviderFor(vendor)
	if err != nil {
		return nil, err
	}
	p, err := buildProvider(vendor, pc)
	if err != nil {
		return nil, err
	}
	s.providers[vendor] = p
	return p, nil
}

// AddAgent adds a previously built agent to the session's roster. Useful
// for wiring in an agent whose provider wasn't declared in the session's
// configuration (e.g. a mock in tests, or one shared across sessions).
func (s *Session) AddAgent(a *agent.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.agents[a.ID()]; !exists {
		s.order = append(s.order, a.ID())
	}
	s.agents[a.ID()] = a
}

// Agent returns the agent registered under id.
func (s *Session) Agent(id string) (*agent.Agent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	return a, ok
}

// Agents returns every registered agent, in registration order.
func (s *Session) Agents() []*agent.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*agent.Agent, len(s.order))
	for i, id := range s.order {
		out[i] = s.agents[id]
	}
	return out
}

// QuickExecute runs a single-shot workflow over every registered agent,
// resolving strategyTag against voting.Registry, and returns the winning
// text. It is the one-line entry point for "ask the roster and vote".
func (s *Session) QuickExecute(ctx context.Context, task string, strategyTag string) (string, error) {
	strategy, ok := voting.Resolve(strategyTag)
	if !ok {
		return "", fmt.Errorf("session: unknown voting strategy tag %q", strategyTag)
	}

	opts := workflow.Options{
		Agents:                  s.Agents(),
		VotingStrategy:          strategy,
		EnableParallelExecution: true,
	}
	return workflow.NewExecutor().
		WithLogger(s.logger).
		WithMetrics(s.metrics).
		RunText(ctx, task, opts)
}

// NewWorkflow starts a WorkflowBuilder seeded with every registered agent.
func (s *Session) NewWorkflow() *WorkflowBuilder {
	return &WorkflowBuilder{
		session: s,
		agents:  s.Agents(),
	}
}

// NewDeliberation starts a DeliberationBuilder seeded with every registered agent.
func (s *Session) NewDeliberation() *DeliberationBuilder {
	return &DeliberationBuilder{
		session: s,
		agents:  s.Agents(),
	}
}

// NewAgent starts a fluent builder for an agent not declared in the
// session's configuration, resolving its provider from vendor and
// registering the finished agent on Build.
func (s *Session) NewAgent(name, vendor string) *AgentBuilder {
	return &AgentBuilder{
		session: s,
		vendor:  vendor,
		inner:   agent.NewAgentBuilder(name),
	}
}
