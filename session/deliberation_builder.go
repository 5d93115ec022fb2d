package session

import (
	"context"
	"fmt"
	"time"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/contextwindow"
	"github.com/cameron5906/conclave/convergence"
	"github.com/cameron5906/conclave/deliberation"
	"github.com/cameron5906/conclave/termination"
	"github.com/cameron5906/conclave/voting"
)

// DeliberationBuilder fluently composes one multi-round deliberation run.
type DeliberationBuilder struct {
	session        *Session
	agents         []*agent.Agent
	moderator      *agent.Agent
	mode           deliberation.Mode
	contextManager contextwindow.Manager
	term           termination.Strategy
	conv           convergence.Calculator
	convThreshold  float64
	votingStrategy voting.Strategy
	votingContext  voting.VotingContext
	schemaHint     string
	maxRoundsHint  int
	timeBudget     time.Duration
	tokenBudget    int
	onProgress     func(deliberation.ProgressEvent)
	pendingErr     error
}

// WithAgents narrows the roster to the named agent ids. An unknown id
// surfaces ErrAgentNotFound on RunText/RunDeliberation.
func (b *DeliberationBuilder) WithAgents(ids ...string) *DeliberationBuilder {
	agents := make([]*agent.Agent, 0, len(ids))
	for _, id := range ids {
		a, ok := b.session.Agent(id)
		if !ok {
			b.pendingErr = fmt.Errorf("%w: %s", ErrAgentNotFound, id)
			return b
		}
		agents = append(agents, a)
	}
	b.agents = agents
	return b
}

// WithModerator sets the moderator agent by id, required for Moderated mode.
// An unknown id surfaces ErrAgentNotFound on RunText/RunDeliberation.
func (b *DeliberationBuilder) WithModerator(id string) *DeliberationBuilder {
	a, ok := b.session.Agent(id)
	if !ok {
		b.pendingErr = fmt.Errorf("%w: %s", ErrAgentNotFound, id)
		return b
	}
	b.moderator = a
	return b
}

// WithMode sets the round mode.
func (b *DeliberationBuilder) WithMode(m deliberation.Mode) *DeliberationBuilder {
	b.mode = m
	return b
}

// WithContextManager sets the per-agent history projection strategy.
func (b *DeliberationBuilder) WithContextManager(m contextwindow.Manager) *DeliberationBuilder {
	b.contextManager = m
	return b
}

// WithTermination sets the termination strategy directly.
func (b *DeliberationBuilder) WithTermination(t termination.Strategy) *DeliberationBuilder {
	b.term = t
	return b
}

// WithMaxRounds is a convenience that sets Termination to
// termination.MaxRounds{N: n} and records n for progress events.
func (b *DeliberationBuilder) WithMaxRounds(n int) *DeliberationBuilder {
	b.term = termination.MaxRounds{N: n}
	b.maxRoundsHint = n
	return b
}

// WithConvergence sets the convergence calculator and the threshold at
// which a termination.Convergence strategy (if configured) fires.
func (b *DeliberationBuilder) WithConvergence(c convergence.Calculator, threshold float64) *DeliberationBuilder {
	b.conv = c
	b.convThreshold = threshold
	return b
}

// WithTimeBudget sets the time budget surfaced on progress events; pair
// with a termination.MaxTime strategy to actually enforce it.
func (b *DeliberationBuilder) WithTimeBudget(d time.Duration) *DeliberationBuilder {
	b.timeBudget = d
	return b
}

// WithTokenBudget sets the token budget surfaced on progress events; pair
// with a termination.MaxTokens strategy to actually enforce it.
func (b *DeliberationBuilder) WithTokenBudget(n int) *DeliberationBuilder {
	b.tokenBudget = n
	return b
}

// WithVotingStrategy sets the strategy used to synthesize the final answer.
func (b *DeliberationBuilder) WithVotingStrategy(s voting.Strategy) *DeliberationBuilder {
	b.votingStrategy = s
	return b
}

// WithVotingTag resolves tag against voting.Registry and sets the result.
func (b *DeliberationBuilder) WithVotingTag(tag string) *DeliberationBuilder {
	if s, ok := voting.Resolve(tag); ok {
		b.votingStrategy = s
	}
	return b
}

// WithSchemaHint routes agent invocations through ProcessStructured.
func (b *DeliberationBuilder) WithSchemaHint(hint string) *DeliberationBuilder {
	b.schemaHint = hint
	return b
}

// WithProgress registers a progress callback.
func (b *DeliberationBuilder) WithProgress(fn func(deliberation.ProgressEvent)) *DeliberationBuilder {
	b.onProgress = fn
	return b
}

func (b *DeliberationBuilder) options() deliberation.Options {
	return deliberation.Options{
		Agents:               b.agents,
		Moderator:            b.moderator,
		Mode:                 b.mode,
		ContextManager:       b.contextManager,
		Termination:          b.term,
		Convergence:          b.conv,
		VotingStrategy:       b.votingStrategy,
		VotingContext:        b.votingContext,
		SchemaHint:           b.schemaHint,
		MaxRoundsHint:        b.maxRoundsHint,
		TimeBudget:           b.timeBudget,
		TokenBudget:          b.tokenBudget,
		ConvergenceThreshold: b.convThreshold,
		OnProgress:           b.onProgress,
	}
}

// RunText executes the deliberation and returns the synthesized winning text.
func (b *DeliberationBuilder) RunText(ctx context.Context, task string) (deliberation.Result[string], error) {
	if b.pendingErr != nil {
		return deliberation.Result[string]{}, b.pendingErr
	}
	return deliberation.Execute[string](deliberation.NewExecutor().
		WithLogger(b.session.logger).
		WithMetrics(b.session.metrics), ctx, task, b.options())
}

// RunDeliberation executes the deliberation and extracts a typed result T,
// for callers that configured SchemaHint.
func RunDeliberation[T any](ctx context.Context, b *DeliberationBuilder, task string) (deliberation.Result[T], error) {
	if b.pendingErr != nil {
		return deliberation.Result[T]{}, b.pendingErr
	}
	return deliberation.Execute[T](deliberation.NewExecutor().
		WithLogger(b.session.logger).
		WithMetrics(b.session.metrics), ctx, task, b.options())
}
