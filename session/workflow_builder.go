package session

import (
	"context"
	"fmt"
	"time"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/voting"
	"github.com/cameron5906/conclave/workflow"
)

// WorkflowBuilder fluently composes one single-shot workflow.Execute call
// against a subset of a Session's agents.
type WorkflowBuilder struct {
	session        *Session
	agents         []*agent.Agent
	votingStrategy voting.Strategy
	votingContext  voting.VotingContext
	parallel       bool
	timeout        time.Duration
	schemaHint     string
	onProgress     func(workflow.ProgressEvent)
	pendingErr     error
}

// WithAgents narrows the roster to the named agent ids. An unknown id
// surfaces ErrAgentNotFound on RunText/Run.
func (b *WorkflowBuilder) WithAgents(ids ...string) *WorkflowBuilder {
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

// WithVotingStrategy sets the strategy used to reconcile agent responses.
func (b *WorkflowBuilder) WithVotingStrategy(s voting.Strategy) *WorkflowBuilder {
	b.votingStrategy = s
	return b
}

// WithVotingTag resolves tag against voting.Registry and sets the result.
func (b *WorkflowBuilder) WithVotingTag(tag string) *WorkflowBuilder {
	if s, ok := voting.Resolve(tag); ok {
		b.votingStrategy = s
	}
	return b
}

// WithVotingContext sets weights/threshold/arbiter passed into the voting call.
func (b *WorkflowBuilder) WithVotingContext(vc voting.VotingContext) *WorkflowBuilder {
	b.votingContext = vc
	return b
}

// Parallel runs agent invocations concurrently instead of sequentially.
func (b *WorkflowBuilder) Parallel() *WorkflowBuilder {
	b.parallel = true
	return b
}

// WithTimeout bounds the whole workflow run.
func (b *WorkflowBuilder) WithTimeout(d time.Duration) *WorkflowBuilder {
	b.timeout = d
	return b
}

// WithSchemaHint routes agent invocations through ProcessStructured.
func (b *WorkflowBuilder) WithSchemaHint(hint string) *WorkflowBuilder {
	b.schemaHint = hint
	return b
}

// WithProgress registers a progress callback.
func (b *WorkflowBuilder) WithProgress(fn func(workflow.ProgressEvent)) *WorkflowBuilder {
	b.onProgress = fn
	return b
}

// WithDeliberation hands this builder's agents and voting configuration
// over to a new DeliberationBuilder, letting configureBudget set rounds,
// mode, termination, and convergence before the caller runs it.
func (b *WorkflowBuilder) WithDeliberation(configureBudget func(*DeliberationBuilder)) *DeliberationBuilder {
	db := &DeliberationBuilder{
		session:        b.session,
		agents:         b.agents,
		votingStrategy: b.votingStrategy,
		votingContext:  b.votingContext,
		pendingErr:     b.pendingErr,
	}
	if configureBudget != nil {
		configureBudget(db)
	}
	return db
}

func (b *WorkflowBuilder) options() workflow.Options {
	return workflow.Options{
		Agents:                  b.agents,
		VotingStrategy:          b.votingStrategy,
		VotingContext:           b.votingContext,
		EnableParallelExecution: b.parallel,
		Timeout:                 b.timeout,
		SchemaHint:              b.schemaHint,
		OnProgress:              b.onProgress,
	}
}

// RunText executes the workflow and returns the winning text.
func (b *WorkflowBuilder) RunText(ctx context.Context, task string) (string, error) {
	if b.pendingErr != nil {
		return "", b.pendingErr
	}
	return workflow.NewExecutor().
		WithLogger(b.session.logger).
		WithMetrics(b.session.metrics).
		RunText(ctx, task, b.options())
}

// Run executes the workflow and extracts a typed result T via structured
// output, for callers that configured SchemaHint.
func Run[T any](ctx context.Context, b *WorkflowBuilder, task string) (workflow.Result[T], error) {
	if b.pendingErr != nil {
		return workflow.Result[T]{}, b.pendingErr
	}
	return workflow.Execute[T](workflow.NewExecutor().
		WithLogger(b.session.logger).
		WithMetrics(b.session.metrics), ctx, task, b.options())
}
