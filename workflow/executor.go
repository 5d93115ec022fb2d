package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/internal/ctxkeys"
	"github.com/cameron5906/conclave/internal/metrics"
	"github.com/cameron5906/conclave/voting"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Executor runs single-shot fan-out/voting workflows. Executors are
// stateless and safe to reuse and share across concurrent executions; all
// per-run state lives in the Options/Result passed to each Execute call.
type Executor struct {
	Logger  *zap.Logger
	Metrics *metrics.Collector
}

// NewExecutor returns an Executor with no-op logging/metrics. Use
// WithLogger/WithMetrics to wire real instrumentation.
func NewExecutor() *Executor {
	return &Executor{Logger: zap.NewNop(), Metrics: metrics.Noop()}
}

func (e *Executor) WithLogger(logger *zap.Logger) *Executor {
	e.Logger = logger
	return e
}

func (e *Executor) WithMetrics(m *metrics.Collector) *Executor {
	e.Metrics = m
	return e
}

// RunText runs a single-shot workflow returning plain text. It takes
// Options as a third argument, so it does not satisfy
// termination.WorkflowRunner itself; BoundRunner pairs it with fixed
// Options to provide that shape.
func (e *Executor) RunText(ctx context.Context, task string, opts Options) (string, error) {
	result, err := Execute[string](e, ctx, task, opts)
	if err != nil {
		return "", err
	}
	if !result.Success {
		return "", &Failure{Message: result.Error}
	}
	return result.Value, nil
}

// Failure wraps a Result's failure message as an error, for callers (like
// RunText) that need the Go error idiom.
type Failure struct{ Message string }

func (f *Failure) Error() string { return f.Message }

// BoundRunner pairs an Executor with fixed Options, exposing the
// single-argument RunText(ctx, task) shape that termination's
// WorkflowRunner interface expects.
type BoundRunner struct {
	Executor *Executor
	Options  Options
}

func (b BoundRunner) RunText(ctx context.Context, task string) (string, error) {
	return b.Executor.RunText(ctx, task, b.Options)
}

// Execute fans task out to opts.Agents, reconciles their responses via
// opts.VotingStrategy, and extracts T from the winning answer. Go methods
// cannot carry their own type parameters, so Execute is a package-level
// generic function taking the Executor explicitly rather than a method.
func Execute[T any](e *Executor, ctx context.Context, task string, opts Options) (Result[T], error) {
	if len(opts.Agents) == 0 {
		return Result[T]{}, ErrNoAgents
	}

	start := time.Now()
	tracer := otel.Tracer("conclave/workflow")
	ctx, span := tracer.Start(ctx, "workflow.execute")
	defer span.End()

	ctx = ctxkeys.WithRunID(ctx, uuid.NewString())
	logger := e.Logger
	if runID, ok := ctxkeys.RunID(ctx); ok {
		logger = logger.With(zap.String("run_id", runID))
	}

	logger.Info("workflow started", zap.Int("agent_count", len(opts.Agents)))
	opts.emit(StageInitializing, "starting workflow", 0, len(opts.Agents), "")

	responses, timedOut, cancelled := e.invokeAgents(ctx, logger, task, opts)

	if cancelled {
		logger.Info("workflow cancelled", zap.Duration("elapsed", time.Since(start)))
		return Result[T]{Success: false, Error: "Workflow was cancelled", Elapsed: time.Since(start), AgentResponses: responses}, nil
	}
	if timedOut {
		logger.Warn("workflow timed out", zap.Duration("timeout", opts.Timeout))
		return Result[T]{Success: false, Error: "workflow timed out after " + opts.Timeout.String(), Elapsed: time.Since(start), AgentResponses: responses}, nil
	}
	if len(responses) == 0 {
		logger.Warn("workflow received no agent responses")
		return Result[T]{Success: false, Error: "No agent responses received", Elapsed: time.Since(start)}, nil
	}

	logger.Debug("voting", zap.Int("response_count", len(responses)))
	opts.emit(StageVoting, "reconciling agent responses", len(responses), len(opts.Agents), "")
	votingResult := e.vote(ctx, logger, task, responses, opts)

	if opts.RequireConsensus && votingResult.Consensus < opts.consensusThreshold() {
		logger.Debug("consensus below threshold, retrying with consensus strategy", zap.Float64("consensus", votingResult.Consensus))
		opts.emit(StageConsensusBuilding, "consensus below threshold, retrying with consensus strategy", len(responses), len(opts.Agents), "")
		consensusCtx := opts.VotingContext
		consensusCtx.Logger = logger
		votingResult = voting.Consensus{}.Vote(ctx, task, responses, consensusCtx)
		e.recordVote("consensus", votingResult)
	}

	opts.emit(StageFinalizing, "extracting result", len(responses), len(opts.Agents), "")
	value := extractValue[T](votingResult)

	logger.Info("workflow complete", zap.Duration("elapsed", time.Since(start)), zap.String("strategy", votingResult.Strategy))
	opts.emit(StageCompleted, "workflow complete", len(responses), len(opts.Agents), "")

	return Result[T]{
		Success:        true,
		Value:          value,
		AgentResponses: responses,
		VotingResult:   votingResult,
		Elapsed:        time.Since(start),
	}, nil
}

func (e *Executor) vote(ctx context.Context, logger *zap.Logger, task string, responses []*agent.AgentResponse, opts Options) voting.VotingResult {
	strategy := opts.VotingStrategy
	if strategy == nil {
		strategy = voting.Majority{}
	}
	vc := opts.VotingContext
	vc.Logger = logger
	result := strategy.Vote(ctx, task, responses, vc)
	e.recordVote(strategy.Name(), result)
	return result
}

func (e *Executor) recordVote(strategyName string, result voting.VotingResult) {
	if e.Metrics == nil {
		return
	}
	outcome := "voted"
	if result.WinningText == "" {
		outcome = "empty"
	}
	e.Metrics.VotesTotal.WithLabelValues(strategyName, outcome).Inc()
}

// invokeAgents runs every configured agent, concurrently when
// Options.EnableParallelExecution is set (under a deadline linked to
// Options.Timeout), else sequentially in registration order. Returns
// whether the run stopped due to a deadline trip that is not a user
// cancellation, or due to user cancellation itself.
func (e *Executor) invokeAgents(ctx context.Context, logger *zap.Logger, task string, opts Options) ([]*agent.AgentResponse, bool, bool) {
	if !opts.EnableParallelExecution {
		return e.invokeSequential(ctx, logger, task, opts)
	}
	return e.invokeParallel(ctx, logger, task, opts)
}

func (e *Executor) invokeSequential(ctx context.Context, logger *zap.Logger, task string, opts Options) ([]*agent.AgentResponse, bool, bool) {
	responses := make([]*agent.AgentResponse, 0, len(opts.Agents))
	for i, a := range opts.Agents {
		if ctx.Err() != nil {
			return responses, false, true
		}
		opts.emit(StageAgentProcessing, "invoking agent", i, len(opts.Agents), a.ID())
		responses = append(responses, e.invokeOne(ctx, logger, a, task, opts))
	}
	return responses, false, false
}

func (e *Executor) invokeParallel(ctx context.Context, logger *zap.Logger, task string, opts Options) ([]*agent.AgentResponse, bool, bool) {
	runCtx := ctx
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		mu        sync.Mutex
		responses []*agent.AgentResponse
		completed int
	)

	g, gCtx := errgroup.WithContext(runCtx)
	for _, a := range opts.Agents {
		a := a
		g.Go(func() error {
			resp := e.invokeOne(gCtx, logger, a, task, opts)
			mu.Lock()
			responses = append(responses, resp)
			completed++
			opts.emit(StageAgentProcessing, "agent completed", completed, len(opts.Agents), a.ID())
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return responses, false, true
	}
	if runCtx.Err() != nil {
		return responses, true, false
	}
	return responses, false, false
}

func (e *Executor) invokeOne(ctx context.Context, logger *zap.Logger, a *agent.Agent, task string, opts Options) *agent.AgentResponse {
	ctx = ctxkeys.WithAgentID(ctx, a.ID())
	if agentID, ok := ctxkeys.AgentID(ctx); ok {
		logger.Debug("invoking agent", zap.String("agent_id", agentID))
	}
	if opts.SchemaHint != "" {
		return a.ProcessStructured(ctx, task, opts.SchemaHint, nil)
	}
	return a.Process(ctx, task, nil)
}
