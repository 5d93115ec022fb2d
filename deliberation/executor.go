package deliberation

import (
	"context"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/internal/ctxkeys"
	"github.com/cameron5906/conclave/internal/metrics"
	"github.com/cameron5906/conclave/termination"
	"github.com/cameron5906/conclave/transcript"
	"github.com/cameron5906/conclave/voting"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// Executor runs multi-round deliberations. Executors are stateless and
// safe to reuse and share across concurrent executions; all per-run state
// lives in the transcript.State created for each Execute call.
type Executor struct {
	Logger  *zap.Logger
	Metrics *metrics.Collector
}

// NewExecutor returns an Executor with no-op logging/metrics.
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

// Failure wraps a Result's failure message as an error.
type Failure struct{ Message string }

func (f *Failure) Error() string { return f.Message }

// Execute drives the S0-S5 state machine: check termination before
// advancing the round, run one round in the configured mode, score
// convergence, and repeat until termination fires, then synthesize a
// typed result from the last round's responses. Go methods cannot carry
// their own type parameters, so Execute is a package-level generic
// function taking the Executor explicitly rather than a method.
func Execute[T any](e *Executor, ctx context.Context, task string, opts Options) (Result[T], error) {
	if len(opts.Agents) == 0 {
		return Result[T]{}, ErrNoAgents
	}
	if opts.Termination == nil {
		return Result[T]{}, ErrNoTermination
	}

	tracer := otel.Tracer("conclave/deliberation")
	ctx, span := tracer.Start(ctx, "deliberation.execute")
	defer span.End()

	ctx = ctxkeys.WithRunID(ctx, uuid.NewString())
	logger := e.Logger
	if runID, ok := ctxkeys.RunID(ctx); ok {
		logger = logger.With(zap.String("run_id", runID))
	}

	participantIDs := make([]string, 0, len(opts.Agents))
	for _, a := range opts.Agents {
		participantIDs = append(participantIDs, a.ID())
	}
	state := transcript.NewState(task, participantIDs)

	logger.Info("deliberation started", zap.Int("agent_count", len(opts.Agents)), zap.String("mode", string(opts.Mode)))
	opts.emit(StageInitializing, 0, "", 0, 0, nil, "starting deliberation")

	var (
		decisionReason string
		lastRound      []transcript.Message
	)

	for {
		// S1: CheckTerminate, evaluated before the round is advanced.
		if ctx.Err() != nil {
			return cancelledResult[T](state, decisionReason), nil
		}
		opts.emit(StageCheckingTermination, state.CurrentRound, "", state.TotalTokensUsed, state.Elapsed(), state.ConvergenceScore, "checking termination")

		decision, err := opts.Termination.Check(ctx, state)
		if err != nil {
			return Result[T]{Success: false, Error: err.Error(), State: state, TotalRounds: state.CurrentRound, TotalTokens: state.TotalTokensUsed, TotalTime: state.Elapsed()}, nil
		}
		if decision.ShouldTerminate {
			decisionReason = string(decision.Reason)
			if e.Metrics != nil {
				e.Metrics.DeliberationTermination.WithLabelValues(string(decision.Reason)).Inc()
			}
			break
		}

		if ctx.Err() != nil {
			return cancelledResult[T](state, decisionReason), nil
		}

		// S2: AdvanceRound.
		state.CurrentRound++
		roundCtx := ctxkeys.WithRound(ctx, state.CurrentRound)
		roundLogger := logger
		if round, ok := ctxkeys.Round(roundCtx); ok {
			roundLogger = logger.With(zap.Int("round", round))
		}
		roundLogger.Debug("round starting")
		opts.emit(StageRoundStarting, state.CurrentRound, "", state.TotalTokensUsed, state.Elapsed(), state.ConvergenceScore, "round starting")

		// S3: RunRound.
		messages, cancelled, err := e.runRound(roundCtx, roundLogger, state, opts)
		if cancelled {
			return cancelledResult[T](state, decisionReason), nil
		}
		if err != nil {
			return Result[T]{Success: false, Error: err.Error(), State: state, TotalRounds: state.CurrentRound, TotalTokens: state.TotalTokensUsed, TotalTime: state.Elapsed()}, nil
		}
		lastRound = messages
		if e.Metrics != nil {
			e.Metrics.DeliberationRounds.WithLabelValues(string(opts.Mode)).Inc()
		}
		roundLogger.Debug("round complete", zap.Int("message_count", len(messages)))
		opts.emit(StageRoundComplete, state.CurrentRound, "", state.TotalTokensUsed, state.Elapsed(), state.ConvergenceScore, "round complete")

		if ctx.Err() != nil {
			return cancelledResult[T](state, decisionReason), nil
		}

		// S4: Convergence.
		if opts.Convergence != nil {
			score, err := opts.Convergence.Score(ctx, state)
			if err != nil {
				return Result[T]{Success: false, Error: err.Error(), State: state, TotalRounds: state.CurrentRound, TotalTokens: state.TotalTokensUsed, TotalTime: state.Elapsed()}, nil
			}
			state.ConvergenceScore = &score
			state.Converged = score >= opts.ConvergenceThreshold && opts.ConvergenceThreshold > 0
			opts.emit(StageEvaluatingConvergence, state.CurrentRound, "", state.TotalTokensUsed, state.Elapsed(), state.ConvergenceScore, "convergence evaluated")
		}
	}

	// S5: Synthesize.
	opts.emit(StageSynthesizing, state.CurrentRound, "", state.TotalTokensUsed, state.Elapsed(), state.ConvergenceScore, "synthesizing result")

	responses := synthesisResponses(state, lastRound)
	if len(responses) == 0 {
		return Result[T]{Success: false, Error: "No agent responses received", State: state, TotalRounds: state.CurrentRound, TotalTokens: state.TotalTokensUsed, TotalTime: state.Elapsed(), TerminationReason: termination.Reason(decisionReason)}, nil
	}

	strategy := opts.VotingStrategy
	if strategy == nil {
		strategy = voting.Majority{}
	}
	vc := opts.VotingContext
	vc.Logger = logger
	votingResult := strategy.Vote(ctx, task, responses, vc)
	e.recordVote(strategy.Name(), votingResult)
	value := extractValue[T](votingResult)

	finalConvergence := 0.0
	if state.ConvergenceScore != nil {
		finalConvergence = *state.ConvergenceScore
	}

	logger.Info("deliberation complete", zap.Int("total_rounds", state.CurrentRound), zap.String("strategy", votingResult.Strategy))
	opts.emit(StageComplete, state.CurrentRound, "", state.TotalTokensUsed, state.Elapsed(), state.ConvergenceScore, "deliberation complete")

	return Result[T]{
		Success:               true,
		Value:                 value,
		State:                 state,
		TerminationReason:     termination.Reason(decisionReason),
		TotalRounds:           state.CurrentRound,
		TotalTokens:           state.TotalTokensUsed,
		TotalTime:             state.Elapsed(),
		FinalConvergenceScore: finalConvergence,
	}, nil
}

// recordVote mirrors workflow.Executor.recordVote: one conclave_votes_total
// increment per synthesis vote, keyed by strategy and outcome.
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

func cancelledResult[T any](state *transcript.State, reason string) Result[T] {
	return Result[T]{
		Success:           false,
		Error:             "Deliberation was cancelled",
		State:             state,
		TerminationReason: termination.Reason(reason),
		TotalRounds:       state.CurrentRound,
		TotalTokens:       state.TotalTokensUsed,
		TotalTime:         state.Elapsed(),
	}
}

// synthesisResponses builds the agent-response list voted over at S5: the
// last completed round's messages, or each agent's most recent message if
// that round produced nothing (e.g. termination fired before any round
// ran).
func synthesisResponses(state *transcript.State, lastRound []transcript.Message) []*agent.AgentResponse {
	if len(lastRound) > 0 {
		return toResponses(lastRound)
	}
	var out []*agent.AgentResponse
	for _, id := range state.ParticipatingAgentIDs {
		if m, ok := state.LastPosition(id); ok {
			out = append(out, toResponse(m))
		}
	}
	return out
}

func toResponses(msgs []transcript.Message) []*agent.AgentResponse {
	out := make([]*agent.AgentResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toResponse(m))
	}
	return out
}

func toResponse(m transcript.Message) *agent.AgentResponse {
	return &agent.AgentResponse{
		AgentID:            m.AgentID,
		AgentName:          m.AgentName,
		Text:               m.Content,
		StructuredOutput:   m.StructuredOutput,
		StructuredOutputOK: len(m.StructuredOutput) > 0,
	}
}
