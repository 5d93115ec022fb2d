package deliberation

import (
	"encoding/json"
	"time"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/contextwindow"
	"github.com/cameron5906/conclave/convergence"
	"github.com/cameron5906/conclave/termination"
	"github.com/cameron5906/conclave/transcript"
	"github.com/cameron5906/conclave/voting"
)

// Mode selects how a round's participants are sequenced and what each one
// observes of the prior round.
type Mode string

const (
	RoundRobin Mode = "round_robin"
	Debate     Mode = "debate"
	Moderated  Mode = "moderated"
	FreeForm   Mode = "free_form"
)

// Stage tags a point in the deliberation executor's lifecycle.
type Stage string

const (
	StageInitializing          Stage = "initializing"
	StageRoundStarting         Stage = "round_starting"
	StageAgentSpeaking         Stage = "agent_speaking"
	StageRoundComplete         Stage = "round_complete"
	StageEvaluatingConvergence Stage = "evaluating_convergence"
	StageCheckingTermination   Stage = "checking_termination"
	StageSynthesizing          Stage = "synthesizing"
	StageComplete              Stage = "complete"
	StageFailed                Stage = "failed"
)

// ProgressEvent is emitted as the deliberation advances through its stages.
type ProgressEvent struct {
	Stage                Stage
	CurrentRound         int
	MaxRounds            *int
	CurrentSpeaker       string
	TokensUsed           int
	TokenBudget          *int
	Elapsed              time.Duration
	TimeBudget           *time.Duration
	ConvergenceScore     *float64
	ConvergenceThreshold *float64
	Message              string
}

// Options configures one Execute call.
type Options struct {
	Agents []*agent.Agent

	// Moderator is required for Moderated mode; if nil, Moderated falls
	// back to RoundRobin.
	Moderator *agent.Agent

	Mode Mode

	// ContextManager shapes each agent's observable history. Nil means
	// every agent sees only the identity/participants system message.
	ContextManager contextwindow.Manager

	Termination termination.Strategy
	Convergence convergence.Calculator

	VotingStrategy voting.Strategy
	VotingContext  voting.VotingContext

	// SchemaHint, when set, routes agent invocations through
	// ProcessStructured instead of Process.
	SchemaHint string

	// MaxRoundsHint, TimeBudget and TokenBudget surface as MaxRounds,
	// TimeBudget and TokenBudget on progress events only; the actual bound
	// is enforced by Termination.
	MaxRoundsHint int
	TimeBudget    time.Duration
	TokenBudget   int

	ConvergenceThreshold float64

	OnProgress func(ProgressEvent)
}

func (o Options) emit(stage Stage, round int, speaker string, tokensUsed int, elapsed time.Duration, convergenceScore *float64, message string) {
	if o.OnProgress == nil {
		return
	}
	evt := ProgressEvent{
		Stage:            stage,
		CurrentRound:     round,
		CurrentSpeaker:   speaker,
		TokensUsed:       tokensUsed,
		Elapsed:          elapsed,
		ConvergenceScore: convergenceScore,
		Message:          message,
	}
	if o.MaxRoundsHint > 0 {
		n := o.MaxRoundsHint
		evt.MaxRounds = &n
	}
	if o.TokenBudget > 0 {
		n := o.TokenBudget
		evt.TokenBudget = &n
	}
	if o.TimeBudget > 0 {
		d := o.TimeBudget
		evt.TimeBudget = &d
	}
	if o.ConvergenceThreshold > 0 {
		t := o.ConvergenceThreshold
		evt.ConvergenceThreshold = &t
	}
	o.OnProgress(evt)
}

// Result is produced by exactly one Execute[T] call.
type Result[T any] struct {
	Success               bool
	Value                 T
	State                 *transcript.State
	TerminationReason     termination.Reason
	TotalRounds           int
	TotalTokens           int
	TotalTime             time.Duration
	FinalConvergenceScore float64
	Error                 string
}

// extractValue mirrors workflow's typed extraction over a voting result.
func extractValue[T any](vr voting.VotingResult) T {
	var zero T
	if _, ok := any(zero).(string); ok {
		if text, ok := any(vr.WinningText).(T); ok {
			return text
		}
		return zero
	}
	if len(vr.WinningStructuredOutput) == 0 {
		return zero
	}
	var out T
	if err := json.Unmarshal(vr.WinningStructuredOutput, &out); err != nil {
		return zero
	}
	return out
}
