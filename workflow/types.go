package workflow

import (
	"encoding/json"
	"time"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/voting"
)

// Stage tags a point in the single-shot workflow's lifecycle.
type Stage string

const (
	StageInitializing      Stage = "initializing"
	StageAgentProcessing   Stage = "agent_processing"
	StageVoting            Stage = "voting"
	StageConsensusBuilding Stage = "consensus_building"
	StageFinalizing        Stage = "finalizing"
	StageCompleted         Stage = "completed"
	StageFailed            Stage = "failed"
)

// ProgressEvent is emitted as the workflow advances through its stages.
type ProgressEvent struct {
	Stage           Stage
	Message         string
	CompletedAgents int
	TotalAgents     int
	CurrentAgentID  string
}

// Options configures one Execute call.
type Options struct {
	Agents                  []*agent.Agent
	VotingStrategy          voting.Strategy
	VotingContext           voting.VotingContext
	EnableParallelExecution bool
	Timeout                 time.Duration
	RequireConsensus        bool
	// MinimumConsensusScore, when set, overrides VotingContext.Threshold()
	// as the score below which RequireConsensus triggers a consensus
	// retry. Zero defers to VotingContext.Threshold() (default 0.6).
	MinimumConsensusScore float64

	// SchemaHint, when set, routes agent invocations through
	// ProcessStructured instead of Process. Leave empty when T is string.
	SchemaHint string

	OnProgress func(ProgressEvent)
}

// consensusThreshold returns the score below which RequireConsensus
// triggers a consensus retry: MinimumConsensusScore when the caller set
// one, otherwise VotingContext's own threshold (default 0.6).
func (o Options) consensusThreshold() float64 {
	if o.MinimumConsensusScore > 0 {
		return o.MinimumConsensusScore
	}
	return o.VotingContext.Threshold()
}

func (o Options) emit(stage Stage, message string, completed, total int, currentAgentID string) {
	if o.OnProgress == nil {
		return
	}
	o.OnProgress(ProgressEvent{
		Stage:           stage,
		Message:         message,
		CompletedAgents: completed,
		TotalAgents:     total,
		CurrentAgentID:  currentAgentID,
	})
}

// Result is produced by exactly one Execute[T] call.
type Result[T any] struct {
	Success        bool
	Value          T
	AgentResponses []*agent.AgentResponse
	VotingResult   voting.VotingResult
	Elapsed        time.Duration
	Error          string
}

// extractValue extracts T from vr: the winning text when T is string,
// the cast winning structured output otherwise. Returns the zero value of
// T if extraction fails — extraction failure is never fatal.
func extractValue[T any](vr voting.VotingResult) T {
	var zero T
	if s, ok := any(zero).(string); ok {
		_ = s
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
