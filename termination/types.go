package termination

import (
	"context"

	"github.com/cameron5906/conclave/transcript"
)

// Reason tags why a Strategy terminated (or would terminate) a deliberation.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonMaxRoundsReached    Reason = "max_rounds_reached"
	ReasonMaxTokensReached    Reason = "max_tokens_reached"
	ReasonMaxTimeReached      Reason = "max_time_reached"
	ReasonConvergenceAchieved Reason = "convergence_achieved"
	ReasonCustomCondition     Reason = "custom_condition"
	ReasonAgentDecision       Reason = "agent_decision"
	ReasonWorkflowDecision    Reason = "workflow_decision"
	ReasonManualStop          Reason = "manual_stop"
	ReasonCompositeAll        Reason = "composite_all"
)

// Decision is produced by every termination check.
type Decision struct {
	ShouldTerminate bool
	Reason          Reason
	Explanation     string
	Confidence      float64 // 1.0 for deterministic reasons
}

// Strategy decides whether a deliberation should stop, given its current
// state. Strategies are immutable after construction and safely shared
// across concurrent executions.
type Strategy interface {
	Name() string
	Check(ctx context.Context, state *transcript.State) (Decision, error)
}

func deterministic(terminate bool, reason Reason, explanation string) Decision {
	return Decision{ShouldTerminate: terminate, Reason: reason, Explanation: explanation, Confidence: 1.0}
}
