package voting

import (
	"context"
	"encoding/json"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/llm"
	"go.uber.org/zap"
)

// defaultConsensusThreshold is used when VotingContext.ConsensusThreshold
// is left at its zero value.
const defaultConsensusThreshold = 0.6

// VotingContext is passed read-only into every voting strategy.
type VotingContext struct {
	// Weights maps agent id to its voting weight. Missing entries default
	// to 1.0.
	Weights map[string]float64

	// ConsensusThreshold is the score below which a workflow may retry
	// with the Consensus strategy. Zero means "use the default" (0.6).
	ConsensusThreshold float64

	AllowAbstention bool

	// MaxRounds is carried for strategies that iterate. None of the
	// built-in strategies reads it; RankedChoice's runoff over its single
	// arbiter ballot settles in its first round.
	MaxRounds int

	// Arbiter is an LLM capability used to judge or synthesize, distinct
	// from the participating agents. Nil means "no arbiter available" —
	// strategies that require one fall back to a documented default.
	Arbiter llm.Provider

	// Logger receives one debug-level record per Vote call, scoped by the
	// caller (session/run/round). Nil is treated as a no-op logger.
	Logger *zap.Logger
}

// Threshold returns the effective consensus threshold, applying the
// documented default when unset.
func (vc VotingContext) Threshold() float64 {
	if vc.ConsensusThreshold <= 0 {
		return defaultConsensusThreshold
	}
	return vc.ConsensusThreshold
}

// Weight returns the configured weight for agentID, defaulting to 1.0.
func (vc VotingContext) Weight(agentID string) float64 {
	if vc.Weights == nil {
		return 1.0
	}
	if w, ok := vc.Weights[agentID]; ok {
		return w
	}
	return 1.0
}

// Confidence returns resp's confidence, defaulting to 1.0 when unset.
func Confidence(resp *agent.AgentResponse) float64 {
	if resp.Confidence == nil {
		return 1.0
	}
	return *resp.Confidence
}

// VotingResult is returned once per voting call.
type VotingResult struct {
	WinningText             string
	WinningStructuredOutput json.RawMessage
	WinningAgentID          string
	Strategy                string
	Tally                   map[string]int
	Consensus               float64
}

// Strategy reconciles a set of agent responses to the same task into one
// winning answer plus a consensus score.
type Strategy interface {
	Name() string
	Vote(ctx context.Context, task string, responses []*agent.AgentResponse, vc VotingContext) VotingResult
}
