package termination

import (
	"context"
	"fmt"
	"time"

	"github.com/cameron5906/conclave/transcript"
)

// MaxRounds terminates once the current round reaches n.
type MaxRounds struct{ N int }

func (MaxRounds) Name() string { return "max_rounds" }

func (m MaxRounds) Check(_ context.Context, state *transcript.State) (Decision, error) {
	if state.CurrentRound >= m.N {
		return deterministic(true, ReasonMaxRoundsReached, fmt.Sprintf("reached round %d of %d", state.CurrentRound, m.N)), nil
	}
	return deterministic(false, ReasonNone, ""), nil
}

// MaxTokens terminates once total tokens used reaches n.
type MaxTokens struct{ N int }

func (MaxTokens) Name() string { return "max_tokens" }

func (m MaxTokens) Check(_ context.Context, state *transcript.State) (Decision, error) {
	if state.TotalTokensUsed >= m.N {
		return deterministic(true, ReasonMaxTokensReached, fmt.Sprintf("used %d of %d tokens", state.TotalTokensUsed, m.N)), nil
	}
	return deterministic(false, ReasonNone, ""), nil
}

// MaxTime terminates once the deliberation has run for at least D.
type MaxTime struct{ D time.Duration }

func (MaxTime) Name() string { return "max_time" }

func (m MaxTime) Check(_ context.Context, state *transcript.State) (Decision, error) {
	if state.Elapsed() >= m.D {
		return deterministic(true, ReasonMaxTimeReached, fmt.Sprintf("elapsed %s of %s", state.Elapsed(), m.D)), nil
	}
	return deterministic(false, ReasonNone, ""), nil
}

// Convergence terminates once currentRound >= MinRounds and the state's
// convergence score is at least Threshold.
type Convergence struct {
	Threshold float64
	MinRounds int // default 2 when zero
}

func (Convergence) Name() string { return "convergence" }

func (c Convergence) Check(_ context.Context, state *transcript.State) (Decision, error) {
	minRounds := c.MinRounds
	if minRounds <= 0 {
		minRounds = 2
	}
	if state.CurrentRound < minRounds || state.ConvergenceScore == nil {
		return deterministic(false, ReasonNone, ""), nil
	}
	if *state.ConvergenceScore >= c.Threshold {
		return deterministic(true, ReasonConvergenceAchieved, fmt.Sprintf("convergence %.3f >= threshold %.3f", *state.ConvergenceScore, c.Threshold)), nil
	}
	return deterministic(false, ReasonNone, ""), nil
}

// Custom terminates when Predicate returns true. Predicate may suspend.
type Custom struct {
	Predicate   func(ctx context.Context, state *transcript.State) (bool, error)
	Description string
}

func (c Custom) Name() string { return "custom" }

func (c Custom) Check(ctx context.Context, state *transcript.State) (Decision, error) {
	terminate, err := c.Predicate(ctx, state)
	if err != nil {
		return Decision{}, err
	}
	if terminate {
		return deterministic(true, ReasonCustomCondition, c.Description), nil
	}
	return deterministic(false, ReasonNone, ""), nil
}
