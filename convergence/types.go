package convergence

import (
	"context"

	"github.com/cameron5906/conclave/transcript"
)

// Calculator scores how much a deliberation's participants have converged,
// in [0,1]. Implementations are immutable after construction and safely
// shared across concurrent executions.
type Calculator interface {
	Name() string
	Score(ctx context.Context, state *transcript.State) (float64, error)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
