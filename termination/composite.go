package termination

import (
	"context"
	"strings"

	"github.com/cameron5906/conclave/transcript"
)

// CompositeMode selects how a Composite's children combine.
type CompositeMode string

const (
	// Any terminates as soon as the first child fires, in insertion
	// order. Cheap bounds checks should be registered before LLM-backed
	// judges so an already-over-budget deliberation is not asked another
	// LLM whether to stop.
	Any CompositeMode = "any"
	// All terminates only once every child fires.
	All CompositeMode = "all"
)

// Composite combines child strategies under Any or All semantics.
type Composite struct {
	Children []Strategy
	Mode     CompositeMode // defaults to Any
}

func (Composite) Name() string { return "composite" }

func (c Composite) Check(ctx context.Context, state *transcript.State) (Decision, error) {
	if c.Mode == All {
		return c.checkAll(ctx, state)
	}
	return c.checkAny(ctx, state)
}

func (c Composite) checkAny(ctx context.Context, state *transcript.State) (Decision, error) {
	for _, child := range c.Children {
		decision, err := child.Check(ctx, state)
		if err != nil {
			return Decision{}, err
		}
		if decision.ShouldTerminate {
			return decision, nil
		}
	}
	return deterministic(false, ReasonNone, ""), nil
}

func (c Composite) checkAll(ctx context.Context, state *transcript.State) (Decision, error) {
	var explanations []string
	minConfidence := 1.0

	for _, child := range c.Children {
		decision, err := child.Check(ctx, state)
		if err != nil {
			return Decision{}, err
		}
		if !decision.ShouldTerminate {
			return deterministic(false, ReasonNone, ""), nil
		}
		explanations = append(explanations, child.Name()+": "+decision.Explanation)
		if decision.Confidence < minConfidence {
			minConfidence = decision.Confidence
		}
	}

	if len(c.Children) == 0 {
		return deterministic(false, ReasonNone, ""), nil
	}

	return Decision{
		ShouldTerminate: true,
		Reason:          ReasonCompositeAll,
		Explanation:     strings.Join(explanations, "; "),
		Confidence:      minConfidence,
	}, nil
}
