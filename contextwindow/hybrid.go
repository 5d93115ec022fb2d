package contextwindow

import (
	"context"

	"github.com/cameron5906/conclave/transcript"
)

// Hybrid auto-selects a pipeline of the other managers based on how far
// over budget the current transcript runs.
type Hybrid struct {
	Sliding   SlidingWindow
	Masking   ObservationMasking
	Recursive *RecursiveSummarization
	MaxTokens int
}

func (Hybrid) Name() string { return "hybrid" }

func (h Hybrid) Project(ctx context.Context, messages []transcript.Message, recipientAgentID string, currentRound int) (ContextWindow, error) {
	if len(messages) == 0 || h.MaxTokens <= 0 {
		return h.Sliding.Project(ctx, messages, recipientAgentID, currentRound)
	}

	currentTokens := estimateTokens(messages)
	compressionFactor := float64(currentTokens) / float64(h.MaxTokens)

	switch {
	case compressionFactor <= 1.5:
		return h.Sliding.Project(ctx, messages, recipientAgentID, currentRound)

	case compressionFactor <= 2.5:
		return h.pipeline(ctx, messages, recipientAgentID, currentRound, h.Masking.Project, h.Sliding.Project)

	case len(distinctRounds(messages)) > 5 && h.Recursive != nil:
		return h.pipeline(ctx, messages, recipientAgentID, currentRound, h.Masking.Project, h.Recursive.Project)

	default:
		stages := []projectFunc{h.Masking.Project}
		if h.Recursive != nil {
			stages = append(stages, h.Recursive.Project)
		}
		stages = append(stages, h.Sliding.Project)
		return h.pipeline(ctx, messages, recipientAgentID, currentRound, stages...)
	}
}

type projectFunc func(ctx context.Context, messages []transcript.Message, recipientAgentID string, currentRound int) (ContextWindow, error)

// pipeline runs stages in sequence over messages, feeding each stage's
// output messages into the next, short-circuiting as soon as a stage's
// output already fits the token budget.
func (h Hybrid) pipeline(ctx context.Context, messages []transcript.Message, recipientAgentID string, currentRound int, stages ...projectFunc) (ContextWindow, error) {
	current := messages
	var last ContextWindow
	var summary string
	var masked, summarized int

	for _, stage := range stages {
		window, err := stage(ctx, current, recipientAgentID, currentRound)
		if err != nil {
			return ContextWindow{}, err
		}
		last = window
		current = window.Messages
		if window.Summary != "" {
			summary = window.Summary
		}
		masked += window.MaskedCount
		summarized += window.SummarizedCount

		if h.MaxTokens <= 0 || window.EstimatedTokens <= h.MaxTokens {
			break
		}
	}

	last.Summary = summary
	last.MaskedCount = masked
	last.SummarizedCount = summarized
	last.OriginalCount = len(messages)
	return last, nil
}
