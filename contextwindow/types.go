package contextwindow

import (
	"context"

	"github.com/cameron5906/conclave/transcript"
)

// ContextWindow is the bounded projection of a transcript computed for one
// agent ahead of its next invocation.
type ContextWindow struct {
	Messages        []transcript.Message
	Summary         string
	EstimatedTokens int
	OriginalCount   int
	RetainedCount   int

	DroppedCount    int
	SummarizedCount int
	MaskedCount     int
	RoundsPreserved []int
}

// Manager projects a growing transcript down to a bounded window for one
// recipient agent, ahead of its next invocation.
type Manager interface {
	Name() string
	Project(ctx context.Context, messages []transcript.Message, recipientAgentID string, currentRound int) (ContextWindow, error)
}

// estimateTokens sums the estimated token count of every message in msgs.
func estimateTokens(msgs []transcript.Message) int {
	total := 0
	for _, m := range msgs {
		total += m.EstimatedTokens()
	}
	return total
}
