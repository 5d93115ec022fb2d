package contextwindow

import (
	"context"
	"testing"
	"time"

	"github.com/cameron5906/conclave/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTranscript(rounds, agentsPerRound int) []transcript.Message {
	var out []transcript.Message
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for r := 1; r <= rounds; r++ {
		for a := 0; a < agentsPerRound; a++ {
			out = append(out, transcript.Message{
				AgentID:   string(rune('A' + a)),
				AgentName: string(rune('A' + a)),
				Content:   "some message content here",
				Round:     r,
				Timestamp: base.Add(time.Duration(r*agentsPerRound+a) * time.Second),
			})
		}
	}
	return out
}

func TestSlidingWindow_PreservesFirstAndLatestRounds(t *testing.T) {
	t.Parallel()

	messages := buildTranscript(5, 2)
	sw := NewSlidingWindow(0, 6)

	window, err := sw.Project(context.Background(), messages, "A", 5)
	require.NoError(t, err)

	assert.Len(t, window.Messages, 6)
	assert.Contains(t, window.RoundsPreserved, 1)
	assert.Contains(t, window.RoundsPreserved, 4)
	assert.Contains(t, window.RoundsPreserved, 5)

	for i := 1; i < len(window.Messages); i++ {
		prev, cur := window.Messages[i-1], window.Messages[i]
		assert.True(t, prev.Round < cur.Round || (prev.Round == cur.Round && !prev.Timestamp.After(cur.Timestamp)))
	}
}

func TestSlidingWindow_Idempotent(t *testing.T) {
	t.Parallel()

	messages := buildTranscript(5, 2)
	sw := NewSlidingWindow(0, 6)

	first, err := sw.Project(context.Background(), messages, "A", 5)
	require.NoError(t, err)

	second, err := sw.Project(context.Background(), first.Messages, "A", 5)
	require.NoError(t, err)

	assert.Equal(t, first.Messages, second.Messages)
	assert.Equal(t, first.EstimatedTokens, second.EstimatedTokens)
}

func TestSlidingWindow_EmptyTranscript(t *testing.T) {
	t.Parallel()

	sw := NewSlidingWindow(100, 10)
	window, err := sw.Project(context.Background(), nil, "A", 1)
	require.NoError(t, err)
	assert.Zero(t, window.OriginalCount)
}
