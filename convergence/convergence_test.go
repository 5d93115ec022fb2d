package convergence

import (
	"context"
	"testing"
	"time"

	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendRound(state *transcript.State, round int, contents map[string]string) {
	for agentID, content := range contents {
		state.Append(transcript.Message{AgentID: agentID, AgentName: agentID, Content: content, Round: round, Timestamp: time.Now()})
	}
}

func TestTokenSimilarity_ZeroBeforeRoundTwo(t *testing.T) {
	t.Parallel()

	state := transcript.NewState("task", []string{"a1"})
	state.CurrentRound = 1
	appendRound(state, 1, map[string]string{"a1": "the quick brown fox"})

	score, err := TokenSimilarity{}.Score(context.Background(), state)
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestTokenSimilarity_IdenticalMessagesScoreOne(t *testing.T) {
	t.Parallel()

	state := transcript.NewState("task", []string{"a1"})
	state.CurrentRound = 2
	appendRound(state, 1, map[string]string{"a1": "the quick brown fox jumps"})
	appendRound(state, 2, map[string]string{"a1": "the quick brown fox jumps"})

	score, err := TokenSimilarity{}.Score(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestTokenSimilarity_DisjointMessagesScoreZero(t *testing.T) {
	t.Parallel()

	state := transcript.NewState("task", []string{"a1"})
	state.CurrentRound = 2
	appendRound(state, 1, map[string]string{"a1": "apples bananas cherries"})
	appendRound(state, 2, map[string]string{"a1": "xylophones yesterday zebras"})

	score, err := TokenSimilarity{}.Score(context.Background(), state)
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestLLM_ParsesClampedScore(t *testing.T) {
	t.Parallel()

	provider := llm.NewMockProvider("arbiter")
	provider.QueueResponses("0.85")

	state := transcript.NewState("task", []string{"a1"})
	state.CurrentRound = 2
	appendRound(state, 1, map[string]string{"a1": "first"})
	appendRound(state, 2, map[string]string{"a1": "second"})

	score, err := LLM{Provider: provider}.Score(context.Background(), state)
	require.NoError(t, err)
	assert.InDelta(t, 0.85, score, 1e-9)
}
