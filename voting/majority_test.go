package voting

import (
	"context"
	"testing"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMajority_EmptyResponses(t *testing.T) {
	t.Parallel()

	result := Majority{}.Vote(context.Background(), "task", nil, VotingContext{})
	assert.Equal(t, "majority", result.Strategy)
	assert.Zero(t, result.Consensus)
	assert.Empty(t, result.Tally)
}

func TestMajority_ThreeResponsesTwoAgree(t *testing.T) {
	t.Parallel()

	responses := []*agent.AgentResponse{
		{AgentID: "a1", Text: "yes"},
		{AgentID: "a2", Text: "yes"},
		{AgentID: "a3", Text: "no"},
	}

	result := Majority{}.Vote(context.Background(), "task", responses, VotingContext{})

	assert.Equal(t, "yes", result.WinningText)
	assert.Equal(t, "a1", result.WinningAgentID)
	assert.InDelta(t, 2.0/3.0, result.Consensus, 1e-9)
	assert.Len(t, result.Tally, 2)
}

func TestMajority_TiesResolveByInsertionOrder(t *testing.T) {
	t.Parallel()

	responses := []*agent.AgentResponse{
		{AgentID: "a1", Text: "red"},
		{AgentID: "a2", Text: "blue"},
	}

	result := Majority{}.Vote(context.Background(), "task", responses, VotingContext{})
	assert.Equal(t, "a1", result.WinningAgentID)
}

func TestWeighted_PromotesHighWeightAgent(t *testing.T) {
	t.Parallel()

	responses := []*agent.AgentResponse{
		{AgentID: "expert", Text: "A"},
		{AgentID: "novice1", Text: "B"},
		{AgentID: "novice2", Text: "B"},
	}
	vc := VotingContext{Weights: map[string]float64{"expert": 3, "novice1": 1, "novice2": 1}}

	result := Weighted{}.Vote(context.Background(), "task", responses, vc)
	assert.Equal(t, "A", result.WinningText)
}

func TestWeighted_UniformWeightsMatchesMajorityWinner(t *testing.T) {
	t.Parallel()

	responses := []*agent.AgentResponse{
		{AgentID: "a1", Text: "yes"},
		{AgentID: "a2", Text: "yes"},
		{AgentID: "a3", Text: "no"},
	}

	majorityResult := Majority{}.Vote(context.Background(), "task", responses, VotingContext{})
	weightedResult := Weighted{}.Vote(context.Background(), "task", responses, VotingContext{})

	assert.Equal(t, majorityResult.WinningAgentID, weightedResult.WinningAgentID)
}

func TestRankedChoice_NoArbiterFallsBackToFirst(t *testing.T) {
	t.Parallel()

	responses := []*agent.AgentResponse{
		{AgentID: "a1", Text: "A"},
		{AgentID: "a2", Text: "B"},
	}

	result := RankedChoice{}.Vote(context.Background(), "task", responses, VotingContext{})
	assert.Equal(t, "a1", result.WinningAgentID)
	assert.InDelta(t, 0.5, result.Consensus, 1e-9)
}

func TestRankedChoice_WithArbiterRankingPicksSecond(t *testing.T) {
	t.Parallel()

	arbiter := llm.NewMockProvider("arbiter")
	arbiter.QueueResponses("2,1,3")
	responses := []*agent.AgentResponse{
		{AgentID: "a1", Text: "A"},
		{AgentID: "a2", Text: "B"},
		{AgentID: "a3", Text: "C"},
	}

	result := RankedChoice{}.Vote(context.Background(), "task", responses, VotingContext{Arbiter: arbiter})
	require.Equal(t, "ranked_choice", result.Strategy)
	assert.Equal(t, "a2", result.WinningAgentID)
	assert.NotEmpty(t, result.Tally)
}

func TestAggregation_NoArbiterConcatenates(t *testing.T) {
	t.Parallel()

	responses := []*agent.AgentResponse{
		{AgentID: "a1", AgentName: "Alpha", Text: "first"},
		{AgentID: "a2", AgentName: "Beta", Text: "second"},
	}

	result := Aggregation{}.Vote(context.Background(), "task", responses, VotingContext{})
	assert.Contains(t, result.WinningText, "[Alpha]: first")
	assert.Contains(t, result.WinningText, "---")
	assert.Equal(t, "aggregation", result.WinningAgentID)
	assert.Equal(t, 1.0, result.Consensus)
}

func TestExpertPanel_NoArbiterFallsBackToWeighted(t *testing.T) {
	t.Parallel()

	responses := []*agent.AgentResponse{
		{AgentID: "a1", Text: "A"},
		{AgentID: "a2", Text: "B"},
	}

	result := ExpertPanel{}.Vote(context.Background(), "task", responses, VotingContext{})
	assert.Equal(t, "expert_panel", result.Strategy)
	assert.NotEmpty(t, result.WinningAgentID)
}
