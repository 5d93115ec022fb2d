package deliberation

import (
	"context"
	"testing"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/convergence"
	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/termination"
	"github.com/cameron5906/conclave/voting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyAgent(t *testing.T, id string, responses ...string) *agent.Agent {
	t.Helper()
	provider := llm.NewMockProvider(id)
	provider.QueueResponses(responses...)
	a, err := agent.NewAgentBuilder(id).
		WithID(id).
		WithProvider(provider).
		WithPersonality(agent.AnalystPersonality()).
		Build()
	require.NoError(t, err)
	return a
}

func TestExecute_MaxRoundsTermination(t *testing.T) {
	t.Parallel()

	opts := Options{
		Agents:         []*agent.Agent{dummyAgent(t, "a1", "ok", "ok", "ok")},
		Mode:           RoundRobin,
		Termination:    termination.MaxRounds{N: 3},
		VotingStrategy: voting.Majority{},
	}

	result, err := Execute[string](NewExecutor(), context.Background(), "task", opts)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.TotalRounds)
	assert.Equal(t, termination.ReasonMaxRoundsReached, result.TerminationReason)
}

func TestExecute_ConvergenceTermination(t *testing.T) {
	t.Parallel()

	opts := Options{
		Agents: []*agent.Agent{dummyAgent(t, "a1", "we agree on the plan", "we agree on the plan")},
		Mode:   RoundRobin,
		Termination: termination.Convergence{
			Threshold: 0.8,
			MinRounds: 2,
		},
		Convergence:          convergence.TokenSimilarity{},
		ConvergenceThreshold: 0.8,
		VotingStrategy:       voting.Majority{},
	}

	result, err := Execute[string](NewExecutor(), context.Background(), "task", opts)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalRounds)
	assert.Equal(t, termination.ReasonConvergenceAchieved, result.TerminationReason)
	assert.Equal(t, 1.0, result.FinalConvergenceScore)
}

func TestExecute_RoundRobinProducesOneMessagePerAgentPerRound(t *testing.T) {
	t.Parallel()

	opts := Options{
		Agents: []*agent.Agent{
			dummyAgent(t, "a1", "x1", "x2"),
			dummyAgent(t, "a2", "y1", "y2"),
		},
		Mode:           RoundRobin,
		Termination:    termination.MaxRounds{N: 2},
		VotingStrategy: voting.Majority{},
	}

	result, err := Execute[string](NewExecutor(), context.Background(), "task", opts)
	require.NoError(t, err)
	require.NotNil(t, result.State)
	assert.Len(t, result.State.MessagesInRound(1), 2)
	assert.Len(t, result.State.MessagesInRound(2), 2)
}

func TestExecute_DebateReferencesFirstOpposingAgent(t *testing.T) {
	t.Parallel()

	opts := Options{
		Agents: []*agent.Agent{
			dummyAgent(t, "a1", "opening a1", "rebuttal a1"),
			dummyAgent(t, "a2", "opening a2", "rebuttal a2"),
		},
		Mode:           Debate,
		Termination:    termination.MaxRounds{N: 2},
		VotingStrategy: voting.Majority{},
	}

	result, err := Execute[string](NewExecutor(), context.Background(), "task", opts)
	require.NoError(t, err)

	round2 := result.State.MessagesInRound(2)
	require.Len(t, round2, 2)
	for _, m := range round2 {
		assert.NotEmpty(t, m.InResponseTo)
		assert.NotEqual(t, m.AgentID, m.InResponseTo)
	}
}

func TestExecute_ModeratedFallsBackToRoundRobinWithoutModerator(t *testing.T) {
	t.Parallel()

	opts := Options{
		Agents: []*agent.Agent{
			dummyAgent(t, "a1", "x1"),
			dummyAgent(t, "a2", "y1"),
		},
		Mode:           Moderated,
		Moderator:      nil,
		Termination:    termination.MaxRounds{N: 1},
		VotingStrategy: voting.Majority{},
	}

	result, err := Execute[string](NewExecutor(), context.Background(), "task", opts)
	require.NoError(t, err)
	assert.Len(t, result.State.MessagesInRound(1), 2)
}

func TestExecute_NoAgentsIsConfigurationError(t *testing.T) {
	t.Parallel()

	_, err := Execute[string](NewExecutor(), context.Background(), "task", Options{Termination: termination.MaxRounds{N: 1}})
	assert.ErrorIs(t, err, ErrNoAgents)
}

func TestExecute_NoTerminationIsConfigurationError(t *testing.T) {
	t.Parallel()

	_, err := Execute[string](NewExecutor(), context.Background(), "task", Options{Agents: []*agent.Agent{dummyAgent(t, "a1", "x")}})
	assert.ErrorIs(t, err, ErrNoTermination)
}

type verdict struct {
	Answer string `json:"answer"`
	Score  int    `json:"score"`
}

func TestExecute_RoundRobinExtractsStructuredOutput(t *testing.T) {
	t.Parallel()

	opts := Options{
		Agents: []*agent.Agent{
			dummyAgent(t, "a1", `{"answer":"yes","score":9}`),
			dummyAgent(t, "a2", `{"answer":"yes","score":9}`),
			dummyAgent(t, "a3", `{"answer":"no","score":2}`),
		},
		Mode:           RoundRobin,
		Termination:    termination.MaxRounds{N: 1},
		VotingStrategy: voting.Majority{},
		SchemaHint:     `{"answer": string, "score": int}`,
	}

	result, err := Execute[verdict](NewExecutor(), context.Background(), "vote on it", opts)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, verdict{Answer: "yes", Score: 9}, result.Value)
}

func TestExecute_TokensMonotonicallyNonDecreasing(t *testing.T) {
	t.Parallel()

	opts := Options{
		Agents: []*agent.Agent{
			dummyAgent(t, "a1", "alpha beta gamma", "delta epsilon zeta", "eta theta iota"),
		},
		Mode:           RoundRobin,
		Termination:    termination.MaxRounds{N: 3},
		VotingStrategy: voting.Majority{},
		OnProgress: func(e ProgressEvent) {
			// no-op, exercised for coverage of the progress contract
		},
	}

	result, err := Execute[string](NewExecutor(), context.Background(), "task", opts)
	require.NoError(t, err)

	tokens := 0
	for _, m := range result.State.Messages {
		assert.GreaterOrEqual(t, m.EstimatedTokens()+tokens, tokens)
		tokens += m.EstimatedTokens()
	}
	assert.LessOrEqual(t, 0, result.TotalTokens)
}
