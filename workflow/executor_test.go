package workflow

import (
	"context"
	"testing"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/voting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAgent(t *testing.T, name, response string) *agent.Agent {
	t.Helper()
	provider := llm.NewMockProvider(name)
	provider.QueueResponses(response)
	a, err := agent.NewAgentBuilder(name).
		WithProvider(provider).
		WithPersonality(agent.AnalystPersonality()).
		Build()
	require.NoError(t, err)
	return a
}

func TestExecute_MajorityVoteAcrossThreeAgents(t *testing.T) {
	t.Parallel()

	opts := Options{
		Agents: []*agent.Agent{
			buildAgent(t, "a1", "yes"),
			buildAgent(t, "a2", "yes"),
			buildAgent(t, "a3", "no"),
		},
		VotingStrategy: voting.Majority{},
	}

	result, err := Execute[string](NewExecutor(), context.Background(), "vote on it", opts)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "yes", result.Value)
	assert.Len(t, result.AgentResponses, 3)
}

func TestExecute_NoAgentsIsConfigurationError(t *testing.T) {
	t.Parallel()

	_, err := Execute[string](NewExecutor(), context.Background(), "task", Options{})
	assert.ErrorIs(t, err, ErrNoAgents)
}

func TestExecute_ParallelExecutionGathersAllResponses(t *testing.T) {
	t.Parallel()

	opts := Options{
		Agents: []*agent.Agent{
			buildAgent(t, "a1", "x"),
			buildAgent(t, "a2", "y"),
		},
		VotingStrategy:          voting.Majority{},
		EnableParallelExecution: true,
	}

	result, err := Execute[string](NewExecutor(), context.Background(), "task", opts)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.AgentResponses, 2)
}

type verdict struct {
	Answer string `json:"answer"`
	Score  int    `json:"score"`
}

func TestExecute_MajorityVoteExtractsStructuredOutput(t *testing.T) {
	t.Parallel()

	opts := Options{
		Agents: []*agent.Agent{
			buildAgent(t, "a1", `{"answer":"yes","score":9}`),
			buildAgent(t, "a2", `{"answer":"yes","score":9}`),
			buildAgent(t, "a3", `{"answer":"no","score":2}`),
		},
		VotingStrategy: voting.Majority{},
		SchemaHint:     `{"answer": string, "score": int}`,
	}

	result, err := Execute[verdict](NewExecutor(), context.Background(), "vote on it", opts)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, verdict{Answer: "yes", Score: 9}, result.Value)
}

func TestExecute_ProgressEventsReachCompleted(t *testing.T) {
	t.Parallel()

	var stages []Stage
	opts := Options{
		Agents:         []*agent.Agent{buildAgent(t, "a1", "ok")},
		VotingStrategy: voting.Majority{},
		OnProgress: func(e ProgressEvent) {
			stages = append(stages, e.Stage)
		},
	}

	_, err := Execute[string](NewExecutor(), context.Background(), "task", opts)
	require.NoError(t, err)
	assert.Contains(t, stages, StageInitializing)
	assert.Contains(t, stages, StageVoting)
	assert.Contains(t, stages, StageCompleted)
}
