package deliberation

import (
	"context"
	"fmt"
	"testing"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/termination"
	"github.com/cameron5906/conclave/voting"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func constantAgent(id string) *agent.Agent {
	provider := llm.NewMockProvider(id)
	for i := 0; i < 50; i++ {
		provider.QueueResponses("steady state")
	}
	a, _ := agent.NewAgentBuilder(id).
		WithID(id).
		WithProvider(provider).
		WithPersonality(agent.AnalystPersonality()).
		Build()
	return a
}

// TestProperty_MaxRoundsBound covers property #6: for every deliberation
// that terminates by MaxRounds(n), state.CurrentRound <= n.
func TestProperty_MaxRoundsBound(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("MaxRounds(n) bounds totalRounds at n", prop.ForAll(
		func(n int) bool {
			opts := Options{
				Agents:         []*agent.Agent{constantAgent(fmt.Sprintf("agent-%d", n))},
				Mode:           RoundRobin,
				Termination:    termination.MaxRounds{N: n},
				VotingStrategy: voting.Majority{},
			}
			result, err := Execute[string](NewExecutor(), context.Background(), "task", opts)
			if err != nil {
				return false
			}
			return result.TotalRounds <= n
		},
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}

// TestProperty_RoundRobinMessageCountPerRound covers property #7 for
// RoundRobin: transcript grouped by round has exactly |agents| entries
// per completed round.
func TestProperty_RoundRobinMessageCountPerRound(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("every completed round has one message per agent", prop.ForAll(
		func(agentCount, rounds int) bool {
			agents := make([]*agent.Agent, agentCount)
			for i := range agents {
				agents[i] = constantAgent(fmt.Sprintf("a%d-%d-%d", agentCount, rounds, i))
			}
			opts := Options{
				Agents:         agents,
				Mode:           RoundRobin,
				Termination:    termination.MaxRounds{N: rounds},
				VotingStrategy: voting.Majority{},
			}
			result, err := Execute[string](NewExecutor(), context.Background(), "task", opts)
			if err != nil {
				return false
			}
			for r := 1; r <= result.TotalRounds; r++ {
				if len(result.State.MessagesInRound(r)) != agentCount {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 4),
		gen.IntRange(1, 4),
	))

	properties.TestingRun(t)
}
