package voting

import (
	"context"
	"fmt"
	"testing"

	"github.com/cameron5906/conclave/agent"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genResponses() gopter.Gen {
	return gen.SliceOfN(6, gen.AlphaString()).Map(func(texts []string) []*agent.AgentResponse {
		out := make([]*agent.AgentResponse, 0, len(texts))
		for i, text := range texts {
			if text == "" {
				text = "x"
			}
			out = append(out, &agent.AgentResponse{AgentID: fmt.Sprintf("a%d", i), Text: text})
		}
		return out
	}).SuchThat(func(rs []*agent.AgentResponse) bool { return len(rs) > 0 })
}

func TestVotingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	strategies := []Strategy{Majority{}, Weighted{}, Aggregation{}}

	for _, s := range strategies {
		s := s
		properties.Property("consensus in [0,1] and exactly one winner: "+s.Name(), prop.ForAll(
			func(responses []*agent.AgentResponse) bool {
				result := s.Vote(context.Background(), "task", responses, VotingContext{})
				return result.Consensus >= 0 && result.Consensus <= 1 && result.WinningText != ""
			},
			genResponses(),
		))
	}

	properties.Property("majority consensus times N equals winning bucket count", prop.ForAll(
		func(responses []*agent.AgentResponse) bool {
			result := Majority{}.Vote(context.Background(), "task", responses, VotingContext{})
			winnerCount := 0
			for _, r := range responses {
				if bucketKey(r.Text) == bucketKey(result.WinningText) {
					winnerCount++
				}
			}
			expected := result.Consensus * float64(len(responses))
			return int(expected+0.5) == winnerCount
		},
		genResponses(),
	))

	properties.TestingRun(t)
}
