package voting

import (
	"context"

	"github.com/cameron5906/conclave/agent"
)

// Majority buckets responses by normalized text and declares the largest
// bucket the winner, resolving ties by first-encountered insertion order.
type Majority struct{}

func (Majority) Name() string { return "majority" }

func (Majority) Vote(_ context.Context, _ string, responses []*agent.AgentResponse, vc VotingContext) VotingResult {
	if len(responses) == 0 {
		return emptyResult("majority")
	}

	tally := make(map[string]int)
	representative := make(map[string]*agent.AgentResponse)
	order := make([]string, 0)

	for _, r := range responses {
		key := bucketKey(r.Text)
		if _, seen := representative[key]; !seen {
			representative[key] = r
			order = append(order, key)
		}
		tally[key]++
	}

	winnerKey := order[0]
	for _, key := range order {
		if tally[key] > tally[winnerKey] {
			winnerKey = key
		}
	}

	winner := representative[winnerKey]
	result := VotingResult{
		Strategy:                "majority",
		WinningText:             winner.Text,
		WinningStructuredOutput: winner.StructuredOutput,
		WinningAgentID:          winner.AgentID,
		Tally:                   tally,
		Consensus:               float64(tally[winnerKey]) / float64(len(responses)),
	}
	logVoteResult(vc.Logger, result)
	return result
}
