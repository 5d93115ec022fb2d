package voting

import (
	"context"

	"github.com/cameron5906/conclave/agent"
)

// Weighted buckets responses by normalized text, scoring each bucket as
// the sum of weight(agent) x confidence(agent) across its members.
type Weighted struct{}

func (Weighted) Name() string { return "weighted" }

func (Weighted) Vote(_ context.Context, _ string, responses []*agent.AgentResponse, vc VotingContext) VotingResult {
	if len(responses) == 0 {
		return emptyResult("weighted")
	}

	score := make(map[string]float64)
	tally := make(map[string]int)
	representative := make(map[string]*agent.AgentResponse)
	order := make([]string, 0)

	var totalWeight float64
	for _, r := range responses {
		key := bucketKey(r.Text)
		if _, seen := representative[key]; !seen {
			representative[key] = r
			order = append(order, key)
		}
		w := vc.Weight(r.AgentID) * Confidence(r)
		score[key] += w
		tally[key]++
		totalWeight += vc.Weight(r.AgentID)
	}

	winnerKey := order[0]
	for _, key := range order {
		if score[key] > score[winnerKey] {
			winnerKey = key
		}
	}

	consensus := 0.0
	if totalWeight > 0 {
		consensus = score[winnerKey] / totalWeight
	}

	winner := representative[winnerKey]
	result := VotingResult{
		Strategy:                "weighted",
		WinningText:             winner.Text,
		WinningStructuredOutput: winner.StructuredOutput,
		WinningAgentID:          winner.AgentID,
		Tally:                   tally,
		Consensus:               consensus,
	}
	logVoteResult(vc.Logger, result)
	return result
}
