package voting

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/llm"
)

// ExpertPanel scores each response independently across five dimensions
// via an arbiter and declares the highest-scoring response the winner.
type ExpertPanel struct{}

func (ExpertPanel) Name() string { return "expert_panel" }

func (ExpertPanel) Vote(ctx context.Context, task string, responses []*agent.AgentResponse, vc VotingContext) VotingResult {
	if len(responses) == 0 {
		return emptyResult("expert_panel")
	}
	if vc.Arbiter == nil {
		return expertPanelFallbackWeighted(responses, vc)
	}

	scores := make([]float64, len(responses))
	temp := float32(0.1)
	for i, r := range responses {
		resp, err := vc.Arbiter.Complete(ctx, []llm.Message{
			{Role: llm.RoleUser, Content: buildExpertScoringPrompt(task, r.Text)},
		}, llm.CompletionOptions{Temperature: &temp})
		if err != nil {
			scores[i] = 0.5
			continue
		}
		scores[i] = meanInRangeNumbers(resp.Content)
	}

	winnerIdx := 0
	for i, s := range scores {
		if s > scores[winnerIdx] {
			winnerIdx = i
		}
	}

	maxScore := scores[winnerIdx]
	tally := make(map[string]int, len(responses))
	for i, r := range responses {
		tallyVal := 0
		if maxScore > 0 {
			tallyVal = int(math.Round(100 * scores[i] / maxScore))
		}
		tally[r.AgentID] = tallyVal
	}

	winner := responses[winnerIdx]
	result := VotingResult{
		Strategy:                "expert_panel",
		WinningText:             winner.Text,
		WinningStructuredOutput: winner.StructuredOutput,
		WinningAgentID:          winner.AgentID,
		Tally:                   tally,
		Consensus:               maxScore,
	}
	logVoteResult(vc.Logger, result)
	return result
}

func buildExpertScoringPrompt(task, responseText string) string {
	return fmt.Sprintf(
		"Task: %s\n\nResponse to evaluate:\n%s\n\nScore this response from 0.0 to 1.0 on each of: accuracy, completeness, clarity, relevance, insight. Reply with only the five numbers.",
		task, responseText,
	)
}

// meanInRangeNumbers parses every number in [0,1] found in content and
// returns their mean, or 0.5 if none parsed.
func meanInRangeNumbers(content string) float64 {
	matches := firstNumber.FindAllString(content, -1)
	var sum float64
	var count int
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil || v < 0 || v > 1 {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0.5
	}
	return sum / float64(count)
}

// expertPanelFallbackWeighted mirrors Weighted but defaults confidence to
// 0.5 instead of 1.0, per the documented expert-panel-without-arbiter
// fallback.
func expertPanelFallbackWeighted(responses []*agent.AgentResponse, vc VotingContext) VotingResult {
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
		confidence := 0.5
		if r.Confidence != nil {
			confidence = *r.Confidence
		}
		w := vc.Weight(r.AgentID) * confidence
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
		Strategy:                "expert_panel",
		WinningText:             winner.Text,
		WinningStructuredOutput: winner.StructuredOutput,
		WinningAgentID:          winner.AgentID,
		Tally:                   tally,
		Consensus:               consensus,
	}
	logVoteResult(vc.Logger, result)
	return result
}
