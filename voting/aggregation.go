package voting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/llm"
)

// aggregationAgentID is the synthetic winning agent id for Aggregation.
const aggregationAgentID = "aggregation"

// Aggregation combines all responses into one comprehensive answer: via an
// arbiter when available, otherwise by plain concatenation.
type Aggregation struct{}

func (Aggregation) Name() string { return "aggregation" }

func (Aggregation) Vote(ctx context.Context, task string, responses []*agent.AgentResponse, vc VotingContext) VotingResult {
	if len(responses) == 0 {
		return emptyResult("aggregation")
	}

	var text string
	if vc.Arbiter != nil {
		temp := float32(0.3)
		resp, err := vc.Arbiter.Complete(ctx, []llm.Message{
			{Role: llm.RoleSystem, Content: "Combine the numbered inputs into one comprehensive answer. Remove redundancy but preserve nuance."},
			{Role: llm.RoleUser, Content: buildSynthesisPrompt(task, responses)},
		}, llm.CompletionOptions{Temperature: &temp})
		if err == nil {
			text = resp.Content
		}
	}
	if text == "" {
		text = concatenateResponses(responses)
	}

	result := VotingResult{
		Strategy:       "aggregation",
		WinningText:    text,
		WinningAgentID: aggregationAgentID,
		Tally:          map[string]int{aggregationAgentID: 1},
		Consensus:      1.0,
	}
	if raw, ok := agent.ExtractJSONObject(text); ok {
		result.WinningStructuredOutput = json.RawMessage(raw)
	}
	logVoteResult(vc.Logger, result)
	return result
}

func concatenateResponses(responses []*agent.AgentResponse) string {
	parts := make([]string, 0, len(responses))
	for _, r := range responses {
		parts = append(parts, fmt.Sprintf("[%s]: %s", r.AgentName, r.Text))
	}
	return strings.Join(parts, "\n---\n")
}
