package voting

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/llm"
)

// consensusAgentID is the synthetic winning agent id used when a synthesis
// is produced rather than attributed to a single participant.
const consensusAgentID = "consensus"

// Consensus asks an arbiter to synthesize a unified answer from all
// responses, then score that synthesis against the originals.
type Consensus struct{}

func (Consensus) Name() string { return "consensus" }

var firstNumber = regexp.MustCompile(`\d+(\.\d+)?`)

func (Consensus) Vote(ctx context.Context, task string, responses []*agent.AgentResponse, vc VotingContext) VotingResult {
	if len(responses) == 0 {
		return emptyResult("consensus")
	}
	if vc.Arbiter == nil {
		fallback := firstResponseFallback("consensus", responses)
		logVoteResult(vc.Logger, fallback)
		return fallback
	}

	synthesisTemp := float32(0.3)
	synthesis, err := vc.Arbiter.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a consensus builder. Synthesize the numbered inputs into one unified response that best represents the group's thinking."},
		{Role: llm.RoleUser, Content: buildSynthesisPrompt(task, responses)},
	}, llm.CompletionOptions{Temperature: &synthesisTemp})
	if err != nil {
		fallback := firstResponseFallback("consensus", responses)
		logVoteResult(vc.Logger, fallback)
		return fallback
	}

	scoreTemp := float32(0.0)
	scoreResp, err := vc.Arbiter.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: buildScoringPrompt(task, responses, synthesis.Content)},
	}, llm.CompletionOptions{Temperature: &scoreTemp})

	consensus := 0.5
	if err == nil {
		consensus = parseClampedScore(scoreResp.Content)
	}

	result := VotingResult{
		Strategy:       "consensus",
		WinningText:    synthesis.Content,
		WinningAgentID: consensusAgentID,
		Tally:          map[string]int{consensusAgentID: 1},
		Consensus:      consensus,
	}
	if raw, ok := agent.ExtractJSONObject(synthesis.Content); ok {
		result.WinningStructuredOutput = json.RawMessage(raw)
	}
	logVoteResult(vc.Logger, result)
	return result
}

func buildSynthesisPrompt(task string, responses []*agent.AgentResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\nInputs:\n", task)
	for i, r := range responses {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Text)
	}
	return b.String()
}

func buildScoringPrompt(task string, responses []*agent.AgentResponse, synthesis string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\nOriginal inputs:\n", task)
	for i, r := range responses {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Text)
	}
	fmt.Fprintf(&b, "\nSynthesis:\n%s\n\nOn a scale of 0.0 to 1.0, how well does the synthesis represent the inputs? Reply with only the number.", synthesis)
	return b.String()
}

// parseClampedScore extracts the first parseable number from content and
// clamps it to [0,1], defaulting to 0.5 on parse failure.
func parseClampedScore(content string) float64 {
	match := firstNumber.FindString(content)
	if match == "" {
		return 0.5
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0.5
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
