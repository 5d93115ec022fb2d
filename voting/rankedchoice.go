package voting

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/llm"
)

// RankedChoice asks an arbiter to rank the candidates best-first, then
// resolves the ranking via instant-runoff elimination.
type RankedChoice struct{}

func (RankedChoice) Name() string { return "ranked_choice" }

var rankedChoiceDigits = regexp.MustCompile(`\d+`)

func (RankedChoice) Vote(ctx context.Context, task string, responses []*agent.AgentResponse, vc VotingContext) VotingResult {
	if len(responses) == 0 {
		return emptyResult("ranked_choice")
	}
	if vc.Arbiter == nil {
		fallback := firstResponseFallback("ranked_choice", responses)
		logVoteResult(vc.Logger, fallback)
		return fallback
	}

	n := len(responses)
	prompt := buildRankingPrompt(task, responses)
	temp := float32(0.2)
	resp, err := vc.Arbiter.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.CompletionOptions{Temperature: &temp})
	if err != nil {
		fallback := firstResponseFallback("ranked_choice", responses)
		logVoteResult(vc.Logger, fallback)
		return fallback
	}

	ballot := parseRankingBallot(resp.Content, n)
	winnerIdx, tally := runInstantRunoff(ballot, n)

	winner := responses[winnerIdx]
	finalVotes := 0
	for _, v := range tally {
		finalVotes += v
	}
	consensus := 0.0
	if finalVotes > 0 {
		consensus = float64(tally[winnerIdx]) / float64(finalVotes)
	}

	tallyByAgent := make(map[string]int, len(tally))
	for idx, count := range tally {
		tallyByAgent[responses[idx].AgentID] = count
	}

	result := VotingResult{
		Strategy:                "ranked_choice",
		WinningText:             winner.Text,
		WinningStructuredOutput: winner.StructuredOutput,
		WinningAgentID:          winner.AgentID,
		Tally:                   tallyByAgent,
		Consensus:               consensus,
	}
	logVoteResult(vc.Logger, result)
	return result
}

func buildRankingPrompt(task string, responses []*agent.AgentResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\nRank these candidate responses from best to worst.\n", task)
	for i, r := range responses {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Text)
	}
	b.WriteString("\nReply with only a comma-separated list of candidate numbers, best first (e.g. \"3,1,2\").")
	return b.String()
}

// parseRankingBallot parses a comma-separated permutation of 1..n, defensively:
// dedupe, keep only in-range 1-based indices, and fill any indices missing
// from the parsed prefix in natural order.
func parseRankingBallot(content string, n int) []int {
	seen := make(map[int]bool, n)
	ballot := make([]int, 0, n)

	for _, match := range rankedChoiceDigits.FindAllString(content, -1) {
		v, err := strconv.Atoi(match)
		if err != nil || v < 1 || v > n || seen[v] {
			continue
		}
		seen[v] = true
		ballot = append(ballot, v-1)
	}

	for i := 0; i < n; i++ {
		if !seen[i+1] {
			ballot = append(ballot, i)
			seen[i+1] = true
		}
	}

	return ballot
}

// runInstantRunoff resolves a single ranked ballot into a winning index and
// the vote tally at the round the winner was declared. With exactly one
// ballot the top remaining pick always holds 100% of votes cast, so the
// runoff always declares a winner in its first round — the elimination
// loop below exists so the same logic generalizes cleanly if a future
// caller supplies multiple ballots.
func runInstantRunoff(ballot []int, n int) (int, map[int]int) {
	eliminated := make(map[int]bool, n)

	for {
		top := firstRemaining(ballot, eliminated)
		if top < 0 {
			return -1, map[int]int{}
		}

		tally := map[int]int{top: 1}
		if float64(tally[top]) > 0.5 {
			return top, tally
		}

		remaining := 0
		for i := 0; i < n; i++ {
			if !eliminated[i] {
				remaining++
			}
		}
		if remaining <= 1 {
			return top, tally
		}
		eliminated[top] = true
	}
}

func firstRemaining(ballot []int, eliminated map[int]bool) int {
	for _, candidate := range ballot {
		if !eliminated[candidate] {
			return candidate
		}
	}
	return -1
}
