package convergence

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/transcript"
)

// LLM scores convergence by asking a provider to judge the last two
// rounds of transcript directly.
type LLM struct {
	Provider llm.Provider
}

func (LLM) Name() string { return "llm" }

var convergenceNumber = regexp.MustCompile(`\d+(\.\d+)?`)

func (l LLM) Score(ctx context.Context, state *transcript.State) (float64, error) {
	if state.CurrentRound < 2 {
		return 0.0, nil
	}

	prompt := buildConvergencePrompt(state)
	temp := float32(0.1)
	resp, err := l.Provider.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.CompletionOptions{Temperature: &temp, MaxTokens: 10})
	if err != nil {
		return 0.5, nil
	}

	match := convergenceNumber.FindString(resp.Content)
	if match == "" {
		return 0.5, nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0.5, nil
	}
	return clamp01(v), nil
}

func buildConvergencePrompt(state *transcript.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\n", state.Task)
	for _, r := range []int{state.CurrentRound - 1, state.CurrentRound} {
		for _, m := range state.MessagesInRound(r) {
			fmt.Fprintf(&b, "[%s, round %d] %s\n", m.AgentName, r, m.Content)
		}
	}
	b.WriteString("\nOn a scale of 0.0 to 1.0, how much have the participants converged toward agreement? Reply with only the number.")
	return b.String()
}
