package convergence

import (
	"context"
	"regexp"
	"strings"

	"github.com/cameron5906/conclave/transcript"
)

// TokenSimilarity scores convergence as the mean Jaccard similarity,
// across agents that spoke in both the current and prior round, between
// those two rounds' messages.
type TokenSimilarity struct{}

func (TokenSimilarity) Name() string { return "token_similarity" }

var wordSplit = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func (TokenSimilarity) Score(_ context.Context, state *transcript.State) (float64, error) {
	if state.CurrentRound < 2 {
		return 0.0, nil
	}

	current := state.MessagesInRound(state.CurrentRound)
	prior := state.MessagesInRound(state.CurrentRound - 1)

	priorByAgent := make(map[string]string, len(prior))
	for _, m := range prior {
		priorByAgent[m.AgentID] = m.Content
	}

	var total float64
	var count int
	for _, m := range current {
		priorContent, ok := priorByAgent[m.AgentID]
		if !ok {
			continue
		}
		total += jaccard(tokenize(m.Content), tokenize(priorContent))
		count++
	}

	if count == 0 {
		return 0.0, nil
	}
	return total / float64(count), nil
}

// tokenize lower-cases content, splits on whitespace/punctuation, and
// keeps tokens longer than 2 characters.
func tokenize(content string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range wordSplit.Split(strings.ToLower(content), -1) {
		if len(tok) > 2 {
			tokens[tok] = true
		}
	}
	return tokens
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
