package contextwindow

import (
	"context"
	"fmt"

	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/transcript"
)

// Hierarchical segments the transcript into fixed-size phases, summarizes
// each phase and the concatenation of phase summaries into a global
// overview, then packs a per-agent projection under a token budget:
// the most recent phase verbatim if it fits a reserved allocation, the
// global summary next, and the remaining budget split across older
// phase summaries.
type Hierarchical struct {
	Provider               llm.Provider
	RoundsPerPhase         int
	MaxTokens              int
	RecentPhaseAllocation  float64 // default 0.5
}

// NewHierarchical returns a Hierarchical manager with the documented
// default recent-phase allocation of 0.5.
func NewHierarchical(provider llm.Provider, roundsPerPhase, maxTokens int) *Hierarchical {
	return &Hierarchical{
		Provider:              provider,
		RoundsPerPhase:        roundsPerPhase,
		MaxTokens:             maxTokens,
		RecentPhaseAllocation: 0.5,
	}
}

func (*Hierarchical) Name() string { return "hierarchical" }

type phase struct {
	name     string
	messages []transcript.Message
	summary  string
}

func (h *Hierarchical) Project(ctx context.Context, messages []transcript.Message, _ string, currentRound int) (ContextWindow, error) {
	original := len(messages)
	if original == 0 {
		return ContextWindow{}, nil
	}

	phases := h.segmentPhases(messages)
	for i := range phases {
		phases[i].summary = h.summarizePhase(ctx, phases[i])
	}

	globalSummary := ""
	if len(phases) > 1 {
		globalSummary = h.summarizeOverview(ctx, phases)
	}

	budget := h.MaxTokens
	allocation := h.RecentPhaseAllocation
	if allocation <= 0 {
		allocation = 0.5
	}

	var projected []transcript.Message
	var summaryParts []string
	tokensUsed := 0

	recent := phases[len(phases)-1]
	recentTokens := estimateTokens(recent.messages)
	if budget <= 0 || recentTokens <= int(float64(budget)*allocation) {
		projected = append(projected, recent.messages...)
		tokensUsed += recentTokens
	} else {
		summaryParts = append(summaryParts, fmt.Sprintf("[%s] %s", recent.name, recent.summary))
		tokensUsed += estimatedTextTokens(recent.summary)
	}

	remaining := budget - tokensUsed
	if globalSummary != "" {
		globalCost := estimatedTextTokens(globalSummary)
		if budget <= 0 || globalCost <= int(float64(remaining)*0.3) {
			summaryParts = append([]string{fmt.Sprintf("[Overview] %s", globalSummary)}, summaryParts...)
			tokensUsed += globalCost
			remaining -= globalCost
		}
	}

	olderPhases := phases[:maxInt(0, len(phases)-1)]
	if len(olderPhases) > 0 {
		share := remaining
		if budget > 0 {
			share = remaining / len(olderPhases)
		}
		for _, p := range olderPhases {
			text := fmt.Sprintf("[%s] %s", p.name, p.summary)
			cost := estimatedTextTokens(text)
			if budget > 0 && cost > share {
				continue
			}
			summaryParts = append(summaryParts, text)
			tokensUsed += cost
		}
	}

	combinedSummary := ""
	for i, part := range summaryParts {
		if i > 0 {
			combinedSummary += "\n"
		}
		combinedSummary += part
	}

	return ContextWindow{
		Messages:        projected,
		Summary:         combinedSummary,
		EstimatedTokens: tokensUsed,
		OriginalCount:   original,
		RetainedCount:   len(projected),
		SummarizedCount: original - len(projected),
		RoundsPreserved: distinctRounds(projected),
	}, nil
}

func (h *Hierarchical) segmentPhases(messages []transcript.Message) []phase {
	roundsPerPhase := h.RoundsPerPhase
	if roundsPerPhase <= 0 {
		roundsPerPhase = 1
	}

	maxRound := 0
	for _, m := range messages {
		if m.Round > maxRound {
			maxRound = m.Round
		}
	}

	var phases []phase
	for start := 1; start <= maxRound; start += roundsPerPhase {
		end := start + roundsPerPhase - 1
		if end > maxRound {
			end = maxRound
		}
		var msgs []transcript.Message
		for _, m := range messages {
			if m.Round >= start && m.Round <= end {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) == 0 {
			continue
		}

		name := fmt.Sprintf("Phase %d", len(phases)+1)
		if end == maxRound {
			name = fmt.Sprintf("Current Discussion (Round %d–%d)", start, end)
		} else if len(phases) == 0 {
			name = "Initial Positions"
		} else {
			name = fmt.Sprintf("Rounds %d–%d", start, end)
		}

		phases = append(phases, phase{name: name, messages: msgs})
	}

	return phases
}

func (h *Hierarchical) summarizePhase(ctx context.Context, p phase) string {
	if h.Provider == nil {
		return fallbackSummary(p.messages)
	}
	temp := float32(0.3)
	resp, err := h.Provider.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf("Summarize this phase of a deliberation (%s):\n%s", p.name, formatMessages(p.messages))},
	}, llm.CompletionOptions{Temperature: &temp})
	if err != nil {
		return fallbackSummary(p.messages)
	}
	return resp.Content
}

func (h *Hierarchical) summarizeOverview(ctx context.Context, phases []phase) string {
	if h.Provider == nil {
		parts := make([]string, len(phases))
		for i, p := range phases {
			parts[i] = p.summary
		}
		return joinComma(parts)
	}
	combined := ""
	for _, p := range phases {
		combined += fmt.Sprintf("[%s] %s\n", p.name, p.summary)
	}
	temp := float32(0.3)
	resp, err := h.Provider.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "Summarize this sequence of phase summaries into one global overview:\n" + combined},
	}, llm.CompletionOptions{Temperature: &temp})
	if err != nil {
		return combined
	}
	return resp.Content
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
