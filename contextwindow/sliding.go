package contextwindow

import (
	"context"
	"sort"

	"github.com/cameron5906/conclave/transcript"
)

// SlidingWindow keeps the first round (optionally), the latest one or two
// rounds (optionally), and greedily backfills remaining messages in
// reverse-chronological order while a token/message budget holds.
type SlidingWindow struct {
	MaxTokens            int
	MaxMessages          int
	PreserveFirstRound   bool
	PreserveLatestRound  bool
}

// NewSlidingWindow returns a SlidingWindow with both preserve flags
// defaulted to true, matching the documented defaults.
func NewSlidingWindow(maxTokens, maxMessages int) SlidingWindow {
	return SlidingWindow{
		MaxTokens:           maxTokens,
		MaxMessages:         maxMessages,
		PreserveFirstRound:  true,
		PreserveLatestRound: true,
	}
}

func (SlidingWindow) Name() string { return "sliding_window" }

func (s SlidingWindow) Project(_ context.Context, messages []transcript.Message, _ string, currentRound int) (ContextWindow, error) {
	original := len(messages)
	if original == 0 {
		return ContextWindow{}, nil
	}

	type key struct {
		agentID   string
		round     int
		timestamp int64
	}
	seen := make(map[key]bool, original)
	dedup := func(m transcript.Message) bool {
		k := key{m.AgentID, m.Round, m.Timestamp.UnixNano()}
		if seen[k] {
			return false
		}
		seen[k] = true
		return true
	}

	selected := make([]transcript.Message, 0, original)
	roundsPreserved := make(map[int]bool)

	if s.PreserveFirstRound {
		for _, m := range messages {
			if m.Round == 1 && dedup(m) {
				selected = append(selected, m)
				roundsPreserved[1] = true
			}
		}
	}
	if s.PreserveLatestRound {
		for _, m := range messages {
			if (m.Round == currentRound || m.Round == currentRound-1) && dedup(m) {
				selected = append(selected, m)
				roundsPreserved[m.Round] = true
			}
		}
	}

	// Greedily backfill remaining messages, newest first, while budgets hold.
	remaining := make([]transcript.Message, 0, original)
	for _, m := range messages {
		k := key{m.AgentID, m.Round, m.Timestamp.UnixNano()}
		if seen[k] {
			continue
		}
		remaining = append(remaining, m)
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		if remaining[i].Round != remaining[j].Round {
			return remaining[i].Round > remaining[j].Round
		}
		return remaining[i].Timestamp.After(remaining[j].Timestamp)
	})

	tokenBudget := s.MaxTokens
	tokens := estimateTokens(selected)
	for _, m := range remaining {
		if s.MaxMessages > 0 && len(selected) >= s.MaxMessages {
			break
		}
		mt := m.EstimatedTokens()
		if tokenBudget > 0 && tokens+mt > tokenBudget {
			break
		}
		if !dedup(m) {
			continue
		}
		selected = append(selected, m)
		roundsPreserved[m.Round] = true
		tokens += mt
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Round != selected[j].Round {
			return selected[i].Round < selected[j].Round
		}
		return selected[i].Timestamp.Before(selected[j].Timestamp)
	})

	rounds := make([]int, 0, len(roundsPreserved))
	for r := range roundsPreserved {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)

	return ContextWindow{
		Messages:        selected,
		EstimatedTokens: estimateTokens(selected),
		OriginalCount:   original,
		RetainedCount:   len(selected),
		DroppedCount:    original - len(selected),
		RoundsPreserved: rounds,
	}, nil
}
