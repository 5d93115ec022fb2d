package contextwindow

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/transcript"
)

// RecursiveSummarization preserves the most recent rounds verbatim and
// compresses older rounds into LLM-built summaries, extending a cached
// summary incrementally rather than re-summarizing from scratch each time
// its window advances.
type RecursiveSummarization struct {
	Provider               llm.Provider
	PreserveRecentRounds   int
	SummarizationChunkSize int
	MaxTokens              int

	mu    sync.Mutex
	cache map[int]string // end round -> summary text
}

// NewRecursiveSummarization constructs a RecursiveSummarization manager.
func NewRecursiveSummarization(provider llm.Provider, preserveRecentRounds, chunkSize, maxTokens int) *RecursiveSummarization {
	return &RecursiveSummarization{
		Provider:               provider,
		PreserveRecentRounds:   preserveRecentRounds,
		SummarizationChunkSize: chunkSize,
		MaxTokens:              maxTokens,
		cache:                  make(map[int]string),
	}
}

func (*RecursiveSummarization) Name() string { return "recursive_summarization" }

func (r *RecursiveSummarization) Project(ctx context.Context, messages []transcript.Message, _ string, currentRound int) (ContextWindow, error) {
	original := len(messages)
	if original == 0 {
		return ContextWindow{}, nil
	}

	cutoff := currentRound - r.PreserveRecentRounds
	var older, recent []transcript.Message
	for _, m := range messages {
		if m.Round < cutoff {
			older = append(older, m)
		} else {
			recent = append(recent, m)
		}
	}

	summary := ""
	summarizedCount := 0
	if len(older) > 0 {
		summarizedCount = len(older)
		if r.Provider != nil {
			summary = r.summarizeIncrementally(ctx, older)
		} else {
			summary = fallbackSummary(older)
		}
	}

	projected := make([]transcript.Message, len(recent))
	copy(projected, recent)
	sort.SliceStable(projected, func(i, j int) bool {
		if projected[i].Round != projected[j].Round {
			return projected[i].Round < projected[j].Round
		}
		return projected[i].Timestamp.Before(projected[j].Timestamp)
	})

	tokens := estimateTokens(projected) + estimatedTextTokens(summary)
	if r.MaxTokens > 0 && r.Provider != nil {
		for tokens > r.MaxTokens && len(projected) > 2 {
			half := len(projected) / 2
			compressed := r.summarizeIncrementally(ctx, projected[:half])
			summary = fmt.Sprintf("[Compressed context] %s", compressed) + "\n" + summary
			projected = projected[half:]
			tokens = estimateTokens(projected) + estimatedTextTokens(summary)
		}
	}

	return ContextWindow{
		Messages:        projected,
		Summary:         summary,
		EstimatedTokens: tokens,
		OriginalCount:   original,
		RetainedCount:   len(projected),
		DroppedCount:    0,
		SummarizedCount: summarizedCount,
		RoundsPreserved: distinctRounds(projected),
	}, nil
}

// summarizeIncrementally builds (or extends, from cache) a summary covering
// msgs, chunked by SummarizationChunkSize and keyed by end round.
func (r *RecursiveSummarization) summarizeIncrementally(ctx context.Context, msgs []transcript.Message) string {
	if len(msgs) == 0 {
		return ""
	}
	endRound := msgs[len(msgs)-1].Round
	chunk := r.SummarizationChunkSize
	if chunk <= 0 {
		chunk = len(msgs)
	}

	boundary := endRound - chunk
	r.mu.Lock()
	prior, ok := r.cache[boundary]
	r.mu.Unlock()

	temp := float32(0.3)
	var prompt string
	if ok {
		newMsgs := msgsAfterRound(msgs, boundary)
		prompt = fmt.Sprintf("Existing summary:\n%s\n\nExtend it with these new messages:\n%s", prior, formatMessages(newMsgs))
	} else {
		prompt = fmt.Sprintf("Summarize this deliberation excerpt:\n%s", formatMessages(msgs))
	}

	resp, err := r.Provider.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.CompletionOptions{Temperature: &temp})
	summary := fallbackSummary(msgs)
	if err == nil {
		summary = resp.Content
	}

	r.mu.Lock()
	r.cache[endRound] = summary
	r.mu.Unlock()

	return summary
}

// msgsAfterRound returns the messages appended since boundary, preserving
// order. Used on a cache hit so the extension prompt carries only the
// intervening messages instead of resending the whole chunk.
func msgsAfterRound(msgs []transcript.Message, boundary int) []transcript.Message {
	var out []transcript.Message
	for _, m := range msgs {
		if m.Round > boundary {
			out = append(out, m)
		}
	}
	return out
}

func formatMessages(msgs []transcript.Message) string {
	s := ""
	for _, m := range msgs {
		s += fmt.Sprintf("[%s, round %d] %s\n", m.AgentName, m.Round, m.Content)
	}
	return s
}

func fallbackSummary(msgs []transcript.Message) string {
	if len(msgs) == 0 {
		return ""
	}
	participants := make(map[string]bool)
	minRound, maxRound := msgs[0].Round, msgs[0].Round
	for _, m := range msgs {
		participants[m.AgentName] = true
		if m.Round < minRound {
			minRound = m.Round
		}
		if m.Round > maxRound {
			maxRound = m.Round
		}
	}
	names := make([]string, 0, len(participants))
	for name := range participants {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("[Summary of %d messages across rounds %d–%d. Participants: %s]", len(msgs), minRound, maxRound, joinComma(names))
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func estimatedTextTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return (len(s) + 3) / 4
}

func distinctRounds(msgs []transcript.Message) []int {
	set := make(map[int]bool)
	for _, m := range msgs {
		set[m.Round] = true
	}
	out := make([]int, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}
