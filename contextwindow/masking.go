package contextwindow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/transcript"
)

// MaskStrategy selects how a masked message's content is rewritten.
type MaskStrategy string

const (
	MaskTruncate         MaskStrategy = "truncate"
	MaskRemoveVerbose    MaskStrategy = "remove_verbose"
	MaskExtractKeyPoints MaskStrategy = "extract_key_points"
	MaskPlaceholder      MaskStrategy = "placeholder"
	MaskHybrid           MaskStrategy = "hybrid"
)

var decisionIndicators = []string{"i conclude", "final answer", "my position is"}

var verboseFillerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)as i mentioned`),
	regexp.MustCompile(`(?i)to elaborate`),
	regexp.MustCompile(`(?i)in other words`),
	regexp.MustCompile(`(?i)let me explain`),
	regexp.MustCompile(`(?i)for example`),
	regexp.MustCompile(`(?i)to clarify`),
	regexp.MustCompile(`(?i)what i mean is`),
	regexp.MustCompile(`(?i)specifically`),
}

// ObservationMasking preserves recent rounds and the recipient's own
// messages verbatim, masking older verbose or pattern-matched messages
// from other agents under the configured strategy.
type ObservationMasking struct {
	Provider              llm.Provider
	Strategy              MaskStrategy
	PreserveRecentRounds  int
	PreserveOwnMessages   bool
	AlwaysPreserveAgents  map[string]bool
	VerbosityThreshold    int
	MaskPatterns          []*regexp.Regexp
	DefaultPolicyMasks    bool
	MaxMaskedLength        int
}

func (ObservationMasking) Name() string { return "observation_masking" }

func (o ObservationMasking) Project(ctx context.Context, messages []transcript.Message, recipientAgentID string, currentRound int) (ContextWindow, error) {
	original := len(messages)
	if original == 0 {
		return ContextWindow{}, nil
	}

	projected := make([]transcript.Message, 0, original)
	maskedCount := 0

	for _, m := range messages {
		if o.shouldMask(m, recipientAgentID, currentRound) {
			projected = append(projected, o.mask(ctx, m))
			maskedCount++
		} else {
			projected = append(projected, m)
		}
	}

	return ContextWindow{
		Messages:        projected,
		EstimatedTokens: estimateTokens(projected),
		OriginalCount:   original,
		RetainedCount:   len(projected),
		MaskedCount:     maskedCount,
		RoundsPreserved: distinctRounds(projected),
	}, nil
}

func (o ObservationMasking) shouldMask(m transcript.Message, recipientAgentID string, currentRound int) bool {
	if m.Round > currentRound-o.PreserveRecentRounds {
		return false
	}
	if o.PreserveOwnMessages && m.AgentID == recipientAgentID {
		return false
	}
	if o.AlwaysPreserveAgents != nil && o.AlwaysPreserveAgents[m.AgentID] {
		return false
	}
	if containsDecisionIndicator(m.Content) {
		return false
	}

	if o.VerbosityThreshold > 0 && m.EstimatedTokens() > o.VerbosityThreshold {
		return true
	}
	for _, pattern := range o.MaskPatterns {
		if pattern.MatchString(m.Content) {
			return true
		}
	}
	return o.DefaultPolicyMasks
}

func containsDecisionIndicator(content string) bool {
	lower := strings.ToLower(content)
	for _, phrase := range decisionIndicators {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func (o ObservationMasking) mask(ctx context.Context, m transcript.Message) transcript.Message {
	switch o.Strategy {
	case MaskTruncate:
		m.Content = truncateToSentences(m.Content, o.maxMaskedLength()-20) + " [truncated]"
	case MaskRemoveVerbose:
		m.Content = removeVerbose(m.Content)
	case MaskExtractKeyPoints:
		m.Content = o.extractKeyPoints(ctx, m)
	case MaskPlaceholder:
		m.Content = placeholderFor(m)
	case MaskHybrid:
		stripped := removeVerbose(m.Content)
		if estimatedTextTokens(stripped) > o.maxMaskedLength()/4 {
			m.Content = o.extractKeyPoints(ctx, m)
		} else {
			m.Content = stripped
		}
	default:
		m.Content = placeholderFor(m)
	}
	return m
}

func (o ObservationMasking) maxMaskedLength() int {
	if o.MaxMaskedLength > 0 {
		return o.MaxMaskedLength
	}
	return 200
}

func truncateToSentences(content string, maxChars int) string {
	if maxChars <= 0 || len(content) <= maxChars {
		return content
	}
	truncated := content[:maxChars]
	if idx := strings.LastIndexAny(truncated, ".!?"); idx >= 0 {
		return truncated[:idx+1]
	}
	return truncated
}

func removeVerbose(content string) string {
	stripped := content
	for _, pattern := range verboseFillerPatterns {
		stripped = pattern.ReplaceAllString(stripped, "")
	}
	stripped = strings.Join(strings.Fields(stripped), " ")
	if len(content) > 0 && float64(len(stripped)) < float64(len(content))*0.5 {
		stripped += " [condensed]"
	}
	return stripped
}

func (o ObservationMasking) extractKeyPoints(ctx context.Context, m transcript.Message) string {
	if o.Provider == nil {
		return placeholderFor(m)
	}
	temp := float32(0.2)
	maxTokens := 150
	resp, err := o.Provider.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf("Extract up to 3 key bullet points from this message:\n%s", m.Content)},
	}, llm.CompletionOptions{Temperature: &temp, MaxTokens: maxTokens})
	if err != nil {
		return placeholderFor(m)
	}
	return fmt.Sprintf("[Key points from %s]\n%s", m.AgentName, resp.Content)
}

func placeholderFor(m transcript.Message) string {
	words := len(strings.Fields(m.Content))
	decision := ""
	if containsDecisionIndicator(m.Content) {
		decision = ", contains decision"
	}
	return fmt.Sprintf("[%s - Round %d: ~%d words%s]", m.AgentName, m.Round, words, decision)
}
