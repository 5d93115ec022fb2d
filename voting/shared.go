package voting

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/cameron5906/conclave/agent"
	"go.uber.org/zap"
)

// bucketKey normalizes text the way Majority/Weighted group responses:
// lowercased, trimmed, truncated to its first 100 characters, then hashed
// so that two responses differing only after the truncation point still
// collide into the same bucket.
func bucketKey(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if len(normalized) > 100 {
		normalized = normalized[:100]
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// emptyResult is returned by every strategy for an empty response list, per
// the documented contract: empty result, consensus 0.
func emptyResult(strategyName string) VotingResult {
	return VotingResult{Strategy: strategyName, Tally: map[string]int{}}
}

// logVoteResult emits the debug-level winning bucket/score record every
// strategy's Vote promises. logger is nil whenever the caller didn't wire
// one in via VotingContext.Logger, so this is always safe to call.
func logVoteResult(logger *zap.Logger, result VotingResult) {
	if logger == nil {
		return
	}
	logger.Debug("vote resolved",
		zap.String("strategy", result.Strategy),
		zap.String("winning_agent_id", result.WinningAgentID),
		zap.Float64("consensus", result.Consensus),
	)
}

// firstResponseFallback is the documented fallback for arbiter-requiring
// strategies when no arbiter is configured: the first response wins with
// consensus 1/N.
func firstResponseFallback(strategyName string, responses []*agent.AgentResponse) VotingResult {
	first := responses[0]
	return VotingResult{
		Strategy:                strategyName,
		WinningText:             first.Text,
		WinningStructuredOutput: first.StructuredOutput,
		WinningAgentID:          first.AgentID,
		Tally:                   map[string]int{first.AgentID: 1},
		Consensus:               1.0 / float64(len(responses)),
	}
}
