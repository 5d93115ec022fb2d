// Package ctxkeys holds the small set of context.Context keys threaded
// through the engine for correlating logs, spans, and metrics.
package ctxkeys

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	roundKey   contextKey = "round"
	agentIDKey contextKey = "agent_id"
)

// WithRunID attaches a run id (workflow execution or deliberation run) to ctx.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID retrieves the run id set by WithRunID, if any.
func RunID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(runIDKey).(string)
	return v, ok && v != ""
}

// WithRound attaches the current deliberation round number to ctx.
func WithRound(ctx context.Context, round int) context.Context {
	return context.WithValue(ctx, roundKey, round)
}

// Round retrieves the round number set by WithRound, if any.
func Round(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(roundKey).(int)
	return v, ok
}

// WithAgentID attaches the acting agent's id to ctx.
func WithAgentID(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, agentIDKey, agentID)
}

// AgentID retrieves the agent id set by WithAgentID, if any.
func AgentID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(agentIDKey).(string)
	return v, ok && v != ""
}
