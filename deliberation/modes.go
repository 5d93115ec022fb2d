package deliberation

import (
	"context"
	"fmt"
	"time"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/internal/ctxkeys"
	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/transcript"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runRound dispatches to the configured round mode, falling back to
// RoundRobin for Moderated when no moderator is configured and for any
// unrecognized mode value.
func (e *Executor) runRound(ctx context.Context, logger *zap.Logger, state *transcript.State, opts Options) ([]transcript.Message, bool, error) {
	switch opts.Mode {
	case Debate:
		return e.runDebate(ctx, logger, state, opts)
	case Moderated:
		if opts.Moderator == nil {
			return e.runRoundRobin(ctx, logger, state, opts)
		}
		return e.runModerated(ctx, logger, state, opts)
	case FreeForm:
		return e.runFreeForm(ctx, logger, state, opts)
	default:
		return e.runRoundRobin(ctx, logger, state, opts)
	}
}

// runRoundRobin speaks agents sequentially in registration order. Each
// agent's message is appended before the next agent is built, so a
// context manager projecting state.Messages sees every earlier speaker
// from the same round.
func (e *Executor) runRoundRobin(ctx context.Context, logger *zap.Logger, state *transcript.State, opts Options) ([]transcript.Message, bool, error) {
	prevMessages := state.MessagesInRound(state.CurrentRound - 1)

	var out []transcript.Message
	for _, a := range opts.Agents {
		if ctx.Err() != nil {
			return out, true, nil
		}

		task := roundRobinPrompt(state.CurrentRound, excludeAgent(prevMessages, a.ID()))
		history, err := buildAgentContext(ctx, state, a, opts.Agents, opts.ContextManager)
		if err != nil {
			return out, false, err
		}

		opts.emit(StageAgentSpeaking, state.CurrentRound, a.ID(), state.TotalTokensUsed, state.Elapsed(), state.ConvergenceScore, "agent speaking")
		resp := e.invoke(ctx, logger, a, task, history, opts)
		msg := newMessage(a, resp, state.CurrentRound, "")
		state.Append(msg)
		out = append(out, msg)
	}
	return out, false, nil
}

// runDebate speaks every agent concurrently, each addressing the other
// agents' round r-1 contributions and citing the first opposing agent as
// inResponseTo. Messages are collected and appended atomically at round
// end, in invocation order, so no agent sees a same-round message.
func (e *Executor) runDebate(ctx context.Context, logger *zap.Logger, state *transcript.State, opts Options) ([]transcript.Message, bool, error) {
	prevMessages := state.MessagesInRound(state.CurrentRound - 1)

	results := make([]transcript.Message, len(opts.Agents))
	g, gCtx := errgroup.WithContext(ctx)
	for i, a := range opts.Agents {
		i, a := i, a
		g.Go(func() error {
			others := excludeAgent(prevMessages, a.ID())
			task := debatePrompt(state.CurrentRound, others)
			history, err := buildAgentContext(gCtx, state, a, opts.Agents, opts.ContextManager)
			if err != nil {
				return err
			}
			resp := e.invoke(gCtx, logger, a, task, history, opts)
			inResponseTo := ""
			if len(others) > 0 {
				inResponseTo = others[0].AgentID
			}
			results[i] = newMessage(a, resp, state.CurrentRound, inResponseTo)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	if ctx.Err() != nil {
		return nil, true, nil
	}

	for _, m := range results {
		state.Append(m)
	}
	return results, false, nil
}

// runModerated has the moderator speak first, framing round 1 or
// summarizing the previous round thereafter, then each participant
// replies sequentially to the moderator's message.
func (e *Executor) runModerated(ctx context.Context, logger *zap.Logger, state *transcript.State, opts Options) ([]transcript.Message, bool, error) {
	var out []transcript.Message
	if ctx.Err() != nil {
		return out, true, nil
	}

	roster := append([]*agent.Agent{opts.Moderator}, opts.Agents...)

	modTask := moderatorPrompt(state.CurrentRound, state)
	modHistory, err := buildAgentContext(ctx, state, opts.Moderator, roster, opts.ContextManager)
	if err != nil {
		return out, false, err
	}
	opts.emit(StageAgentSpeaking, state.CurrentRound, opts.Moderator.ID(), state.TotalTokensUsed, state.Elapsed(), state.ConvergenceScore, "moderator speaking")
	modResp := e.invoke(ctx, logger, opts.Moderator, modTask, modHistory, opts)
	modMsg := newMessage(opts.Moderator, modResp, state.CurrentRound, "")
	state.Append(modMsg)
	out = append(out, modMsg)

	for _, a := range opts.Agents {
		if ctx.Err() != nil {
			return out, true, nil
		}
		task := fmt.Sprintf("The moderator says:\n\n%s\n\nRespond with your perspective.", modMsg.Content)
		history, err := buildAgentContext(ctx, state, a, roster, opts.ContextManager)
		if err != nil {
			return out, false, err
		}
		opts.emit(StageAgentSpeaking, state.CurrentRound, a.ID(), state.TotalTokensUsed, state.Elapsed(), state.ConvergenceScore, "agent speaking")
		resp := e.invoke(ctx, logger, a, task, history, opts)
		msg := newMessage(a, resp, state.CurrentRound, opts.Moderator.ID())
		state.Append(msg)
		out = append(out, msg)
	}
	return out, false, nil
}

// runFreeForm speaks every agent concurrently, each seeing the full prior
// transcript inline in its prompt, independent of any context manager
// projection attached separately as history.
func (e *Executor) runFreeForm(ctx context.Context, logger *zap.Logger, state *transcript.State, opts Options) ([]transcript.Message, bool, error) {
	priorTranscript := formatMessages(state.Messages)

	results := make([]transcript.Message, len(opts.Agents))
	g, gCtx := errgroup.WithContext(ctx)
	for i, a := range opts.Agents {
		i, a := i, a
		g.Go(func() error {
			task := freeFormPrompt(state.CurrentRound, priorTranscript)
			history, err := buildAgentContext(gCtx, state, a, opts.Agents, opts.ContextManager)
			if err != nil {
				return err
			}
			resp := e.invoke(gCtx, logger, a, task, history, opts)
			results[i] = newMessage(a, resp, state.CurrentRound, "")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	if ctx.Err() != nil {
		return nil, true, nil
	}

	for _, m := range results {
		state.Append(m)
	}
	return results, false, nil
}

func (e *Executor) invoke(ctx context.Context, logger *zap.Logger, a *agent.Agent, task string, history []llm.Message, opts Options) *agent.AgentResponse {
	ctx = ctxkeys.WithAgentID(ctx, a.ID())
	if agentID, ok := ctxkeys.AgentID(ctx); ok {
		logger.Debug("invoking agent", zap.String("agent_id", agentID))
	}
	if opts.SchemaHint != "" {
		return a.ProcessStructured(ctx, task, opts.SchemaHint, history)
	}
	return a.Process(ctx, task, history)
}

func newMessage(a *agent.Agent, resp *agent.AgentResponse, round int, inResponseTo string) transcript.Message {
	tokens := 0
	if resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	return transcript.Message{
		AgentID:          a.ID(),
		AgentName:        a.Name(),
		Content:          resp.Text,
		StructuredOutput: resp.StructuredOutput,
		Round:            round,
		Timestamp:        time.Now(),
		InResponseTo:     inResponseTo,
		TokenCount:       tokens,
	}
}

func excludeAgent(msgs []transcript.Message, agentID string) []transcript.Message {
	var out []transcript.Message
	for _, m := range msgs {
		if m.AgentID != agentID {
			out = append(out, m)
		}
	}
	return out
}

func roundRobinPrompt(round int, othersFromPrevRound []transcript.Message) string {
	if round == 1 {
		return "Provide your initial perspective on the task."
	}
	return fmt.Sprintf("Consider the other perspectives from the previous round:\n\n%s\n\nRespond with your updated perspective.", formatMessages(othersFromPrevRound))
}

func debatePrompt(round int, othersFromPrevRound []transcript.Message) string {
	if round == 1 || len(othersFromPrevRound) == 0 {
		return "Present your opening argument on the task."
	}
	return fmt.Sprintf("Address these arguments directly:\n\n%s\n\nPresent your rebuttal.", formatMessages(othersFromPrevRound))
}

func moderatorPrompt(round int, state *transcript.State) string {
	if round == 1 {
		return fmt.Sprintf("Introduce the topic and frame the discussion for the participants.\n\nTask: %s", state.Task)
	}
	prev := state.MessagesInRound(round - 1)
	return fmt.Sprintf("Summarize the previous round and pose the next question to the participants.\n\nPrevious round:\n%s", formatMessages(prev))
}

func freeFormPrompt(round int, priorTranscript string) string {
	if round == 1 || priorTranscript == "" {
		return "Share your perspective on the task, in open discussion with the other participants."
	}
	return fmt.Sprintf("Continue the open discussion. Full transcript so far:\n\n%s\n\nShare your next contribution.", priorTranscript)
}
