package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cameron5906/conclave/internal/metrics"
	"github.com/cameron5906/conclave/llm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxToolIterations bounds the agent's tool-calling loop so a model that
// never stops requesting tools cannot wedge a round forever.
const maxToolIterations = 10

// maxIterationsText is returned verbatim as the agent's final answer when
// the tool loop is cut off by maxToolIterations.
const maxIterationsText = "maximum iterations reached"

// AgentResponse is produced by exactly one Agent invocation (Process,
// ProcessStructured, or Vote) and consumed by voting strategies.
type AgentResponse struct {
	AgentID            string
	AgentName          string
	Text               string
	StructuredOutput   json.RawMessage
	StructuredOutputOK bool
	Confidence         *float64
	Elapsed            time.Duration
	Usage              *llm.Usage
	Vote               *VoteResult
}

// VoteResult records the outcome of an Agent.Vote call.
type VoteResult struct {
	ChosenAgentID string
	Reasoning     string
}

// Agent wraps one LLM capability with a personality, tool set, and the
// three agent-level operations used by the workflow and deliberation
// executors. Agents are read-only after construction and safe to share
// across concurrent executions.
type Agent struct {
	id          string
	name        string
	personality Personality
	provider    llm.Provider
	tools       *ToolSet
	defaults    llm.CompletionOptions

	logger  *zap.Logger
	metrics *metrics.Collector
}

// ID returns the agent's stable identifier.
func (a *Agent) ID() string { return a.id }

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Personality returns the agent's personality descriptor.
func (a *Agent) Personality() Personality { return a.personality }

func (a *Agent) completionOptions() llm.CompletionOptions {
	opts := a.defaults
	if opts.Temperature == nil {
		t := a.personality.Creativity
		opts.Temperature = &t
	}
	opts.SystemPrompt = a.personality.ResolveSystemPrompt()
	return opts
}

// Process builds [user(task)] prefixed by context (if any) and invokes the
// agent's LLM capability. If the agent has tools registered, the call runs
// through a bounded tool-calling loop. Any provider failure is swallowed
// into a response whose text begins with "Error: ", per the engine's
// failure semantics — callers always get one response per agent.
func (a *Agent) Process(ctx context.Context, task string, history []llm.Message) *AgentResponse {
	start := time.Now()

	tracer := otel.Tracer("conclave/agent")
	ctx, span := tracer.Start(ctx, "agent.process", trace.WithAttributes(attribute.String("agent.id", a.id)))
	defer span.End()

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: task})

	opts := a.completionOptions()

	var (
		resp *llm.Response
		err  error
	)

	if a.tools != nil && a.tools.Len() > 0 {
		resp, err = a.runToolLoop(ctx, messages, opts)
	} else {
		resp, err = a.provider.Complete(ctx, messages, opts)
	}

	return a.finish(start, resp, err)
}

// runToolLoop drives CompleteWithTools for up to maxToolIterations rounds,
// executing each returned tool call and feeding its result back as a
// tool-role message before re-invoking the model.
func (a *Agent) runToolLoop(ctx context.Context, messages []llm.Message, opts llm.CompletionOptions) (*llm.Response, error) {
	defs := a.tools.Definitions()

	for iter := 0; iter < maxToolIterations; iter++ {
		resp, err := a.provider.CompleteWithTools(ctx, messages, defs, opts)
		if err != nil {
			return nil, err
		}

		if len(resp.ToolCalls) == 0 {
			return resp, nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			result := a.executeTool(ctx, call)
			content := result.Output
			if result.Error != "" {
				content = result.Error
			}
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    content,
				Name:       call.Name,
				ToolCallID: call.ID,
			})
		}
	}

	return &llm.Response{Content: maxIterationsText, FinishReason: "max_iterations"}, nil
}

func (a *Agent) executeTool(ctx context.Context, call llm.ToolCall) ToolResult {
	t, ok := a.tools.Get(call.Name)
	if !ok {
		return ToolResult{Error: ErrToolNotFound.Error()}
	}
	result, err := t.Handler(ctx, call.Arguments)
	if err != nil {
		return ToolResult{Error: err.Error()}
	}
	return result
}

// ProcessStructured appends a schema-description hint to task, invokes the
// agent, then best-effort parses JSON from the first '{' to the last '}'
// in the response content. Parse failure leaves StructuredOutputOK false
// with the text response preserved — structured output is never fatal.
func (a *Agent) ProcessStructured(ctx context.Context, task, schemaHint string, history []llm.Message) *AgentResponse {
	augmented := task
	if schemaHint != "" {
		augmented = fmt.Sprintf("%s\n\nRespond with JSON matching: %s", task, schemaHint)
	}

	resp := a.Process(ctx, augmented, history)

	if raw, ok := ExtractJSONObject(resp.Text); ok {
		resp.StructuredOutput = json.RawMessage(raw)
		resp.StructuredOutputOK = true
	}

	return resp
}

// ExtractJSONObject returns the substring from the first '{' to the last
// '}' in s, if both exist in that order, and whether it parses as JSON.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return "", false
	}
	candidate := s[start : end+1]
	var probe interface{}
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return "", false
	}
	return candidate, true
}

// Vote asks the agent to choose among other agents' responses to task. The
// prompt numbers each candidate starting at 1; the vote is extracted as
// the highest in-range digit found in the model's reply, falling back to
// the first candidate if no digit appears.
func (a *Agent) Vote(ctx context.Context, task string, others []*AgentResponse) *AgentResponse {
	start := time.Now()

	prompt := buildVotePrompt(task, others)
	resp := a.Process(ctx, prompt, nil)
	resp.Elapsed = time.Since(start)

	chosenIdx := extractVoteIndex(resp.Text, len(others))
	chosenID := ""
	if len(others) > 0 {
		chosenID = others[chosenIdx].AgentID
	}

	resp.Vote = &VoteResult{ChosenAgentID: chosenID, Reasoning: resp.Text}
	return resp
}

func buildVotePrompt(task string, others []*AgentResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\nCandidate responses:\n", task)
	for i, r := range others {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Text)
	}
	b.WriteString("\nWhich candidate number is best? Answer with that number and your reasoning.")
	return b.String()
}

// extractVoteIndex scans text for the highest digit in [1,n] and returns
// its zero-based index, defaulting to 0 (the first candidate) when no
// in-range digit is found.
func extractVoteIndex(text string, n int) int {
	if n == 0 {
		return 0
	}
	best := -1
	var digits strings.Builder
	flush := func() {
		if digits.Len() == 0 {
			return
		}
		if v, err := strconv.Atoi(digits.String()); err == nil && v >= 1 && v <= n {
			if v > best {
				best = v
			}
		}
		digits.Reset()
	}
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	if best < 1 {
		return 0
	}
	return best - 1
}

func (a *Agent) finish(start time.Time, resp *llm.Response, err error) *AgentResponse {
	elapsed := time.Since(start)
	out := &AgentResponse{
		AgentID:   a.id,
		AgentName: a.name,
		Elapsed:   elapsed,
	}

	outcome := "success"
	defer func() {
		if a.metrics != nil {
			a.metrics.AgentInvocations.WithLabelValues(a.id, outcome).Inc()
			a.metrics.AgentInvocationTime.WithLabelValues(a.id).Observe(elapsed.Seconds())
		}
	}()

	if err != nil {
		outcome = "error"
		out.Text = "Error: " + err.Error()
		if a.logger != nil {
			a.logger.Warn("agent invocation failed", zap.String("agent_id", a.id), zap.Error(err))
		}
		return out
	}

	out.Text = resp.Content
	if resp.Usage.TotalTokens > 0 || resp.Usage.PromptTokens > 0 {
		usage := resp.Usage
		out.Usage = &usage
		if a.metrics != nil {
			a.metrics.TokensUsed.WithLabelValues(a.id).Add(float64(usage.TotalTokens))
		}
	}
	return out
}
