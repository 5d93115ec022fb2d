package termination

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/transcript"
)

const judgeSchemaHint = `{"shouldTerminate": boolean, "confidence": number, "reasoning": string, "keyPointsResolved": [string], "outstandingIssues": [string]}`

const defaultJudgeConfidenceThreshold = 0.7

type judgeOutput struct {
	ShouldTerminate   bool     `json:"shouldTerminate"`
	Confidence        float64  `json:"confidence"`
	Reasoning         string   `json:"reasoning"`
	KeyPointsResolved []string `json:"keyPointsResolved"`
	OutstandingIssues []string `json:"outstandingIssues"`
}

// AgentTerminator asks a judge agent (distinct from the deliberation's
// participants) whether the deliberation should stop.
type AgentTerminator struct {
	Judge               *agent.Agent
	Prompt              string // optional, appended to the default judging framing
	ConfidenceThreshold float64
}

func (AgentTerminator) Name() string { return "agent_terminator" }

func (a AgentTerminator) Check(ctx context.Context, state *transcript.State) (Decision, error) {
	threshold := a.ConfidenceThreshold
	if threshold <= 0 {
		threshold = defaultJudgeConfidenceThreshold
	}

	task := buildJudgePrompt(state, a.Prompt)
	resp := a.Judge.ProcessStructured(ctx, task, judgeSchemaHint, nil)
	if !resp.StructuredOutputOK {
		return deterministic(false, ReasonNone, "judge output did not parse"), nil
	}

	var out judgeOutput
	if err := json.Unmarshal(resp.StructuredOutput, &out); err != nil {
		return deterministic(false, ReasonNone, "judge output did not parse"), nil
	}

	if out.ShouldTerminate && out.Confidence >= threshold {
		return Decision{
			ShouldTerminate: true,
			Reason:          ReasonAgentDecision,
			Explanation:     out.Reasoning,
			Confidence:      out.Confidence,
		}, nil
	}
	return Decision{ShouldTerminate: false, Reason: ReasonNone, Explanation: out.Reasoning, Confidence: out.Confidence}, nil
}

func buildJudgePrompt(state *transcript.State, customPrompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task under deliberation: %s\n\nTranscript so far (round %d):\n", state.Task, state.CurrentRound)
	for _, m := range state.Messages {
		fmt.Fprintf(&b, "[%s, round %d] %s\n", m.AgentName, m.Round, m.Content)
	}
	if customPrompt != "" {
		b.WriteString("\n" + customPrompt)
	} else {
		b.WriteString("\nShould this deliberation terminate now? Consider whether the participants have reached a stable conclusion.")
	}
	return b.String()
}

// WorkflowRunner is the minimal capability a workflow-backed terminator
// needs: run one judgement task and return its text answer. A
// workflow.BoundRunner (an Executor paired with fixed Options) satisfies
// this, without this package importing the workflow package directly.
type WorkflowRunner interface {
	RunText(ctx context.Context, task string) (string, error)
}

// WorkflowTerminator runs an entire workflow to judge whether a
// deliberation should stop, parsing the same judge schema from its
// winning text.
type WorkflowTerminator struct {
	Workflow            WorkflowRunner
	ConfidenceThreshold float64
}

func (WorkflowTerminator) Name() string { return "workflow_terminator" }

func (w WorkflowTerminator) Check(ctx context.Context, state *transcript.State) (Decision, error) {
	threshold := w.ConfidenceThreshold
	if threshold <= 0 {
		threshold = defaultJudgeConfidenceThreshold
	}

	task := buildJudgePrompt(state, fmt.Sprintf("Respond only with JSON matching: %s", judgeSchemaHint))
	text, err := w.Workflow.RunText(ctx, task)
	if err != nil {
		return Decision{}, err
	}

	raw, ok := extractJSONObject(text)
	if !ok {
		return deterministic(false, ReasonNone, "workflow judge output did not parse"), nil
	}
	var out judgeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return deterministic(false, ReasonNone, "workflow judge output did not parse"), nil
	}

	if out.ShouldTerminate && out.Confidence >= threshold {
		return Decision{
			ShouldTerminate: true,
			Reason:          ReasonWorkflowDecision,
			Explanation:     out.Reasoning,
			Confidence:      out.Confidence,
		}, nil
	}
	return Decision{ShouldTerminate: false, Reason: ReasonNone, Explanation: out.Reasoning, Confidence: out.Confidence}, nil
}

func extractJSONObject(s string) (string, bool) {
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
