package deliberation

import (
	"context"
	"fmt"
	"strings"

	"github.com/cameron5906/conclave/agent"
	"github.com/cameron5906/conclave/contextwindow"
	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/transcript"
)

// buildAgentContext assembles the history passed into an agent's next
// Process call: an identity/participants system message, then (when a
// context manager is installed and the transcript is non-empty) an
// optional context-summary system message followed by the projected
// transcript messages.
func buildAgentContext(ctx context.Context, state *transcript.State, speaker *agent.Agent, participants []*agent.Agent, mgr contextwindow.Manager) ([]llm.Message, error) {
	history := []llm.Message{identityMessage(speaker, participants)}

	if mgr == nil || len(state.Messages) == 0 {
		return history, nil
	}

	window, err := mgr.Project(ctx, state.Messages, speaker.ID(), state.CurrentRound)
	if err != nil {
		return nil, err
	}

	if window.Summary != "" {
		history = append(history, llm.Message{Role: llm.RoleSystem, Content: "[Context Summary] " + window.Summary})
	}
	for _, m := range window.Messages {
		history = append(history, toLLMMessage(m))
	}
	return history, nil
}

func identityMessage(speaker *agent.Agent, participants []*agent.Agent) llm.Message {
	var others []string
	for _, p := range participants {
		if p.ID() == speaker.ID() {
			continue
		}
		others = append(others, p.Name())
	}
	content := fmt.Sprintf("You are %s, participating in a deliberation.", speaker.Name())
	if len(others) > 0 {
		content += fmt.Sprintf(" Other participants: %s.", strings.Join(others, ", "))
	}
	return llm.Message{Role: llm.RoleSystem, Content: content}
}

func toLLMMessage(m transcript.Message) llm.Message {
	return llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("[%s]: %s", m.AgentName, m.Content)}
}

// formatMessages renders msgs as "[name]: content" lines, for prompts that
// enumerate prior-round contributions inline rather than through history.
func formatMessages(msgs []transcript.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s]: %s", m.AgentName, m.Content)
	}
	return b.String()
}
