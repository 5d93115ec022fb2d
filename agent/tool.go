package agent

import (
	"context"
	"encoding/json"

	"github.com/cameron5906/conclave/llm"
)

// ToolResult is what a Handler returns after executing a tool call.
type ToolResult struct {
	Output string
	Error  string
}

// Handler executes a named tool given its raw JSON arguments. Handlers may
// block and must observe ctx cancellation.
type Handler func(ctx context.Context, args json.RawMessage) (ToolResult, error)

// Tool pairs a declarative definition with its execution callback.
type Tool struct {
	Definition llm.ToolDefinition
	Handler    Handler
}

// ToolSet is an ordered, name-unique collection of Tools belonging to one Agent.
type ToolSet struct {
	order []string
	byName map[string]Tool
}

// NewToolSet constructs an empty ToolSet.
func NewToolSet() *ToolSet {
	return &ToolSet{byName: make(map[string]Tool)}
}

// Add registers a tool. Returns ErrDuplicateToolName if the name is already taken.
func (s *ToolSet) Add(t Tool) error {
	if _, exists := s.byName[t.Definition.Name]; exists {
		return ErrDuplicateToolName
	}
	s.byName[t.Definition.Name] = t
	s.order = append(s.order, t.Definition.Name)
	return nil
}

// Len reports how many tools are registered.
func (s *ToolSet) Len() int { return len(s.order) }

// Definitions returns the tool definitions in registration order.
func (s *ToolSet) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(s.order))
	for _, name := range s.order {
		defs = append(defs, s.byName[name].Definition)
	}
	return defs
}

// Get looks up a tool by name.
func (s *ToolSet) Get(name string) (Tool, bool) {
	t, ok := s.byName[name]
	return t, ok
}
