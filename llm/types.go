package llm

import (
	"encoding/json"
	"time"
)

// Role tags the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a function-call request surfaced by a model response.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message is one role-tagged turn in a conversation.
//
// A tool-role Message must carry ToolCallID referencing the ToolCall it answers.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// CompletionOptions carries the optional per-request knobs recognized by
// providers; zero values mean "use provider default".
type CompletionOptions struct {
	Model            string
	Temperature      *float32
	MaxTokens        int
	TopP             *float32
	FrequencyPenalty *float32
	PresencePenalty  *float32
	StopSequences    []string
	SystemPrompt     string
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Response is the normalized result of Complete/CompleteWithTools.
type Response struct {
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	ModelID      string     `json:"model_id,omitempty"`
	Usage        Usage      `json:"usage"`
	Elapsed      time.Duration
}

// StreamDelta is one incremental chunk of a streamed completion.
type StreamDelta struct {
	Content string
	Done    bool
}
