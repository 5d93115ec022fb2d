package llm

import "context"

// Provider is the minimal capability every agent and strategy drives
// generation through. Vendor adapters (anthropic, openai, gemini) satisfy
// this with a concrete HTTP-backed implementation; tests use MockProvider.
type Provider interface {
	// Complete issues a single completion request over messages.
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (*Response, error)

	// CompleteWithTools issues a completion request where the model may
	// respond with one or more ToolCall entries instead of content.
	CompleteWithTools(ctx context.Context, messages []Message, tools []ToolDefinition, opts CompletionOptions) (*Response, error)

	// Stream issues a streaming completion, yielding content deltas on the
	// first channel and a single terminal error (if any) on the second.
	Stream(ctx context.Context, messages []Message, opts CompletionOptions) (<-chan StreamDelta, <-chan error)

	// Name returns the provider's vendor identifier, e.g. "anthropic".
	Name() string
}
