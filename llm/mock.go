package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a deterministic, in-memory Provider used by tests and
// examples. Responses are keyed by the verbatim content of the last
// message in the request; unmatched requests get a canned echo response.
type MockProvider struct {
	name string

	mu        sync.Mutex
	responses map[string]string
	sequence  []string // when non-empty, ignore responses map and pop in order
	calls     int
	err       error // when set, every call fails with this error
}

// NewMockProvider constructs a MockProvider with the given vendor name.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name:      name,
		responses: make(map[string]string),
	}
}

// AddResponse registers a canned completion for an exact prompt match.
func (m *MockProvider) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// QueueResponses makes the provider return each string in order,
// regardless of prompt content, one per call.
func (m *MockProvider) QueueResponses(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = append(m.sequence, responses...)
}

// FailWith makes every subsequent call return err.
func (m *MockProvider) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the number of completion requests handled so far.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) nextContent(messages []Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++

	if m.err != nil {
		return "", m.err
	}

	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}

	if len(messages) == 0 {
		return "", &Error{Code: ErrInvalidRequest, Message: "no messages provided", Provider: m.name}
	}

	last := messages[len(messages)-1]
	if resp, ok := m.responses[last.Content]; ok {
		return resp, nil
	}
	return fmt.Sprintf("mock response to: %s", last.Content), nil
}

func (m *MockProvider) Complete(ctx context.Context, messages []Message, opts CompletionOptions) (*Response, error) {
	content, err := m.nextContent(messages)
	if err != nil {
		return nil, err
	}
	return &Response{Content: content, FinishReason: "stop", ModelID: opts.Model}, nil
}

func (m *MockProvider) CompleteWithTools(ctx context.Context, messages []Message, tools []ToolDefinition, opts CompletionOptions) (*Response, error) {
	return m.Complete(ctx, messages, opts)
}

func (m *MockProvider) Stream(ctx context.Context, messages []Message, opts CompletionOptions) (<-chan StreamDelta, <-chan error) {
	deltaCh := make(chan StreamDelta)
	errCh := make(chan error, 1)

	content, err := m.nextContent(messages)
	go func() {
		defer close(deltaCh)
		defer close(errCh)
		if err != nil {
			errCh <- err
			return
		}
		for _, r := range content {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case deltaCh <- StreamDelta{Content: string(r)}:
			}
		}
		deltaCh <- StreamDelta{Done: true}
	}()

	return deltaCh, errCh
}
