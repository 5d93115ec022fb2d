package contextwindow

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cameron5906/conclave/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingProvider captures the exact message set sent on every Complete
// call, so tests can assert on what content a summarization pass actually
// sent rather than just its return value.
type recordingProvider struct {
	mu    sync.Mutex
	calls [][]llm.Message
}

func (p *recordingProvider) Complete(_ context.Context, messages []llm.Message, _ llm.CompletionOptions) (*llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, messages)
	return &llm.Response{Content: fmt.Sprintf("summary covering call %d", len(p.calls))}, nil
}

func (p *recordingProvider) CompleteWithTools(ctx context.Context, messages []llm.Message, _ []llm.ToolDefinition, opts llm.CompletionOptions) (*llm.Response, error) {
	return p.Complete(ctx, messages, opts)
}

func (p *recordingProvider) Stream(_ context.Context, _ []llm.Message, _ llm.CompletionOptions) (<-chan llm.StreamDelta, <-chan error) {
	ch := make(chan llm.StreamDelta)
	errCh := make(chan error, 1)
	close(ch)
	close(errCh)
	return ch, errCh
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) lastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return ""
	}
	last := p.calls[len(p.calls)-1]
	return last[len(last)-1].Content
}

func TestRecursiveSummarization_IncrementalExtensionSendsOnlyNewMessages(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{}
	rs := NewRecursiveSummarization(provider, 1, 2, 0)

	messages := buildTranscript(6, 1)

	// Round 3: only round 1 is older than the cutoff (rounds 2-3 stay
	// verbatim) and gets summarized from scratch.
	_, err := rs.Project(context.Background(), messages, "A", 3)
	require.NoError(t, err)
	require.Len(t, provider.calls, 1)
	assert.Contains(t, provider.lastPrompt(), "Summarize this deliberation excerpt")

	// Round 5: rounds 1-3 are now older (preserve window keeps round 4-5
	// verbatim). The older set's chunk boundary (endRound=3, chunk=2) is
	// round 1, which the first call above cached. Only messages appended
	// since round 1 (i.e. rounds 2-3) should be sent, not round 1 again.
	_, err = rs.Project(context.Background(), messages, "A", 5)
	require.NoError(t, err)
	require.Len(t, provider.calls, 2)

	prompt := provider.lastPrompt()
	assert.Contains(t, prompt, "Existing summary:")
	assert.Contains(t, prompt, "round 2")
	assert.Contains(t, prompt, "round 3")
	assert.NotContains(t, prompt, "round 1]")
}

func TestRecursiveSummarization_NoProviderFallsBackToTextSummary(t *testing.T) {
	t.Parallel()

	rs := NewRecursiveSummarization(nil, 1, 2, 0)
	messages := buildTranscript(4, 1)

	window, err := rs.Project(context.Background(), messages, "A", 4)
	require.NoError(t, err)
	assert.NotEmpty(t, window.Summary)
	assert.Contains(t, window.Summary, "Summary of")
}

func TestRecursiveSummarization_EmptyTranscript(t *testing.T) {
	t.Parallel()

	rs := NewRecursiveSummarization(nil, 1, 2, 0)
	window, err := rs.Project(context.Background(), nil, "A", 1)
	require.NoError(t, err)
	assert.Zero(t, window.OriginalCount)
}
