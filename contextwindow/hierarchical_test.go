package contextwindow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchical_SegmentsIntoPhases(t *testing.T) {
	t.Parallel()

	h := NewHierarchical(nil, 2, 0)
	messages := buildTranscript(6, 1)

	phases := h.segmentPhases(messages)
	require.Len(t, phases, 3)
	assert.Equal(t, "Initial Positions", phases[0].name)
	assert.Equal(t, "Current Discussion (Round 5–6)", phases[2].name)
}

func TestHierarchical_NoProviderUsesFallbackSummaries(t *testing.T) {
	t.Parallel()

	h := NewHierarchical(nil, 2, 0)
	messages := buildTranscript(6, 1)

	window, err := h.Project(context.Background(), messages, "A", 6)
	require.NoError(t, err)
	assert.NotEmpty(t, window.Summary)
	assert.Equal(t, 6, window.OriginalCount)
	// With no token budget, the most recent phase projects verbatim.
	assert.NotEmpty(t, window.Messages)
}

func TestHierarchical_BudgetExcludesOlderPhases(t *testing.T) {
	t.Parallel()

	// A tiny budget forces the recent phase into summary form, and leaves
	// no room for the global overview or older phase summaries.
	h := NewHierarchical(nil, 1, 10)
	messages := buildTranscript(8, 1)

	window, err := h.Project(context.Background(), messages, "A", 8)
	require.NoError(t, err)
	assert.LessOrEqual(t, window.RetainedCount, len(messages))
	assert.Less(t, window.RetainedCount, len(messages))
}

func TestHierarchical_EmptyTranscript(t *testing.T) {
	t.Parallel()

	h := NewHierarchical(nil, 2, 0)
	window, err := h.Project(context.Background(), nil, "A", 1)
	require.NoError(t, err)
	assert.Zero(t, window.OriginalCount)
}
