package contextwindow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHybrid_LowCompressionUsesSlidingOnly(t *testing.T) {
	t.Parallel()

	messages := buildTranscript(3, 1)
	h := Hybrid{
		Sliding:   NewSlidingWindow(0, 100),
		MaxTokens: estimateTokens(messages) * 2, // compressionFactor well under 1.5
	}

	window, err := h.Project(context.Background(), messages, "A", 3)
	require.NoError(t, err)
	assert.Equal(t, len(messages), window.RetainedCount)
	assert.Zero(t, window.MaskedCount)
	assert.Zero(t, window.SummarizedCount)
}

func TestHybrid_ModerateCompressionMasksThenSlides(t *testing.T) {
	t.Parallel()

	messages := buildTranscript(6, 2)
	budget := int(float64(estimateTokens(messages)) / 2.0) // compressionFactor ~2
	h := Hybrid{
		Sliding:   NewSlidingWindow(0, 100),
		Masking:   ObservationMasking{PreserveRecentRounds: 1, Strategy: MaskTruncate, MaxMaskedLength: 20},
		MaxTokens: budget,
	}

	window, err := h.Project(context.Background(), messages, "A", 6)
	require.NoError(t, err)
	assert.Equal(t, len(messages), window.OriginalCount)
}

func TestHybrid_HighCompressionWithManyRoundsUsesRecursive(t *testing.T) {
	t.Parallel()

	messages := buildTranscript(10, 2)
	budget := estimateTokens(messages) / 10 // compressionFactor well over 2.5
	h := Hybrid{
		Sliding:   NewSlidingWindow(0, 100),
		Masking:   ObservationMasking{PreserveRecentRounds: 1, Strategy: MaskTruncate, MaxMaskedLength: 20},
		Recursive: NewRecursiveSummarization(nil, 1, 2, 0),
		MaxTokens: budget,
	}

	window, err := h.Project(context.Background(), messages, "A", 10)
	require.NoError(t, err)
	assert.Equal(t, len(messages), window.OriginalCount)
	assert.NotEmpty(t, window.Summary)
}

func TestHybrid_HighCompressionWithoutRecursiveFallsBackToDefaultPipeline(t *testing.T) {
	t.Parallel()

	messages := buildTranscript(3, 2)
	budget := estimateTokens(messages) / 10
	h := Hybrid{
		Sliding:   NewSlidingWindow(0, 100),
		Masking:   ObservationMasking{PreserveRecentRounds: 1, Strategy: MaskTruncate, MaxMaskedLength: 20},
		MaxTokens: budget,
	}

	window, err := h.Project(context.Background(), messages, "A", 3)
	require.NoError(t, err)
	assert.Equal(t, len(messages), window.OriginalCount)
}

func TestHybrid_EmptyTranscript(t *testing.T) {
	t.Parallel()

	h := Hybrid{Sliding: NewSlidingWindow(0, 100), MaxTokens: 100}
	window, err := h.Project(context.Background(), nil, "A", 1)
	require.NoError(t, err)
	assert.Zero(t, window.OriginalCount)
}

func TestHybrid_ZeroMaxTokensUsesSlidingDirectly(t *testing.T) {
	t.Parallel()

	messages := buildTranscript(2, 1)
	h := Hybrid{Sliding: NewSlidingWindow(0, 100)}

	window, err := h.Project(context.Background(), messages, "A", 2)
	require.NoError(t, err)
	assert.Equal(t, len(messages), window.RetainedCount)
}
