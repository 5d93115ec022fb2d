package termination

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cameron5906/conclave/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxRounds_TerminatesAtOrAboveN(t *testing.T) {
	t.Parallel()

	state := transcript.NewState("task", nil)
	state.CurrentRound = 3

	decision, err := MaxRounds{N: 3}.Check(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, decision.ShouldTerminate)
	assert.Equal(t, ReasonMaxRoundsReached, decision.Reason)
	assert.Equal(t, 1.0, decision.Confidence)

	state.CurrentRound = 2
	decision, err = MaxRounds{N: 3}.Check(context.Background(), state)
	require.NoError(t, err)
	assert.False(t, decision.ShouldTerminate)
}

func TestConvergence_RequiresMinRoundsAndThreshold(t *testing.T) {
	t.Parallel()

	state := transcript.NewState("task", nil)
	state.CurrentRound = 1
	score := 0.95
	state.ConvergenceScore = &score

	strategy := Convergence{Threshold: 0.8, MinRounds: 2}
	decision, err := strategy.Check(context.Background(), state)
	require.NoError(t, err)
	assert.False(t, decision.ShouldTerminate, "should not fire before minRounds")

	state.CurrentRound = 2
	decision, err = strategy.Check(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, decision.ShouldTerminate)
	assert.Equal(t, ReasonConvergenceAchieved, decision.Reason)
}

func TestMaxTime_Terminates(t *testing.T) {
	t.Parallel()

	state := transcript.NewState("task", nil)
	state.StartedAt = time.Now().Add(-time.Hour)

	decision, err := MaxTime{D: time.Minute}.Check(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, decision.ShouldTerminate)
	assert.Equal(t, ReasonMaxTimeReached, decision.Reason)
}

func TestCustom_PropagatesPredicateError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	strategy := Custom{Predicate: func(context.Context, *transcript.State) (bool, error) { return false, boom }}

	_, err := strategy.Check(context.Background(), transcript.NewState("task", nil))
	assert.ErrorIs(t, err, boom)
}

func TestComposite_AnyShortCircuitsInInsertionOrder(t *testing.T) {
	t.Parallel()

	var secondCalled bool
	first := MaxRounds{N: 1}
	second := Custom{Predicate: func(context.Context, *transcript.State) (bool, error) {
		secondCalled = true
		return true, nil
	}}

	state := transcript.NewState("task", nil)
	state.CurrentRound = 1

	composite := Composite{Children: []Strategy{first, second}}
	decision, err := composite.Check(context.Background(), state)
	require.NoError(t, err)

	assert.True(t, decision.ShouldTerminate)
	assert.Equal(t, ReasonMaxRoundsReached, decision.Reason)
	assert.False(t, secondCalled, "second strategy must not run once the first fires")
}

func TestComposite_AllRequiresEveryChild(t *testing.T) {
	t.Parallel()

	state := transcript.NewState("task", nil)
	state.CurrentRound = 5

	composite := Composite{
		Mode: All,
		Children: []Strategy{
			MaxRounds{N: 3},
			MaxTokens{N: 1_000_000}, // never fires
		},
	}

	decision, err := composite.Check(context.Background(), state)
	require.NoError(t, err)
	assert.False(t, decision.ShouldTerminate)
}
