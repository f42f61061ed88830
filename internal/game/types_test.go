package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRound(t *testing.T) {
	r, err := NewRound(12, "CRANE", t0)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, r.Status)
	assert.Len(t, r.Reveal, 5)
	assert.Equal(t, HintOrder("CRANE"), r.HintOrder)
	assert.Equal(t, "_____", r.Masked())
	require.NoError(t, r.Validate(DefaultConfig()))

	for _, bad := range []string{"", "crane", "CR4NE", "CRANE "} {
		_, err := NewRound(0, bad, t0)
		assert.Error(t, err, bad)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Round {
		r, err := NewRound(1, "CRANE", t0)
		require.NoError(t, err)
		return r
	}
	tests := []struct {
		name   string
		mutate func(r *Round)
	}{
		{"short reveal", func(r *Round) { r.Reveal = r.Reveal[:4] }},
		{"hint order duplicate", func(r *Round) { r.HintOrder = []int{0, 0, 1, 2, 3} }},
		{"hint order out of range", func(r *Round) { r.HintOrder = []int{0, 1, 2, 3, 5} }},
		{"cursor past end", func(r *Round) { r.HintCursor = 6 }},
		{"too many hints", func(r *Round) { r.HintsUsed = 4 }},
		{"bad status", func(r *Round) { r.Status = "paused" }},
		{"bad slot", func(r *Round) { r.Reveal[2] = "peek" }},
		{"counter mismatch", func(r *Round) { r.Total = 2 }},
		{"more misses than guesses", func(r *Round) { r.Incorrect = 1 }},
		{"duplicate guess", func(r *Round) { r.Guessed = []string{"A", "A"}; r.Total = 2 }},
		{"lowercase guess", func(r *Round) { r.Guessed = []string{"a"}; r.Total = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base()
			tt.mutate(r)
			assert.Error(t, r.Validate(DefaultConfig()))
		})
	}
}

func TestCountAndMasked(t *testing.T) {
	r, err := NewRound(1, "CRANE", t0)
	require.NoError(t, err)
	r.Reveal = []Slot{SlotGuess, SlotHidden, SlotHint, SlotGuess, SlotHidden}
	assert.Equal(t, 2, r.Count(SlotGuess))
	assert.Equal(t, 1, r.Count(SlotHint))
	assert.Equal(t, "C_AN_", r.Masked())
	assert.False(t, r.AllRevealed())
}

func TestStatus(t *testing.T) {
	assert.False(t, StatusPlaying.Terminal())
	assert.True(t, StatusWon.Terminal())
	assert.True(t, StatusLost.Terminal())
	assert.False(t, Status("").Valid())
}
