package fsrs

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzRange(t *testing.T) {
	tests := []struct {
		name     string
		interval float64
		elapsed  int64
		maxIvl   int32
		lo, hi   int64
	}{
		{"first band", 3, 5, 36500, 2, 4},
		{"two bands", 10, 0, 36500, 8, 12},
		{"floored at elapsed plus one", 5, 4, 36500, 5, 6},
		{"elapsed above interval", 5, 10, 36500, 4, 6},
		{"capped by maximum", 100, 50, 102, 93, 102},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := fuzzRange(tt.interval, tt.elapsed, tt.maxIvl)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestFuzzRangeNeverInverted(t *testing.T) {
	for ivl := 2.5; ivl < 400; ivl += 0.5 {
		for _, elapsed := range []int64{0, 3, 30, 365, 1000} {
			lo, hi := fuzzRange(ivl, elapsed, 200)
			require.LessOrEqual(t, lo, hi, "ivl=%v elapsed=%d", ivl, elapsed)
			require.LessOrEqual(t, hi, int64(200))
		}
	}
}

func TestApplyFuzz(t *testing.T) {
	p, err := NewParameters(WithFuzz(true), WithSeed("fixed"))
	require.NoError(t, err)

	t.Run("short intervals are untouched", func(t *testing.T) {
		assert.Equal(t, 2.0, p.applyFuzz(2, 0))
	})

	t.Run("disabled", func(t *testing.T) {
		off := p
		off.EnableFuzz = false
		assert.Equal(t, 10.0, off.applyFuzz(10, 0))
	})

	t.Run("within window and deterministic", func(t *testing.T) {
		got := p.applyFuzz(10, 0)
		assert.GreaterOrEqual(t, math.Floor(got), 8.0)
		assert.LessOrEqual(t, math.Floor(got), 12.0)
		assert.Equal(t, got, p.applyFuzz(10, 0))
	})

	t.Run("draw follows the seed", func(t *testing.T) {
		draw := NewAlea("fixed").Double()
		assert.Equal(t, math.FMA(draw, 5, 8), p.applyFuzz(10, 0))
	})
}

func TestFuzzSeed(t *testing.T) {
	now := time.UnixMilli(1727015666066)
	assert.Equal(t, "1727015666066_1_0", fuzzSeed("", now, Card{Reps: 1}))
	assert.Equal(t, "1727015666066_3_12.5", fuzzSeed("", now, Card{Reps: 3, Difficulty: 5, Stability: 2.5}))
	assert.Equal(t, "deck:1727015666066_1_0", fuzzSeed("deck", now, Card{Reps: 1}))

	card := Card{Reps: 2, Difficulty: 4, Stability: 3}
	assert.Equal(t, fuzzSeed("deck", now, card), fuzzSeed("deck", now.Add(time.Microsecond), card))
	assert.NotEqual(t, fuzzSeed("deck", now, card), fuzzSeed("deck", now.Add(time.Millisecond), card))
}

func TestFuzzedSchedulingSpreadsDueDates(t *testing.T) {
	p, err := NewParameters(WithFuzz(true))
	require.NoError(t, err)
	f, err := NewFSRS(p)
	require.NoError(t, err)

	card := Card{
		State:      Review,
		Stability:  60,
		Difficulty: 5,
		Reps:       6,
		LastReview: t0.Add(-60 * day),
		Due:        t0,
	}

	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		now := t0.Add(time.Duration(i) * time.Millisecond)
		info, err := f.Next(card, now, Good)
		require.NoError(t, err)
		seen[info.Card.ScheduledDays] = true
	}
	assert.Greater(t, len(seen), 1, "fuzz should vary intervals across review instants")
}
