package fsrs

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2022, 11, 29, 12, 30, 0, 0, time.UTC)

var testRatings = []Rating{
	Good, Good, Good, Good, Good, Good,
	Again, Again,
	Good, Good, Good, Good, Good,
}

// runSequence feeds testRatings through f, each review happening exactly
// when the previous one said the card was due.
func runSequence(t *testing.T, f *FSRS) []SchedulingInfo {
	t.Helper()
	card := NewCard(t0)
	now := t0
	var out []SchedulingInfo
	for _, r := range testRatings {
		info, err := f.Next(card, now, r)
		require.NoError(t, err)
		out = append(out, info)
		card = info.Card
		now = card.Due
	}
	return out
}

func TestBasicSchedulerSequence(t *testing.T) {
	p, err := NewParameters(WithWeights(testWeights17...))
	require.NoError(t, err)
	f, err := NewFSRS(p)
	require.NoError(t, err)

	var days []int64
	var states []State
	for _, info := range runSequence(t, f) {
		days = append(days, info.Card.ScheduledDays)
		states = append(states, info.ReviewLog.State)
	}

	assert.Equal(t, []int64{0, 5, 16, 43, 106, 236, 0, 0, 12, 25, 47, 85, 147}, days)
	assert.Equal(t, []State{
		New, Learning, Review, Review, Review, Review, Review,
		Relearning, Relearning, Review, Review, Review, Review,
	}, states)
}

func TestLongtermSchedulerSequence(t *testing.T) {
	p, err := NewParameters(WithShortTerm(false))
	require.NoError(t, err)
	f, err := NewFSRS(p)
	require.NoError(t, err)

	wantDays := []int64{3, 13, 48, 155, 445, 1158, 17, 3, 9, 27, 74, 190, 457}
	wantS := []float64{
		3.0412, 13.0913, 48.1585, 154.9373, 445.0556, 1158.0778, 16.6306,
		2.9888, 9.4633, 26.9474, 73.9723, 189.7037, 457.4379,
	}
	wantD := []float64{
		4.4909, 4.2666, 4.0575, 3.8624, 3.6804, 3.5108, 5.219,
		6.8122, 6.4314, 6.0763, 5.7452, 5.4363, 5.1483,
	}

	infos := runSequence(t, f)
	require.Len(t, infos, len(wantDays))
	for i, info := range infos {
		assert.Equal(t, wantDays[i], info.Card.ScheduledDays, "review %d", i)
		assert.InDelta(t, wantS[i], info.Card.Stability, 1e-4, "review %d", i)
		assert.InDelta(t, wantD[i], info.Card.Difficulty, 1e-4, "review %d", i)
		assert.Equal(t, Review, info.Card.State, "review %d", i)
	}
	assert.Equal(t, int32(2), infos[len(infos)-1].Card.Lapses)
}

func TestNewCardLearningSteps(t *testing.T) {
	f, err := NewFSRS(DefaultParameters())
	require.NoError(t, err)

	log := f.Repeat(NewCard(t0), t0)
	require.Len(t, log, 4)

	assert.Equal(t, t0.Add(time.Minute), log[Again].Card.Due)
	assert.Equal(t, t0.Add(5*time.Minute), log[Hard].Card.Due)
	assert.Equal(t, t0.Add(10*time.Minute), log[Good].Card.Due)
	for _, r := range []Rating{Again, Hard, Good} {
		assert.Equal(t, Learning, log[r].Card.State, r.String())
		assert.Equal(t, int64(0), log[r].Card.ScheduledDays, r.String())
	}
	assert.Equal(t, Review, log[Easy].Card.State)
	assert.Positive(t, log[Easy].Card.ScheduledDays)

	for _, r := range Ratings() {
		c := log[r].Card
		assert.Equal(t, int32(1), c.Reps)
		assert.Equal(t, New, c.PreviousState)
		assert.Equal(t, t0, c.LastReview)
		assert.Equal(t, r, log[r].ReviewLog.Rating)
		assert.Equal(t, New, log[r].ReviewLog.State)
		assert.Nil(t, c.Log)
	}
}

func TestLearningStepsKeepState(t *testing.T) {
	f, err := NewFSRS(DefaultParameters())
	require.NoError(t, err)

	relearning := Card{
		State:      Relearning,
		Stability:  2,
		Difficulty: 6,
		Reps:       5,
		Lapses:     1,
		LastReview: t0.Add(-5 * time.Minute),
		Due:        t0,
	}
	log := f.Repeat(relearning, t0)
	assert.Equal(t, Relearning, log[Again].Card.State)
	assert.Equal(t, Relearning, log[Hard].Card.State)
	assert.Equal(t, t0.Add(5*time.Minute), log[Again].Card.Due)
	assert.Equal(t, t0.Add(10*time.Minute), log[Hard].Card.Due)
	assert.Equal(t, Review, log[Good].Card.State)
	assert.Greater(t, log[Easy].Card.ScheduledDays, log[Good].Card.ScheduledDays)
	assert.Equal(t, int32(1), log[Again].Card.Lapses)
}

func TestReviewIntervalsOrdered(t *testing.T) {
	for _, shortTerm := range []bool{true, false} {
		p, err := NewParameters(WithFuzz(true), WithShortTerm(shortTerm))
		require.NoError(t, err)
		f, err := NewFSRS(p)
		require.NoError(t, err)

		for s := 0.5; s < 2000; s *= 1.7 {
			card := Card{
				State:      Review,
				Stability:  s,
				Difficulty: 5,
				Reps:       3,
				LastReview: t0.Add(-10 * day),
				Due:        t0,
			}
			log := f.Repeat(card, t0)
			hard := log[Hard].Card.ScheduledDays
			good := log[Good].Card.ScheduledDays
			easy := log[Easy].Card.ScheduledDays
			assert.LessOrEqual(t, hard, good, "s=%v short=%v", s, shortTerm)
			assert.Less(t, good, easy, "s=%v short=%v", s, shortTerm)
			if !shortTerm {
				assert.Less(t, hard, good, "s=%v", s)
				assert.LessOrEqual(t, log[Again].Card.ScheduledDays, hard, "s=%v", s)
			}
			for _, r := range Ratings() {
				assert.LessOrEqual(t, log[r].Card.ScheduledDays, int64(p.MaximumInterval))
			}
		}
	}
}

func TestReviewLapse(t *testing.T) {
	f, err := NewFSRS(DefaultParameters())
	require.NoError(t, err)

	card := Card{
		State:      Review,
		Stability:  20,
		Difficulty: 5,
		Reps:       4,
		LastReview: t0.Add(-20 * day),
		Due:        t0,
	}
	info, err := f.Next(card, t0, Again)
	require.NoError(t, err)
	assert.Equal(t, Relearning, info.Card.State)
	assert.Equal(t, int32(1), info.Card.Lapses)
	assert.Equal(t, t0.Add(5*time.Minute), info.Card.Due)
	assert.Less(t, info.Card.Stability, card.Stability)
	assert.Equal(t, int64(20), info.ReviewLog.ElapsedDays)
	assert.Equal(t, int64(20), info.Card.ElapsedDays)
}

func TestSchedulerMemoizes(t *testing.T) {
	s := NewScheduler(DefaultParameters(), NewCard(t0), t0)
	first := s.Review(Good)
	assert.Equal(t, first, s.Review(Good))
	assert.Equal(t, first, s.Preview()[Good])
}

func TestSchedulerDoesNotMutateInput(t *testing.T) {
	card := Card{
		State:      Review,
		Stability:  12,
		Difficulty: 4,
		Reps:       3,
		LastReview: t0.Add(-12 * day),
		Due:        t0,
	}
	before := card
	NewScheduler(DefaultParameters(), card, t0).Preview()
	assert.Equal(t, before, card)
}

func TestSchedulerPanicsOnInvalidRating(t *testing.T) {
	s := NewScheduler(DefaultParameters(), NewCard(t0), t0)
	assert.Panics(t, func() { s.Review(Rating(0)) })
	assert.Panics(t, func() { s.Review(Rating(5)) })
}

func TestResultMissPanics(t *testing.T) {
	s := newScheduler(DefaultParameters(), NewCard(t0), t0)
	assert.PanicsWithValue(t,
		"fsrs: no outcome computed for Good (should never happen)",
		func() { s.result(Good) })
}

func TestNextRejectsInvalidRating(t *testing.T) {
	f, err := NewFSRS(DefaultParameters())
	require.NoError(t, err)
	_, err = f.Next(NewCard(t0), t0, Rating(9))
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestNextAttachesLog(t *testing.T) {
	f, err := NewFSRS(DefaultParameters())
	require.NoError(t, err)
	info, err := f.Next(NewCard(t0), t0, Hard)
	require.NoError(t, err)
	require.NotNil(t, info.Card.Log)
	assert.Equal(t, info.ReviewLog, *info.Card.Log)

	// The log from a previous review never leaks into the next outcome.
	next := f.Repeat(info.Card, info.Card.Due)
	for _, r := range Ratings() {
		assert.Nil(t, next[r].Card.Log)
	}
}

func TestNewSchedulerStrategy(t *testing.T) {
	p := DefaultParameters()
	assert.IsType(t, &BasicScheduler{}, NewScheduler(p, NewCard(t0), t0))
	p.EnableShortTerm = false
	assert.IsType(t, &LongtermScheduler{}, NewScheduler(p, NewCard(t0), t0))
}

func TestReviewWithZeroStabilitySameDay(t *testing.T) {
	for _, shortTerm := range []bool{true, false} {
		p, err := NewParameters(WithShortTerm(shortTerm))
		require.NoError(t, err)
		f, err := NewFSRS(p)
		require.NoError(t, err)

		card := Card{
			State:      Review,
			Difficulty: 5,
			Reps:       2,
			LastReview: t0,
			Due:        t0,
		}
		log := f.Repeat(card, t0)
		for _, r := range Ratings() {
			c := log[r].Card
			assert.False(t, math.IsNaN(c.Stability), "%v short=%v", r, shortTerm)
			assert.GreaterOrEqual(t, c.Stability, 0.1, "%v short=%v", r, shortTerm)
			assert.GreaterOrEqual(t, c.ScheduledDays, int64(0), "%v short=%v", r, shortTerm)
			assert.True(t, c.Due.After(t0), "%v short=%v", r, shortTerm)
			if r != Again || !shortTerm {
				assert.GreaterOrEqual(t, c.ScheduledDays, int64(1), "%v short=%v", r, shortTerm)
			}
		}
	}
}
