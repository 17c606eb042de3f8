// Package fsrs implements the Free Spaced Repetition Scheduler memory model.
//
// Given a card's memory state and a grade, it predicts the new stability
// and difficulty and the interval after which recall probability falls to
// the requested retention:
//
//	f, err := fsrs.NewFSRS(fsrs.DefaultParameters())
//	if err != nil {
//		return err
//	}
//	info, err := f.Next(fsrs.NewCard(now), now, fsrs.Good)
package fsrs

import (
	"fmt"
	"time"
)

// FSRS schedules cards with a fixed set of Parameters. It holds no mutable
// state and is safe for concurrent use.
type FSRS struct {
	params Parameters
}

// NewFSRS validates p and returns a scheduler front end for it.
func NewFSRS(p Parameters) (*FSRS, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &FSRS{params: p}, nil
}

// Parameters returns the configuration in use.
func (f *FSRS) Parameters() Parameters {
	return f.params
}

// Repeat computes the outcome of every rating without committing to one.
func (f *FSRS) Repeat(card Card, now time.Time) RecordLog {
	return NewScheduler(f.params, card, now).Preview()
}

// Next commits rating r. The returned card carries the review log.
func (f *FSRS) Next(card Card, now time.Time, r Rating) (SchedulingInfo, error) {
	if !r.IsValid() {
		return SchedulingInfo{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	info := NewScheduler(f.params, card, now).Review(r)
	log := info.ReviewLog
	info.Card.Log = &log
	return info, nil
}

// Retrievability is the probability the card is recalled at now.
func (f *FSRS) Retrievability(card Card, now time.Time) float64 {
	return card.Retrievability(f.params, now)
}
