package fsrs

import (
	"fmt"
	"strconv"
	"time"
)

// Scheduler computes the outcome of reviewing one card at one instant.
// An instance is bound to the card and time it was built with and caches
// every outcome it computes, so it must not be reused for a later review.
type Scheduler interface {
	// Review returns the outcome of rating the card r. It panics if r is invalid.
	Review(r Rating) SchedulingInfo
	// Preview returns the outcome of every rating.
	Preview() RecordLog
}

var (
	_ Scheduler = (*BasicScheduler)(nil)
	_ Scheduler = (*LongtermScheduler)(nil)
)

// NewScheduler picks the strategy named by p.EnableShortTerm.
func NewScheduler(p Parameters, card Card, now time.Time) Scheduler {
	if p.EnableShortTerm {
		return NewBasicScheduler(p, card, now)
	}
	return NewLongtermScheduler(p, card, now)
}

// scheduler holds the bookkeeping shared by both strategies.
type scheduler struct {
	params  Parameters
	last    Card // card as supplied
	current Card // card advanced to now, the template for every outcome
	now     time.Time
	next    [4]*SchedulingInfo
}

func newScheduler(p Parameters, card Card, now time.Time) *scheduler {
	current := card
	current.ElapsedDays = card.ElapsedDaysAt(now)
	current.LastReview = now
	current.Reps++
	current.PreviousState = card.State
	current.Log = nil

	p.Seed = fuzzSeed(p.Seed, now, current)

	return &scheduler{
		params:  p,
		last:    card,
		current: current,
		now:     now,
	}
}

// fuzzSeed derives a per-review seed so repeated reviews of the same card
// do not share a fuzz draw.
func fuzzSeed(prefix string, now time.Time, c Card) string {
	seed := strconv.FormatInt(now.UnixMilli(), 10) + "_" +
		strconv.FormatInt(int64(c.Reps), 10) + "_" +
		strconv.FormatFloat(c.Difficulty*c.Stability, 'f', -1, 64)
	if prefix != "" {
		return prefix + ":" + seed
	}
	return seed
}

func (s *scheduler) buildLog(r Rating) ReviewLog {
	return ReviewLog{
		Rating:        r,
		State:         s.current.State,
		ElapsedDays:   s.current.ElapsedDays,
		ScheduledDays: s.current.ScheduledDays,
		Reviewed:      s.now,
	}
}

func (s *scheduler) cached(r Rating) (SchedulingInfo, bool) {
	if !r.IsValid() {
		panic(fmt.Sprintf("%v: %d", ErrInvalidRating, int(r)))
	}
	if info := s.next[r.index()]; info != nil {
		return *info, true
	}
	return SchedulingInfo{}, false
}

func (s *scheduler) store(r Rating, c Card) {
	s.next[r.index()] = &SchedulingInfo{Card: c, ReviewLog: s.buildLog(r)}
}

func (s *scheduler) storeAll(cards [4]Card) {
	for _, r := range Ratings() {
		s.store(r, cards[r.index()])
	}
}

// result returns the memoized outcome for r. A miss after the strategy ran
// is an engine bug, never a caller error.
func (s *scheduler) result(r Rating) SchedulingInfo {
	info := s.next[r.index()]
	if info == nil {
		panic(fmt.Sprintf("fsrs: no outcome computed for %v (should never happen)", r))
	}
	return *info
}

// branches returns one independent copy of current per rating.
func (s *scheduler) branches() [4]Card {
	return [4]Card{s.current, s.current, s.current, s.current}
}

// nextMemory fills difficulty and stability for every rating from the same
// prior memory state.
func (s *scheduler) nextMemory(cards *[4]Card) {
	d, st := s.last.Difficulty, s.last.Stability
	retrievability := s.last.Retrievability(s.params, s.now)
	for _, r := range Ratings() {
		c := &cards[r.index()]
		c.Difficulty = s.params.NextDifficulty(d, r)
		c.Stability = s.params.NextStability(d, st, retrievability, r)
	}
}

func (s *scheduler) scheduleDays(c *Card, days float64) {
	c.ScheduledDays = int64(days)
	c.Due = addDays(s.now, int64(days))
}

func (s *scheduler) scheduleIn(c *Card, d time.Duration) {
	c.ScheduledDays = 0
	c.Due = s.now.Add(d)
}

func preview(review func(Rating) SchedulingInfo) RecordLog {
	out := make(RecordLog, 4)
	for _, r := range Ratings() {
		out[r] = review(r)
	}
	return out
}
