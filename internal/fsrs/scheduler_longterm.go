package fsrs

import (
	"math"
	"time"
)

// LongtermScheduler schedules every rating in whole days. There are no
// learning steps and no Relearning state.
type LongtermScheduler struct {
	*scheduler
}

// NewLongtermScheduler prepares a review of card at now.
func NewLongtermScheduler(p Parameters, card Card, now time.Time) *LongtermScheduler {
	return &LongtermScheduler{scheduler: newScheduler(p, card, now)}
}

// Review implements Scheduler.
func (l *LongtermScheduler) Review(r Rating) SchedulingInfo {
	if info, ok := l.cached(r); ok {
		return info
	}
	if l.last.State == New {
		l.newState()
	} else {
		l.reviewState()
	}
	return l.result(r)
}

// Preview implements Scheduler.
func (l *LongtermScheduler) Preview() RecordLog {
	return preview(l.Review)
}

func (l *LongtermScheduler) newState() {
	l.current.ScheduledDays = 0
	l.current.ElapsedDays = 0

	cards := l.branches()
	for _, r := range Ratings() {
		c := &cards[r.index()]
		c.Difficulty = l.params.InitDifficulty(r)
		c.Stability = l.params.InitStability(r)
	}
	l.nextIntervals(&cards, 0)
	l.storeAll(cards)
}

func (l *LongtermScheduler) reviewState() {
	cards := l.branches()
	l.nextMemory(&cards)
	l.nextIntervals(&cards, l.current.ElapsedDays)
	cards[Again.index()].Lapses++
	l.storeAll(cards)
}

// nextIntervals assigns strictly increasing day intervals across the
// ratings and moves every outcome to Review.
func (l *LongtermScheduler) nextIntervals(cards *[4]Card, elapsed int64) {
	p := l.params
	var ivl [4]float64
	for _, r := range Ratings() {
		ivl[r.index()] = p.NextInterval(cards[r.index()].Stability, elapsed)
	}

	ivl[0] = math.Min(ivl[0], ivl[1])
	ivl[1] = math.Max(ivl[1], ivl[0]+1)
	ivl[2] = math.Max(ivl[2], ivl[1]+1)
	ivl[3] = math.Max(ivl[3], ivl[2]+1)

	for i := range cards {
		l.scheduleDays(&cards[i], ivl[i])
		cards[i].State = Review
	}
}
