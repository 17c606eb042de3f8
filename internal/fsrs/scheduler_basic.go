package fsrs

import (
	"math"
	"time"
)

// BasicScheduler runs new and lapsed cards through minute-scale learning
// steps before they graduate to day-scale Review intervals.
type BasicScheduler struct {
	*scheduler
}

// NewBasicScheduler prepares a review of card at now.
func NewBasicScheduler(p Parameters, card Card, now time.Time) *BasicScheduler {
	return &BasicScheduler{scheduler: newScheduler(p, card, now)}
}

// Review implements Scheduler.
func (b *BasicScheduler) Review(r Rating) SchedulingInfo {
	if info, ok := b.cached(r); ok {
		return info
	}
	switch b.last.State {
	case New:
		b.newState(r)
	case Learning, Relearning:
		b.learningState(r)
	default:
		b.reviewState()
	}
	return b.result(r)
}

// Preview implements Scheduler.
func (b *BasicScheduler) Preview() RecordLog {
	return preview(b.Review)
}

func (b *BasicScheduler) newState(r Rating) {
	p := b.params
	next := b.current
	next.Difficulty = p.InitDifficulty(r)
	next.Stability = p.InitStability(r)

	switch r {
	case Again:
		b.scheduleIn(&next, time.Minute)
		next.State = Learning
	case Hard:
		b.scheduleIn(&next, 5*time.Minute)
		next.State = Learning
	case Good:
		b.scheduleIn(&next, 10*time.Minute)
		next.State = Learning
	case Easy:
		b.scheduleDays(&next, p.NextInterval(next.Stability, next.ElapsedDays))
		next.State = Review
	}
	b.store(r, next)
}

func (b *BasicScheduler) learningState(r Rating) {
	p := b.params
	next := b.current
	elapsed := b.current.ElapsedDays
	if p.HasShortTerm() {
		next.Difficulty = p.NextDifficulty(b.last.Difficulty, r)
		next.Stability = p.ShortTermStability(b.last.Stability, r)
	}

	switch r {
	case Again:
		b.scheduleIn(&next, 5*time.Minute)
		next.State = b.last.State
	case Hard:
		b.scheduleIn(&next, 10*time.Minute)
		next.State = b.last.State
	case Good:
		b.scheduleDays(&next, p.NextInterval(next.Stability, elapsed))
		next.State = Review
	case Easy:
		goodStability := p.ShortTermStability(b.last.Stability, Good)
		goodInterval := p.NextInterval(goodStability, elapsed)
		easyInterval := math.Max(p.NextInterval(next.Stability, elapsed), goodInterval+1)
		b.scheduleDays(&next, easyInterval)
		next.State = Review
	}
	b.store(r, next)
}

// reviewState computes all four outcomes at once since the interval of
// each rating is bounded by its neighbours.
func (b *BasicScheduler) reviewState() {
	p := b.params
	elapsed := b.current.ElapsedDays
	cards := b.branches()
	b.nextMemory(&cards)

	again, hard, good, easy := &cards[0], &cards[1], &cards[2], &cards[3]

	hardInterval := p.NextInterval(hard.Stability, elapsed)
	goodInterval := p.NextInterval(good.Stability, elapsed)
	hardInterval = math.Min(hardInterval, goodInterval)
	goodInterval = math.Max(goodInterval, hardInterval+1)
	easyInterval := math.Max(p.NextInterval(easy.Stability, elapsed), goodInterval+1)

	b.scheduleIn(again, 5*time.Minute)
	b.scheduleDays(hard, hardInterval)
	b.scheduleDays(good, goodInterval)
	b.scheduleDays(easy, easyInterval)

	again.State = Relearning
	again.Lapses++
	hard.State = Review
	good.State = Review
	easy.State = Review

	b.storeAll(cards)
}
