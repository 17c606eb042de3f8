package fsrs

import "time"

const day = 24 * time.Hour

// Card is the memory state of one schedulable item.
type Card struct {
	Due           time.Time  `json:"due"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ElapsedDays   int64      `json:"elapsed_days"`
	ScheduledDays int64      `json:"scheduled_days"`
	Reps          int32      `json:"reps"`
	Lapses        int32      `json:"lapses"`
	State         State      `json:"state"`
	PreviousState State      `json:"previous_state"`
	LastReview    time.Time  `json:"last_review"`
	Log           *ReviewLog `json:"log,omitempty"`
}

// NewCard returns a never-reviewed card that is due at now.
func NewCard(now time.Time) Card {
	return Card{
		Due:        now,
		LastReview: now,
		State:      New,
	}
}

// ElapsedDaysAt returns the whole days between the last review and now.
// A New card has no elapsed time.
func (c Card) ElapsedDaysAt(now time.Time) int64 {
	if c.State == New {
		return 0
	}
	return daysBetween(c.LastReview, now)
}

// Retrievability is the predicted probability of recall at now.
func (c Card) Retrievability(p Parameters, now time.Time) float64 {
	if c.State == New {
		return 0
	}
	return p.ForgettingCurve(c.ElapsedDaysAt(now), c.Stability)
}

// IsDue reports whether the card should be reviewed at now.
func (c Card) IsDue(now time.Time) bool {
	return !c.Due.After(now)
}

func daysBetween(from, to time.Time) int64 {
	return int64(to.Sub(from) / day)
}

func addDays(t time.Time, days int64) time.Time {
	return t.Add(time.Duration(days) * day)
}
