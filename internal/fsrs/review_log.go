package fsrs

import "time"

// ReviewLog records a single accepted review.
type ReviewLog struct {
	Rating        Rating    `json:"rating"`
	ElapsedDays   int64     `json:"elapsed_days"`
	ScheduledDays int64     `json:"scheduled_days"`
	State         State     `json:"state"` // state before the review
	Reviewed      time.Time `json:"reviewed_date"`
}

// SchedulingInfo pairs a candidate card with the log that would record it.
type SchedulingInfo struct {
	Card      Card      `json:"card"`
	ReviewLog ReviewLog `json:"review_log"`
}

// RecordLog holds the outcome of every rating for one review.
type RecordLog map[Rating]SchedulingInfo
