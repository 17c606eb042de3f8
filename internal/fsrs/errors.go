package fsrs

import "errors"

// Sentinel errors. Check with errors.Is.
var (
	ErrInvalidRating     = errors.New("fsrs: invalid rating")
	ErrInvalidState      = errors.New("fsrs: invalid state")
	ErrInvalidParameters = errors.New("fsrs: invalid parameters")
	ErrWeightCount       = errors.New("fsrs: wrong number of weights for model")
	ErrUnknownModel      = errors.New("fsrs: unknown model")
)
