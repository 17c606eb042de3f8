package fsrs

import (
	"encoding"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Rating is the user's response to a card review.
type Rating int

const (
	Again Rating = iota + 1 // forgot
	Hard                    // recalled with serious difficulty
	Good                    // recalled after hesitation
	Easy                    // recalled effortlessly
)

var ratingNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

var (
	_ fmt.Stringer             = Rating(0)
	_ json.Marshaler           = Rating(0)
	_ json.Unmarshaler         = (*Rating)(nil)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

// Ratings returns every rating in grade order.
func Ratings() [4]Rating {
	return [4]Rating{Again, Hard, Good, Easy}
}

// IsValid reports whether r is one of Again, Hard, Good or Easy.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// index maps a rating to its slot in four-element tables.
func (r Rating) index() int {
	return int(r) - 1
}

func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// ParseRating accepts a rating name (any case) or its grade number 1-4.
func ParseRating(s string) (Rating, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		r := Rating(n)
		if !r.IsValid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidRating, n)
		}
		return r, nil
	}
	for _, r := range Ratings() {
		if strings.EqualFold(s, ratingNames[r]) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// MarshalJSON encodes the rating as its name.
func (r Rating) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON accepts either the rating name or its grade number.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidRating, data)
		}
		s = strconv.Itoa(n)
	}
	return r.UnmarshalText([]byte(s))
}
