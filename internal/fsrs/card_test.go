package fsrs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCard(t *testing.T) {
	c := NewCard(t0)
	assert.Equal(t, New, c.State)
	assert.Equal(t, t0, c.Due)
	assert.Zero(t, c.Reps)
	assert.True(t, c.IsDue(t0))
	assert.False(t, c.IsDue(t0.Add(-time.Second)))
	assert.Equal(t, 0.0, c.Retrievability(DefaultParameters(), t0.Add(30*day)))
	assert.Equal(t, int64(0), c.ElapsedDaysAt(t0.Add(30*day)))
}

func TestElapsedDaysTruncates(t *testing.T) {
	c := Card{State: Review, LastReview: t0, Stability: 5}
	assert.Equal(t, int64(0), c.ElapsedDaysAt(t0.Add(23*time.Hour)))
	assert.Equal(t, int64(1), c.ElapsedDaysAt(t0.Add(47*time.Hour)))
	assert.Equal(t, int64(3), c.ElapsedDaysAt(t0.Add(3*day)))
}

func TestCardRetrievability(t *testing.T) {
	f, err := NewFSRS(DefaultParameters())
	require.NoError(t, err)
	c := Card{State: Review, LastReview: t0, Stability: 5}

	assert.Equal(t, 1.0, f.Retrievability(c, t0))
	assert.InDelta(t, 0.9, f.Retrievability(c, t0.Add(5*day)), 1e-12)
	assert.Less(t, f.Retrievability(c, t0.Add(50*day)), 0.9)
}

func TestCardJSONFieldNames(t *testing.T) {
	c := NewCard(t0)
	c.Log = &ReviewLog{Rating: Good, State: New, Reviewed: t0}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{
		"due", "stability", "difficulty", "elapsed_days", "scheduled_days",
		"reps", "lapses", "state", "previous_state", "last_review", "log",
	} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "New", raw["state"])
	assert.Equal(t, "Good", raw["log"].(map[string]any)["rating"])
	assert.Contains(t, raw["log"], "reviewed_date")

	c.Log = nil
	data, err = json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"log"`)
}
