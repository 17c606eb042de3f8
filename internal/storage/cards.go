package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/fsrsched/internal/domain"
	"github.com/conorfennell/fsrsched/internal/fsrs"
)

// CardRecord is a note together with the scheduling state of its card.
type CardRecord struct {
	Note     domain.Note
	SourceID int64
	Card     fsrs.Card
}

const cardColumns = `
	hash, question, answer, context, path, source_id,
	due, stability, difficulty, elapsed_days, scheduled_days,
	reps, lapses, state, previous_state, last_review, last_log`

func encodeLog(l *fsrs.ReviewLog) (sql.NullString, error) {
	if l == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// InsertCard stores a new note and its initial card.
func (db *DB) InsertCard(ctx context.Context, rec CardRecord) error {
	c := rec.Card
	lastLog, err := encodeLog(c.Log)
	if err != nil {
		return fmt.Errorf("failed to encode log for card %s: %w", rec.Note.Hash, err)
	}
	var sourceID sql.NullInt64
	if rec.SourceID != 0 {
		sourceID = sql.NullInt64{Int64: rec.SourceID, Valid: true}
	}

	_, err = db.conn.ExecContext(ctx, `INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Note.Hash, rec.Note.Question, rec.Note.Answer, rec.Note.Context, rec.Note.Path, sourceID,
		toMillis(c.Due), c.Stability, c.Difficulty, c.ElapsedDays, c.ScheduledDays,
		c.Reps, c.Lapses, int(c.State), int(c.PreviousState), toMillis(c.LastReview), lastLog,
	)
	if err != nil {
		return fmt.Errorf("failed to insert card %s: %w", rec.Note.Hash, err)
	}
	return nil
}

func scanCard(row interface{ Scan(...any) error }) (CardRecord, error) {
	var (
		rec              CardRecord
		sourceID         sql.NullInt64
		due, lastReview  int64
		state, prevState int
		lastLog          sql.NullString
	)
	c := &rec.Card
	err := row.Scan(
		&rec.Note.Hash, &rec.Note.Question, &rec.Note.Answer, &rec.Note.Context, &rec.Note.Path, &sourceID,
		&due, &c.Stability, &c.Difficulty, &c.ElapsedDays, &c.ScheduledDays,
		&c.Reps, &c.Lapses, &state, &prevState, &lastReview, &lastLog,
	)
	if err != nil {
		return CardRecord{}, err
	}
	rec.SourceID = sourceID.Int64
	c.Due = fromMillis(due)
	c.LastReview = fromMillis(lastReview)
	c.State = fsrs.State(state)
	c.PreviousState = fsrs.State(prevState)
	if lastLog.Valid {
		c.Log = new(fsrs.ReviewLog)
		if err := json.Unmarshal([]byte(lastLog.String), c.Log); err != nil {
			return CardRecord{}, fmt.Errorf("decode last log: %w", err)
		}
	}
	return rec, nil
}

func (db *DB) queryCards(ctx context.Context, query string, args ...any) ([]CardRecord, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []CardRecord
	for rows.Next() {
		rec, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// FindCard retrieves a card by its note hash.
func (db *DB) FindCard(ctx context.Context, hash string) (CardRecord, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE hash = ?`, hash)
	rec, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return CardRecord{}, fmt.Errorf("card %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return CardRecord{}, fmt.Errorf("failed to find card %s: %w", hash, err)
	}
	return rec, nil
}

// CardsBySource retrieves every card read from the given source.
func (db *DB) CardsBySource(ctx context.Context, sourceID int64) ([]CardRecord, error) {
	recs, err := db.queryCards(ctx, `SELECT `+cardColumns+` FROM cards WHERE source_id = ? ORDER BY hash`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for source ID %d: %w", sourceID, err)
	}
	return recs, nil
}

// DueCards returns cards due at or before now, most overdue first. A limit
// of zero or less returns them all.
func (db *DB) DueCards(ctx context.Context, now time.Time, limit int) ([]CardRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	recs, err := db.queryCards(ctx, `SELECT `+cardColumns+`
		FROM cards WHERE due <= ?
		ORDER BY due, hash
		LIMIT ?`, toMillis(now), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due cards: %w", err)
	}
	return recs, nil
}

// SaveCard replaces the scheduling state of a stored card, including the
// log of its most recent review.
func (db *DB) SaveCard(ctx context.Context, hash string, c fsrs.Card) error {
	lastLog, err := encodeLog(c.Log)
	if err != nil {
		return fmt.Errorf("failed to encode log for card %s: %w", hash, err)
	}

	res, err := db.conn.ExecContext(ctx, `
		UPDATE cards
		SET due = ?, stability = ?, difficulty = ?, elapsed_days = ?, scheduled_days = ?,
		    reps = ?, lapses = ?, state = ?, previous_state = ?, last_review = ?, last_log = ?
		WHERE hash = ?
	`,
		toMillis(c.Due), c.Stability, c.Difficulty, c.ElapsedDays, c.ScheduledDays,
		c.Reps, c.Lapses, int(c.State), int(c.PreviousState), toMillis(c.LastReview), lastLog,
		hash,
	)
	if err != nil {
		return fmt.Errorf("failed to update card %s: %w", hash, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("card %s: %w", hash, ErrNotFound)
	}
	return nil
}

// DeleteCard removes a card.
func (db *DB) DeleteCard(ctx context.Context, hash string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM cards WHERE hash = ?`, hash)
	if err != nil {
		return fmt.Errorf("failed to delete card with hash %s: %w", hash, err)
	}
	return nil
}
