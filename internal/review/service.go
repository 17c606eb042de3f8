// Package review runs review sessions against the card store.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/conorfennell/fsrsched/internal/fsrs"
	"github.com/conorfennell/fsrsched/internal/storage"
)

// Store is the part of storage.DB a review session needs.
type Store interface {
	DueCards(ctx context.Context, now time.Time, limit int) ([]storage.CardRecord, error)
	FindCard(ctx context.Context, hash string) (storage.CardRecord, error)
	SaveCard(ctx context.Context, hash string, c fsrs.Card) error
}

var _ Store = (*storage.DB)(nil)

// Item is a due card with its current probability of recall.
type Item struct {
	storage.CardRecord
	Retrievability float64
}

// Service schedules stored cards with one set of parameters.
type Service struct {
	store Store
	fsrs  *fsrs.FSRS
}

// NewService returns a Service backed by store.
func NewService(store Store, f *fsrs.FSRS) *Service {
	return &Service{store: store, fsrs: f}
}

// Due lists up to limit cards due at now, most overdue first.
func (s *Service) Due(ctx context.Context, now time.Time, limit int) ([]Item, error) {
	recs, err := s.store.DueCards(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(recs))
	for i, rec := range recs {
		items[i] = Item{CardRecord: rec, Retrievability: s.fsrs.Retrievability(rec.Card, now)}
	}
	return items, nil
}

// Preview shows the outcome of every rating without saving anything.
func (s *Service) Preview(ctx context.Context, hash string, now time.Time) (fsrs.RecordLog, error) {
	rec, err := s.store.FindCard(ctx, hash)
	if err != nil {
		return nil, err
	}
	return s.fsrs.Repeat(rec.Card, now), nil
}

// Answer commits rating r for the card and persists the result. The saved
// card carries the review log.
func (s *Service) Answer(ctx context.Context, hash string, r fsrs.Rating, now time.Time) (fsrs.SchedulingInfo, error) {
	rec, err := s.store.FindCard(ctx, hash)
	if err != nil {
		return fsrs.SchedulingInfo{}, err
	}
	info, err := s.fsrs.Next(rec.Card, now, r)
	if err != nil {
		return fsrs.SchedulingInfo{}, err
	}
	if err := s.store.SaveCard(ctx, hash, info.Card); err != nil {
		return fsrs.SchedulingInfo{}, fmt.Errorf("save review of %s: %w", hash, err)
	}
	slog.Info("card reviewed",
		"hash", hash,
		"rating", r,
		"state", info.Card.State,
		"scheduled_days", info.Card.ScheduledDays,
		"due", info.Card.Due,
	)
	return info, nil
}
