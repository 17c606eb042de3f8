package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SourceKind tells the sync process how to fetch a source.
type SourceKind string

const (
	LocalSource SourceKind = "local"
	GitSource   SourceKind = "git"
)

// Source is a directory or git remote that notes are read from.
type Source struct {
	ID          int64
	Kind        SourceKind
	Path        string
	LastScanned time.Time // zero until the first sync
}

// InsertSource inserts a new source and returns its ID.
func (db *DB) InsertSource(ctx context.Context, kind SourceKind, path string) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO sources (kind, path)
		VALUES (?, ?)
	`, string(kind), path)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %s: %w", path, err)
	}
	return id, nil
}

func scanSource(row interface{ Scan(...any) error }) (Source, error) {
	var (
		s           Source
		kind        string
		lastScanned sql.NullInt64
	)
	if err := row.Scan(&s.ID, &kind, &s.Path, &lastScanned); err != nil {
		return Source{}, err
	}
	s.Kind = SourceKind(kind)
	s.LastScanned = nullMillis(lastScanned)
	return s, nil
}

// FindSourceByPath retrieves a source by its path.
func (db *DB) FindSourceByPath(ctx context.Context, path string) (Source, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, kind, path, last_scanned
		FROM sources WHERE path = ?
	`, path)
	s, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, fmt.Errorf("source %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return Source{}, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	return s, nil
}

// Sources returns every source in insertion order.
func (db *DB) Sources(ctx context.Context) ([]Source, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, kind, path, last_scanned
		FROM sources ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// MarkScanned records when a source was last synced.
func (db *DB) MarkScanned(ctx context.Context, sourceID int64, at time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE sources
		SET last_scanned = ?
		WHERE id = ?
	`, toMillis(at), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source ID %d: %w", sourceID, err)
	}
	return nil
}

// DeleteSource removes a source together with its cards.
func (db *DB) DeleteSource(ctx context.Context, sourceID int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, sourceID)
	if err != nil {
		return fmt.Errorf("failed to delete source ID %d: %w", sourceID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("source ID %d: %w", sourceID, ErrNotFound)
	}
	return nil
}
