// Package sync reconciles markdown note sources with the card store.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conorfennell/fsrsched/internal/fsrs"
	"github.com/conorfennell/fsrsched/internal/gitsource"
	"github.com/conorfennell/fsrsched/internal/knol"
	"github.com/conorfennell/fsrsched/internal/parser"
	"github.com/conorfennell/fsrsched/internal/storage"
)

// Report summarizes one reconciliation.
type Report struct {
	Parsed  int
	Added   int
	Removed int
	Errors  []error
}

func (r *Report) add(o Report) {
	r.Parsed += o.Parsed
	r.Added += o.Added
	r.Removed += o.Removed
	r.Errors = append(r.Errors, o.Errors...)
}

// Syncer pulls every configured source and brings the card table in line
// with the notes found there.
type Syncer struct {
	db       *storage.DB
	reposDir string

	now   func() time.Time
	fetch func(ctx context.Context, url, localPath string) error
}

// New returns a Syncer that clones git sources under reposDir.
func New(db *storage.DB, reposDir string) *Syncer {
	return &Syncer{
		db:       db,
		reposDir: reposDir,
		now:      time.Now,
		fetch:    gitsource.Sync,
	}
}

// AddSource registers a local directory or git remote. Anything that
// looks like a remote URL is treated as git; everything else must be an
// existing directory and is stored as an absolute path.
func AddSource(ctx context.Context, db *storage.DB, pathOrURL string) (storage.Source, error) {
	kind := storage.LocalSource
	path := pathOrURL
	if isGitURL(pathOrURL) {
		kind = storage.GitSource
	} else {
		abs, err := filepath.Abs(pathOrURL)
		if err != nil {
			return storage.Source{}, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return storage.Source{}, fmt.Errorf("source %s: %w", pathOrURL, err)
		}
		if !info.IsDir() {
			return storage.Source{}, fmt.Errorf("source %s is not a directory", pathOrURL)
		}
		path = abs
	}

	id, err := db.InsertSource(ctx, kind, path)
	if err != nil {
		return storage.Source{}, err
	}
	slog.Info("source added", "id", id, "type", kind, "path", path)
	return storage.Source{ID: id, Kind: kind, Path: path}, nil
}

// Run iterates over all sources and reconciles them. A failing source is
// logged and recorded in the report; the others still run.
func (s *Syncer) Run(ctx context.Context) (Report, error) {
	var report Report

	slog.Info("starting sync for all sources")
	sources, err := s.db.Sources(ctx)
	if err != nil {
		return report, err
	}
	if len(sources) == 0 {
		slog.Info("no sources configured, add one with: fsrsched add-source <path/or/url.git>")
		return report, nil
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r, err := s.SyncSource(ctx, source)
		report.add(r)
		if err != nil {
			slog.Error("error syncing source", "id", source.ID, "path", source.Path, "error", err)
			report.Errors = append(report.Errors, err)
		}
	}
	slog.Info("sync complete",
		"parsed", report.Parsed,
		"added", report.Added,
		"removed", report.Removed,
		"errors", len(report.Errors),
	)
	return report, nil
}

// SyncSource fetches one source if it is remote and reconciles it.
func (s *Syncer) SyncSource(ctx context.Context, source storage.Source) (Report, error) {
	slog.Info("syncing source", "id", source.ID, "type", source.Kind, "path", source.Path)

	dir := source.Path
	if source.Kind == storage.GitSource {
		local, err := gitURLToLocalPath(s.reposDir, source.Path)
		if err != nil {
			return Report{}, err
		}
		if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
			return Report{}, fmt.Errorf("failed to create repos directory: %w", err)
		}
		if err := s.fetch(ctx, source.Path, local); err != nil {
			return Report{}, err
		}
		dir = local
	}
	return s.reconcile(ctx, source.ID, dir)
}

// reconcile inserts a New card for every note not yet stored and deletes
// the cards of notes that disappeared from the source. Cards of unchanged
// notes keep their schedule.
func (s *Syncer) reconcile(ctx context.Context, sourceID int64, dir string) (Report, error) {
	var report Report
	now := s.now()
	found := make(map[string]bool)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		notes, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			report.Errors = append(report.Errors, parseErr)
			return nil
		}
		knol.Stamp(notes)
		for _, note := range notes {
			if found[note.Hash] {
				continue
			}
			found[note.Hash] = true
			report.Parsed++

			_, findErr := s.db.FindCard(ctx, note.Hash)
			if findErr == nil {
				continue
			}
			if !errors.Is(findErr, storage.ErrNotFound) {
				report.Errors = append(report.Errors, findErr)
				continue
			}

			slog.Debug("new note found", "hash", note.Hash, "path", note.Path, "line", note.Line)
			rec := storage.CardRecord{Note: note, SourceID: sourceID, Card: fsrs.NewCard(now)}
			if err := s.db.InsertCard(ctx, rec); err != nil {
				report.Errors = append(report.Errors, err)
				continue
			}
			report.Added++
		}
		return nil
	})
	if walkErr != nil {
		return report, fmt.Errorf("error walking directory %s: %w", dir, walkErr)
	}

	stored, err := s.db.CardsBySource(ctx, sourceID)
	if err != nil {
		return report, err
	}
	for _, rec := range stored {
		if found[rec.Note.Hash] {
			continue
		}
		slog.Info("orphaned card, deleting", "hash", rec.Note.Hash)
		if err := s.db.DeleteCard(ctx, rec.Note.Hash); err != nil {
			slog.Warn("failed to delete orphaned card", "hash", rec.Note.Hash, "error", err)
			report.Errors = append(report.Errors, err)
			continue
		}
		report.Removed++
	}

	if err := s.db.MarkScanned(ctx, sourceID, now); err != nil {
		slog.Warn("failed to update last scanned for source", "source_id", sourceID, "error", err)
	}

	slog.Info("reconciliation complete",
		"path", dir,
		"parsed", report.Parsed,
		"added", report.Added,
		"removed", report.Removed,
		"errors", len(report.Errors),
	)
	return report, nil
}

func isGitURL(s string) bool {
	if u, err := url.Parse(s); err == nil {
		switch u.Scheme {
		case "http", "https", "ssh", "git":
			return true
		}
	}
	_, _, ok := scpLike(s)
	return ok
}

// scpLike splits user@host:path remotes.
func scpLike(s string) (host, path string, ok bool) {
	userHost, path, found := strings.Cut(s, ":")
	if !found || strings.Contains(userHost, "/") {
		return "", "", false
	}
	_, host, found = strings.Cut(userHost, "@")
	if !found || host == "" || path == "" {
		return "", "", false
	}
	return host, path, true
}

// gitURLToLocalPath maps a remote to baseDir/<host>/<repo path>.
func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err == nil && parsedURL.Host != "" && parsedURL.Scheme != "" {
		repoPath := strings.TrimSuffix(strings.Trim(parsedURL.Path, "/"), ".git")
		if repoPath == "" {
			return "", fmt.Errorf("could not parse git URL: %s", repoURL)
		}
		return filepath.Join(baseDir, parsedURL.Hostname(), filepath.FromSlash(repoPath)), nil
	}
	if host, path, ok := scpLike(repoURL); ok {
		repoPath := strings.TrimSuffix(strings.Trim(path, "/"), ".git")
		return filepath.Join(baseDir, host, filepath.FromSlash(repoPath)), nil
	}
	return "", fmt.Errorf("could not parse git URL: %s", repoURL)
}
