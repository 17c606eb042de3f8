// Package gitsource keeps local clones of git-hosted note sources.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
)

// Sync clones url into localPath if nothing is there yet, or pulls the
// latest changes into the existing clone.
func Sync(ctx context.Context, url, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return clone(ctx, url, localPath)
	case err != nil:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	default:
		return pull(ctx, localPath)
	}
}

func clone(ctx context.Context, url, localPath string) error {
	slog.Info("cloning repository", "url", url, "path", localPath)
	_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{URL: url})
	if err != nil {
		return fmt.Errorf("failed to clone repo %s: %w", url, err)
	}
	slog.Info("clone complete", "path", localPath)
	return nil
}

func pull(ctx context.Context, localPath string) error {
	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
	}

	slog.Info("pulling repository", "path", localPath)
	err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: git.DefaultRemoteName})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		slog.Debug("repository already up to date", "path", localPath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
	}
	return nil
}
