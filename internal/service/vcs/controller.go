package vcs

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/tauri-release/internal/logger"
	"github.com/oshokin/tauri-release/internal/service/common"
)

const (
	git = "git"

	// defaultTagRemote is used for tag pushes when no remote is configured.
	defaultTagRemote = "origin"
)

var (
	errEmptyMessage = errors.New("commit message must not be empty")
	errEmptyTag     = errors.New("tag name must not be empty")
)

// Controller runs git commands for one release.
type Controller struct {
	runner common.Runner
	remote string
}

// NewController creates a controller pushing to remote (empty: branch upstream).
func NewController(runner common.Runner, remote string) *Controller {
	return &Controller{runner: runner, remote: remote}
}

// Stage adds every working tree change to the index.
func (c *Controller) Stage(ctx context.Context) error {
	if err := c.runner.Run(ctx, common.NewCommand(git, "add", ".")); err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}

	return nil
}

// Commit records the index with message. When tolerant is set a non-zero exit,
// typically "nothing to commit", is logged and swallowed.
func (c *Controller) Commit(ctx context.Context, message string, tolerant bool) error {
	if message == "" {
		return errEmptyMessage
	}

	cmd := common.NewCommand(git, "commit", "-m", message)

	if !tolerant {
		if err := c.runner.Run(ctx, cmd); err != nil {
			return fmt.Errorf("commit: %w", err)
		}

		return nil
	}

	ok, err := c.runner.RunTolerant(ctx, cmd)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if !ok {
		logger.WarnKV(ctx, "Nothing committed, continuing", "message", message)
	}

	return nil
}

// Push pushes the current branch.
func (c *Controller) Push(ctx context.Context) error {
	args := []string{"push"}
	if c.remote != "" {
		args = append(args, c.remote, "HEAD")
	}

	if err := c.runner.Run(ctx, common.NewCommand(git, args...)); err != nil {
		return fmt.Errorf("push: %w", err)
	}

	return nil
}

// Tag creates a lightweight tag named name on HEAD.
func (c *Controller) Tag(ctx context.Context, name string) error {
	if name == "" {
		return errEmptyTag
	}

	if err := c.runner.Run(ctx, common.NewCommand(git, "tag", name)); err != nil {
		return fmt.Errorf("tag %s: %w", name, err)
	}

	return nil
}

// PushTag pushes the tag named name.
func (c *Controller) PushTag(ctx context.Context, name string) error {
	if name == "" {
		return errEmptyTag
	}

	remote := c.remote
	if remote == "" {
		remote = defaultTagRemote
	}

	if err := c.runner.Run(ctx, common.NewCommand(git, "push", remote, name)); err != nil {
		return fmt.Errorf("push tag %s: %w", name, err)
	}

	return nil
}
