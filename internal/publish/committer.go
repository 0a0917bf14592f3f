package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	BotName       = "contributor-bot"
	BotEmail      = "contributor-bot"
	CommitMessage = "Update contributors"
)

// Committer stages, commits and pushes files with git.
type Committer struct {
	runner Runner
	dir    string
	logger logrus.FieldLogger
}

func NewCommitter(runner Runner, dir string, logger logrus.FieldLogger) *Committer {
	return &Committer{runner: runner, dir: dir, logger: logger}
}

// Commit commits files and pushes the result. It reports false without committing when the
// files are unchanged.
func (c *Committer) Commit(ctx context.Context, files []string) (bool, error) {
	if len(files) == 0 {
		return false, nil
	}

	steps := [][]string{
		{"config", "user.email", BotEmail},
		{"config", "user.name", BotName},
		append([]string{"add", "--"}, files...),
	}
	for _, args := range steps {
		if err := c.git(ctx, args...); err != nil {
			return false, err
		}
	}

	changed, err := c.hasStagedChanges(ctx)
	if err != nil {
		return false, err
	}
	if !changed {
		c.logger.Info("Contributor files are unchanged; nothing to commit")
		return false, nil
	}

	if err := c.git(ctx, "commit", "-m", CommitMessage); err != nil {
		return false, err
	}
	if err := c.git(ctx, "push"); err != nil {
		return false, err
	}
	c.logger.Infof("Committed and pushed %d file(s)", len(files))
	return true, nil
}

// hasStagedChanges relies on git diff --quiet exiting with 1 when there are differences.
func (c *Committer) hasStagedChanges(ctx context.Context) (bool, error) {
	_, err := c.runner.Run(ctx, c.dir, "git", "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, fmt.Errorf("failed to check for staged changes: %w", err)
}

func (c *Committer) git(ctx context.Context, args ...string) error {
	c.logger.Debugf("git %v", args)
	if _, err := c.runner.Run(ctx, c.dir, "git", args...); err != nil {
		return fmt.Errorf("failed to run git %s: %w", args[0], err)
	}
	return nil
}
