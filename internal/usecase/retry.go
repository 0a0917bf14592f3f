package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/org-contributors/internal/domain"
	"github.com/naka-gawa/org-contributors/internal/gateway"
)

// Retry defaults. GitHub computes contributor statistics in the background, so a repository
// that answered "computing" needs real time to pass before it is asked again.
const (
	DefaultMaxRetries = 10
	DefaultRetryDelay = 1 * time.Second
)

// sleepFunc waits for d or until ctx is done.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Coordinator fetches the contributor statistics of every repository, one at a time,
// requeueing repositories whose statistics are still being computed.
//
// Each repository moves pending -> computing (zero or more times) -> finalized. A repository
// still computing after maxRetries attempts is finalized with no contributors.
type Coordinator struct {
	fetcher    gateway.Fetcher
	resolver   *Resolver
	table      *IdentityTable
	maxRetries int
	retryDelay time.Duration
	sleep      sleepFunc
	logger     logrus.FieldLogger
}

// NewCoordinator creates a Coordinator that merges contributors into table.
func NewCoordinator(fetcher gateway.Fetcher, resolver *Resolver, table *IdentityTable, maxRetries int, retryDelay time.Duration, logger logrus.FieldLogger) *Coordinator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Coordinator{
		fetcher:    fetcher,
		resolver:   resolver,
		table:      table,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		sleep:      sleepContext,
		logger:     logger,
	}
}

// Run processes repos through the work queue and returns the finalized results in the order
// they were finalized.
func (c *Coordinator) Run(ctx context.Context, repos []domain.Repository) ([]*domain.RepoResult, error) {
	queue := &workQueue[*domain.RepoResult]{}
	for _, repo := range repos {
		queue.Push(domain.NewRepoResult(repo))
	}

	completed := make([]*domain.RepoResult, 0, len(repos))
	for queue.Len() > 0 {
		item, _ := queue.Pop()
		if item.Tries > 0 {
			if err := c.sleep(ctx, c.retryDelay); err != nil {
				return nil, err
			}
		}
		if err := c.fetchStats(ctx, item); err != nil {
			return nil, err
		}

		if item.State == domain.RepoStateComputing {
			if item.Tries < c.maxRetries {
				c.logger.Debugf("  Statistics for %s are being computed, retrying later (try %d/%d)", item.FullName, item.Tries, c.maxRetries)
				queue.Push(item)
				continue
			}
			c.logger.Warnf("Statistics for %s were not ready after %d tries, reporting it without contributors", item.FullName, item.Tries)
			item.State = domain.RepoStateFinalized
		}
		completed = append(completed, item)
	}
	return completed, nil
}

// fetchStats asks for the statistics of item once and updates it in place.
func (c *Coordinator) fetchStats(ctx context.Context, item *domain.RepoResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.logger.Debugf("  Fetching contributors for repository %s", item.FullName)
	stats, err := c.fetcher.GetContributorStats(ctx, item.Owner, item.Name)
	if errors.Is(err, gateway.ErrStatsComputing) {
		item.Contributors = []*domain.RepoContributor{}
		item.Commits = 0
		item.Tries++
		item.State = domain.RepoStateComputing
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch contributor stats for %s: %w", item.FullName, err)
	}

	contributors, total, err := c.resolver.ResolveAndMerge(ctx, stats, c.table)
	if err != nil {
		return fmt.Errorf("failed to merge contributors of %s: %w", item.FullName, err)
	}
	c.logger.Debugf("  Found %d contributors for repository %s", len(contributors), item.FullName)
	item.Contributors = contributors
	item.Commits = total
	item.State = domain.RepoStateFinalized
	return nil
}
