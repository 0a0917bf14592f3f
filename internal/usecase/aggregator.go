// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/org-contributors/internal/domain"
	"github.com/naka-gawa/org-contributors/internal/gateway"
)

// Options tunes a single aggregation run.
type Options struct {
	ExcludeUsers []string
	IncludeForks bool
	MaxRetries   int
	RetryDelay   time.Duration
}

// DefaultOptions processes every repository, forks included, retrying each up to
// DefaultMaxRetries times.
func DefaultOptions() Options {
	return Options{
		IncludeForks: true,
		MaxRetries:   DefaultMaxRetries,
		RetryDelay:   DefaultRetryDelay,
	}
}

// Aggregator is the use case for aggregating contributor statistics of an organisation.
// It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  logrus.FieldLogger
	opts    Options
	sleep   sleepFunc
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger logrus.FieldLogger, opts Options) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
		opts:    opts,
		sleep:   sleepContext,
	}
}

// Aggregate performs the main business logic.
// Repositories are enumerated first, then processed strictly one after another so that the
// identity table is only ever touched from this goroutine.
func (a *Aggregator) Aggregate(ctx context.Context, org string) (*domain.Result, error) {
	a.logger.Infof("[1/3] Enumerating repositories of %s...", org)
	repos, err := Enumerate(ctx, a.fetcher, org, a.logger)
	if err != nil {
		return nil, err
	}

	var forks []domain.Repository
	if !a.opts.IncludeForks {
		repos, forks = SplitForks(repos)
		a.logger.Infof("Skipping %d forked repositories", len(forks))
	}

	a.logger.Infof("[2/3] Fetching contributor statistics for %d repositories...", len(repos))
	table := NewIdentityTable()
	resolver := NewResolver(a.fetcher, a.opts.ExcludeUsers, a.logger)
	coordinator := NewCoordinator(a.fetcher, resolver, table, a.opts.MaxRetries, a.opts.RetryDelay, a.logger)
	coordinator.sleep = a.sleep
	results, err := coordinator.Run(ctx, repos)
	if err != nil {
		return nil, err
	}

	a.logger.Info("[3/3] Ranking contributors...")
	result := Finalize(org, table, results, forks)
	if err := CheckTotals(result); err != nil {
		a.logger.WithError(err).Warn("Aggregated totals are inconsistent")
	}
	a.logger.Infof("Aggregation complete: %d contributors, %d repositories, %d commits",
		len(result.Contributors), len(result.Repos), result.Commits)
	return result, nil
}

// Finalize ranks the identity table and the finalized repositories and sums the grand total.
// Ties keep first-seen order for contributors and completion order for repositories.
func Finalize(org string, table *IdentityTable, repos []*domain.RepoResult, forks []domain.Repository) *domain.Result {
	contributors := table.Contributors()
	sort.SliceStable(contributors, func(i, j int) bool {
		return contributors[i].Commits > contributors[j].Commits
	})

	sortedRepos := make([]*domain.RepoResult, len(repos))
	copy(sortedRepos, repos)
	sort.SliceStable(sortedRepos, func(i, j int) bool {
		return sortedRepos[i].Commits > sortedRepos[j].Commits
	})

	commits := 0
	for _, repo := range sortedRepos {
		commits += repo.Commits
	}

	return &domain.Result{
		Organisation: org,
		Contributors: contributors,
		Repos:        sortedRepos,
		Forks:        forks,
		Commits:      commits,
	}
}
