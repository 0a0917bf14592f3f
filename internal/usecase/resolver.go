package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/org-contributors/internal/domain"
	"github.com/naka-gawa/org-contributors/internal/gateway"
)

// Resolver turns the raw statistics of a repository into contributors backed by the
// organisation-wide identity table.
//
// Excluded logins are dropped before anything else happens: their profile is never fetched,
// they never enter the identity table and their commits count towards no total.
type Resolver struct {
	fetcher  gateway.Fetcher
	excluded map[string]struct{}
	logger   logrus.FieldLogger
}

// NewResolver creates a Resolver that ignores the given logins.
func NewResolver(fetcher gateway.Fetcher, excludeUsers []string, logger logrus.FieldLogger) *Resolver {
	excluded := make(map[string]struct{}, len(excludeUsers))
	for _, login := range excludeUsers {
		if login != "" {
			excluded[login] = struct{}{}
		}
	}
	return &Resolver{
		fetcher:  fetcher,
		excluded: excluded,
		logger:   logger,
	}
}

// IsExcluded reports whether login is on the exclusion list.
func (r *Resolver) IsExcluded(login string) bool {
	_, ok := r.excluded[login]
	return ok
}

// ResolveAndMerge resolves every contributor of one repository against table, adding their
// commits to the organisation-wide counts. It returns the repository's contributors sorted by
// commit count (descending, stable) and the repository total.
func (r *Resolver) ResolveAndMerge(ctx context.Context, stats []domain.ContributorStat, table *IdentityTable) ([]*domain.RepoContributor, int, error) {
	contributors := make([]*domain.RepoContributor, 0, len(stats))
	repoTotal := 0
	for _, stat := range stats {
		login := stat.Author.Login
		if login == "" {
			// Deleted accounts come back without an author.
			r.logger.Debugf("  Skipping contributor without login (%d commits)", stat.Total)
			continue
		}
		if r.IsExcluded(login) {
			r.logger.Debugf("  Contributor %s is excluded", login)
			continue
		}

		author, ok := table.Get(login)
		if ok {
			r.logger.Debugf("  Contributor %s already resolved", login)
			author.Commits += stat.Total
		} else {
			r.logger.Debugf("  Fetching user %s", login)
			profile, err := r.fetcher.GetUser(ctx, login)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to resolve user %s: %w", login, err)
			}
			identity := stat.Author
			identity.Merge(*profile)
			// The table is keyed by the login the statistics used.
			identity.Login = login
			author = table.Add(identity, stat.Total)
		}

		contributors = append(contributors, &domain.RepoContributor{
			Author: author,
			Total:  stat.Total,
			Weeks:  stat.Weeks,
		})
		repoTotal += stat.Total
	}

	sort.SliceStable(contributors, func(i, j int) bool {
		return contributors[i].Total > contributors[j].Total
	})
	return contributors, repoTotal, nil
}
