package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/org-contributors/internal/domain"
	"github.com/naka-gawa/org-contributors/internal/gateway"
)

// Enumerate walks the repository listing of org one page at a time, starting at page 1,
// until a page comes back empty. A failing page aborts the whole enumeration.
func Enumerate(ctx context.Context, fetcher gateway.Fetcher, org string, logger logrus.FieldLogger) ([]domain.Repository, error) {
	repos := []domain.Repository{}
	for page := 1; ; page++ {
		batch, err := fetcher.ListOrgRepositories(ctx, org, page)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories for %s (page %d): %w", org, page, err)
		}
		if len(batch) == 0 {
			break
		}
		repos = append(repos, batch...)
		logger.Debugf("  Fetching next page of repositories (%d so far)...", len(repos))
	}
	return repos, nil
}

// SplitForks partitions repos into sources and forks, keeping the listing order of each.
func SplitForks(repos []domain.Repository) (sources, forks []domain.Repository) {
	sources = []domain.Repository{}
	forks = []domain.Repository{}
	for _, repo := range repos {
		if repo.Fork {
			forks = append(forks, repo)
		} else {
			sources = append(sources, repo)
		}
	}
	return sources, forks
}
