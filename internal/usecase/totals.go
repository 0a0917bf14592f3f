package usecase

import (
	"errors"
	"fmt"

	"github.com/naka-gawa/org-contributors/internal/domain"
)

// CheckTotals verifies that the commit counts of result add up and that every list is ranked.
func CheckTotals(result *domain.Result) error {
	var errs []error

	seen := make(map[string]*domain.OrgContributor, len(result.Contributors))
	contributorSum := 0
	for i, c := range result.Contributors {
		if _, dup := seen[c.Login]; dup {
			errs = append(errs, fmt.Errorf("contributor %s is listed more than once", c.Login))
		}
		seen[c.Login] = c
		contributorSum += c.Commits
		if i > 0 && result.Contributors[i-1].Commits < c.Commits {
			errs = append(errs, fmt.Errorf("contributor %s is ranked below a smaller count", c.Login))
		}
	}

	repoSum := 0
	for i, repo := range result.Repos {
		repoSum += repo.Commits
		if i > 0 && result.Repos[i-1].Commits < repo.Commits {
			errs = append(errs, fmt.Errorf("repository %s is ranked below a smaller count", repo.FullName))
		}
		sum := 0
		for j, c := range repo.Contributors {
			sum += c.Total
			if j > 0 && repo.Contributors[j-1].Total < c.Total {
				errs = append(errs, fmt.Errorf("contributor %s of %s is ranked below a smaller count", c.Author.Login, repo.FullName))
			}
			if seen[c.Author.Login] != c.Author {
				errs = append(errs, fmt.Errorf("contributor %s of %s is not the organisation entry", c.Author.Login, repo.FullName))
			}
		}
		if sum != repo.Commits {
			errs = append(errs, fmt.Errorf("repository %s total is %d, contributors add up to %d", repo.FullName, repo.Commits, sum))
		}
	}

	if repoSum != result.Commits {
		errs = append(errs, fmt.Errorf("grand total is %d, repositories add up to %d", result.Commits, repoSum))
	}
	if contributorSum != result.Commits {
		errs = append(errs, fmt.Errorf("grand total is %d, contributors add up to %d", result.Commits, contributorSum))
	}
	return errors.Join(errs...)
}
