package report

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/org-contributors/internal/domain"
)

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// sampleResult is acme with alice (3 commits) and bob (1 commit) in a single repository.
func sampleResult() *domain.Result {
	alice := &domain.OrgContributor{Identity: domain.Identity{ID: 1, Login: "alice", Name: "Alice"}, Commits: 3}
	bob := &domain.OrgContributor{Identity: domain.Identity{ID: 2, Login: "bob"}, Commits: 1}
	widgets := domain.NewRepoResult(domain.Repository{ID: 10, Name: "widgets", FullName: "acme/widgets", Owner: "acme"})
	widgets.Contributors = []*domain.RepoContributor{{Author: alice, Total: 3}, {Author: bob, Total: 1}}
	widgets.Commits = 4
	widgets.State = domain.RepoStateFinalized

	return &domain.Result{
		Organisation: "acme",
		Contributors: []*domain.OrgContributor{alice, bob},
		Repos:        []*domain.RepoResult{widgets},
		Commits:      4,
	}
}
