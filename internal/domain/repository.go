// Package domain contains the core data structures and domain logic for the application.
package domain

// Repository is a repository of the organisation as returned by the listing endpoint.
// It is passed by value and never modified after it has been fetched.
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    string `json:"owner"`
	OwnerID  int64  `json:"owner_id"`
	Fork     bool   `json:"fork"`
	HTMLURL  string `json:"html_url,omitempty"`
}

// RepoState tracks where a repository is in the contributor-statistics work queue.
type RepoState string

const (
	// RepoStatePending is a repository that has not been asked for statistics yet.
	RepoStatePending RepoState = "pending"
	// RepoStateComputing is a repository whose statistics are still being computed upstream.
	RepoStateComputing RepoState = "computing"
	// RepoStateFinalized is a repository that will no longer be retried.
	RepoStateFinalized RepoState = "finalized"
)

// RepoResult is a Repository augmented with its ranked contributors.
// It is created when a repository enters the work queue and mutated in place on every retry.
type RepoResult struct {
	Repository
	Contributors []*RepoContributor `json:"contributors"`
	Commits      int                `json:"commits"`
	Tries        int                `json:"tries"`
	State        RepoState          `json:"state"`
}

// NewRepoResult returns a pending result for repo.
func NewRepoResult(repo Repository) *RepoResult {
	return &RepoResult{
		Repository:   repo,
		Contributors: []*RepoContributor{},
		State:        RepoStatePending,
	}
}
