package domain

// Result is the organisation-wide aggregate handed to the report renderer.
type Result struct {
	Organisation string            `json:"organisation"`
	Contributors []*OrgContributor `json:"contributors"`
	Repos        []*RepoResult     `json:"repos"`
	Forks        []Repository      `json:"forks,omitempty"`
	Commits      int               `json:"commits"`
}
