package domain

import "time"

// Identity is a user's public profile.
// A partial identity carries whatever the statistics endpoint embedded (at least the login);
// Resolved is set once the full profile has been fetched.
type Identity struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
	Resolved  bool   `json:"-"`
}

// Merge overlays the non-empty fields of profile on top of i and marks it resolved.
func (i *Identity) Merge(profile Identity) {
	if profile.ID != 0 {
		i.ID = profile.ID
	}
	if profile.Login != "" {
		i.Login = profile.Login
	}
	if profile.Name != "" {
		i.Name = profile.Name
	}
	if profile.AvatarURL != "" {
		i.AvatarURL = profile.AvatarURL
	}
	if profile.HTMLURL != "" {
		i.HTMLURL = profile.HTMLURL
	}
	i.Resolved = true
}

// DisplayName returns the profile name, or the login when the user has not set one.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Login
}

// WeeklyActivity is one week of a contributor's activity in a repository.
type WeeklyActivity struct {
	Week      time.Time `json:"week"`
	Additions int       `json:"additions"`
	Deletions int       `json:"deletions"`
	Commits   int       `json:"commits"`
}

// ContributorStat is a single entry of a repository's contributor statistics.
type ContributorStat struct {
	Author Identity         `json:"author"`
	Total  int              `json:"total"`
	Weeks  []WeeklyActivity `json:"weeks"`
}

// OrgContributor is a resolved identity with its commit count across the organisation.
// One instance exists per login for a whole run; repository results point at it.
type OrgContributor struct {
	Identity
	Commits int `json:"commits"`
}

// RepoContributor is a contributor of a single repository.
type RepoContributor struct {
	Author *OrgContributor  `json:"author"`
	Total  int              `json:"total"`
	Weeks  []WeeklyActivity `json:"weeks,omitempty"`
}
