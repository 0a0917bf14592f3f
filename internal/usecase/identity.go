package usecase

import "github.com/naka-gawa/org-contributors/internal/domain"

// IdentityTable holds one OrgContributor per login for the duration of a run.
// Logins are compared exactly, as GitHub returns them.
type IdentityTable struct {
	byLogin map[string]*domain.OrgContributor
	order   []string
}

// NewIdentityTable returns an empty table.
func NewIdentityTable() *IdentityTable {
	return &IdentityTable{byLogin: make(map[string]*domain.OrgContributor)}
}

// Get returns the shared entry for login.
func (t *IdentityTable) Get(login string) (*domain.OrgContributor, bool) {
	c, ok := t.byLogin[login]
	return c, ok
}

// Add inserts identity with an initial commit count and returns the stored entry.
// If the login is already known the existing entry is returned unchanged.
func (t *IdentityTable) Add(identity domain.Identity, commits int) *domain.OrgContributor {
	if existing, ok := t.byLogin[identity.Login]; ok {
		return existing
	}
	c := &domain.OrgContributor{Identity: identity, Commits: commits}
	t.byLogin[identity.Login] = c
	t.order = append(t.order, identity.Login)
	return c
}

// Len returns the number of distinct logins.
func (t *IdentityTable) Len() int {
	return len(t.order)
}

// Contributors returns every entry in first-seen order.
func (t *IdentityTable) Contributors() []*domain.OrgContributor {
	out := make([]*domain.OrgContributor, 0, len(t.order))
	for _, login := range t.order {
		out = append(out, t.byLogin[login])
	}
	return out
}
