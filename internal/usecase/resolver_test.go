package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/org-contributors/internal/domain"
)

func TestResolver_ResolveAndMerge(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("GetUser", mock.Anything, "alice").Return(profile("alice", 1), nil).Once()
	fetcher.On("GetUser", mock.Anything, "bob").Return(profile("bob", 2), nil).Once()

	table := NewIdentityTable()
	resolver := NewResolver(fetcher, nil, discardLogger())

	// Equal totals keep the order the statistics came in.
	first, total, err := resolver.ResolveAndMerge(context.Background(), []domain.ContributorStat{stat("alice", 3), stat("bob", 3)}, table)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Equal(t, []string{"alice", "bob"}, repoLogins(first))

	second, total, err := resolver.ResolveAndMerge(context.Background(), []domain.ContributorStat{stat("alice", 1), stat("bob", 9)}, table)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Equal(t, []string{"bob", "alice"}, repoLogins(second))

	alice, ok := table.Get("alice")
	require.True(t, ok)
	assert.Equal(t, 4, alice.Commits)
	assert.True(t, alice.Resolved)
	assert.Equal(t, "Name of alice", alice.Name)
	assert.Same(t, alice, first[0].Author)
	assert.Same(t, alice, second[1].Author)

	bob, _ := table.Get("bob")
	assert.Equal(t, 12, bob.Commits)
	assert.Equal(t, 2, table.Len())
	fetcher.AssertExpectations(t)
}

func TestResolver_KeepsPartialFieldsMissingFromProfile(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("GetUser", mock.Anything, "alice").Return(&domain.Identity{ID: 1, Login: "alice", Name: "Alice", Resolved: true}, nil)

	table := NewIdentityTable()
	partial := domain.ContributorStat{
		Author: domain.Identity{ID: 1, Login: "alice", AvatarURL: "https://avatars/1"},
		Total:  2,
	}
	contributors, _, err := NewResolver(fetcher, nil, discardLogger()).ResolveAndMerge(context.Background(), []domain.ContributorStat{partial}, table)
	require.NoError(t, err)
	require.Len(t, contributors, 1)
	assert.Equal(t, "Alice", contributors[0].Author.Name)
	assert.Equal(t, "https://avatars/1", contributors[0].Author.AvatarURL)
	assert.True(t, contributors[0].Author.Resolved)
}

func TestResolver_Exclusions(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("GetUser", mock.Anything, "B").Return(profile("B", 2), nil)

	table := NewIdentityTable()
	resolver := NewResolver(fetcher, []string{"A", ""}, discardLogger())
	assert.True(t, resolver.IsExcluded("A"))
	assert.False(t, resolver.IsExcluded("a"))
	assert.False(t, resolver.IsExcluded(""))

	contributors, total, err := resolver.ResolveAndMerge(context.Background(), []domain.ContributorStat{stat("A", 10), stat("B", 5)}, table)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, []string{"B"}, repoLogins(contributors))

	_, known := table.Get("A")
	assert.False(t, known)
	fetcher.AssertNotCalled(t, "GetUser", mock.Anything, "A")
}

func TestResolver_SkipsContributorsWithoutLogin(t *testing.T) {
	fetcher := new(mockFetcher)
	table := NewIdentityTable()

	contributors, total, err := NewResolver(fetcher, nil, discardLogger()).ResolveAndMerge(context.Background(), []domain.ContributorStat{stat("", 4)}, table)
	require.NoError(t, err)
	assert.Empty(t, contributors)
	assert.Equal(t, 0, total)
	fetcher.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestResolver_ProfileFailureIsFatal(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("GetUser", mock.Anything, "alice").Return(profile("alice", 1), nil)
	fetcher.On("GetUser", mock.Anything, "bob").Return(nil, errors.New("rate limited"))

	table := NewIdentityTable()
	contributors, total, err := NewResolver(fetcher, nil, discardLogger()).ResolveAndMerge(context.Background(), []domain.ContributorStat{stat("alice", 1), stat("bob", 2)}, table)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve user bob: rate limited")
	assert.Nil(t, contributors)
	assert.Equal(t, 0, total)
}

func TestIdentityTable(t *testing.T) {
	table := NewIdentityTable()
	alice := table.Add(domain.Identity{Login: "alice"}, 3)
	table.Add(domain.Identity{Login: "Alice"}, 1)
	again := table.Add(domain.Identity{Login: "alice", Name: "ignored"}, 100)

	assert.Same(t, alice, again)
	assert.Equal(t, 3, alice.Commits)
	assert.Equal(t, "", alice.Name)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"alice", "Alice"}, logins(table.Contributors()))
}
