// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/naka-gawa/org-contributors/internal/domain"
)

// ErrStatsComputing is returned by GetContributorStats while GitHub is still computing the
// statistics of a repository (HTTP 202). Callers are expected to ask again later.
var ErrStatsComputing = errors.New("contributor statistics are still being computed")

// ProfileSource selects the API used to resolve user profiles.
type ProfileSource string

const (
	ProfileSourceREST    ProfileSource = "rest"
	ProfileSourceGraphQL ProfileSource = "graphql"
)

const (
	defaultPerPage     = 100
	defaultHTTPTimeout = 30 * time.Second
	// maxSecondaryRateLimitSleep caps a single wait on a secondary rate limit.
	maxSecondaryRateLimitSleep = 1 * time.Hour
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// ListOrgRepositories returns one page of the organisation's repositories.
	// An empty page means there are no more repositories.
	ListOrgRepositories(ctx context.Context, org string, page int) ([]domain.Repository, error)
	// GetContributorStats returns the contributor statistics of a repository,
	// or ErrStatsComputing when they are not ready yet.
	GetContributorStats(ctx context.Context, owner, repo string) ([]domain.ContributorStat, error)
	// GetUser fetches the full public profile of login.
	GetUser(ctx context.Context, login string) (*domain.Identity, error)
}

// Config holds the connection settings of the gateway.
type Config struct {
	Token string
	// BaseURL is the REST API root of a GitHub Enterprise Server. Empty means github.com.
	BaseURL           string
	HTTPTimeout       time.Duration
	RequestsPerMinute int
	ProfileSource     ProfileSource
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	limiter       *rate.Limiter
	profileSource ProfileSource
	perPage       int
	logger        logrus.FieldLogger
}

// userQuery fetches the profile fields the report needs.
type userQuery struct {
	User struct {
		DatabaseID int64   `graphql:"databaseId"`
		Login      string  `graphql:"login"`
		Name       *string `graphql:"name"`
		AvatarURL  string  `graphql:"avatarUrl"`
		URL        string  `graphql:"url"`
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(cfg Config, logger logrus.FieldLogger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(maxSecondaryRateLimitSleep, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	graphqlClient := githubv4.NewClient(httpClient)
	if !isDotCom(cfg.BaseURL) {
		restClient, err = restClient.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise URL %q: %w", cfg.BaseURL, err)
		}
		graphqlClient = githubv4.NewEnterpriseClient(graphqlEndpoint(cfg.BaseURL), httpClient)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}

	profileSource := cfg.ProfileSource
	if profileSource == "" {
		profileSource = ProfileSourceREST
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		limiter:       limiter,
		profileSource: profileSource,
		perPage:       defaultPerPage,
		logger:        logger,
	}, nil
}

// isDotCom reports whether baseURL points at the public github.com API.
func isDotCom(baseURL string) bool {
	return baseURL == "" || strings.TrimSuffix(baseURL, "/") == "https://api.github.com"
}

// graphqlEndpoint derives the GraphQL endpoint of an Enterprise Server from its REST root,
// e.g. https://ghe.example.com/api/v3 -> https://ghe.example.com/api/graphql.
func graphqlEndpoint(baseURL string) string {
	url := strings.TrimSuffix(baseURL, "/")
	url = strings.TrimSuffix(url, "/api/v3")
	url = strings.TrimSuffix(url, "/api")
	return url + "/api/graphql"
}

func (g *GitHubGateway) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for request budget: %w", err)
	}
	return nil
}

func (g *GitHubGateway) ListOrgRepositories(ctx context.Context, org string, page int) ([]domain.Repository, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	opts := &github.RepositoryListByOrgOptions{ListOptions: github.ListOptions{Page: page, PerPage: g.perPage}}
	repos, _, err := g.restClient.Repositories.ListByOrg(ctx, org, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories with REST API: %w", err)
	}
	g.logger.Debugf("  Fetched page %d of repositories (%d items)", page, len(repos))

	result := make([]domain.Repository, 0, len(repos))
	for _, r := range repos {
		if r == nil {
			continue
		}
		result = append(result, domain.Repository{
			ID:       r.GetID(),
			Name:     r.GetName(),
			FullName: r.GetFullName(),
			Owner:    r.GetOwner().GetLogin(),
			OwnerID:  r.GetOwner().GetID(),
			Fork:     r.GetFork(),
			HTMLURL:  r.GetHTMLURL(),
		})
	}
	return result, nil
}

func (g *GitHubGateway) GetContributorStats(ctx context.Context, owner, repo string) ([]domain.ContributorStat, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	stats, _, err := g.restClient.Repositories.ListContributorsStats(ctx, owner, repo)
	if err != nil {
		var accepted *github.AcceptedError
		if errors.As(err, &accepted) {
			return nil, ErrStatsComputing
		}
		return nil, fmt.Errorf("failed to get contributor stats with REST API: %w", err)
	}

	result := make([]domain.ContributorStat, 0, len(stats))
	for _, s := range stats {
		if s == nil {
			continue
		}
		author := s.GetAuthor()
		weeks := make([]domain.WeeklyActivity, 0, len(s.Weeks))
		for _, w := range s.Weeks {
			if w == nil {
				continue
			}
			weeks = append(weeks, domain.WeeklyActivity{
				Week:      w.GetWeek().Time,
				Additions: w.GetAdditions(),
				Deletions: w.GetDeletions(),
				Commits:   w.GetCommits(),
			})
		}
		result = append(result, domain.ContributorStat{
			Author: domain.Identity{
				ID:        author.GetID(),
				Login:     author.GetLogin(),
				AvatarURL: author.GetAvatarURL(),
				HTMLURL:   author.GetHTMLURL(),
			},
			Total: s.GetTotal(),
			Weeks: weeks,
		})
	}
	return result, nil
}

func (g *GitHubGateway) GetUser(ctx context.Context, login string) (*domain.Identity, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	if g.profileSource == ProfileSourceGraphQL {
		return g.getUserGraphQL(ctx, login)
	}

	user, _, err := g.restClient.Users.Get(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("failed to get user with REST API: %w", err)
	}
	return &domain.Identity{
		ID:        user.GetID(),
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		AvatarURL: user.GetAvatarURL(),
		HTMLURL:   user.GetHTMLURL(),
		Resolved:  true,
	}, nil
}

func (g *GitHubGateway) getUserGraphQL(ctx context.Context, login string) (*domain.Identity, error) {
	var q userQuery
	variables := map[string]interface{}{"login": githubv4.String(login)}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for user: %w", err)
	}
	if q.User.Login == "" {
		return nil, fmt.Errorf("failed to execute GraphQL query for user: %q not found", login)
	}
	identity := &domain.Identity{
		ID:        q.User.DatabaseID,
		Login:     q.User.Login,
		AvatarURL: q.User.AvatarURL,
		HTMLURL:   q.User.URL,
		Resolved:  true,
	}
	if q.User.Name != nil {
		identity.Name = *q.User.Name
	}
	return identity, nil
}
