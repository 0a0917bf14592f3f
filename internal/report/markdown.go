// Package report renders an aggregated organisation result into the documents the run writes.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/org-contributors/internal/domain"
)

const (
	DefaultServerURL       = "https://github.com"
	DefaultTopContributors = 15
	avatarSize             = "35"
)

// Options controls links and truncation of the rendered report.
type Options struct {
	ServerURL       string
	TopContributors int
}

func (o Options) withDefaults() Options {
	if o.ServerURL == "" {
		o.ServerURL = DefaultServerURL
	}
	o.ServerURL = strings.TrimSuffix(o.ServerURL, "/")
	if o.TopContributors <= 0 {
		o.TopContributors = DefaultTopContributors
	}
	return o
}

// Percent returns part as a whole percentage of whole, rounded half up. A zero whole yields 0.
func Percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	rounded, err := stats.Round(float64(part)/float64(whole)*100, 0)
	if err != nil {
		return 0
	}
	return int(rounded)
}

// RenderMarkdown writes the contributors report of result to w.
func RenderMarkdown(w io.Writer, result *domain.Result, opts Options) error {
	opts = opts.withDefaults()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s\n\n", result.Organisation)

	fmt.Fprint(bw, "## All contributors\n\n")
	fmt.Fprint(bw, "| avatar | username | name | count | % of all commits |\n")
	fmt.Fprint(bw, "|--------|----------|------|---------|---|\n")
	for _, c := range result.Contributors {
		fmt.Fprintf(bw, "| ![](%s) | [%s](%s) | %s | %d | %d |\n",
			avatarURL(c.Identity),
			c.Login, profileURL(opts.ServerURL, c.Login),
			escapeCell(c.Name),
			c.Commits,
			Percent(c.Commits, result.Commits))
	}

	fmt.Fprint(bw, "\n## Repositories\n")
	for _, repo := range result.Repos {
		owner := repo.Owner
		if owner == "" {
			owner = result.Organisation
		}
		link := fmt.Sprintf("%s/%s/%s", opts.ServerURL, owner, repo.Name)
		fmt.Fprintf(bw, "\n### [%s](%s) ([%d commits](%s/graphs/contributors))\n\n", repo.Name, link, repo.Commits, link)

		contributors := repo.Contributors
		if len(contributors) > opts.TopContributors {
			contributors = contributors[:opts.TopContributors]
		}
		for _, c := range contributors {
			fmt.Fprintf(bw, "* [%s](%s) (%d %%)\n", c.Author.Login, profileURL(opts.ServerURL, c.Author.Login), Percent(c.Total, repo.Commits))
		}
	}

	return bw.Flush()
}

func profileURL(serverURL, login string) string {
	return serverURL + "/" + login
}

func avatarURL(identity domain.Identity) string {
	return fmt.Sprintf("https://avatars.githubusercontent.com/u/%d?s=%s&v=4", identity.ID, avatarSize)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
