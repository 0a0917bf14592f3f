package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/naka-gawa/org-contributors/internal/domain"
)

// PrintSummary renders the top contributors of result as a terminal table.
func PrintSummary(w io.Writer, result *domain.Result, top int) error {
	contributors := result.Contributors
	if top > 0 && len(contributors) > top {
		contributors = contributors[:top]
	}

	data := pterm.TableData{{"#", "username", "name", "commits", "%"}}
	for i, c := range contributors {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			c.Login,
			c.Name,
			strconv.Itoa(c.Commits),
			strconv.Itoa(Percent(c.Commits, result.Commits)),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render summary table: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n%d contributors, %d repositories, %d commits\n",
		table, len(result.Contributors), len(result.Repos), result.Commits)
	return err
}
