package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/org-contributors/internal/domain"
)

// Summary holds headline figures of a run.
type Summary struct {
	Contributors                int     `json:"contributors"`
	Repositories                int     `json:"repositories"`
	Commits                     int     `json:"commits"`
	MeanCommitsPerContributor   float64 `json:"mean_commits_per_contributor"`
	MedianCommitsPerContributor float64 `json:"median_commits_per_contributor"`
	MeanCommitsPerRepository    float64 `json:"mean_commits_per_repository"`
	MedianCommitsPerRepository  float64 `json:"median_commits_per_repository"`
}

// Document is the JSON representation of a run.
type Document struct {
	Summary Summary        `json:"summary"`
	Result  *domain.Result `json:"result"`
}

// Summarize computes the headline figures of result.
func Summarize(result *domain.Result) Summary {
	perContributor := make(stats.Float64Data, 0, len(result.Contributors))
	for _, c := range result.Contributors {
		perContributor = append(perContributor, float64(c.Commits))
	}
	perRepo := make(stats.Float64Data, 0, len(result.Repos))
	for _, r := range result.Repos {
		perRepo = append(perRepo, float64(r.Commits))
	}

	return Summary{
		Contributors:                len(result.Contributors),
		Repositories:                len(result.Repos),
		Commits:                     result.Commits,
		MeanCommitsPerContributor:   describe(perContributor, stats.Mean),
		MedianCommitsPerContributor: describe(perContributor, stats.Median),
		MeanCommitsPerRepository:    describe(perRepo, stats.Mean),
		MedianCommitsPerRepository:  describe(perRepo, stats.Median),
	}
}

// describe applies fn to data rounded to two decimals; empty input yields 0.
func describe(data stats.Float64Data, fn func(stats.Float64Data) (float64, error)) float64 {
	if data.Len() == 0 {
		return 0
	}
	v, err := fn(data)
	if err != nil {
		return 0
	}
	rounded, err := stats.Round(v, 2)
	if err != nil {
		return 0
	}
	return rounded
}

// RenderJSON writes result and its summary to w as indented JSON.
func RenderJSON(w io.Writer, result *domain.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Summary: Summarize(result), Result: result}); err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	return nil
}
