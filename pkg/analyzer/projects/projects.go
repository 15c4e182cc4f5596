// Package projects filters a portfolio project list and prepares the
// per-year breakdown shown next to it.
package projects

import (
	"strings"

	"github.com/panbanda/commitscope/pkg/analyzer/commits"
	"github.com/panbanda/commitscope/pkg/models"
)

// Filter is the search state of the project list. Values are never
// mutated; the With/Toggle methods return a new Filter.
type Filter struct {
	Query string `json:"query,omitempty"`
	Year  string `json:"year,omitempty"`
}

// WithQuery returns a copy of f with the search query replaced.
func (f Filter) WithQuery(q string) Filter {
	f.Query = q
	return f
}

// ToggleYear selects year, or clears the selection if year is already selected.
func (f Filter) ToggleYear(year string) Filter {
	if f.Year == year {
		f.Year = ""
	} else {
		f.Year = year
	}
	return f
}

// Matches reports whether p passes the filter.
func (f Filter) Matches(p models.Project) bool {
	if f.Year != "" && p.Year != f.Year {
		return false
	}
	return strings.Contains(p.SearchText(), strings.ToLower(f.Query))
}

// Apply returns the projects matching f in their original order.
func Apply(projects []models.Project, f Filter) []models.Project {
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Slice is one wedge of the per-year pie and its legend entry.
type Slice struct {
	Label    string `json:"label"`
	Value    int    `json:"value"`
	Selected bool   `json:"selected,omitempty"`
}

// ByYear counts projects per year in first-seen order.
func ByYear(projects []models.Project) []Slice {
	rollup := commits.RollupByKey(projects,
		func(p models.Project) string { return p.Year },
		commits.Count[models.Project](),
	)

	slices := make([]Slice, 0, rollup.Len())
	for _, e := range rollup.Entries() {
		slices = append(slices, Slice{Label: e.Key, Value: e.Value})
	}
	return slices
}

// Result is everything a re-render of the projects page needs.
type Result struct {
	Filter   Filter           `json:"filter"`
	Projects []models.Project `json:"projects"`
	Slices   []Slice          `json:"slices"`
}

// View applies f and rolls the remaining projects up per year,
// marking the selected year.
func View(projects []models.Project, f Filter) Result {
	filtered := Apply(projects, f)
	slices := ByYear(filtered)
	for i := range slices {
		slices[i].Selected = slices[i].Label == f.Year && f.Year != ""
	}
	return Result{Filter: f, Projects: filtered, Slices: slices}
}
