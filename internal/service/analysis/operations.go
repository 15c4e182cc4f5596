package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/panbanda/commitscope/pkg/analyzer/commits"
	"github.com/panbanda/commitscope/pkg/analyzer/projects"
	"github.com/panbanda/commitscope/pkg/models"
)

// CommitsOptions configures Commits. Progress, when set, moves the window
// end to that percentage of the commit time extent.
type CommitsOptions struct {
	Window   commits.Window
	Progress *float64
}

// CommitsResult is the aggregated, window-filtered commit list.
type CommitsResult struct {
	Window    commits.Window         `json:"window"`
	Total     int                    `json:"total"`
	Summaries []models.CommitSummary `json:"summaries"`
}

// ConfiguredWindow returns the window from the configuration.
func (s *Service) ConfiguredWindow() (commits.Window, error) {
	from, until, err := s.config.Window.Bounds()
	if err != nil {
		return commits.Window{}, err
	}
	return commits.Window{From: from, Until: until}, nil
}

// Commits aggregates records into commit summaries and applies the window.
func (s *Service) Commits(records []models.ChangeRecord, opts CommitsOptions) CommitsResult {
	summaries := commits.Aggregate(records)
	w := opts.Window
	if opts.Progress != nil {
		w = w.Progress(summaries, *opts.Progress)
	}
	return CommitsResult{
		Window:    w,
		Total:     len(summaries),
		Summaries: commits.FilterByWindow(summaries, w),
	}
}

// RollupKeys lists the groupings accepted by Rollup.
var RollupKeys = []string{"type", "file", "commit", "year", "date", "hour"}

// RollupOptions configures Rollup. Sum totals lines; otherwise records
// are counted.
type RollupOptions struct {
	By  string
	Sum bool
}

// UnknownRollupKeyError reports an unsupported grouping.
type UnknownRollupKeyError struct {
	Key string
}

func (e *UnknownRollupKeyError) Error() string {
	return fmt.Sprintf("unknown rollup key %q (want one of %s)", e.Key, strings.Join(RollupKeys, ", "))
}

func rollupKeyFunc(by string) (func(models.ChangeRecord) string, error) {
	switch strings.ToLower(by) {
	case "", "type":
		return models.ChangeRecord.TypeLabel, nil
	case "file":
		return func(r models.ChangeRecord) string { return r.File }, nil
	case "commit":
		return func(r models.ChangeRecord) string { return r.CommitID }, nil
	case "year":
		return func(r models.ChangeRecord) string { return strconv.Itoa(r.Timestamp.Year()) }, nil
	case "date":
		return func(r models.ChangeRecord) string { return r.Timestamp.Format("2006-01-02") }, nil
	case "hour":
		return func(r models.ChangeRecord) string { return fmt.Sprintf("%02d", r.Timestamp.Hour()) }, nil
	}
	return nil, &UnknownRollupKeyError{Key: by}
}

// Rollup groups records by the requested key in first-seen order.
func (s *Service) Rollup(records []models.ChangeRecord, opts RollupOptions) (*commits.Rollup[string, int], error) {
	key, err := rollupKeyFunc(opts.By)
	if err != nil {
		return nil, err
	}
	reduce := commits.Count[models.ChangeRecord]()
	if opts.Sum {
		reduce = commits.Sum(func(r models.ChangeRecord) int { return r.LinesChanged })
	}
	return commits.RollupByKey(records, key, reduce), nil
}

// SelectResult is a brush selection over window-filtered commits.
type SelectResult struct {
	Brush     commits.Brush          `json:"brush"`
	Selection commits.Selection      `json:"selection"`
	Summaries []models.CommitSummary `json:"-"`
}

// Select aggregates records, applies the window and selects under brush.
func (s *Service) Select(records []models.ChangeRecord, w commits.Window, brush commits.Brush) SelectResult {
	summaries := commits.FilterByWindow(commits.Aggregate(records), w)
	return SelectResult{
		Brush:     brush,
		Selection: commits.Select(summaries, brush),
		Summaries: summaries,
	}
}

// Overview summarises the records inside the window.
func (s *Service) Overview(records []models.ChangeRecord, w commits.Window) commits.Overview {
	if w.IsZero() {
		return commits.Summarize(records)
	}
	inside := make([]models.ChangeRecord, 0, len(records))
	keep := make(map[string]bool)
	for _, sum := range commits.FilterByWindow(commits.Aggregate(records), w) {
		keep[sum.CommitID] = true
	}
	for _, r := range records {
		if keep[r.CommitID] {
			inside = append(inside, r)
		}
	}
	return commits.Summarize(inside)
}

// Projects filters the project list and rolls it up per year.
func (s *Service) Projects(list []models.Project, f projects.Filter) projects.Result {
	return projects.View(list, f)
}
