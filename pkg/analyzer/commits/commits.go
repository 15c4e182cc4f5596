// Package commits groups file-level change records into per-commit
// summaries and derives the filtered and rolled-up views a commit
// history chart is drawn from. Every function is pure: it reads its
// arguments and returns fresh values.
package commits

import (
	"sort"
	"time"

	"github.com/panbanda/commitscope/pkg/models"
	"github.com/panbanda/commitscope/pkg/stats"
)

type group struct {
	summary models.CommitSummary
	hours   []float64
	types   map[string]int // type -> index into summary.ByType
	files   map[string]struct{}
}

// Aggregate derives one summary per distinct commit id. Summaries are
// returned in order of each commit's first appearance in records.
func Aggregate(records []models.ChangeRecord) []models.CommitSummary {
	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, r := range records {
		g, ok := groups[r.CommitID]
		if !ok {
			g = &group{
				summary: models.CommitSummary{
					CommitID:  r.CommitID,
					Timestamp: r.Timestamp,
					ByType:    models.TypeTotals{},
					Files:     []string{},
				},
				types: make(map[string]int),
				files: make(map[string]struct{}),
			}
			groups[r.CommitID] = g
			order = append(order, r.CommitID)
		}

		s := &g.summary
		s.Records++
		s.TotalLines += r.LinesChanged
		if r.Timestamp.Before(s.Timestamp) {
			s.Timestamp = r.Timestamp
		}
		g.hours = append(g.hours, models.FractionalHour(r.Timestamp))

		typ := r.TypeLabel()
		if idx, ok := g.types[typ]; ok {
			s.ByType[idx].Lines += r.LinesChanged
		} else {
			g.types[typ] = len(s.ByType)
			s.ByType = append(s.ByType, models.TypeLines{Type: typ, Lines: r.LinesChanged})
		}

		if _, ok := g.files[r.File]; !ok {
			g.files[r.File] = struct{}{}
			s.Files = append(s.Files, r.File)
		}
	}

	summaries := make([]models.CommitSummary, 0, len(order))
	for _, id := range order {
		g := groups[id]
		g.summary.TimeOfDayFraction = stats.Mean(g.hours)
		summaries = append(summaries, g.summary)
	}
	return summaries
}

// FilterByTime returns the summaries at or before cutoff, in their
// original order. Unlike Window, a zero cutoff is a real instant and
// keeps nothing.
func FilterByTime(summaries []models.CommitSummary, cutoff time.Time) []models.CommitSummary {
	filtered := make([]models.CommitSummary, 0, len(summaries))
	for _, s := range summaries {
		if !s.Timestamp.After(cutoff) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// FilterByWindow returns the summaries inside w, in their original order.
func FilterByWindow(summaries []models.CommitSummary, w Window) []models.CommitSummary {
	filtered := make([]models.CommitSummary, 0, len(summaries))
	for _, s := range summaries {
		if w.Contains(s.Timestamp) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// Extent returns the earliest and latest summary timestamps.
func Extent(summaries []models.CommitSummary) (first, last time.Time, ok bool) {
	for i, s := range summaries {
		if i == 0 || s.Timestamp.Before(first) {
			first = s.Timestamp
		}
		if i == 0 || s.Timestamp.After(last) {
			last = s.Timestamp
		}
	}
	return first, last, len(summaries) > 0
}

// TotalLines sums LinesChanged over records.
func TotalLines(records []models.ChangeRecord) int {
	total := 0
	for _, r := range records {
		total += r.LinesChanged
	}
	return total
}

// Largest returns the n summaries with the most lines, in their original
// order. Ties keep the earlier summary. n <= 0 or n >= len returns all.
func Largest(summaries []models.CommitSummary, n int) []models.CommitSummary {
	if n <= 0 || n >= len(summaries) {
		return summaries
	}
	idx := make([]int, len(summaries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return summaries[idx[a]].TotalLines > summaries[idx[b]].TotalLines
	})
	keep := idx[:n]
	sort.Ints(keep)

	out := make([]models.CommitSummary, n)
	for i, j := range keep {
		out[i] = summaries[j]
	}
	return out
}
