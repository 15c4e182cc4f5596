package commits

import (
	"time"

	"github.com/panbanda/commitscope/pkg/models"
	"github.com/panbanda/commitscope/pkg/stats"
)

// Overview summarises a record set as a whole.
type Overview struct {
	Files       int            `json:"files"`
	Types       int            `json:"types"`
	Records     int            `json:"records"`
	Commits     int            `json:"commits"`
	TotalLines  int            `json:"total_lines"`
	First       time.Time      `json:"first,omitempty"`
	Last        time.Time      `json:"last,omitempty"`
	PerCommit   stats.Describe `json:"per_commit"`
	BusiestType string         `json:"busiest_type,omitempty"`
}

// Summarize builds the overview for records.
func Summarize(records []models.ChangeRecord) Overview {
	files := make(map[string]struct{})
	for _, r := range records {
		files[r.File] = struct{}{}
	}

	summaries := Aggregate(records)
	byType := LinesByType(records)

	ov := Overview{
		Files:      len(files),
		Types:      byType.Len(),
		Records:    len(records),
		Commits:    len(summaries),
		TotalLines: TotalLines(records),
	}
	ov.First, ov.Last, _ = Extent(summaries)

	totals := make([]float64, len(summaries))
	for i, s := range summaries {
		totals[i] = float64(s.TotalLines)
	}
	ov.PerCommit = stats.Summarize(totals)

	busiest := -1
	for _, e := range byType.Entries() {
		if e.Value > busiest {
			busiest = e.Value
			ov.BusiestType = e.Key
		}
	}
	return ov
}
