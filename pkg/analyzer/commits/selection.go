package commits

import (
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/commitscope/pkg/models"
)

// Brush is a rectangle over commit time and time of day. Zero time
// bounds are unbounded; a zero MaxHour means the end of the day.
type Brush struct {
	From    time.Time `json:"from,omitempty"`
	Until   time.Time `json:"until,omitempty"`
	MinHour float64   `json:"min_hour"`
	MaxHour float64   `json:"max_hour"`
}

// IsEmpty reports whether the brush is cleared. A cleared brush
// selects nothing.
func (b Brush) IsEmpty() bool {
	return b == Brush{}
}

// Contains reports whether a summary's mark falls inside the brush.
func (b Brush) Contains(s models.CommitSummary) bool {
	if b.IsEmpty() {
		return false
	}
	if !(Window{From: b.From, Until: b.Until}).Contains(s.Timestamp) {
		return false
	}
	maxHour := b.MaxHour
	if maxHour == 0 {
		maxHour = 24
	}
	return s.TimeOfDayFraction >= b.MinHour && s.TimeOfDayFraction <= maxHour
}

// TypeShare is one type's share of the selected lines.
type TypeShare struct {
	Type    string  `json:"type"`
	Lines   int     `json:"lines"`
	Percent float64 `json:"percent"` // rounded to one decimal
}

// Selection describes the commits inside a brush.
type Selection struct {
	Commits    int         `json:"commits"`
	TotalLines int         `json:"total_lines"`
	Shares     []TypeShare `json:"shares"`
	Indices    []uint32    `json:"indices"`

	selected *roaring.Bitmap
}

// IsSelected reports whether the summary at index i is in the selection.
func (s Selection) IsSelected(i int) bool {
	if s.selected == nil || i < 0 {
		return false
	}
	return s.selected.Contains(uint32(i))
}

// Select computes the selection of summaries under b. Indices refer to
// positions in summaries; shares keep first-seen type order.
func Select(summaries []models.CommitSummary, b Brush) Selection {
	sel := Selection{
		Shares:   []TypeShare{},
		Indices:  []uint32{},
		selected: roaring.New(),
	}
	if b.IsEmpty() {
		return sel
	}

	var totals models.TypeTotals
	pos := make(map[string]int)
	for i, s := range summaries {
		if !b.Contains(s) {
			continue
		}
		sel.selected.Add(uint32(i))
		sel.Commits++
		sel.TotalLines += s.TotalLines
		for _, tl := range s.ByType {
			if idx, ok := pos[tl.Type]; ok {
				totals[idx].Lines += tl.Lines
				continue
			}
			pos[tl.Type] = len(totals)
			totals = append(totals, tl)
		}
	}

	for _, tl := range totals {
		share := TypeShare{Type: tl.Type, Lines: tl.Lines}
		if sel.TotalLines > 0 {
			share.Percent = math.Round(float64(tl.Lines)/float64(sel.TotalLines)*1000) / 10
		}
		sel.Shares = append(sel.Shares, share)
	}
	sel.Indices = sel.selected.ToArray()
	return sel
}
