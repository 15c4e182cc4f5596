package models

import "time"

// TypeLines is the number of lines changed for one type label.
type TypeLines struct {
	Type  string `json:"type"`
	Lines int    `json:"lines"`
}

// TypeTotals holds per-type line totals in first-seen order.
type TypeTotals []TypeLines

// Get returns the total for a type, or 0 if absent.
func (t TypeTotals) Get(typ string) int {
	for _, tl := range t {
		if tl.Type == typ {
			return tl.Lines
		}
	}
	return 0
}

// Keys returns the type labels in order.
func (t TypeTotals) Keys() []string {
	keys := make([]string, len(t))
	for i, tl := range t {
		keys[i] = tl.Type
	}
	return keys
}

// Map returns the totals as a map.
func (t TypeTotals) Map() map[string]int {
	m := make(map[string]int, len(t))
	for _, tl := range t {
		m[tl.Type] = tl.Lines
	}
	return m
}

// Dominant returns the type with the most lines. Ties go to the first seen.
func (t TypeTotals) Dominant() string {
	best := -1
	label := ""
	for _, tl := range t {
		if tl.Lines > best {
			best = tl.Lines
			label = tl.Type
		}
	}
	return label
}

// CommitSummary is derived from all change records sharing a commit id.
type CommitSummary struct {
	CommitID          string     `json:"commit"`
	Timestamp         time.Time  `json:"timestamp"` // earliest record
	TotalLines        int        `json:"total_lines"`
	TimeOfDayFraction float64    `json:"time_of_day"` // mean fractional hour, [0,24)
	ByType            TypeTotals `json:"by_type"`
	Records           int        `json:"records"`
	Files             []string   `json:"files"`
}
