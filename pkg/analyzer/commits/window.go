package commits

import (
	"time"

	"github.com/panbanda/commitscope/pkg/models"
)

// Window is an inclusive time range. A zero bound is unbounded.
type Window struct {
	From  time.Time `json:"from,omitempty"`
	Until time.Time `json:"until,omitempty"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.Until.IsZero() && t.After(w.Until) {
		return false
	}
	return true
}

// IsZero reports whether the window has no bounds.
func (w Window) IsZero() bool {
	return w.From.IsZero() && w.Until.IsZero()
}

// Progress returns a copy of w whose Until sits pct percent of the way
// through the summaries' time extent. pct is clamped to [0,100].
func (w Window) Progress(summaries []models.CommitSummary, pct float64) Window {
	first, last, ok := Extent(summaries)
	if !ok {
		return w
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	span := last.Sub(first)
	w.Until = first.Add(time.Duration(float64(span) * pct / 100))
	return w
}
