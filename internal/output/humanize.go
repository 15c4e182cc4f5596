package output

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Number formats an integer with thousands separators.
func Number(n int) string {
	return humanize.Comma(int64(n))
}

// Lines formats a line count, e.g. "1,204 lines".
func Lines(n int) string {
	if n == 1 {
		return "1 line"
	}
	return Number(n) + " lines"
}

// Percent formats a percentage with one decimal.
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Date formats a commit time as a short weekday date.
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Mon 02 Jan 2006")
}

// DateTime formats a commit time to the minute.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

// Relative describes t relative to now, e.g. "3 days ago".
func Relative(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// Clock formats a fractional hour as HH:MM.
func Clock(hours float64) string {
	total := int(math.Round(hours * 60))
	total = ((total % (24 * 60)) + 24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
