// Package progress draws a spinner on stderr while history loads.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker counts processed commits next to a spinner. A nil *Tracker is
// valid and does nothing, so callers never need to check whether progress
// output is enabled.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithWriter draws the spinner on w instead of stderr.
func WithWriter(w io.Writer) Option {
	return func(t *Tracker) {
		t.out = w
	}
}

// New starts a spinner labelled label.
func New(label string, opts ...Option) *Tracker {
	t := &Tracker{label: label, out: os.Stderr}
	for _, opt := range opts {
		opt(t)
	}
	t.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return t
}

// Tick counts one unit of work. Safe for concurrent use.
func (t *Tracker) Tick() {
	if t == nil {
		return
	}
	_ = t.bar.Add(1)
}

// Done clears the spinner. A non-nil err is reported on the same writer.
func (t *Tracker) Done(err error) {
	if t == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	if err != nil {
		fmt.Fprintf(t.out, "  %s failed: %v\n", t.label, err)
	}
}
