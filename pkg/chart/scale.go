// Package chart maps commit summaries and project slices onto go-echarts
// charts and renders them as standalone HTML.
package chart

import (
	"math"
	"time"
)

// LinearScale maps a continuous domain onto a continuous range.
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

// NewLinearScale creates a scale from domain [d0,d1] to range [r0,r1].
func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Map converts a domain value to the range. A degenerate domain maps to
// the middle of the range.
func (s LinearScale) Map(v float64) float64 {
	if s.D1 == s.D0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// Invert converts a range value back to the domain.
func (s LinearScale) Invert(r float64) float64 {
	if s.R1 == s.R0 {
		return s.D0
	}
	return s.D0 + (r-s.R0)/(s.R1-s.R0)*(s.D1-s.D0)
}

// Nice widens the domain so both ends land on multiples of a round tick
// step for roughly count ticks.
func (s LinearScale) Nice(count int) LinearScale {
	step := tickStep(s.D0, s.D1, count)
	if step == 0 {
		return s
	}
	lo, hi := s.D0, s.D1
	reversed := lo > hi
	if reversed {
		lo, hi = hi, lo
	}
	lo = math.Floor(lo/step) * step
	hi = math.Ceil(hi/step) * step
	if reversed {
		lo, hi = hi, lo
	}
	s.D0, s.D1 = lo, hi
	return s
}

// Ticks returns round values inside the domain, about count of them.
func (s LinearScale) Ticks(count int) []float64 {
	step := tickStep(s.D0, s.D1, count)
	if step == 0 {
		return []float64{s.D0}
	}
	lo, hi := math.Min(s.D0, s.D1), math.Max(s.D0, s.D1)
	var ticks []float64
	for i := math.Ceil(lo / step); i*step <= hi+step*1e-9; i++ {
		ticks = append(ticks, i*step)
	}
	return ticks
}

// tickStep picks a 1, 2 or 5 times power-of-ten step.
func tickStep(d0, d1 float64, count int) float64 {
	if count <= 0 {
		count = 10
	}
	span := math.Abs(d1 - d0)
	if span == 0 {
		return 0
	}
	raw := span / float64(count)
	power := math.Pow(10, math.Floor(math.Log10(raw)))
	switch ratio := raw / power; {
	case ratio >= 7.07:
		return 10 * power
	case ratio >= 3.16:
		return 5 * power
	case ratio >= 1.41:
		return 2 * power
	default:
		return power
	}
}

// TimeScale maps times onto a continuous range.
type TimeScale struct {
	linear LinearScale
}

// NewTimeScale creates a scale from [from,until] to [r0,r1].
func NewTimeScale(from, until time.Time, r0, r1 float64) TimeScale {
	return TimeScale{linear: NewLinearScale(unixSeconds(from), unixSeconds(until), r0, r1)}
}

// Map converts t to the range.
func (s TimeScale) Map(t time.Time) float64 {
	return s.linear.Map(unixSeconds(t))
}

// Invert converts a range value back to a UTC time.
func (s TimeScale) Invert(r float64) time.Time {
	return fromUnixSeconds(s.linear.Invert(r))
}

// Nice widens the domain outwards to whole UTC days.
func (s TimeScale) Nice() TimeScale {
	lo, hi := s.Domain()
	lo = lo.Truncate(24 * time.Hour)
	if t := hi.Truncate(24 * time.Hour); !t.Equal(hi) {
		hi = t.Add(24 * time.Hour)
	}
	s.linear.D0, s.linear.D1 = unixSeconds(lo), unixSeconds(hi)
	return s
}

// Domain returns the domain bounds.
func (s TimeScale) Domain() (time.Time, time.Time) {
	return fromUnixSeconds(s.linear.D0), fromUnixSeconds(s.linear.D1)
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

func fromUnixSeconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC()
}

// SqrtScale maps a value's square root linearly, so mark area grows
// with the value.
type SqrtScale struct {
	linear LinearScale
}

// NewSqrtScale creates a square-root scale. Negative inputs clamp to zero.
func NewSqrtScale(d0, d1, r0, r1 float64) SqrtScale {
	return SqrtScale{linear: NewLinearScale(sqrt0(d0), sqrt0(d1), r0, r1)}
}

// Map converts v to the range.
func (s SqrtScale) Map(v float64) float64 {
	return s.linear.Map(sqrt0(v))
}

func sqrt0(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
