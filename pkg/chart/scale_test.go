package chart

import (
	"math"
	"testing"
	"time"
)

func TestLinearScale_Map(t *testing.T) {
	s := NewLinearScale(0, 24, 460, 0)
	tests := []struct {
		in, want float64
	}{
		{0, 460},
		{24, 0},
		{12, 230},
	}
	for _, tt := range tests {
		if got := s.Map(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Map(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got := s.Invert(s.Map(tt.in)); math.Abs(got-tt.in) > 1e-9 {
			t.Errorf("Invert(Map(%v)) = %v", tt.in, got)
		}
	}
}

func TestLinearScale_Degenerate(t *testing.T) {
	s := NewLinearScale(5, 5, 0, 100)
	if got := s.Map(5); got != 50 {
		t.Errorf("Map() on degenerate domain = %v, want 50", got)
	}
}

func TestLinearScale_Nice(t *testing.T) {
	s := NewLinearScale(0.7, 23.2, 0, 1).Nice(10)
	if s.D0 != 0 || s.D1 != 24 {
		t.Errorf("Nice() domain = [%v, %v], want [0, 24]", s.D0, s.D1)
	}

	r := NewLinearScale(97, 3, 0, 1).Nice(10)
	if r.D0 != 100 || r.D1 != 0 {
		t.Errorf("Nice() reversed domain = [%v, %v], want [100, 0]", r.D0, r.D1)
	}
}

func TestLinearScale_Ticks(t *testing.T) {
	ticks := NewLinearScale(0, 24, 0, 1).Ticks(6)
	want := []float64{0, 5, 10, 15, 20}
	if len(ticks) != len(want) {
		t.Fatalf("Ticks() = %v, want %v", ticks, want)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("Ticks()[%d] = %v, want %v", i, ticks[i], want[i])
		}
	}
}

func TestTimeScale(t *testing.T) {
	from := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)
	until := from.Add(48 * time.Hour)
	s := NewTimeScale(from, until, 0, 800)

	if got := s.Map(from.Add(24 * time.Hour)); math.Abs(got-400) > 1e-6 {
		t.Errorf("Map(midpoint) = %v, want 400", got)
	}
	if got := s.Invert(200); got.Sub(from.Add(12*time.Hour)).Abs() > time.Millisecond {
		t.Errorf("Invert(200) = %v, want %v", got, from.Add(12*time.Hour))
	}
}

func TestTimeScale_Nice(t *testing.T) {
	from := time.Date(2025, 2, 4, 9, 30, 0, 0, time.UTC)
	until := time.Date(2025, 2, 6, 14, 0, 0, 0, time.UTC)
	lo, hi := NewTimeScale(from, until, 0, 1).Nice().Domain()

	if !lo.Equal(time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Nice() lower = %v", lo)
	}
	if !hi.Equal(time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Nice() upper = %v", hi)
	}
}

func TestSqrtScale(t *testing.T) {
	s := NewSqrtScale(0, 100, 0, 10)
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{25, 5},
		{100, 10},
		{-4, 0},
	}
	for _, tt := range tests {
		if got := s.Map(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Map(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPalette_Ordinal(t *testing.T) {
	p := NewPalette()
	if got := p.Color("js"); got != Tableau10[0] {
		t.Errorf("first color = %s, want %s", got, Tableau10[0])
	}
	if got := p.Color("css"); got != Tableau10[1] {
		t.Errorf("second color = %s, want %s", got, Tableau10[1])
	}
	if got := p.Color("js"); got != Tableau10[0] {
		t.Errorf("repeat color = %s, want %s", got, Tableau10[0])
	}

	small := NewPalette("#000", "#fff")
	small.Color("a")
	small.Color("b")
	if got := small.Color("c"); got != "#000" {
		t.Errorf("cycled color = %s, want #000", got)
	}
}

func TestPalette_Stable(t *testing.T) {
	a := NewStablePalette()
	b := NewStablePalette()
	b.Color("css")
	for _, key := range []string{"js", "go", "other"} {
		if a.Color(key) != b.Color(key) {
			t.Errorf("stable color for %q differs between palettes", key)
		}
	}
}
