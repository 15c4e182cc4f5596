package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      int
		want   float64
	}{
		{name: "empty", sorted: nil, p: 50, want: 0},
		{name: "single", sorted: []float64{4}, p: 95, want: 4},
		{name: "median of five", sorted: []float64{1, 2, 3, 4, 5}, p: 50, want: 3},
		{name: "p100 clamps", sorted: []float64{1, 2, 3}, p: 100, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentile(tt.sorted, tt.p))
		})
	}
}

func TestSummarize(t *testing.T) {
	values := []float64{10, 2, 4, 4}
	d := Summarize(values)

	assert.Equal(t, 4, d.Count)
	assert.Equal(t, 20.0, d.Sum)
	assert.Equal(t, 5.0, d.Mean)
	assert.InDelta(t, 3.0, d.StdDev, 1e-9)
	assert.Equal(t, 2.0, d.Min)
	assert.Equal(t, 10.0, d.Max)
	assert.Equal(t, 4.0, d.P50)
	assert.Equal(t, []float64{10, 2, 4, 4}, values, "input must not be reordered")

	assert.Equal(t, Describe{}, Summarize(nil))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 12.5, Mean([]float64{10, 15}), 1e-9)
}
