package commits

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/commitscope/pkg/models"
)

func TestRollupByKey_CountPerType(t *testing.T) {
	var records []models.ChangeRecord
	for _, typ := range []string{"js", "js", "css", "js", "css"} {
		records = append(records, rec("c1", "f", typ, time.Hour, 1))
	}

	got := RollupByKey(records, func(r models.ChangeRecord) string { return r.Type }, Count[models.ChangeRecord]())

	assert.Equal(t, map[string]int{"js": 3, "css": 2}, got.Map())
	assert.Equal(t, []string{"js", "css"}, got.Keys())
	assert.Equal(t, 2, got.Len())
}

func TestRollupByKey_SumPerYear(t *testing.T) {
	records := []models.ChangeRecord{
		rec("c1", "a", "go", 0, 4),
		rec("c2", "a", "go", 400*24*time.Hour, 6),
		rec("c3", "a", "go", time.Hour, 1),
	}

	got := RollupByKey(records,
		func(r models.ChangeRecord) int { return r.Timestamp.Year() },
		Sum(func(r models.ChangeRecord) int { return r.LinesChanged }),
	)

	v, ok := got.Get(2025)
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	v, ok = got.Get(2026)
	assert.True(t, ok)
	assert.Equal(t, 6, v)
	_, ok = got.Get(1999)
	assert.False(t, ok)
	assert.Equal(t, []int{2025, 2026}, got.Keys())
}

func TestRollupByKey_Empty(t *testing.T) {
	got := RollupByKey([]string(nil), func(s string) string { return s }, Count[string]())
	assert.Equal(t, 0, got.Len())
	assert.Empty(t, got.Keys())

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestRollupByKey_CustomReducer(t *testing.T) {
	words := []string{"go", "gopher", "rust", "ruby", "git"}
	longest := func(group []string) string {
		best := ""
		for _, w := range group {
			if len(w) > len(best) {
				best = w
			}
		}
		return best
	}

	got := RollupByKey(words, func(s string) byte { return s[0] }, longest)
	assert.Equal(t, []Entry[byte, string]{{Key: 'g', Value: "gopher"}, {Key: 'r', Value: "rust"}}, got.Entries())
}

func TestRollup_MarshalJSONKeepsOrder(t *testing.T) {
	records := []models.ChangeRecord{
		rec("c1", "a", "css", 0, 2),
		rec("c1", "b", "js", 0, 3),
		rec("c2", "c", "css", 0, 4),
	}

	data, err := json.Marshal(LinesByType(records))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"css","value":6},{"key":"js","value":3}]`, string(data))
}

func TestCountByType_FallbackLabel(t *testing.T) {
	records := []models.ChangeRecord{
		rec("c1", "a", "", 0, 2),
		rec("c1", "b", "js", 0, 3),
	}
	got := CountByType(records)
	assert.Equal(t, []string{models.OtherType, "js"}, got.Keys())
}
