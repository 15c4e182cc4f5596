package commits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/panbanda/commitscope/pkg/models"
)

func TestSummarize(t *testing.T) {
	records := []models.ChangeRecord{
		rec("c1", "index.html", "html", 2*time.Hour, 10),
		rec("c1", "main.js", "js", 2*time.Hour, 20),
		rec("c2", "main.js", "js", 26*time.Hour, 30),
	}

	ov := Summarize(records)
	assert.Equal(t, 2, ov.Files)
	assert.Equal(t, 2, ov.Types)
	assert.Equal(t, 3, ov.Records)
	assert.Equal(t, 2, ov.Commits)
	assert.Equal(t, 60, ov.TotalLines)
	assert.Equal(t, day.Add(2*time.Hour), ov.First)
	assert.Equal(t, day.Add(26*time.Hour), ov.Last)
	assert.Equal(t, 30.0, ov.PerCommit.Mean)
	assert.Equal(t, "js", ov.BusiestType)
}

func TestSummarize_Empty(t *testing.T) {
	ov := Summarize(nil)
	assert.Equal(t, 0, ov.Commits)
	assert.True(t, ov.First.IsZero())
	assert.Equal(t, "", ov.BusiestType)
}
