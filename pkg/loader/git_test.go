package loader

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/commitscope/internal/testutil"
	"github.com/panbanda/commitscope/internal/vcs"
	"github.com/panbanda/commitscope/pkg/analyzer/commits"
	"github.com/panbanda/commitscope/pkg/models"
)

var gitBase = time.Date(2025, 2, 4, 9, 0, 0, 0, time.UTC)

func newHistoryRepo(t *testing.T) string {
	t.Helper()
	r := testutil.NewGitRepo(t)
	r.Commit("initial", gitBase, map[string]string{
		"app.js":    "a\nb\nc\n",
		"style.css": "x\n",
	})
	r.Commit("grow", gitBase.Add(5*time.Hour), map[string]string{
		"app.js": "a\nb\nc\nd\ne\n",
	})
	r.Commit("vendor", gitBase.Add(24*time.Hour), map[string]string{
		"vendor/lib/dep.js": "v\n",
		"README":            "hello\n",
	})
	return r.Dir
}

func TestGitLoader_GoGit(t *testing.T) {
	dir := newHistoryRepo(t)

	records, err := NewGitLoader(WithOpener(vcs.NewGitOpener()), WithWorkers(2)).Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, records, 5)

	// Newest commit first.
	assert.True(t, records[0].Timestamp.Equal(gitBase.Add(24*time.Hour)))
	assert.True(t, records[len(records)-1].Timestamp.Equal(gitBase))

	byFile := map[string]int{}
	types := map[string]string{}
	for _, r := range records {
		byFile[r.File] += r.LinesChanged
		types[r.File] = r.Type
	}
	assert.Equal(t, 5, byFile["app.js"])
	assert.Equal(t, 1, byFile["style.css"])
	assert.Equal(t, "js", types["app.js"])
	assert.Equal(t, "css", types["style.css"])
	assert.Equal(t, "other", types["README"])

	summaries := commits.Aggregate(records)
	require.Len(t, summaries, 3)
	assert.Equal(t, 4, summaries[2].TotalLines)
	assert.Equal(t, 9.0, summaries[2].TimeOfDayFraction)
}

func TestGitLoader_SkipVendorAndSince(t *testing.T) {
	dir := newHistoryRepo(t)

	records, err := NewGitLoader(
		WithOpener(vcs.NewGitOpener()),
		WithSkipVendor(true),
		WithSince(gitBase.Add(12*time.Hour)),
	).Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "README", records[0].File)
}

func TestGitLoader_Until(t *testing.T) {
	dir := newHistoryRepo(t)

	records, err := NewGitLoader(
		WithOpener(vcs.NewGitOpener()),
		WithUntil(gitBase.Add(12*time.Hour)),
	).Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, commits.Aggregate(records), 2)
	for _, r := range records {
		assert.False(t, r.Timestamp.After(gitBase.Add(12*time.Hour)), r.File)
	}
}

func TestGitLoader_WindowUsesAuthorTime(t *testing.T) {
	r := testutil.NewGitRepo(t)
	r.Commit("early", gitBase, map[string]string{"a.go": "a\n"})
	// Authored inside the window, rebased two days later.
	r.CommitAt("rebased", gitBase.Add(2*time.Hour), gitBase.Add(48*time.Hour), map[string]string{"b.go": "b\n"})
	// Authored before the window, committed inside it.
	r.CommitAt("old", gitBase.Add(-48*time.Hour), gitBase.Add(3*time.Hour), map[string]string{"c.go": "c\n"})

	loaders := map[string][]GitOption{
		"go-git": {WithOpener(vcs.NewGitOpener())},
	}
	if nativeGitAvailable() {
		loaders["native"] = []GitOption{WithNativeGit(true)}
	}
	for name, base := range loaders {
		t.Run(name, func(t *testing.T) {
			opts := append([]GitOption{
				WithSince(gitBase.Add(time.Hour)),
				WithUntil(gitBase.Add(12 * time.Hour)),
			}, base...)
			records, err := NewGitLoader(opts...).Load(context.Background(), r.Dir)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "b.go", records[0].File)
			assert.True(t, records[0].Timestamp.Equal(gitBase.Add(2*time.Hour)))
		})
	}
}

func TestGitLoader_NativeMatchesGoGit(t *testing.T) {
	if !nativeGitAvailable() {
		t.Skip("git binary not available")
	}
	dir := newHistoryRepo(t)

	native, err := NewGitLoader(WithNativeGit(true)).Load(context.Background(), dir)
	require.NoError(t, err)
	goGit, err := NewGitLoader(WithOpener(vcs.NewGitOpener())).Load(context.Background(), dir)
	require.NoError(t, err)

	key := func(records []models.ChangeRecord) []string {
		out := make([]string, len(records))
		for i, r := range records {
			out[i] = r.CommitID + " " + r.File + " " + r.Type + " " + strconv.Itoa(r.LinesChanged)
		}
		return out
	}
	assert.ElementsMatch(t, key(goGit), key(native))
	require.NotEmpty(t, native)
	assert.True(t, native[0].Timestamp.Equal(gitBase.Add(24*time.Hour)))
}

func TestGitLoader_EmptyRepo(t *testing.T) {
	dir := testutil.NewGitRepo(t).Dir

	records, err := NewGitLoader(WithOpener(vcs.NewGitOpener())).Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGitLoader_NotARepo(t *testing.T) {
	_, err := NewGitLoader(WithOpener(vcs.NewGitOpener())).Load(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestGitLoader_ParseNumstat(t *testing.T) {
	out := strings.Join([]string{
		"abc123|2025-02-04T14:00:00+01:00",
		"",
		"10\t2\tsrc/main.go",
		"-\t-\tlogo.png",
		"0\t0\tempty.txt",
		"def456|2025-02-03T08:30:00Z",
		"",
		"3\t0\tvendor/x/y.go",
		"1\t1\tMakefile",
	}, "\n")

	records, err := NewGitLoader(WithSkipVendor(true)).parseNumstat(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "abc123", records[0].CommitID)
	assert.Equal(t, "src/main.go", records[0].File)
	assert.Equal(t, "go", records[0].Type)
	assert.Equal(t, 12, records[0].LinesChanged)
	assert.Equal(t, 14, records[0].Timestamp.Hour())

	assert.Equal(t, "def456", records[1].CommitID)
	assert.Equal(t, "Makefile", records[1].File)
	assert.Equal(t, 2, records[1].LinesChanged)
}

func TestGitLoader_ParseNumstatBadDate(t *testing.T) {
	_, err := NewGitLoader().parseNumstat(strings.NewReader("abc|yesterday\n1\t1\ta.go\n"))
	assert.Error(t, err)
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		path string
		mode TypeMode
		want string
	}{
		{"src/app.js", TypeByExtension, "js"},
		{"STYLE.CSS", TypeByExtension, "css"},
		{"README", TypeByExtension, "other"},
		{"main.go", TypeByLanguage, "go"},
		{"lib/app.py", TypeByLanguage, "python"},
		{"data.zzqq", TypeByLanguage, "zzqq"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectType(tt.path, tt.mode); got != tt.want {
				t.Errorf("DetectType(%q, %q) = %q, want %q", tt.path, tt.mode, got, tt.want)
			}
		})
	}
}

func TestParseTypeMode(t *testing.T) {
	for in, want := range map[string]TypeMode{"": TypeByExtension, "Extension": TypeByExtension, "language": TypeByLanguage} {
		got, ok := ParseTypeMode(in)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := ParseTypeMode("mime")
	assert.False(t, ok)
}
