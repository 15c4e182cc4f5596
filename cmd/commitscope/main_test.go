package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panbanda/commitscope/internal/service/analysis"
)

const testCSV = `file,type,commit,date,time,length
a.js,js,c1,2025-02-04,09:30:00,10
b.css,css,c1,2025-02-04,09:45:00,5
c.js,js,c2,2025-02-04,14:00:00,20
d.go,,c3,2025-02-06,22:15:00,7
`

func writeTestCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loc.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"commitscope", "--no-color", "--no-cache"}, args...))
	return out.String(), err
}

func TestCommitsCmdJSON(t *testing.T) {
	csv := writeTestCSV(t)
	out, err := run(t, "--csv", csv, "-f", "json", "commits")
	if err != nil {
		t.Fatalf("commits: %v", err)
	}

	var got analysis.CommitsResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Total != 3 || len(got.Summaries) != 3 {
		t.Fatalf("got %d of %d commits", len(got.Summaries), got.Total)
	}
	if got.Summaries[0].CommitID != "c1" || got.Summaries[0].TotalLines != 15 {
		t.Errorf("first = %+v", got.Summaries[0])
	}
}

func TestCommitsCmdWindow(t *testing.T) {
	csv := writeTestCSV(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"until", []string{"--until", "2025-02-05"}, 2},
		{"from", []string{"--from", "2025-02-05"}, 1},
		{"progress start", []string{"--progress", "0"}, 1},
		{"progress end", []string{"--progress", "100"}, 3},
		{"top", []string{"--top", "1"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--csv", csv, "-f", "json", "commits"}, tt.args...)
			out, err := run(t, args...)
			if err != nil {
				t.Fatal(err)
			}
			var got analysis.CommitsResult
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got.Summaries) != tt.want {
				t.Errorf("got %d summaries, want %d", len(got.Summaries), tt.want)
			}
		})
	}

	if _, err := run(t, "--csv", csv, "commits", "--from", "2025-02-05", "--until", "2025-02-01"); err == nil {
		t.Error("expected error for inverted window")
	}
}

func TestCommitsCmdText(t *testing.T) {
	out, err := run(t, "--csv", writeTestCSV(t), "commits")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Commits", "c1", "09:38", "15"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRollupCmd(t *testing.T) {
	csv := writeTestCSV(t)
	out, err := run(t, "--csv", csv, "-f", "json", "rollup", "--by", "type", "--sum")
	if err != nil {
		t.Fatal(err)
	}

	var got rollupData
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.By != "type" || got.Measure != "lines" || len(got.Groups) != 3 {
		t.Fatalf("got %+v", got)
	}
	if got.Groups[0].Key != "js" || got.Groups[0].Value != 30 {
		t.Errorf("first group = %+v", got.Groups[0])
	}
	if got.Groups[2].Key != "other" || got.Groups[2].Value != 7 {
		t.Errorf("last group = %+v", got.Groups[2])
	}

	if _, err := run(t, "--csv", csv, "rollup", "--by", "author"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestRollupCmdMarkdown(t *testing.T) {
	out, err := run(t, "--csv", writeTestCSV(t), "-f", "markdown", "rollup", "--by", "date")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "| 2025-02-04 |") {
		t.Errorf("markdown missing date row:\n%s", out)
	}
}

func TestSelectCmd(t *testing.T) {
	csv := writeTestCSV(t)
	out, err := run(t, "--csv", csv, "-f", "json", "select", "--min-hour", "9", "--max-hour", "15")
	if err != nil {
		t.Fatal(err)
	}

	var got analysis.SelectResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Selection.Commits != 2 || got.Selection.TotalLines != 35 {
		t.Errorf("selection = %+v", got.Selection)
	}
	if len(got.Selection.Shares) != 2 || got.Selection.Shares[0].Percent != 85.7 {
		t.Errorf("shares = %+v", got.Selection.Shares)
	}

	if _, err := run(t, "--csv", csv, "select", "--min-hour", "20", "--max-hour", "10"); err == nil {
		t.Error("expected error for inverted hours")
	}
}

func TestOverviewCmd(t *testing.T) {
	out, err := run(t, "--csv", writeTestCSV(t), "overview")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Overview", "42 lines", "Busiest type", "js"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProjectsCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	content := `[{"title": "Atlas", "year": "2024", "description": "maps"},
		{"title": "Bloom", "year": 2023},
		{"title": "Compass", "year": "2024", "description": "maps again"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "-f", "json", "projects", "--projects", path, "--query", "MAPS")
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Projects []struct {
			Title string `json:"title"`
		} `json:"projects"`
		Slices []struct {
			Label string `json:"label"`
			Value int    `json:"value"`
		} `json:"slices"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Projects) != 2 || len(got.Slices) != 1 || got.Slices[0].Value != 2 {
		t.Errorf("got %+v", got)
	}

	if _, err := run(t, "projects"); err == nil {
		t.Error("expected error without a project list")
	}
}

func TestChartCmd(t *testing.T) {
	dir := t.TempDir()
	projects := filepath.Join(dir, "projects.yaml")
	if err := os.WriteFile(projects, []byte("- title: Atlas\n  year: 2024\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "chart.html")

	if _, err := run(t, "--csv", writeTestCSV(t), "chart", "--out", out, "--projects", projects, "--min-hour", "12"); err != nil {
		t.Fatal(err)
	}

	html, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<title>commitscope</title>", "Projects per year", "unselected"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("chart missing %q", want)
		}
	}
}

func TestConfigInitValidateShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "commitscope.toml")

	if _, err := run(t, "config", "init", "--path", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := run(t, "config", "init", "--path", path); err == nil {
		t.Error("expected error when file exists")
	}
	if _, err := run(t, "config", "init", "--path", path, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
	if _, err := run(t, "-c", path, "config", "validate"); err != nil {
		t.Errorf("validate: %v", err)
	}

	out, err := run(t, "-c", path, "config", "show", "--yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "# Configuration from: "+path) || !strings.Contains(out, "type_mode: extension") {
		t.Errorf("show output:\n%s", out)
	}

	yamlPath := filepath.Join(dir, "commitscope.yaml")
	if _, err := run(t, "config", "init", "--path", yamlPath); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "source:") {
		t.Errorf("yaml init wrote:\n%s", data)
	}
}

func TestConfigValidateInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[output]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "-c", path, "config", "validate"); err == nil {
		t.Error("expected validation error")
	}
	if _, err := run(t, "-c", path, "--csv", writeTestCSV(t), "commits"); err == nil {
		t.Error("commands should refuse an invalid config")
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := run(t, "--csv", writeTestCSV(t), "-f", "xml", "commits"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestMCPManifestCmd(t *testing.T) {
	out, err := run(t, "mcp", "manifest")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "io.github.panbanda/commitscope") {
		t.Errorf("manifest:\n%s", out)
	}
}

func TestHelpers(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("c1"); got != "c1" {
		t.Errorf("shortID = %q", got)
	}
	if got := truncate("hello world", 8); got != "hello..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 8); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
