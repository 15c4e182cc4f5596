package remote

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/panbanda/commitscope/internal/testutil"
)

func TestParse_LocalPath(t *testing.T) {
	// Create a temp directory that exists
	dir := t.TempDir()

	src, err := Parse(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src != nil {
		t.Errorf("expected nil for local path, got %+v", src)
	}
}

func TestParse_GitHubShorthand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantRef string
	}{
		{
			name:    "simple owner/repo",
			input:   "facebook/react",
			wantURL: "https://github.com/facebook/react",
			wantRef: "",
		},
		{
			name:    "with ref suffix",
			input:   "facebook/react@v18.2.0",
			wantURL: "https://github.com/facebook/react",
			wantRef: "v18.2.0",
		},
		{
			name:    "with branch ref",
			input:   "owner/repo@feature-branch",
			wantURL: "https://github.com/owner/repo",
			wantRef: "feature-branch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src == nil {
				t.Fatal("expected Source, got nil")
			}
			if src.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", src.URL, tt.wantURL)
			}
			if src.Ref != tt.wantRef {
				t.Errorf("Ref = %q, want %q", src.Ref, tt.wantRef)
			}
		})
	}
}

func TestParse_FullURLs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantRef string
	}{
		{
			name:    "github.com without scheme",
			input:   "github.com/golang/go",
			wantURL: "https://github.com/golang/go",
			wantRef: "",
		},
		{
			name:    "https URL",
			input:   "https://github.com/kubernetes/kubernetes",
			wantURL: "https://github.com/kubernetes/kubernetes",
			wantRef: "",
		},
		{
			name:    "gitlab URL",
			input:   "https://gitlab.com/group/project",
			wantURL: "https://gitlab.com/group/project",
			wantRef: "",
		},
		{
			name:    "SSH URL",
			input:   "git@github.com:owner/repo.git",
			wantURL: "git@github.com:owner/repo.git",
			wantRef: "",
		},
		{
			name:    "URL with ref",
			input:   "github.com/golang/go@go1.21.0",
			wantURL: "https://github.com/golang/go",
			wantRef: "go1.21.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src == nil {
				t.Fatal("expected Source, got nil")
			}
			if src.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", src.URL, tt.wantURL)
			}
			if src.Ref != tt.wantRef {
				t.Errorf("Ref = %q, want %q", src.Ref, tt.wantRef)
			}
		})
	}
}

func TestParse_NotRemote(t *testing.T) {
	for _, input := range []string{"missing-dir", "a/b/c", "example.com/repo"} {
		src, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", input, err)
		}
		if src != nil {
			t.Errorf("Parse(%q) = %+v, want nil", input, src)
		}
	}
}

// initRepo creates a local repository with two commits on master and a tag
// on the first one.
func initRepo(t *testing.T) (string, []string) {
	t.Helper()
	r := testutil.NewGitRepo(t)
	first := r.Commit("add a", time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), map[string]string{"a.txt": "x\n"})
	second := r.Commit("add b", time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), map[string]string{"b.txt": "x\n"})
	r.Tag("v1", first)
	return r.Dir, []string{first.String(), second.String()}
}

func cloneHead(t *testing.T, src *Source) string {
	t.Helper()
	if err := src.Clone(context.Background(), io.Discard, false); err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	t.Cleanup(func() { src.Cleanup() })

	if _, err := os.Stat(filepath.Join(src.CloneDir, ".git")); err != nil {
		t.Fatalf(".git directory not found in %s", src.CloneDir)
	}
	repo, err := git.PlainOpen(src.CloneDir)
	if err != nil {
		t.Fatalf("open cloned repo: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("get HEAD: %v", err)
	}
	return head.Hash().String()
}

func TestSource_Clone(t *testing.T) {
	dir, hashes := initRepo(t)

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"default branch", "", hashes[1]},
		{"branch", "master", hashes[1]},
		{"tag", "v1", hashes[0]},
		{"commit hash", hashes[0], hashes[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cloneHead(t, &Source{URL: dir, Ref: tt.ref})
			if got != tt.want {
				t.Errorf("HEAD = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSource_Cleanup(t *testing.T) {
	dir, _ := initRepo(t)
	src := &Source{URL: dir}
	if err := src.Clone(context.Background(), io.Discard, false); err != nil {
		t.Fatal(err)
	}
	cloneDir := src.CloneDir
	if err := src.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cloneDir); !os.IsNotExist(err) {
		t.Errorf("clone dir %s still exists", cloneDir)
	}
	if err := src.Cleanup(); err != nil {
		t.Errorf("second Cleanup: %v", err)
	}
}
