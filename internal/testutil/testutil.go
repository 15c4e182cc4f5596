// Package testutil builds throwaway files and git repositories for tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// GitRepo is a repository in a temporary directory.
type GitRepo struct {
	Dir  string
	Repo *git.Repository
	t    testing.TB
}

// NewGitRepo initialises an empty repository on the master branch.
func NewGitRepo(t testing.TB) *GitRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit(%s) error: %v", dir, err)
	}
	return &GitRepo{Dir: dir, Repo: repo, t: t}
}

// Commit writes files (path relative to the repository root) and commits
// them with the given author time.
func (r *GitRepo) Commit(msg string, when time.Time, files map[string]string) plumbing.Hash {
	r.t.Helper()
	return r.CommitAt(msg, when, when, files)
}

// CommitAt is Commit with distinct author and committer times, as left
// behind by a rebase.
func (r *GitRepo) CommitAt(msg string, authored, committed time.Time, files map[string]string) plumbing.Hash {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("Worktree() error: %v", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		WriteFile(r.t, filepath.Join(r.Dir, name), files[name])
		if _, err := wt.Add(name); err != nil {
			r.t.Fatalf("Add(%s) error: %v", name, err)
		}
	}

	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author:    &object.Signature{Name: "Test", Email: "test@example.com", When: authored},
		Committer: &object.Signature{Name: "Test", Email: "test@example.com", When: committed},
	})
	if err != nil {
		r.t.Fatalf("Commit(%q) error: %v", msg, err)
	}
	return hash
}

// Tag creates a lightweight tag.
func (r *GitRepo) Tag(name string, hash plumbing.Hash) {
	r.t.Helper()
	if _, err := r.Repo.CreateTag(name, hash, nil); err != nil {
		r.t.Fatalf("CreateTag(%s) error: %v", name, err)
	}
}
