package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c.txt")
	WriteFile(t, path, "hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q", data)
	}
}

func TestGitRepo(t *testing.T) {
	r := NewGitRepo(t)
	when := time.Date(2025, 2, 4, 9, 0, 0, 0, time.UTC)
	first := r.Commit("first", when, map[string]string{"src/main.go": "package main\n"})
	second := r.Commit("second", when.Add(time.Hour), map[string]string{"README": "hi\n"})
	r.Tag("v1", first)

	head, err := r.Repo.Head()
	if err != nil {
		t.Fatal(err)
	}
	if head.Hash() != second {
		t.Errorf("HEAD = %s, want %s", head.Hash(), second)
	}

	c, err := r.Repo.CommitObject(second)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Author.When.Equal(when.Add(time.Hour)) {
		t.Errorf("author time = %v", c.Author.When)
	}

	tag, err := r.Repo.Tag("v1")
	if err != nil {
		t.Fatal(err)
	}
	if tag.Hash() != first {
		t.Errorf("tag v1 = %s, want %s", tag.Hash(), first)
	}
}

func TestGitRepo_CommitAt(t *testing.T) {
	r := NewGitRepo(t)
	authored := time.Date(2025, 2, 4, 9, 0, 0, 0, time.UTC)
	hash := r.CommitAt("rebased", authored, authored.Add(48*time.Hour), map[string]string{"a.txt": "a\n"})

	c, err := r.Repo.CommitObject(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Author.When.Equal(authored) {
		t.Errorf("author time = %v, want %v", c.Author.When, authored)
	}
	if !c.Committer.When.Equal(authored.Add(48 * time.Hour)) {
		t.Errorf("committer time = %v", c.Committer.When)
	}
}
