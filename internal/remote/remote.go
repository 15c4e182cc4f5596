// Package remote resolves repository arguments that name a remote git
// repository and clones them into a temporary directory.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source represents a remote repository to read history from.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory after clone
}

var knownHosts = []string{"github.com/", "gitlab.com/", "bitbucket.org/"}

// Parse detects if a path is a remote reference.
// Returns nil if path exists on filesystem (local path takes precedence).
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	// path@ref, where the @ comes after the last slash so that
	// git@host:owner/repo is left alone.
	ref := ""
	if idx := strings.LastIndex(path, "@"); idx != -1 && idx > strings.LastIndex(path, "/") {
		ref = path[idx+1:]
		path = path[:idx]
	}

	switch {
	case strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"),
		strings.HasPrefix(path, "ssh://"), strings.HasPrefix(path, "git@"):
		return &Source{URL: path, Ref: ref}, nil
	}

	for _, host := range knownHosts {
		if strings.HasPrefix(path, host) {
			return &Source{URL: "https://" + path, Ref: ref}, nil
		}
	}

	if isGitHubShorthand(path) {
		return &Source{URL: "https://github.com/" + path, Ref: ref}, nil
	}

	return nil, nil
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 || strings.Count(path, "/") != 1 {
		return false
	}
	// No dots before the slash (would indicate a domain)
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Clone clones the repository into a new temporary directory and sets
// CloneDir. A branch or tag Ref is cloned directly; anything else is
// treated as a commit hash and checked out after a full clone. Shallow
// clones fetch only the tip commit.
func (s *Source) Clone(ctx context.Context, progress io.Writer, shallow bool) error {
	dir, err := os.MkdirTemp("", "commitscope-clone-*")
	if err != nil {
		return fmt.Errorf("create clone dir: %w", err)
	}
	s.CloneDir = dir

	opts := &git.CloneOptions{URL: s.URL, Progress: progress}
	if shallow {
		opts.Depth = 1
	}
	if s.Ref == "" {
		return s.cloneWith(ctx, opts)
	}

	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(s.Ref),
		plumbing.NewTagReferenceName(s.Ref),
	} {
		opts.ReferenceName = name
		opts.SingleBranch = true
		if err := s.cloneWith(ctx, opts); err == nil {
			return nil
		}
		if err := s.reset(); err != nil {
			return err
		}
	}

	opts.ReferenceName = ""
	opts.SingleBranch = false
	opts.Depth = 0
	if err := s.cloneWith(ctx, opts); err != nil {
		return err
	}
	repo, err := git.PlainOpen(s.CloneDir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(s.Ref)}); err != nil {
		return fmt.Errorf("checkout %s: %w", s.Ref, err)
	}
	return nil
}

func (s *Source) cloneWith(ctx context.Context, opts *git.CloneOptions) error {
	if _, err := git.PlainCloneContext(ctx, s.CloneDir, false, opts); err != nil {
		return fmt.Errorf("clone %s: %w", s.URL, err)
	}
	return nil
}

// reset empties CloneDir after a failed attempt.
func (s *Source) reset() error {
	if err := os.RemoveAll(s.CloneDir); err != nil {
		return err
	}
	return os.MkdirAll(s.CloneDir, 0o755)
}

// Cleanup removes the clone directory.
func (s *Source) Cleanup() error {
	if s.CloneDir == "" {
		return nil
	}
	err := os.RemoveAll(s.CloneDir)
	s.CloneDir = ""
	return err
}
