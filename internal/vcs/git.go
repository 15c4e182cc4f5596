package vcs

import (
	"context"
	"errors"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoHead is returned when a repository has no commits yet.
var ErrNoHead = errors.New("repository has no HEAD commit")

// GitOpener opens repositories with go-git.
type GitOpener struct{}

// NewGitOpener creates a new GitOpener.
func NewGitOpener() *GitOpener {
	return &GitOpener{}
}

// Open implements Opener.
func (o *GitOpener) Open(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	return &gitRepository{repo: repo}, nil
}

type gitRepository struct {
	repo *git.Repository
}

func (r *gitRepository) Head() (plumbing.Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, ErrNoHead
		}
		return plumbing.ZeroHash, err
	}
	return ref.Hash(), nil
}

func (r *gitRepository) History(ctx context.Context, window HistoryWindow) (CommitIterator, error) {
	opts := &git.LogOptions{}
	if !window.Since.IsZero() {
		opts.Since = &window.Since
	}
	if !window.Until.IsZero() {
		opts.Until = &window.Until
	}
	iter, err := r.repo.Log(opts)
	if err != nil {
		return nil, err
	}
	return &commitIterator{ctx: ctx, iter: iter}, nil
}

type commitIterator struct {
	ctx  context.Context
	iter object.CommitIter
}

func (i *commitIterator) ForEach(fn func(Commit) error) error {
	return i.iter.ForEach(func(c *object.Commit) error {
		if err := i.ctx.Err(); err != nil {
			return err
		}
		return fn(&gitCommit{commit: c})
	})
}

func (i *commitIterator) Close() {
	i.iter.Close()
}

type gitCommit struct {
	commit *object.Commit
}

func (c *gitCommit) Hash() plumbing.Hash {
	return c.commit.Hash
}

func (c *gitCommit) NumParents() int {
	return c.commit.NumParents()
}

func (c *gitCommit) When() time.Time {
	return c.commit.Author.When
}

func (c *gitCommit) Stats() ([]FileStat, error) {
	fileStats, err := c.commit.Stats()
	if err != nil {
		return nil, err
	}
	out := make([]FileStat, len(fileStats))
	for i, fs := range fileStats {
		out[i] = FileStat{Name: fs.Name, Additions: fs.Addition, Deletions: fs.Deletion}
	}
	return out, nil
}

// HeadHash returns the HEAD commit hash of the repository containing path.
func HeadHash(opener Opener, path string) (string, error) {
	repo, err := opener.Open(path)
	if err != nil {
		return "", err
	}
	hash, err := repo.Head()
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

var defaultOpener Opener = NewGitOpener()

// DefaultOpener returns the go-git opener.
func DefaultOpener() Opener {
	return defaultOpener
}
