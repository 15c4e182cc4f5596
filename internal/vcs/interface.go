// Package vcs wraps go-git behind the small surface the history loader
// needs, so tests and callers can swap the backend.
package vcs

import (
	"context"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// Opener opens the repository containing a path.
type Opener interface {
	// Open finds the repository that contains path, walking up to the
	// nearest .git directory.
	Open(path string) (Repository, error)
}

// Repository is a read-only view of commit history.
type Repository interface {
	// Head returns the commit hash HEAD points to, or ErrNoHead.
	Head() (plumbing.Hash, error)
	// History returns commits reachable from HEAD, newest first. The
	// iterator stops with ctx.Err() once ctx is done.
	History(ctx context.Context, window HistoryWindow) (CommitIterator, error)
}

// HistoryWindow bounds History by commit time. Zero bounds are open.
type HistoryWindow struct {
	Since time.Time
	Until time.Time
}

// CommitIterator iterates over commits.
type CommitIterator interface {
	ForEach(fn func(Commit) error) error
	Close()
}

// Commit is one commit in the history.
type Commit interface {
	Hash() plumbing.Hash
	NumParents() int
	// When is the author time.
	When() time.Time
	// Stats returns per-file line counts against the first parent, or
	// against the empty tree for a root commit.
	Stats() ([]FileStat, error)
}

// FileStat is the line delta of one file in one commit.
type FileStat struct {
	Name      string
	Additions int
	Deletions int
}

// Lines returns additions plus deletions.
func (f FileStat) Lines() int {
	return f.Additions + f.Deletions
}
