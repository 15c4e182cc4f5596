package loader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/commitscope/internal/logging"
	"github.com/panbanda/commitscope/internal/progress"
	"github.com/panbanda/commitscope/internal/vcs"
	"github.com/panbanda/commitscope/pkg/models"
)

// DefaultGitTimeout bounds a history load when the caller passes no deadline.
const DefaultGitTimeout = 5 * time.Minute

// GitLoader reads change records from git history, one record per changed
// file per non-merge commit.
type GitLoader struct {
	since      time.Time
	until      time.Time
	opener     vcs.Opener
	spinner    *progress.Tracker
	workers    int
	logger     *logrus.Logger
	typeMode   TypeMode
	skipVendor bool
	useNative  bool
}

// GitOption is a functional option for configuring GitLoader.
type GitOption func(*GitLoader)

// WithSince limits history to commits authored at or after t. git
// filters on committer time, which is never earlier than author time, so
// it only narrows the walk; records are checked against author time.
func WithSince(t time.Time) GitOption {
	return func(g *GitLoader) {
		g.since = t
	}
}

// WithUntil limits history to commits authored at or before t. A rebased
// commit can be committed after t yet authored before it, so the bound is
// applied to author time only.
func WithUntil(t time.Time) GitOption {
	return func(g *GitLoader) {
		g.until = t
	}
}

// WithOpener sets the VCS opener. A custom opener disables native git.
func WithOpener(opener vcs.Opener) GitOption {
	return func(g *GitLoader) {
		g.opener = opener
		g.useNative = false
	}
}

// WithNativeGit toggles the `git log --numstat` fast path.
func WithNativeGit(use bool) GitOption {
	return func(g *GitLoader) {
		g.useNative = use
	}
}

// WithSpinner ticks the tracker once per processed commit.
func WithSpinner(spinner *progress.Tracker) GitOption {
	return func(g *GitLoader) {
		g.spinner = spinner
	}
}

// WithWorkers sets how many commits are diffed concurrently.
func WithWorkers(n int) GitOption {
	return func(g *GitLoader) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) GitOption {
	return func(g *GitLoader) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTypeMode sets how change types are derived from file paths.
func WithTypeMode(mode TypeMode) GitOption {
	return func(g *GitLoader) {
		g.typeMode = mode
	}
}

// WithSkipVendor drops vendored files from the output.
func WithSkipVendor(skip bool) GitOption {
	return func(g *GitLoader) {
		g.skipVendor = skip
	}
}

// NewGitLoader creates a git history loader.
func NewGitLoader(opts ...GitOption) *GitLoader {
	g := &GitLoader{
		opener:    vcs.DefaultOpener(),
		workers:   runtime.NumCPU() * 2,
		logger:    logging.Discard(),
		typeMode:  TypeByExtension,
		useNative: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Load returns the change records of the repository at repoPath in log
// order, newest commit first.
func (g *GitLoader) Load(ctx context.Context, repoPath string) ([]models.ChangeRecord, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultGitTimeout)
		defer cancel()
	}

	start := time.Now()
	mode := "go-git"
	var (
		records []models.ChangeRecord
		err     error
	)
	if g.useNative && nativeGitAvailable() {
		mode = "native"
		records, err = g.loadNative(ctx, repoPath)
	} else {
		records, err = g.loadGoGit(ctx, repoPath)
	}
	if err != nil {
		return nil, err
	}

	g.logger.WithFields(logrus.Fields{
		"repo":     repoPath,
		"mode":     mode,
		"records":  len(records),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("loaded git history")
	return records, nil
}

func nativeGitAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// loadNative shells out to git, which is much faster than go-git tree diffs
// on large histories.
func (g *GitLoader) loadNative(ctx context.Context, repoPath string) ([]models.ChangeRecord, error) {
	args := []string{"log", "--numstat", "--no-merges", "--no-renames", "--format=%H|%aI"}
	if !g.since.IsZero() {
		args = append(args, "--since="+g.since.Format(time.RFC3339))
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "does not have any commits") {
			return []models.ChangeRecord{}, nil
		}
		if msg != "" {
			return nil, fmt.Errorf("git log: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("git log: %w", err)
	}
	return g.parseNumstat(&stdout)
}

// parseNumstat parses `git log --numstat --format=%H|%aI` output.
func (g *GitLoader) parseNumstat(r io.Reader) ([]models.ChangeRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	records := []models.ChangeRecord{}
	var hash string
	var when time.Time
	line := 0

	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}

		parts := strings.Split(text, "\t")
		if len(parts) != 3 {
			header := strings.SplitN(text, "|", 2)
			if len(header) != 2 {
				continue
			}
			ts, err := time.Parse(time.RFC3339, header[1])
			if err != nil {
				return nil, &models.ParseError{Line: line, Column: "author_date", Value: header[1], Err: err}
			}
			hash, when = header[0], ts
			g.spinner.Tick()
			continue
		}

		// Binary files report "-" for both counts.
		if parts[0] == "-" || parts[1] == "-" || hash == "" {
			continue
		}
		added, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, &models.ParseError{Line: line, Column: "added", Value: parts[0], Err: err}
		}
		deleted, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, &models.ParseError{Line: line, Column: "deleted", Value: parts[1], Err: err}
		}

		rec, ok, err := g.record(hash, when, vcs.FileStat{Name: parts[2], Additions: added, Deletions: deleted})
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// loadGoGit walks history with go-git, diffing commits on a worker pool.
func (g *GitLoader) loadGoGit(ctx context.Context, repoPath string) ([]models.ChangeRecord, error) {
	repo, err := g.opener.Open(repoPath)
	if err != nil {
		return nil, err
	}
	if _, err := repo.Head(); err != nil {
		if errors.Is(err, vcs.ErrNoHead) {
			return []models.ChangeRecord{}, nil
		}
		return nil, err
	}

	iter, err := repo.History(ctx, vcs.HistoryWindow{Since: g.since})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var commits []vcs.Commit
	err = iter.ForEach(func(c vcs.Commit) error {
		if c.NumParents() > 1 {
			return nil
		}
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	perCommit := make([][]models.ChangeRecord, len(commits))
	p := pool.New().WithMaxGoroutines(g.workers).WithContext(ctx).WithCancelOnError()
	for i, c := range commits {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			defer g.spinner.Tick()

			stats, err := c.Stats()
			if err != nil {
				return fmt.Errorf("commit %s: %w", c.Hash(), err)
			}
			out := make([]models.ChangeRecord, 0, len(stats))
			for _, fs := range stats {
				rec, ok, err := g.record(c.Hash().String(), c.When(), fs)
				if err != nil {
					return err
				}
				if ok {
					out = append(out, rec)
				}
			}
			perCommit[i] = out
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	records := []models.ChangeRecord{}
	for _, rs := range perCommit {
		records = append(records, rs...)
	}
	return records, nil
}

func (g *GitLoader) authoredInWindow(when time.Time) bool {
	if !g.since.IsZero() && when.Before(g.since) {
		return false
	}
	return g.until.IsZero() || !when.After(g.until)
}

func (g *GitLoader) record(hash string, when time.Time, fs vcs.FileStat) (models.ChangeRecord, bool, error) {
	if fs.Lines() == 0 || !g.authoredInWindow(when) {
		return models.ChangeRecord{}, false, nil
	}
	if g.skipVendor && IsVendored(fs.Name) {
		return models.ChangeRecord{}, false, nil
	}
	rec, err := models.NewChangeRecord(fs.Name, DetectType(fs.Name, g.typeMode), hash, when, fs.Lines())
	if err != nil {
		return models.ChangeRecord{}, false, fmt.Errorf("commit %s %s: %w", hash, fs.Name, err)
	}
	return rec, true, nil
}
