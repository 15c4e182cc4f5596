// Package analysis wires loaders, the cache and the commit analyzers
// together for the CLI and the MCP server.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/panbanda/commitscope/internal/cache"
	"github.com/panbanda/commitscope/internal/logging"
	"github.com/panbanda/commitscope/internal/progress"
	"github.com/panbanda/commitscope/internal/remote"
	"github.com/panbanda/commitscope/internal/vcs"
	"github.com/panbanda/commitscope/pkg/config"
	"github.com/panbanda/commitscope/pkg/loader"
	"github.com/panbanda/commitscope/pkg/models"
)

// Service orchestrates record loading and analysis.
type Service struct {
	config   *config.Config
	opener   vcs.Opener
	logger   *logrus.Logger
	cache    *cache.Cache
	cacheMu  sync.Mutex
	noCache  bool
	progress bool
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener. A custom opener also switches git
// loading from the native git binary to go-git.
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache sets the record cache instead of building one from config.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithNoCache bypasses the record cache.
func WithNoCache() Option {
	return func(s *Service) {
		s.noCache = true
	}
}

// WithProgress shows a spinner on stderr while git history loads.
func WithProgress(enabled bool) Option {
	return func(s *Service) {
		s.progress = enabled
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault(),
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the configuration in use.
func (s *Service) Config() *config.Config {
	return s.config
}

// ErrNoSource is returned when neither a CSV file nor a repository is set.
var ErrNoSource = errors.New("no record source: set a CSV file or a repository")

// Source selects where records come from. CSV wins over Repo. A zero
// Since falls back to the configured number of days.
type Source struct {
	CSV   string
	Repo  string
	Since time.Time
}

// DefaultSource builds a Source from the configuration.
func (s *Service) DefaultSource() Source {
	return Source{CSV: s.config.Source.CSV, Repo: s.config.Source.Repo}
}

func (s *Service) since(src Source) time.Time {
	if !src.Since.IsZero() {
		return src.Since
	}
	if days := s.config.Source.Days; days > 0 {
		return s.now().AddDate(0, 0, -days)
	}
	return time.Time{}
}

// LoadRecords reads change records from src.
func (s *Service) LoadRecords(ctx context.Context, src Source) ([]models.ChangeRecord, error) {
	switch {
	case src.CSV != "":
		records, err := loader.LoadCSV(src.CSV)
		if err != nil {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{"csv": src.CSV, "records": len(records)}).Debug("loaded csv")
		return records, nil
	case src.Repo != "":
		rs, err := remote.Parse(src.Repo)
		if err != nil {
			return nil, err
		}
		if rs == nil {
			return s.loadGit(ctx, src.Repo, s.since(src), true)
		}
		return s.loadRemote(ctx, rs, s.since(src))
	default:
		return nil, ErrNoSource
	}
}

func (s *Service) loadGit(ctx context.Context, repo string, since time.Time, cacheable bool) ([]models.ChangeRecord, error) {
	typeMode, ok := loader.ParseTypeMode(s.config.Source.TypeMode)
	if !ok {
		return nil, fmt.Errorf("unknown type mode %q", s.config.Source.TypeMode)
	}

	var c *cache.Cache
	if cacheable {
		var err error
		if c, err = s.recordCache(); err != nil {
			s.logger.WithError(err).Warn("cache unavailable")
		}
	}

	opener := s.opener
	if opener == nil {
		opener = vcs.DefaultOpener()
	}

	key := cache.Key(repo, since, string(typeMode), "vendor="+strconv.FormatBool(s.config.Source.SkipVendor))
	revision, err := vcs.HeadHash(opener, repo)
	if err != nil && !errors.Is(err, vcs.ErrNoHead) {
		return nil, fmt.Errorf("open repository %s: %w", repo, err)
	}

	if c != nil && revision != "" {
		if records, ok := c.GetRecords(key, revision); ok {
			s.logger.WithFields(logrus.Fields{"repo": repo, "records": len(records)}).Debug("cache hit")
			return records, nil
		}
	}

	opts := []loader.GitOption{
		loader.WithLogger(s.logger),
		loader.WithTypeMode(typeMode),
		loader.WithSkipVendor(s.config.Source.SkipVendor),
		loader.WithWorkers(s.config.Source.Workers),
	}
	if !since.IsZero() {
		opts = append(opts, loader.WithSince(since))
	}
	if s.opener != nil {
		opts = append(opts, loader.WithOpener(s.opener))
	}

	var tracker *progress.Tracker
	if s.progress {
		tracker = progress.New("Reading history")
		opts = append(opts, loader.WithSpinner(tracker))
	}

	records, err := loader.NewGitLoader(opts...).Load(ctx, repo)
	tracker.Done(err)
	if err != nil {
		return nil, err
	}

	if c != nil && revision != "" {
		if err := c.PutRecords(key, revision, records); err != nil {
			s.logger.WithError(err).Warn("cache write failed")
		}
	}
	return records, nil
}

// loadRemote clones a remote repository into a temporary directory and
// reads its history. Records are not cached since the clone path changes
// on every run.
func (s *Service) loadRemote(ctx context.Context, rs *remote.Source, since time.Time) ([]models.ChangeRecord, error) {
	s.logger.WithFields(logrus.Fields{"url": rs.URL, "ref": rs.Ref}).Info("cloning repository")

	var tracker *progress.Tracker
	if s.progress {
		tracker = progress.New("Cloning " + rs.URL)
	}
	err := rs.Clone(ctx, io.Discard, false)
	tracker.Done(err)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rs.Cleanup(); err != nil {
			s.logger.WithError(err).Warn("clone cleanup failed")
		}
	}()

	return s.loadGit(ctx, rs.CloneDir, since, false)
}

// recordCache returns the configured cache, or nil when caching is off.
func (s *Service) recordCache() (*cache.Cache, error) {
	if s.noCache {
		return nil, nil
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cache != nil {
		return s.cache, nil
	}
	if !s.config.Cache.Enabled {
		return nil, nil
	}
	c, err := cache.New(s.config.Cache.Dir, s.config.Cache.TTL, true)
	if err != nil {
		return nil, err
	}
	s.cache = c
	return c, nil
}

// LoadProjects reads the project list at path, or the configured one.
func (s *Service) LoadProjects(path string) ([]models.Project, error) {
	if path == "" {
		path = s.config.Source.Projects
	}
	if path == "" {
		return nil, errors.New("no project list configured")
	}
	return loader.LoadProjects(path)
}
