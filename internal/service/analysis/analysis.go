// Package analysis orchestrates an accessor check run: file discovery,
// content source selection, result caching and the analyzer itself.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/panbanda/accessorlint/internal/cache"
	"github.com/panbanda/accessorlint/internal/scanner"
	"github.com/panbanda/accessorlint/internal/vcs"
	"github.com/panbanda/accessorlint/pkg/analyzer"
	"github.com/panbanda/accessorlint/pkg/analyzer/accessors"
	"github.com/panbanda/accessorlint/pkg/config"
	"github.com/panbanda/accessorlint/pkg/source"
)

// ErrNoKinds is returned when a run would check neither getters nor setters.
var ErrNoKinds = errors.New("no accessor kinds enabled")

// cacheVersion is mixed into every cache key; bump it when findings change
// for identical input.
const cacheVersion = "1"

// Service orchestrates accessor checks.
type Service struct {
	config *config.Config
	logger *log.Logger
	cache  *cache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithCache sets the result cache. A nil cache disables caching.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// NewCache opens the result cache described by cfg. A disabled cache is
// returned when caching is off.
func NewCache(cfg *config.Config) (*cache.Cache, error) {
	return cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
}

// CheckOptions configures a single check run.
type CheckOptions struct {
	// Ref analyzes the tree of a git revision instead of the working tree.
	Ref string
	// Workers overrides the configured worker count when positive.
	Workers int
	// IncludeTests analyzes test sources as well.
	IncludeTests bool
	// Kinds overrides the configured accessor kinds when non-empty.
	Kinds []accessors.Kind
	// NoCache skips cache lookup and storage.
	NoCache bool
	// OnProgress receives parse and check progress.
	OnProgress analyzer.ProgressFunc
}

// Check runs the accessor rule over the Java files found under paths.
func (s *Service) Check(ctx context.Context, paths []string, opts CheckOptions) (*accessors.Analysis, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	kinds := opts.Kinds
	if len(kinds) == 0 {
		for _, k := range s.config.Kinds() {
			kinds = append(kinds, accessors.Kind(k))
		}
	}
	if len(kinds) == 0 {
		return nil, ErrNoKinds
	}

	files, src, err := s.collect(paths, opts.Ref)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Collected sources", "files", len(files), "ref", opts.Ref)

	includeTests := opts.IncludeTests || s.config.Analysis.IncludeTests
	workers := s.config.Analysis.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	useCache := s.cache != nil && s.cache.Enabled() && !opts.NoCache
	var key string
	if useCache {
		key, err = cache.RunKey(s.fingerprint(kinds, includeTests), files, src)
		if err != nil {
			s.logger.Warn("Cache key unavailable", "err", err)
			useCache = false
		} else if cached, ok := s.cache.LoadAnalysis(key); ok {
			s.logger.Debug("Using cached result", "findings", cached.Summary.TotalFindings)
			cached.Revision = s.revision(paths[0], opts.Ref)
			return cached, nil
		}
	}

	aopts := []accessors.Option{
		accessors.WithWorkers(workers),
		accessors.WithMaxFileSize(s.config.Analysis.MaxFileSize),
		accessors.WithKinds(kinds...),
		accessors.WithLogger(s.logger),
	}
	if includeTests {
		aopts = append(aopts, accessors.WithIncludeTestFiles())
	}

	if opts.OnProgress != nil {
		ctx = analyzer.WithTracker(ctx, analyzer.NewTracker(opts.OnProgress))
	}

	result, err := accessors.New(aopts...).Analyze(ctx, files, src)
	if err != nil {
		return nil, err
	}
	result.Revision = s.revision(paths[0], opts.Ref)

	if useCache {
		if err := s.cache.StoreAnalysis(key, result); err != nil {
			s.logger.Warn("Failed to cache result", "err", err)
		}
	}
	return result, nil
}

// collect lists the files to analyze and the source to read them from.
func (s *Service) collect(paths []string, ref string) ([]string, source.ContentSource, error) {
	if ref == "" {
		files, err := scanner.NewScanner(s.config).ScanPaths(paths)
		if err != nil {
			return nil, nil, fmt.Errorf("scanning: %w", err)
		}
		files, skipped := scanner.FilterBySize(files, s.config.Analysis.MaxFileSize)
		if skipped > 0 {
			s.logger.Info("Skipped large files", "count", skipped, "max_size", s.config.Analysis.MaxFileSize)
		}
		return files, source.NewFilesystem(), nil
	}

	tree, err := source.AtRevision(paths[0], ref)
	if err != nil {
		return nil, nil, err
	}
	all, err := tree.Files(".java")
	if err != nil {
		return nil, nil, err
	}

	prefixes := treePrefixes(paths)
	files := make([]string, 0, len(all))
	for _, f := range all {
		if s.config.ShouldExclude(f) || !hasAnyPrefix(f, prefixes) {
			continue
		}
		files = append(files, f)
	}
	return files, tree, nil
}

// revision labels the analyzed sources. A working tree is named by its
// branch, marked "(modified)" when it has uncommitted changes. Uncommitted
// changes are not part of a --ref run, which is worth a note.
func (s *Service) revision(path, ref string) string {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}

	dirty, dirtyErr := vcs.IsDirty(dir)
	if ref != "" {
		if dirtyErr == nil && dirty {
			s.logger.Info("Uncommitted changes are not analyzed", "ref", ref)
		}
		return ref
	}

	current, err := vcs.CurrentRef(dir)
	if err != nil {
		s.logger.Debug("No revision for working tree", "path", dir, "err", err)
		return ""
	}
	if dirtyErr == nil && dirty {
		return current + " (modified)"
	}
	return current
}

// treePrefixes turns path arguments into repository-relative prefixes.
// "." selects the whole tree.
func treePrefixes(paths []string) []string {
	var prefixes []string
	for _, p := range paths {
		clean := filepath.ToSlash(filepath.Clean(p))
		if clean == "." || filepath.IsAbs(p) {
			return nil
		}
		prefixes = append(prefixes, strings.TrimSuffix(clean, "/"))
	}
	return prefixes
}

func hasAnyPrefix(path string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func (s *Service) fingerprint(kinds []accessors.Kind, includeTests bool) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return fmt.Sprintf("v%s|kinds=%s|tests=%t|max=%d",
		cacheVersion, strings.Join(names, ","), includeTests, s.config.Analysis.MaxFileSize)
}
