// Package scanner finds the Java sources to analyze.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/accessorlint/pkg/config"
	"github.com/panbanda/accessorlint/pkg/parser"
)

// matcher is a gitignore matcher together with the directory its patterns
// are relative to.
type matcher struct {
	base string
	m    gitignore.Matcher
}

// Scanner finds source files in a directory.
type Scanner struct {
	config   *config.Config
	matchers []matcher
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns loads exclusion patterns from config and .gitignore
// files. Configured dirs and patterns are relative to root; .gitignore
// patterns are relative to the repository root.
func (s *Scanner) loadExcludePatterns(root string) {
	s.matchers = nil

	var patterns []gitignore.Pattern
	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(strings.TrimSuffix(dir, "/")+"/", nil))
	}
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	if len(patterns) > 0 {
		s.matchers = append(s.matchers, matcher{base: root, m: gitignore.NewMatcher(patterns)})
	}

	if !s.config.Exclude.Gitignore {
		return
	}
	gitRoot := findGitRoot(root)
	if gitRoot == "" {
		return
	}
	// ReadPatterns walks every .gitignore below the repository root.
	if gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil && len(gitPatterns) > 0 {
		s.matchers = append(s.matchers, matcher{base: gitRoot, m: gitignore.NewMatcher(gitPatterns)})
	}
}

// isExcluded checks if an absolute path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	for _, m := range s.matchers {
		rel, err := filepath.Rel(m.base, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if m.m.Match(strings.Split(rel, string(filepath.Separator)), isDir) {
			return true
		}
	}
	return false
}

// ScanDir recursively scans a directory for Java files.
// Paths are returned as found under root. Symlinks that resolve outside
// root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(absRoot)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		abs := filepath.Join(absRoot, rel)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if path != root && s.isExcluded(abs, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(abs, false) {
			return nil
		}
		if parser.DetectLanguage(path) == parser.LangJava {
			files = append(files, path)
		}
		return nil
	})

	return files, walkErr
}

// ScanPaths scans every path, which may be a file or a directory, and returns
// the sorted, de-duplicated Java files.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if ok, err := s.ScanFile(p); err == nil && ok {
				add(p)
			}
			continue
		}
		found, err := s.ScanDir(p)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// ScanFile checks if a single file should be analyzed.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	s.loadExcludePatterns(filepath.Dir(abs))
	if s.isExcluded(abs, false) {
		return false, nil
	}

	return parser.DetectLanguage(path) == parser.LangJava, nil
}

// FilterBySize filters files that exceed maxSize bytes.
// Returns the filtered list and the count of files that were skipped.
// If maxSize is 0, returns the original list unchanged.
func FilterBySize(files []string, maxSize int64) ([]string, int) {
	if maxSize <= 0 {
		return files, 0
	}

	filtered := make([]string, 0, len(files))
	skipped := 0
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.Size() > maxSize {
			skipped++
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered, skipped
}
