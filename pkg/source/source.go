// Package source provides the file content sources analyzers read from.
package source

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/panbanda/accessorlint/internal/vcs"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// TreeSource reads files from a git tree.
// It is safe for concurrent use by multiple goroutines.
type TreeSource struct {
	tree vcs.Tree
	mu   sync.Mutex
}

// NewTree creates a source that reads from a git tree.
func NewTree(tree vcs.Tree) *TreeSource {
	return &TreeSource{tree: tree}
}

// Read implements ContentSource.
func (t *TreeSource) Read(path string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tree.File(path)
}

// Files lists the tree's files whose path ends in one of exts, sorted.
func (t *TreeSource) Files(exts ...string) ([]string, error) {
	t.mu.Lock()
	entries, err := t.tree.Entries()
	t.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("listing tree: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		for _, ext := range exts {
			if strings.HasSuffix(e.Path, ext) {
				files = append(files, e.Path)
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// AtRevision opens the repository containing dir and returns a source over
// the tree of rev.
func AtRevision(dir, rev string) (*TreeSource, error) {
	repo, err := vcs.DefaultOpener().PlainOpenWithDetect(dir)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	commit, err := repo.ResolveRevision(rev)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading tree of %s: %w", rev, err)
	}
	return NewTree(tree), nil
}
