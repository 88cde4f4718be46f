// Package remote clones repositories named on the command line so they can
// be checked like a local directory.
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

// Source represents a remote repository to analyze.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory after clone
}

// Parse detects if a path is a remote reference.
// Returns nil if path exists on filesystem (local path takes precedence).
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	// SSH URLs carry their own @, so refs are only split off the rest.
	if strings.HasPrefix(path, "git@") {
		return &Source{URL: path}, nil
	}

	ref := ""
	if idx := strings.LastIndex(path, "@"); idx != -1 {
		ref = path[idx+1:]
		path = path[:idx]
	}

	switch {
	case strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "ssh://"):
		return &Source{URL: path, Ref: ref}, nil
	case isHostPath(path):
		return &Source{URL: "https://" + path, Ref: ref}, nil
	case isGitHubShorthand(path):
		return &Source{URL: "https://github.com/" + path, Ref: ref}, nil
	}
	return nil, nil
}

// isHostPath reports whether path looks like host.tld/owner/repo.
func isHostPath(path string) bool {
	parts := strings.Split(path, "/")
	if len(parts) < 3 {
		return false
	}
	return strings.Contains(parts[0], ".") && parts[1] != "" && parts[2] != ""
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	// No dots before the slash (would indicate a domain)
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Clone clones the repository into a new temporary directory and checks out
// Ref. Git progress goes to progress. A shallow clone fetches only the tip of
// the requested branch or tag.
func (s *Source) Clone(ctx context.Context, progress io.Writer, shallow bool) error {
	dir, err := os.MkdirTemp("", "accessorlint-remote-*")
	if err != nil {
		return fmt.Errorf("creating clone dir: %w", err)
	}
	s.CloneDir = dir

	opts := &git.CloneOptions{URL: s.URL, Progress: progress}
	if shallow {
		opts.Depth = 1
		opts.SingleBranch = true
	}

	if s.Ref == "" {
		if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
			return fmt.Errorf("cloning %s: %w", s.URL, err)
		}
		return nil
	}

	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(s.Ref),
		plumbing.NewTagReferenceName(s.Ref),
	} {
		opts.ReferenceName = name
		if _, err := git.PlainCloneContext(ctx, dir, false, opts); err == nil {
			return nil
		}
		if err := resetDir(dir); err != nil {
			return err
		}
	}

	// Not a branch or tag: fetch everything and check out the revision.
	opts.ReferenceName = ""
	opts.Depth = 0
	opts.SingleBranch = false
	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return fmt.Errorf("cloning %s: %w", s.URL, err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(s.Ref))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", s.Ref, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return fmt.Errorf("checking out %s: %w", s.Ref, err)
	}
	return nil
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
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
