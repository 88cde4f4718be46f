package remote

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestParse_LocalPath(t *testing.T) {
	dir := t.TempDir()

	src, err := Parse(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src != nil {
		t.Errorf("expected nil for local path, got %+v", src)
	}
}

func TestParse_NotRemote(t *testing.T) {
	for _, input := range []string{"src", "./missing", "a/b/c", "/abs/missing", "owner/"} {
		src, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", input, err)
		}
		if src != nil {
			t.Errorf("Parse(%q) = %+v, want nil", input, src)
		}
	}
}

func TestParse_Remote(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantRef string
	}{
		{"shorthand", "apache/commons-lang", "https://github.com/apache/commons-lang", ""},
		{"shorthand with slash ref", "apache/commons-lang@rel/commons-lang-3.14.0", "https://github.com/apache/commons-lang", "rel/commons-lang-3.14.0"},
		{"shorthand with branch", "owner/repo@feature-branch", "https://github.com/owner/repo", "feature-branch"},
		{"host without scheme", "github.com/google/guava", "https://github.com/google/guava", ""},
		{"host with ref", "github.com/google/guava@v33.0.0", "https://github.com/google/guava", "v33.0.0"},
		{"https URL", "https://gitlab.com/group/project", "https://gitlab.com/group/project", ""},
		{"ssh URL", "git@github.com:owner/repo.git", "git@github.com:owner/repo.git", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src == nil {
				t.Fatal("expected Source, got nil")
			}
			if src.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", src.URL, tt.wantURL)
			}
			if src.Ref != tt.wantRef {
				t.Errorf("Ref = %q, want %q", src.Ref, tt.wantRef)
			}
		})
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	cloneDir := filepath.Join(dir, "clone")
	if err := os.MkdirAll(cloneDir, 0o755); err != nil {
		t.Fatal(err)
	}

	src := &Source{CloneDir: cloneDir}
	if err := src.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if _, err := os.Stat(cloneDir); !os.IsNotExist(err) {
		t.Error("Cleanup() should remove the clone dir")
	}
	if err := src.Cleanup(); err != nil {
		t.Errorf("second Cleanup() error: %v", err)
	}
}

// initOrigin creates a repository with two commits and a tag on the first.
func initOrigin(t *testing.T) (string, plumbing.Hash) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}

	commit := func(content, msg string) plumbing.Hash {
		if err := os.WriteFile(filepath.Join(dir, "A.java"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := wt.Add("A.java"); err != nil {
			t.Fatal(err)
		}
		h, err := wt.Commit(msg, &git.CommitOptions{
			Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
		})
		if err != nil {
			t.Fatal(err)
		}
		return h
	}

	first := commit("class A { int v1; }\n", "v1")
	if _, err := repo.CreateTag("v1", first, nil); err != nil {
		t.Fatal(err)
	}
	commit("class A { int v2; }\n", "v2")
	return dir, first
}

func requireUploadPack(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		t.Skip("git-upload-pack not available for local clones")
	}
}

func TestSource_CloneLocal(t *testing.T) {
	requireUploadPack(t)
	origin, first := initOrigin(t)

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"default branch", "", "class A { int v2; }\n"},
		{"tag", "v1", "class A { int v1; }\n"},
		{"commit", first.String(), "class A { int v1; }\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &Source{URL: origin, Ref: tt.ref}
			if err := src.Clone(context.Background(), io.Discard, false); err != nil {
				t.Fatalf("Clone() error: %v", err)
			}
			defer src.Cleanup()

			content, err := os.ReadFile(filepath.Join(src.CloneDir, "A.java"))
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if string(content) != tt.want {
				t.Errorf("A.java = %q, want %q", content, tt.want)
			}
		})
	}
}

func TestSource_CloneMissing(t *testing.T) {
	requireUploadPack(t)

	src := &Source{URL: filepath.Join(t.TempDir(), "nope")}
	defer src.Cleanup()
	if err := src.Clone(context.Background(), io.Discard, true); err == nil {
		t.Error("Clone() of a missing repository should fail")
	}
}
