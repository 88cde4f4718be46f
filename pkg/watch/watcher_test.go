package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/accessorlint/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, dir string, debounce time.Duration) (*Watcher, *bytes.Buffer) {
	t.Helper()
	w, err := NewWatcher(dir, config.DefaultConfig(), debounce)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	var out bytes.Buffer
	w.SetOutput(&out)
	return w, &out
}

func TestNewWatcher(t *testing.T) {
	dir := t.TempDir()

	w, _ := newTestWatcher(t, dir, 0)
	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.Equal(t, dir, w.path)
	assert.NotNil(t, w.pending)

	w, _ = newTestWatcher(t, dir, time.Second)
	assert.Equal(t, time.Second, w.debounce)

	w, err := NewWatcher(dir, nil, -time.Second)
	require.NoError(t, err)
	defer w.Stop()
	assert.NotNil(t, w.config)
	assert.Equal(t, DefaultDebounce, w.debounce)
}

func TestWatcher_AddTreeSkipsExcludedDirs(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"src/main/java", "target/classes", ".git/objects"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0o755))
	}

	w, _ := newTestWatcher(t, dir, time.Second)
	require.NoError(t, w.addTree(dir))

	watched := w.WatchedDirs()
	assert.Contains(t, watched, filepath.Join(dir, "src", "main", "java"))
	assert.NotContains(t, watched, filepath.Join(dir, "target"))
	assert.NotContains(t, watched, filepath.Join(dir, ".git"))
}

func TestWatcher_HandleEvent(t *testing.T) {
	dir := t.TempDir()
	w, _ := newTestWatcher(t, dir, time.Second)

	events := []fsnotify.Event{
		{Name: filepath.Join(dir, "A.java"), Op: fsnotify.Write},
		{Name: filepath.Join(dir, "B.java"), Op: fsnotify.Remove},
		{Name: filepath.Join(dir, "C.java"), Op: fsnotify.Chmod},
		{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write},
		{Name: filepath.Join(dir, "package-info.java"), Op: fsnotify.Write},
		{Name: filepath.Join(dir, "target", "Gen.java"), Op: fsnotify.Create},
	}
	for _, e := range events {
		w.handleEvent(e)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Len(t, w.pending, 2)
	assert.Contains(t, w.pending, filepath.Join(dir, "A.java"))
	assert.Contains(t, w.pending, filepath.Join(dir, "B.java"))
}

func TestWatcher_HandleEventWatchesNewDirs(t *testing.T) {
	dir := t.TempDir()
	w, _ := newTestWatcher(t, dir, time.Second)

	sub := filepath.Join(dir, "newpkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	w.handleEvent(fsnotify.Event{Name: sub, Op: fsnotify.Create})

	assert.Contains(t, w.WatchedDirs(), sub)
	assert.Empty(t, w.pending)
}

func TestWatcher_TakeReady(t *testing.T) {
	dir := t.TempDir()
	w, _ := newTestWatcher(t, dir, time.Second)

	now := time.Now()
	w.pending[filepath.Join(dir, "B.java")] = now.Add(-2 * time.Second)
	w.pending[filepath.Join(dir, "A.java")] = now.Add(-2 * time.Second)
	w.pending[filepath.Join(dir, "C.java")] = now

	ready := w.takeReady(now)
	assert.Equal(t, []string{filepath.Join(dir, "A.java"), filepath.Join(dir, "B.java")}, ready)
	assert.Len(t, w.pending, 1)
	assert.Empty(t, w.takeReady(now))
}

func TestWatcher_RunCallback(t *testing.T) {
	dir := t.TempDir()
	w, out := newTestWatcher(t, dir, time.Second)

	var got []string
	w.SetCallback(func(paths []string) { got = paths })
	w.runCallback([]string{filepath.Join(dir, "src", "A.java")})

	assert.Equal(t, []string{filepath.Join(dir, "src", "A.java")}, got)
	assert.Contains(t, out.String(), filepath.Join("src", "A.java"))
}

func TestWatcher_StartDeliversChanges(t *testing.T) {
	dir := t.TempDir()
	w, _ := newTestWatcher(t, dir, 50*time.Millisecond)

	var (
		mu      sync.Mutex
		batches [][]string
	)
	done := make(chan struct{}, 1)
	w.SetCallback(func(paths []string) {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	// Start registers the tree asynchronously.
	require.Eventually(t, func() bool { return len(w.WatchedDirs()) > 0 }, 2*time.Second, 10*time.Millisecond)

	path := filepath.Join(dir, "A.java")
	require.NoError(t, os.WriteFile(path, []byte("class A {}\n"), 0o644))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, batches)
	assert.Contains(t, batches[0], path)
}
