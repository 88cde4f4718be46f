package analyzer

import (
	"context"
	"sync"
	"testing"

	"github.com/panbanda/accessorlint/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressCall struct {
	phase          string
	current, total int
	item           string
}

func TestTracker_StartAndTick(t *testing.T) {
	var calls []progressCall
	var mu sync.Mutex

	tracker := NewTracker(func(phase string, current, total int, item string) {
		mu.Lock()
		calls = append(calls, progressCall{phase, current, total, item})
		mu.Unlock()
	})

	tracker.Start("parse", 2)
	tracker.Tick("A.java")
	tracker.Tick("B.java")
	tracker.Start("check", 1)
	tracker.Tick("A.getX")

	require.Len(t, calls, 3)
	assert.Equal(t, progressCall{"parse", 1, 2, "A.java"}, calls[0])
	assert.Equal(t, progressCall{"parse", 2, 2, "B.java"}, calls[1])
	assert.Equal(t, progressCall{"check", 1, 1, "A.getX"}, calls[2])

	assert.Equal(t, "check", tracker.Phase())
	assert.Equal(t, int32(1), tracker.current.Load())
	assert.Equal(t, int32(1), tracker.total.Load())
}

func TestTracker_ConcurrentTicks(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Start("parse", 100)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Tick("f")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(100), tracker.current.Load())
}

func TestTrackerContext(t *testing.T) {
	assert.Nil(t, TrackerFromContext(context.Background()))

	tracker := NewTracker(nil)
	ctx := WithTracker(context.Background(), tracker)
	assert.Same(t, tracker, TrackerFromContext(ctx))
}

func TestMapFilesN(t *testing.T) {
	files := []string{"a", "b", "c", "skip"}
	tracker := NewTracker(nil)
	ctx := WithTracker(context.Background(), tracker)

	got := MapFilesN(ctx, files, 2, func(_ *parser.Parser, path string) (string, error) {
		if path == "skip" {
			return "", assert.AnError
		}
		return path + "!", nil
	})

	assert.ElementsMatch(t, []string{"a!", "b!", "c!"}, got)
	assert.Equal(t, int32(4), tracker.current.Load())
	assert.Equal(t, "parse", tracker.Phase())
}

func TestMapFilesN_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := MapFilesN(ctx, []string{"a", "b"}, 0, func(_ *parser.Parser, path string) (string, error) {
		return path, nil
	})
	assert.Empty(t, got)
}

func TestMapFilesN_Empty(t *testing.T) {
	assert.Nil(t, MapFilesN(context.Background(), nil, 0, func(_ *parser.Parser, path string) (int, error) {
		return 0, nil
	}))
}
