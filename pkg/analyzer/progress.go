package analyzer

import (
	"context"
	"sync"
	"sync/atomic"
)

// ProgressFunc is called to report analysis progress.
// phase names the running stage ("parse", "check"), current is the number of
// items processed in that stage, total its item count, and item the current
// file or method.
type ProgressFunc func(phase string, current, total int, item string)

// Tracker tracks progress for multi-stage analysis.
// It is safe for concurrent use from multiple goroutines.
type Tracker struct {
	mu       sync.RWMutex
	phase    string
	total    atomic.Int32
	current  atomic.Int32
	callback ProgressFunc
}

// NewTracker creates a new progress tracker with the given callback.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Start begins a new stage with total items, resetting the counters.
func (t *Tracker) Start(phase string, total int) {
	t.mu.Lock()
	t.phase = phase
	t.mu.Unlock()
	t.current.Store(0)
	t.total.Store(int32(total))
}

// Tick marks one item of the current stage as completed.
func (t *Tracker) Tick(item string) {
	current := int(t.current.Add(1))
	total := int(t.total.Load())
	if t.callback != nil {
		t.callback(t.Phase(), current, total, item)
	}
}

// Phase returns the name of the running stage.
func (t *Tracker) Phase() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.phase
}

type trackerKey struct{}

// WithTracker returns a context that carries a progress tracker.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext extracts the progress tracker from the context.
// Returns nil if no tracker was set.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
