package analyzer

import (
	"context"
	"runtime"
	"sync"

	"github.com/panbanda/accessorlint/pkg/parser"
	"github.com/sourcegraph/conc/pool"
)

// MapFilesN processes files in parallel, calling fn for each file with a
// dedicated parser. Results are collected in arbitrary order and files whose
// fn fails are skipped. If maxWorkers is <= 0, defaults to 2x NumCPU. Files not yet started when ctx
// is cancelled are skipped. The tracker carried by ctx, if any, runs a "parse"
// stage ticked once per file.
func MapFilesN[T any](ctx context.Context, files []string, maxWorkers int, fn func(*parser.Parser, string) (T, error)) []T {
	if len(files) == 0 {
		return nil
	}

	if maxWorkers <= 0 {
		maxWorkers = DefaultWorkers()
	}

	tracker := TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Start("parse", len(files))
	}

	results := make([]T, 0, len(files))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for _, path := range files {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}

			psr := parser.New()
			defer psr.Close()

			result, err := fn(psr, path)

			if tracker != nil {
				tracker.Tick(path)
			}

			if err != nil {
				return
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	return results
}

// DefaultWorkers returns the default worker count (2x NumCPU).
func DefaultWorkers() int {
	return runtime.NumCPU() * 2
}
