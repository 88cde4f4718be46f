package analyzer

import (
	"context"

	"github.com/panbanda/accessorlint/pkg/source"
)

// SourceFileAnalyzer is the interface that file-based analyzers implement.
// Files are read through src so that the same analyzer serves the working
// tree and historical git revisions.
type SourceFileAnalyzer[T any] interface {
	// Analyze processes a collection of files and returns the analysis result.
	// The context can be used for cancellation and progress reporting.
	Analyze(ctx context.Context, files []string, src source.ContentSource) (T, error)
}
