// Package accessors checks that getters and setters refer to the field their
// name implies.
//
// A method named getFoo, isFoo or setFoo whose enclosing type can see a
// private or protected field foo (declared on the type or inherited) must
// reference that field somewhere in its body. Methods that never do are
// reported, since they usually read or write the wrong field after a
// copy-paste.
package accessors

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"github.com/panbanda/accessorlint/pkg/analyzer"
	"github.com/panbanda/accessorlint/pkg/program"
	"github.com/panbanda/accessorlint/pkg/resolver"
	"github.com/panbanda/accessorlint/pkg/source"
	"github.com/sourcegraph/conc/pool"
)

// Analyzer runs the accessor rule over Java files.
type Analyzer struct {
	workers      int
	includeTests bool
	maxFileSize  int64
	kinds        []Kind
	logger       *log.Logger
	testPatterns []*regexp.Regexp
}

// Compile-time check that Analyzer implements SourceFileAnalyzer.
var _ analyzer.SourceFileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWorkers sets the number of parse and check workers (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithIncludeTestFiles includes test sources in analysis.
// By default, test files are excluded.
func WithIncludeTestFiles() Option {
	return func(a *Analyzer) {
		a.includeTests = true
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithKinds restricts the check to the given accessor kinds.
func WithKinds(kinds ...Kind) Option {
	return func(a *Analyzer) {
		a.kinds = kinds
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates a new accessor analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		kinds:        []Kind{KindGetter, KindSetter},
		testPatterns: defaultTestPatterns(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.Default()
	}
	if a.workers <= 0 {
		a.workers = analyzer.DefaultWorkers()
	}
	return a
}

func defaultTestPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(^|/)src/test/`),
		regexp.MustCompile(`Tests?\.java$`),
		regexp.MustCompile(`IT\.java$`),
	}
}

func (a *Analyzer) isTestFile(path string) bool {
	for _, re := range a.testPatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Analyze resolves files read from src and checks every method.
func (a *Analyzer) Analyze(ctx context.Context, files []string, src source.ContentSource) (*Analysis, error) {
	selected := files
	if !a.includeTests {
		selected = make([]string, 0, len(files))
		for _, f := range files {
			if !a.isTestFile(f) {
				selected = append(selected, f)
			}
		}
		if skipped := len(files) - len(selected); skipped > 0 {
			a.logger.Debug("Skipping test files", "count", skipped)
		}
	}

	r := resolver.New(
		resolver.WithWorkers(a.workers),
		resolver.WithMaxFileSize(a.maxFileSize),
		resolver.WithLogger(a.logger),
	)
	prog, err := r.Resolve(ctx, selected, src)
	if err != nil {
		return nil, fmt.Errorf("resolving sources: %w", err)
	}
	return a.CheckProgram(ctx, prog)
}

// CheckProgram runs the rule over every method of an already resolved
// program. Methods are checked concurrently; the program is only read.
func (a *Analyzer) CheckProgram(ctx context.Context, prog *program.Program) (*Analysis, error) {
	methods := prog.Methods()
	checker := NewChecker(prog.Symbols, a.kinds...)

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Start("check", len(methods))
	}

	p := pool.NewWithResults[Result]().WithContext(ctx).WithMaxGoroutines(a.workers)
	for _, m := range methods {
		p.Go(func(ctx context.Context) (Result, error) {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			res := checker.Check(m)
			if tracker != nil {
				tracker.Tick(m.Name)
			}
			return res, nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Findings:   []Finding{},
		Summary:    NewSummary(),
		AnalyzedAt: time.Now().UTC(),
	}
	analysis.Summary.TotalFiles = len(prog.Units)
	analysis.Summary.TotalMethods = len(methods)
	for _, u := range prog.Units {
		if u.Degraded {
			analysis.Summary.DegradedFiles++
		}
	}
	for _, res := range results {
		analysis.Summary.Candidates += res.Candidates
		analysis.Findings = append(analysis.Findings, res.Findings...)
	}

	SortFindings(analysis.Findings)
	for _, f := range analysis.Findings {
		analysis.Summary.AddFinding(f)
	}

	a.logger.Debug("Accessor check complete",
		"files", analysis.Summary.TotalFiles,
		"methods", analysis.Summary.TotalMethods,
		"findings", analysis.Summary.TotalFindings)
	return analysis, nil
}
