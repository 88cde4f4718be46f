// Package resolver builds a resolved program from Java sources.
//
// Resolution runs in four phases: files are parsed in parallel, type and
// member declarations are collected into a symbol table, superclasses are
// linked by simple name, and finally every method body is converted into a
// program.Node tree whose identifiers carry resolved symbols. The resulting
// program is not modified afterwards.
package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/panbanda/accessorlint/pkg/analyzer"
	"github.com/panbanda/accessorlint/pkg/parser"
	"github.com/panbanda/accessorlint/pkg/program"
	"github.com/panbanda/accessorlint/pkg/source"
	"github.com/panbanda/accessorlint/pkg/symbols"
)

// Resolver turns Java files into a program.Program.
type Resolver struct {
	workers     int
	maxFileSize int64
	logger      *log.Logger
}

// Option is a functional option for configuring Resolver.
type Option func(*Resolver)

// WithWorkers sets the number of parse workers (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		r.workers = n
	}
}

// WithMaxFileSize skips files larger than maxSize bytes (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(r *Resolver) {
		r.maxFileSize = maxSize
	}
}

// WithLogger sets the logger used for skipped-file diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r
}

// parsedFile is the output of the parse phase for one file.
type parsedFile struct {
	path    string
	result  *parser.ParseResult
	pkg     string
	pending []pendingMethod
	unit    *program.Unit
}

// Resolve parses and resolves files read from src. Files that cannot be read
// or parsed are skipped; files with syntax errors produce degraded units.
func (r *Resolver) Resolve(ctx context.Context, files []string, src source.ContentSource) (*program.Program, error) {
	parsed := analyzer.MapFilesN(ctx, files, r.workers, func(psr *parser.Parser, path string) (*parsedFile, error) {
		if parser.DetectLanguage(path) != parser.LangJava {
			return nil, fmt.Errorf("%w: %s", parser.ErrUnsupportedLanguage, path)
		}
		content, err := src.Read(path)
		if err != nil {
			r.logger.Debug("Skipping unreadable file", "path", path, "error", err)
			return nil, err
		}
		if r.maxFileSize > 0 && int64(len(content)) > r.maxFileSize {
			r.logger.Debug("Skipping oversized file", "path", path, "size", len(content))
			return nil, fmt.Errorf("file too large: %s", path)
		}
		result, err := psr.Parse(content, parser.LangJava, path)
		if err != nil {
			r.logger.Debug("Skipping unparsable file", "path", path, "error", err)
			return nil, err
		}
		return &parsedFile{path: path, result: result}, nil
	})
	if err := ctx.Err(); err != nil {
		closeAll(parsed)
		return nil, err
	}
	defer closeAll(parsed)

	// Symbol IDs depend on declaration order; keep it stable across runs.
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].path < parsed[j].path })

	return r.build(ctx, parsed)
}

func (r *Resolver) build(ctx context.Context, parsed []*parsedFile) (*program.Program, error) {
	tbl := symbols.NewTable()
	prog := program.New(tbl)

	for _, pf := range parsed {
		pf.unit = &program.Unit{Path: pf.path}
		prog.Units = append(prog.Units, pf.unit)
		if pf.result.HasErrors() {
			pf.unit.Degraded = true
			r.logger.Debug("Syntax errors, skipping semantic analysis", "path", pf.path)
			continue
		}
		d := &declarer{tbl: tbl, file: pf.path, src: pf.result.Source}
		pf.pkg = d.declareFile(pf.result.Root(), &pf.pending)
		pf.unit.Package = pf.pkg
	}

	linkSupertypes(tbl)

	for _, pf := range parsed {
		if pf.unit.Degraded {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := newBodyResolver(tbl, pf)
		for _, pm := range pf.pending {
			pf.unit.Methods = append(pf.unit.Methods, b.resolveMethod(pm, nil)...)
		}
	}

	return prog, nil
}

func closeAll(parsed []*parsedFile) {
	for _, pf := range parsed {
		if pf != nil {
			pf.result.Close()
		}
	}
}
