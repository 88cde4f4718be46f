// Package program describes a resolved Java program: compilation units,
// method descriptors and resolved method bodies.
//
// A Program is produced by the resolver and is read-only afterwards, so
// analyzers may inspect it from many goroutines at once.
package program

import (
	"github.com/panbanda/accessorlint/pkg/symbols"
)

// Program is a set of compilation units sharing one symbol table.
type Program struct {
	Symbols *symbols.Table
	Units   []*Unit
}

// New creates an empty program backed by tbl.
func New(tbl *symbols.Table) *Program {
	if tbl == nil {
		tbl = symbols.NewTable()
	}
	return &Program{Symbols: tbl}
}

// Methods returns the methods of every non-degraded unit.
func (p *Program) Methods() []*Method {
	var methods []*Method
	for _, u := range p.Units {
		if u.Degraded {
			continue
		}
		methods = append(methods, u.Methods...)
	}
	return methods
}

// Unit is one source file.
type Unit struct {
	Path    string
	Package string
	// Degraded is set when the file could not be fully parsed or resolved.
	// Rules that need complete semantic information must skip such units.
	Degraded bool
	Methods  []*Method
}

// Method is a method declaration with its resolved signature and body.
type Method struct {
	Symbol     symbols.SymbolID
	Name       string
	ParamTypes []string
	ReturnType string
	Void       bool
	Modifiers  symbols.Modifiers
	Owner      symbols.SymbolID
	// NamePos is the position of the method name token.
	NamePos symbols.Position
	// Body is nil for abstract and native methods.
	Body *Node
}

// IsPrivate reports whether the method is declared private.
func (m *Method) IsPrivate() bool { return m.Modifiers.Has(symbols.ModPrivate) }

// IsStatic reports whether the method is declared static.
func (m *Method) IsStatic() bool { return m.Modifiers.Has(symbols.ModStatic) }
