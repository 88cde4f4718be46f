// Package symbols holds the resolved symbol table for a Java program.
//
// Symbols live in an arena owned by Table and are addressed by SymbolID.
// Two symbols are the same symbol iff their IDs are equal, which is what the
// accessor rule relies on when it compares owners.
package symbols

import "strings"

// SymbolID indexes a symbol in a Table. The zero value is NoSymbol.
type SymbolID uint32

// NoSymbol marks an unresolved reference or a missing owner.
const NoSymbol SymbolID = 0

// IsValid reports whether id refers to a symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbol }

// Kind classifies what a symbol names.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindType
	KindField
	KindMethod
	KindParam
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	case KindParam:
		return "param"
	case KindLocal:
		return "local"
	default:
		return "invalid"
	}
}

// Visibility is the Java access level of a symbol.
type Visibility uint8

const (
	VisibilityPackage Visibility = iota
	VisibilityPrivate
	VisibilityProtected
	VisibilityPublic
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityProtected:
		return "protected"
	case VisibilityPublic:
		return "public"
	default:
		return "package"
	}
}

// Modifiers is a bit set of declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModFinal
	ModAbstract
	ModDefault
	ModSynchronized
	ModNative
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModProtected, "protected"},
	{ModPrivate, "private"},
	{ModStatic, "static"},
	{ModFinal, "final"},
	{ModAbstract, "abstract"},
	{ModDefault, "default"},
	{ModSynchronized, "synchronized"},
	{ModNative, "native"},
}

// ParseModifier maps a Java modifier keyword to its bit. Unknown keywords
// (annotations, transient, ...) map to zero.
func ParseModifier(keyword string) Modifiers {
	for _, m := range modifierNames {
		if m.name == keyword {
			return m.mod
		}
	}
	return 0
}

// Has reports whether all bits of m2 are set in m.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// Visibility derives the access level from explicit modifiers only.
func (m Modifiers) Visibility() Visibility {
	switch {
	case m.Has(ModPrivate):
		return VisibilityPrivate
	case m.Has(ModProtected):
		return VisibilityProtected
	case m.Has(ModPublic):
		return VisibilityPublic
	default:
		return VisibilityPackage
	}
}

func (m Modifiers) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}

// Position is a location in a source file. Line and Column are 1-based.
type Position struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Symbol is a named program element.
type Symbol struct {
	ID         SymbolID
	Name       string
	Kind       Kind
	Owner      SymbolID // enclosing type for members, enclosing method for params and locals
	Visibility Visibility
	Modifiers  Modifiers
	// TypeName is the declared type of a variable, or the return type of a method.
	TypeName string
	// Super is the resolved superclass of a type symbol.
	Super SymbolID
	// SuperName is the superclass as written in source.
	SuperName string
	// Package is the Java package of the declaring file.
	Package string
	Pos     Position
}

// IsPrivate reports whether the symbol is private.
func (s *Symbol) IsPrivate() bool { return s.Visibility == VisibilityPrivate }

// IsProtected reports whether the symbol is protected.
func (s *Symbol) IsProtected() bool { return s.Visibility == VisibilityProtected }

// IsStatic reports whether the symbol is static.
func (s *Symbol) IsStatic() bool { return s.Modifiers.Has(ModStatic) }
