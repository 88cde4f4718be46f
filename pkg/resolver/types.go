package resolver

import (
	"strings"

	"github.com/panbanda/accessorlint/pkg/symbols"
)

// linkSupertypes resolves the written superclass of every declared type.
func linkSupertypes(tbl *symbols.Table) {
	for _, id := range tbl.Types() {
		linkSupertype(tbl, id)
	}
}

func linkSupertype(tbl *symbols.Table, id symbols.SymbolID) {
	sym := tbl.Get(id)
	if sym.SuperName == "" {
		return
	}
	if super := resolveTypeName(tbl, sym.SuperName, sym.Pos.File, sym.Package); super.IsValid() {
		tbl.SetSuper(id, super)
	}
}

// simpleTypeName reduces a written type to its simple name: generic arguments
// and qualifiers are dropped. Arrays and empty names yield "".
func simpleTypeName(raw string) string {
	name := raw
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "[]") || strings.HasSuffix(name, "...") {
		return ""
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// resolveTypeName finds the project type a written type name refers to. A
// declaration in the same file wins, then one in the same package, then a
// unique declaration anywhere. Ambiguous and unknown names are unresolved.
func resolveTypeName(tbl *symbols.Table, raw, file, pkg string) symbols.SymbolID {
	name := simpleTypeName(raw)
	if name == "" {
		return symbols.NoSymbol
	}
	candidates := tbl.TypesNamed(name)
	switch len(candidates) {
	case 0:
		return symbols.NoSymbol
	case 1:
		return candidates[0]
	}

	for _, id := range candidates {
		if tbl.Get(id).Pos.File == file {
			return id
		}
	}
	var samePkg []symbols.SymbolID
	for _, id := range candidates {
		if tbl.Get(id).Package == pkg {
			samePkg = append(samePkg, id)
		}
	}
	if len(samePkg) == 1 {
		return samePkg[0]
	}
	return symbols.NoSymbol
}
