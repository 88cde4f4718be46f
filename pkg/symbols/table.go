package symbols

// Table is an arena of symbols with per-type member indexes.
//
// A Table is built by a single goroutine and must not be modified once
// analysis starts; concurrent reads are then safe.
type Table struct {
	symbols []Symbol
	// members maps a type to its member symbols by name.
	members map[SymbolID]map[string][]SymbolID
	// typesByName maps a simple type name to every type declared with it.
	typesByName map[string][]SymbolID
}

// NewTable creates an empty table. Index 0 is reserved for NoSymbol.
func NewTable() *Table {
	return &Table{
		symbols:     make([]Symbol, 1, 256),
		members:     make(map[SymbolID]map[string][]SymbolID),
		typesByName: make(map[string][]SymbolID),
	}
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int { return len(t.symbols) - 1 }

// Add stores sym and returns its ID. Members of a type (fields and methods)
// are indexed under their owner for LookupSymbols.
func (t *Table) Add(sym Symbol) SymbolID {
	id := SymbolID(len(t.symbols))
	sym.ID = id
	t.symbols = append(t.symbols, sym)

	switch sym.Kind {
	case KindType:
		t.typesByName[sym.Name] = append(t.typesByName[sym.Name], id)
	case KindField, KindMethod:
		if sym.Owner.IsValid() {
			byName := t.members[sym.Owner]
			if byName == nil {
				byName = make(map[string][]SymbolID)
				t.members[sym.Owner] = byName
			}
			byName[sym.Name] = append(byName[sym.Name], id)
		}
	}
	return id
}

// Get returns the symbol for id, or nil for NoSymbol and out-of-range IDs.
func (t *Table) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(t.symbols) {
		return nil
	}
	return &t.symbols[id]
}

// SetSuper records the resolved superclass of a type.
func (t *Table) SetSuper(typ, super SymbolID) {
	if s := t.Get(typ); s != nil && s.Kind == KindType && typ != super {
		s.Super = super
	}
}

// TypesNamed returns every type declared with the simple name.
func (t *Table) TypesNamed(name string) []SymbolID {
	return t.typesByName[name]
}

// Types returns all type symbols in declaration order.
func (t *Table) Types() []SymbolID {
	var ids []SymbolID
	for i := 1; i < len(t.symbols); i++ {
		if t.symbols[i].Kind == KindType {
			ids = append(ids, SymbolID(i))
		}
	}
	return ids
}

// Supertypes returns typ followed by its superclass chain. The walk stops at
// the first unresolved superclass or on a repeated type.
func (t *Table) Supertypes(typ SymbolID) []SymbolID {
	var chain []SymbolID
	visited := make(map[SymbolID]bool)
	for cur := typ; cur.IsValid() && !visited[cur]; {
		sym := t.Get(cur)
		if sym == nil || sym.Kind != KindType {
			break
		}
		visited[cur] = true
		chain = append(chain, cur)
		cur = sym.Super
	}
	return chain
}

// LookupSymbols returns every member named name declared on typ or on any of
// its supertypes, nearest declarations first.
func (t *Table) LookupSymbols(typ SymbolID, name string) []SymbolID {
	var found []SymbolID
	for _, cur := range t.Supertypes(typ) {
		found = append(found, t.members[cur][name]...)
	}
	return found
}

// LookupField returns the nearest field named name visible from typ, or
// NoSymbol.
func (t *Table) LookupField(typ SymbolID, name string) SymbolID {
	for _, id := range t.LookupSymbols(typ, name) {
		if t.symbols[id].Kind == KindField {
			return id
		}
	}
	return NoSymbol
}

// QualifiedName returns "Outer.Inner.member" style names for diagnostics.
func (t *Table) QualifiedName(id SymbolID) string {
	sym := t.Get(id)
	if sym == nil {
		return ""
	}
	name := sym.Name
	visited := map[SymbolID]bool{id: true}
	for owner := sym.Owner; owner.IsValid() && !visited[owner]; {
		os := t.Get(owner)
		if os == nil {
			break
		}
		visited[owner] = true
		name = os.Name + "." + name
		owner = os.Owner
	}
	return name
}
