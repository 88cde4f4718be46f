package accessors

import (
	"fmt"

	"github.com/panbanda/accessorlint/pkg/program"
	"github.com/panbanda/accessorlint/pkg/symbols"
)

// Checker applies the accessor rule to the methods of one program.
// It only reads the symbol table and is safe for concurrent use.
type Checker struct {
	tbl   *symbols.Table
	kinds map[Kind]bool
}

// NewChecker creates a checker over tbl. With no kinds, getters and setters
// are both checked.
func NewChecker(tbl *symbols.Table, kinds ...Kind) *Checker {
	if len(kinds) == 0 {
		kinds = []Kind{KindGetter, KindSetter}
	}
	c := &Checker{tbl: tbl, kinds: make(map[Kind]bool, len(kinds))}
	for _, k := range kinds {
		c.kinds[k] = true
	}
	return c
}

// Result is the outcome of checking one method.
type Result struct {
	Candidates int
	Findings   []Finding
}

// Check classifies m and reports every accessor whose body never refers to
// the field it is named after.
func (c *Checker) Check(m *program.Method) Result {
	var res Result
	for _, cand := range Classify(m) {
		if !c.kinds[cand.Kind] {
			continue
		}
		res.Candidates++

		owners, ok := c.fieldOwners(m.Owner, cand.Field)
		if !ok {
			continue
		}
		if c.referencesField(m.Body, cand.Field, owners) {
			continue
		}
		res.Findings = append(res.Findings, c.finding(cand))
	}
	return res
}

// fieldOwners looks up the fields called name visible from owner, including
// inherited ones. It fails unless at least one of them is private or
// protected; public and package-private fields may be accessed directly.
func (c *Checker) fieldOwners(owner symbols.SymbolID, name string) (map[symbols.SymbolID]bool, bool) {
	owners := make(map[symbols.SymbolID]bool)
	accessible := false
	for _, id := range c.tbl.LookupSymbols(owner, name) {
		sym := c.tbl.Get(id)
		if sym.Kind != symbols.KindField {
			continue
		}
		if fo := c.tbl.Get(sym.Owner); fo == nil || fo.Kind != symbols.KindType {
			continue
		}
		owners[sym.Owner] = true
		if sym.IsPrivate() || sym.IsProtected() {
			accessible = true
		}
	}
	return owners, accessible
}

// referencesField reports whether any identifier under body resolves to a
// symbol called name owned by one of owners. A nil body refers to nothing.
func (c *Checker) referencesField(body *program.Node, name string, owners map[symbols.SymbolID]bool) bool {
	for _, id := range program.Idents(body) {
		if id.Name != name {
			continue
		}
		if sym := c.tbl.Get(id.Symbol); sym != nil && sym.Name == name && owners[sym.Owner] {
			return true
		}
	}
	return false
}

func (c *Checker) finding(cand Candidate) Finding {
	m := cand.Method
	msg := fmt.Sprintf("Refactor this %s so that it actually refers to the field \"%s\".", cand.Kind, cand.Field)
	method := c.tbl.QualifiedName(m.Symbol)
	return Finding{
		Rule:        RuleKey,
		File:        m.NamePos.File,
		Line:        m.NamePos.Line,
		Column:      m.NamePos.Column,
		Method:      method,
		Kind:        cand.Kind,
		Field:       cand.Field,
		Message:     msg,
		Fingerprint: fingerprint(m.NamePos.File, method, msg),
	}
}
