package accessors

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/panbanda/accessorlint/pkg/program"
)

// Kind is the accessor role a method name implies.
type Kind string

// String implements fmt.Stringer for toon serialization.
func (k Kind) String() string {
	return string(k)
}

const (
	KindGetter Kind = "getter"
	KindSetter Kind = "setter"
)

// Candidate is a method that looks like an accessor, together with the field
// its name implies.
type Candidate struct {
	Method *program.Method
	Kind   Kind
	Field  string
}

// ClassifyGetter reports whether m looks like a getter: no parameters, neither
// private nor static, named get<Suffix> or is<Suffix>.
func ClassifyGetter(m *program.Method) (Candidate, bool) {
	if len(m.ParamTypes) != 0 || m.IsPrivate() || m.IsStatic() {
		return Candidate{}, false
	}
	var suffix string
	switch {
	case len(m.Name) > 3 && strings.HasPrefix(m.Name, "get"):
		suffix = m.Name[3:]
	case len(m.Name) > 2 && strings.HasPrefix(m.Name, "is"):
		suffix = m.Name[2:]
	default:
		return Candidate{}, false
	}
	return Candidate{Method: m, Kind: KindGetter, Field: lowerFirst(suffix)}, true
}

// ClassifySetter reports whether m looks like a setter: one parameter, void,
// neither private nor static, named set<Suffix>.
func ClassifySetter(m *program.Method) (Candidate, bool) {
	if len(m.ParamTypes) != 1 || m.IsPrivate() || m.IsStatic() {
		return Candidate{}, false
	}
	if len(m.Name) <= 3 || !strings.HasPrefix(m.Name, "set") || !m.Void {
		return Candidate{}, false
	}
	return Candidate{Method: m, Kind: KindSetter, Field: lowerFirst(m.Name[3:])}, true
}

// Classify evaluates both accessor shapes independently.
func Classify(m *program.Method) []Candidate {
	var out []Candidate
	if c, ok := ClassifyGetter(m); ok {
		out = append(out, c)
	}
	if c, ok := ClassifySetter(m); ok {
		out = append(out, c)
	}
	return out
}

// lowerFirst lower-cases only the first character: "XMLName" -> "xMLName".
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
