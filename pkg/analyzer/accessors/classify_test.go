package accessors

import (
	"testing"

	"github.com/panbanda/accessorlint/pkg/program"
	"github.com/panbanda/accessorlint/pkg/symbols"
	"github.com/stretchr/testify/assert"
)

func TestClassifyGetter(t *testing.T) {
	tests := []struct {
		name   string
		method program.Method
		field  string
		ok     bool
	}{
		{"get prefix", program.Method{Name: "getFoo"}, "foo", true},
		{"is prefix", program.Method{Name: "isActive"}, "active", true},
		{"acronym keeps case", program.Method{Name: "getXMLName"}, "xMLName", true},
		{"single letter", program.Method{Name: "getX"}, "x", true},
		{"bare get", program.Method{Name: "get"}, "", false},
		{"bare is", program.Method{Name: "is"}, "", false},
		{"has parameters", program.Method{Name: "getFoo", ParamTypes: []string{"int"}}, "", false},
		{"private", program.Method{Name: "getFoo", Modifiers: symbols.ModPrivate}, "", false},
		{"static", program.Method{Name: "getFoo", Modifiers: symbols.ModPublic | symbols.ModStatic}, "", false},
		{"other prefix", program.Method{Name: "hasFoo"}, "", false},
		{"lower-case suffix", program.Method{Name: "getfoo"}, "foo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ClassifyGetter(&tt.method)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, KindGetter, c.Kind)
				assert.Equal(t, tt.field, c.Field)
				assert.Same(t, &tt.method, c.Method)
			}
		})
	}
}

func TestClassifySetter(t *testing.T) {
	one := []string{"int"}
	tests := []struct {
		name   string
		method program.Method
		field  string
		ok     bool
	}{
		{"setter", program.Method{Name: "setFoo", ParamTypes: one, Void: true}, "foo", true},
		{"acronym", program.Method{Name: "setURL", ParamTypes: one, Void: true}, "uRL", true},
		{"bare set", program.Method{Name: "set", ParamTypes: one, Void: true}, "", false},
		{"not void", program.Method{Name: "setFoo", ParamTypes: one, ReturnType: "A"}, "", false},
		{"no parameter", program.Method{Name: "setFoo", Void: true}, "", false},
		{"two parameters", program.Method{Name: "setFoo", ParamTypes: []string{"int", "int"}, Void: true}, "", false},
		{"private", program.Method{Name: "setFoo", ParamTypes: one, Void: true, Modifiers: symbols.ModPrivate}, "", false},
		{"static", program.Method{Name: "setFoo", ParamTypes: one, Void: true, Modifiers: symbols.ModStatic}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ClassifySetter(&tt.method)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, KindSetter, c.Kind)
				assert.Equal(t, tt.field, c.Field)
			}
		})
	}
}

func TestClassify_EvaluatesBothShapes(t *testing.T) {
	assert.Len(t, Classify(&program.Method{Name: "getFoo"}), 1)
	assert.Len(t, Classify(&program.Method{Name: "setFoo", ParamTypes: []string{"int"}, Void: true}), 1)
	assert.Empty(t, Classify(&program.Method{Name: "run"}))
}

func TestLowerFirst(t *testing.T) {
	assert.Equal(t, "foo", lowerFirst("Foo"))
	assert.Equal(t, "xMLName", lowerFirst("XMLName"))
	assert.Equal(t, "élan", lowerFirst("Élan"))
	assert.Equal(t, "", lowerFirst(""))
	assert.Equal(t, "_x", lowerFirst("_x"))
}
