package program

import (
	"testing"

	"github.com/panbanda/accessorlint/pkg/symbols"
	"github.com/stretchr/testify/assert"
)

func TestProgram_MethodsSkipsDegradedUnits(t *testing.T) {
	p := New(nil)
	good := &Method{Name: "getX"}
	bad := &Method{Name: "getY"}
	p.Units = []*Unit{
		{Path: "A.java", Methods: []*Method{good}},
		{Path: "B.java", Degraded: true, Methods: []*Method{bad}},
	}

	assert.NotNil(t, p.Symbols)
	assert.Equal(t, []*Method{good}, p.Methods())
}

func TestMethod_Modifiers(t *testing.T) {
	m := &Method{Modifiers: symbols.ModPrivate | symbols.ModStatic}
	assert.True(t, m.IsPrivate())
	assert.True(t, m.IsStatic())

	m = &Method{Modifiers: symbols.ModPublic}
	assert.False(t, m.IsPrivate())
	assert.False(t, m.IsStatic())
}

func TestInspectAndIdents(t *testing.T) {
	x := &Node{Kind: NodeIdent, Name: "x", Symbol: 3}
	y := &Node{Kind: NodeIdent, Name: "y", Symbol: 4}
	lambda := (&Node{Kind: NodeLambda}).Add(y)
	body := (&Node{Kind: NodeBlock}).Add(
		(&Node{Kind: NodeStmt}).Add(x, nil),
		lambda,
	)

	assert.Equal(t, []*Node{x, y}, Idents(body))

	var kinds []NodeKind
	Inspect(body, func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != NodeLambda
	})
	assert.Equal(t, []NodeKind{NodeBlock, NodeStmt, NodeIdent, NodeLambda}, kinds)

	assert.Empty(t, Idents(nil))
	assert.Equal(t, "lambda", NodeLambda.String())
}
