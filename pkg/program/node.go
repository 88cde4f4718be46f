package program

import "github.com/panbanda/accessorlint/pkg/symbols"

// NodeKind is the closed set of body node variants.
type NodeKind uint8

const (
	// NodeBlock is a brace-delimited statement list.
	NodeBlock NodeKind = iota + 1
	// NodeStmt is any other statement.
	NodeStmt
	// NodeExpr is any compound expression.
	NodeExpr
	// NodeLambda is a lambda expression; its parameters are Ident children.
	NodeLambda
	// NodeClassBody is the body of an anonymous or local class.
	NodeClassBody
	// NodeIdent is an identifier carrying its resolved symbol.
	NodeIdent
)

func (k NodeKind) String() string {
	switch k {
	case NodeBlock:
		return "block"
	case NodeStmt:
		return "stmt"
	case NodeExpr:
		return "expr"
	case NodeLambda:
		return "lambda"
	case NodeClassBody:
		return "class_body"
	case NodeIdent:
		return "ident"
	default:
		return "invalid"
	}
}

// Node is one element of a resolved method body.
type Node struct {
	Kind NodeKind
	// Type is the tree-sitter node type the element came from.
	Type string
	Pos  symbols.Position
	// Name and Symbol are set for NodeIdent.
	Name     string
	Symbol   symbols.SymbolID
	Children []*Node
}

// Add appends non-nil children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Inspect traverses the tree rooted at n in depth-first order, calling fn for
// each node. Children are skipped when fn returns false.
func Inspect(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Inspect(c, fn)
	}
}

// Idents returns every identifier node under n.
func Idents(n *Node) []*Node {
	var idents []*Node
	Inspect(n, func(c *Node) bool {
		if c.Kind == NodeIdent {
			idents = append(idents, c)
		}
		return true
	})
	return idents
}
