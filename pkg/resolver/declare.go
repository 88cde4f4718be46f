package resolver

import (
	"strconv"

	"github.com/panbanda/accessorlint/pkg/parser"
	"github.com/panbanda/accessorlint/pkg/symbols"
	sitter "github.com/smacker/go-tree-sitter"
)

// pendingMethod is a declared method whose body has not been resolved yet.
type pendingMethod struct {
	node   *sitter.Node
	symbol symbols.SymbolID
	owner  symbols.SymbolID
	// chain lists the enclosing types from the outermost declaration that was
	// collected together with this method down to owner.
	chain []symbols.SymbolID
}

// typeDeclTypes are the tree-sitter node types that declare a Java type.
var typeDeclTypes = map[string]bool{
	"class_declaration":           true,
	"interface_declaration":       true,
	"enum_declaration":            true,
	"record_declaration":          true,
	"annotation_type_declaration": true,
}

func isTypeDecl(nodeType string) bool { return typeDeclTypes[nodeType] }

// declarer collects type and member declarations of one file.
type declarer struct {
	tbl  *symbols.Table
	file string
	src  []byte
	pkg  string
	// anon numbers anonymous classes per file.
	anon int
}

// declareFile declares every top-level type of the compilation unit rooted at
// root and returns the package name.
func (d *declarer) declareFile(root *sitter.Node, out *[]pendingMethod) string {
	for _, child := range parser.NamedChildren(root) {
		switch nodeType := child.Type(); {
		case nodeType == "package_declaration":
			for _, n := range parser.NamedChildren(child) {
				if n.Type() == "scoped_identifier" || n.Type() == "identifier" {
					d.pkg = parser.GetNodeText(n, d.src)
				}
			}
		case isTypeDecl(nodeType):
			d.declareType(child, symbols.NoSymbol, nil, out)
		}
	}
	return d.pkg
}

// declareType declares the type at node, its members and nested types.
func (d *declarer) declareType(node *sitter.Node, owner symbols.SymbolID, chain []symbols.SymbolID, out *[]pendingMethod) symbols.SymbolID {
	nodeType := node.Type()
	mods := d.modifiers(node)

	sym := symbols.Symbol{
		Name:       parser.GetNodeText(node.ChildByFieldName("name"), d.src),
		Kind:       symbols.KindType,
		Owner:      owner,
		Modifiers:  mods,
		Visibility: mods.Visibility(),
		Package:    d.pkg,
		Pos:        d.pos(node),
	}
	if nodeType == "class_declaration" {
		if sc := node.ChildByFieldName("superclass"); sc != nil {
			for _, n := range parser.NamedChildren(sc) {
				sym.SuperName = parser.GetNodeText(n, d.src)
			}
		}
	}
	id := d.tbl.Add(sym)
	typeChain := append(append([]symbols.SymbolID(nil), chain...), id)

	if nodeType == "record_declaration" {
		// Record components are private final fields.
		if params := node.ChildByFieldName("parameters"); params != nil {
			for _, p := range parser.NamedChildren(params) {
				if p.Type() != "formal_parameter" {
					continue
				}
				d.tbl.Add(symbols.Symbol{
					Name:       parser.GetNodeText(p.ChildByFieldName("name"), d.src),
					Kind:       symbols.KindField,
					Owner:      id,
					Modifiers:  symbols.ModPrivate | symbols.ModFinal,
					Visibility: symbols.VisibilityPrivate,
					TypeName:   parser.GetNodeText(p.ChildByFieldName("type"), d.src),
					Package:    d.pkg,
					Pos:        d.pos(p),
				})
			}
		}
	}

	d.declareBody(node.ChildByFieldName("body"), id, nodeType == "interface_declaration", typeChain, out)
	return id
}

// declareAnonymous declares an anonymous class body whose superclass is written
// as superName. owner is the method the class expression appears in.
func (d *declarer) declareAnonymous(body *sitter.Node, superName string, owner symbols.SymbolID, out *[]pendingMethod) symbols.SymbolID {
	d.anon++
	id := d.tbl.Add(symbols.Symbol{
		Name:      "$" + strconv.Itoa(d.anon),
		Kind:      symbols.KindType,
		Owner:     owner,
		SuperName: superName,
		Package:   d.pkg,
		Pos:       d.pos(body),
	})
	d.declareBody(body, id, false, []symbols.SymbolID{id}, out)
	return id
}

// declareBody declares the members found in a class, interface, enum or
// anonymous class body.
func (d *declarer) declareBody(body *sitter.Node, owner symbols.SymbolID, iface bool, chain []symbols.SymbolID, out *[]pendingMethod) {
	for _, member := range parser.NamedChildren(body) {
		switch nodeType := member.Type(); {
		case nodeType == "field_declaration" || nodeType == "constant_declaration":
			d.declareFields(member, owner, iface || nodeType == "constant_declaration")
		case nodeType == "method_declaration":
			d.declareMethod(member, owner, iface, chain, out)
		case nodeType == "enum_constant":
			d.tbl.Add(symbols.Symbol{
				Name:       parser.GetNodeText(member.ChildByFieldName("name"), d.src),
				Kind:       symbols.KindField,
				Owner:      owner,
				Modifiers:  symbols.ModPublic | symbols.ModStatic | symbols.ModFinal,
				Visibility: symbols.VisibilityPublic,
				TypeName:   d.tbl.Get(owner).Name,
				Package:    d.pkg,
				Pos:        d.pos(member),
			})
		case nodeType == "enum_body_declarations":
			d.declareBody(member, owner, false, chain, out)
		case isTypeDecl(nodeType):
			d.declareType(member, owner, chain, out)
		}
	}
}

func (d *declarer) declareFields(node *sitter.Node, owner symbols.SymbolID, constant bool) {
	mods := d.modifiers(node)
	vis := mods.Visibility()
	if constant {
		mods |= symbols.ModPublic | symbols.ModStatic | symbols.ModFinal
		vis = symbols.VisibilityPublic
	}
	typeName := parser.GetNodeText(node.ChildByFieldName("type"), d.src)

	for _, decl := range parser.NamedChildren(node) {
		if decl.Type() != "variable_declarator" {
			continue
		}
		name := decl.ChildByFieldName("name")
		d.tbl.Add(symbols.Symbol{
			Name:       parser.GetNodeText(name, d.src),
			Kind:       symbols.KindField,
			Owner:      owner,
			Modifiers:  mods,
			Visibility: vis,
			TypeName:   typeName + parser.GetNodeText(decl.ChildByFieldName("dimensions"), d.src),
			Package:    d.pkg,
			Pos:        d.pos(name),
		})
	}
}

func (d *declarer) declareMethod(node *sitter.Node, owner symbols.SymbolID, iface bool, chain []symbols.SymbolID, out *[]pendingMethod) {
	mods := d.modifiers(node)
	vis := mods.Visibility()
	if iface && vis == symbols.VisibilityPackage {
		mods |= symbols.ModPublic
		vis = symbols.VisibilityPublic
	}
	name := node.ChildByFieldName("name")
	id := d.tbl.Add(symbols.Symbol{
		Name:       parser.GetNodeText(name, d.src),
		Kind:       symbols.KindMethod,
		Owner:      owner,
		Modifiers:  mods,
		Visibility: vis,
		TypeName:   parser.GetNodeText(node.ChildByFieldName("type"), d.src),
		Package:    d.pkg,
		Pos:        d.pos(name),
	})
	*out = append(*out, pendingMethod{node: node, symbol: id, owner: owner, chain: chain})
}

// modifiers reads the modifier keywords of a declaration. Annotations and
// unknown keywords are ignored.
func (d *declarer) modifiers(node *sitter.Node) symbols.Modifiers {
	var mods symbols.Modifiers
	m := parser.ChildOfType(node, "modifiers")
	if m == nil {
		return mods
	}
	for i := range int(m.ChildCount()) {
		mods |= symbols.ParseModifier(m.Child(i).Type())
	}
	return mods
}

func (d *declarer) pos(node *sitter.Node) symbols.Position {
	return position(d.file, node)
}

func position(file string, node *sitter.Node) symbols.Position {
	if node == nil {
		return symbols.Position{File: file}
	}
	p := node.StartPoint()
	return symbols.Position{File: file, Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}
