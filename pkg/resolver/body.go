package resolver

import (
	"strings"

	"github.com/panbanda/accessorlint/pkg/parser"
	"github.com/panbanda/accessorlint/pkg/program"
	"github.com/panbanda/accessorlint/pkg/symbols"
	sitter "github.com/smacker/go-tree-sitter"
)

// frame is one level of name lookup: either a lexical scope of variables or
// an enclosing type whose fields (own and inherited) are visible.
type frame struct {
	vars map[string]symbols.SymbolID
	typ  symbols.SymbolID
}

// bodyResolver converts method bodies of one file into resolved node trees.
type bodyResolver struct {
	tbl  *symbols.Table
	file string
	pkg  string
	src  []byte
	decl *declarer

	frames []frame
	// method owns the parameters and locals being declared.
	method symbols.SymbolID
	// extra collects methods of local and anonymous classes.
	extra []*program.Method
}

func newBodyResolver(tbl *symbols.Table, pf *parsedFile) *bodyResolver {
	src := pf.result.Source
	return &bodyResolver{
		tbl:  tbl,
		file: pf.path,
		pkg:  pf.pkg,
		src:  src,
		decl: &declarer{tbl: tbl, file: pf.path, src: src, pkg: pf.pkg},
	}
}

// resolveMethod resolves the signature and body of pm. outer holds the frames
// visible around a local or anonymous class; it is nil for member methods.
// The returned slice starts with pm's method, followed by methods of classes
// declared inside its body.
func (b *bodyResolver) resolveMethod(pm pendingMethod, outer []frame) []*program.Method {
	savedFrames, savedMethod, start := b.frames, b.method, len(b.extra)
	defer func() {
		b.frames, b.method = savedFrames, savedMethod
	}()

	b.frames = append([]frame(nil), outer...)
	for _, typ := range pm.chain {
		b.frames = append(b.frames, frame{typ: typ})
	}
	b.method = pm.symbol

	sym := b.tbl.Get(pm.symbol)
	m := &program.Method{
		Symbol:     pm.symbol,
		Name:       sym.Name,
		ReturnType: sym.TypeName,
		Void:       sym.TypeName == "void",
		Modifiers:  sym.Modifiers,
		Owner:      pm.owner,
		NamePos:    sym.Pos,
	}

	b.push()
	for _, p := range parser.NamedChildren(pm.node.ChildByFieldName("parameters")) {
		typeName, name := b.parameter(p)
		if name == nil {
			continue
		}
		m.ParamTypes = append(m.ParamTypes, typeName)
		b.declare(name, typeName, symbols.KindParam)
	}
	if body := pm.node.ChildByFieldName("body"); body != nil {
		m.Body = b.convert(body)
	}
	b.pop()

	extras := append([]*program.Method(nil), b.extra[start:]...)
	b.extra = b.extra[:start]
	return append([]*program.Method{m}, extras...)
}

// parameter returns the declared type and name node of a formal or spread
// parameter. Receiver parameters yield a nil name.
func (b *bodyResolver) parameter(p *sitter.Node) (string, *sitter.Node) {
	switch p.Type() {
	case "formal_parameter":
		typeName := parser.GetNodeText(p.ChildByFieldName("type"), b.src) + parser.GetNodeText(p.ChildByFieldName("dimensions"), b.src)
		return typeName, p.ChildByFieldName("name")
	case "spread_parameter":
		var typeName string
		var name *sitter.Node
		for _, c := range parser.NamedChildren(p) {
			switch c.Type() {
			case "variable_declarator":
				name = c.ChildByFieldName("name")
			case "modifiers":
			default:
				typeName = parser.GetNodeText(c, b.src) + "..."
			}
		}
		return typeName, name
	default:
		return "", nil
	}
}

func (b *bodyResolver) push() {
	b.frames = append(b.frames, frame{vars: make(map[string]symbols.SymbolID)})
}

func (b *bodyResolver) pop() {
	b.frames = b.frames[:len(b.frames)-1]
}

// declare adds a parameter or local to the innermost scope and returns its
// identifier node.
func (b *bodyResolver) declare(name *sitter.Node, typeName string, kind symbols.Kind) *program.Node {
	text := parser.GetNodeText(name, b.src)
	id := b.tbl.Add(symbols.Symbol{
		Name:     text,
		Kind:     kind,
		Owner:    b.method,
		TypeName: typeName,
		Package:  b.pkg,
		Pos:      position(b.file, name),
	})
	for i := len(b.frames) - 1; i >= 0; i-- {
		if b.frames[i].vars != nil {
			b.frames[i].vars[text] = id
			break
		}
	}
	return b.ident(name, text, id)
}

func (b *bodyResolver) ident(n *sitter.Node, name string, id symbols.SymbolID) *program.Node {
	return &program.Node{
		Kind:   program.NodeIdent,
		Type:   "identifier",
		Pos:    position(b.file, n),
		Name:   name,
		Symbol: id,
	}
}

// resolveName looks a simple name up through the lexical frames, innermost
// first. Type frames contribute their own and inherited fields.
func (b *bodyResolver) resolveName(name string) symbols.SymbolID {
	for i := len(b.frames) - 1; i >= 0; i-- {
		f := b.frames[i]
		if f.vars != nil {
			if id, ok := f.vars[name]; ok {
				return id
			}
			continue
		}
		if id := b.tbl.LookupField(f.typ, name); id.IsValid() {
			return id
		}
	}
	return symbols.NoSymbol
}

// enclosingType returns the innermost enclosing type.
func (b *bodyResolver) enclosingType() symbols.SymbolID {
	for i := len(b.frames) - 1; i >= 0; i-- {
		if b.frames[i].vars == nil {
			return b.frames[i].typ
		}
	}
	return symbols.NoSymbol
}

// skippedTypes are node types that never contain variable references.
var skippedTypes = map[string]bool{
	"type_identifier":        true,
	"scoped_type_identifier": true,
	"generic_type":           true,
	"array_type":             true,
	"integral_type":          true,
	"floating_point_type":    true,
	"boolean_type":           true,
	"void_type":              true,
	"type_arguments":         true,
	"type_parameters":        true,
	"annotation":             true,
	"marker_annotation":      true,
	"modifiers":              true,
	"dimensions":             true,
	"scoped_identifier":      true,
	"class_literal":          true,
	"line_comment":           true,
	"block_comment":          true,
	"ERROR":                  true,
}

// scopedTypes open a new lexical scope for the declarations they contain.
var scopedTypes = map[string]bool{
	"block":                        true,
	"constructor_body":             true,
	"switch_block":                 true,
	"for_statement":                true,
	"try_with_resources_statement": true,
	"catch_clause":                 true,
}

// convert turns a tree-sitter node into a resolved body node.
func (b *bodyResolver) convert(n *sitter.Node) *program.Node {
	if n == nil {
		return nil
	}
	t := n.Type()
	if skippedTypes[t] {
		return nil
	}

	switch {
	case t == "identifier":
		name := parser.GetNodeText(n, b.src)
		return b.ident(n, name, b.resolveName(name))

	case t == "enhanced_for_statement":
		b.push()
		defer b.pop()
		node := b.node(program.NodeStmt, n)
		node.Add(b.convert(n.ChildByFieldName("value")))
		node.Add(b.declare(n.ChildByFieldName("name"), parser.GetNodeText(n.ChildByFieldName("type"), b.src), symbols.KindLocal))
		return node.Add(b.convert(n.ChildByFieldName("body")))

	case scopedTypes[t]:
		b.push()
		defer b.pop()
		kind := program.NodeStmt
		if t == "block" || t == "constructor_body" || t == "switch_block" {
			kind = program.NodeBlock
		}
		return b.convertChildren(b.node(kind, n), n)

	case t == "switch_block_statement_group" || t == "switch_rule":
		// Locals of one case group stay visible in the following groups.
		return b.convertChildren(b.node(program.NodeStmt, n), n)

	case t == "local_variable_declaration":
		return b.variables(b.node(program.NodeStmt, n), n, parser.GetNodeText(n.ChildByFieldName("type"), b.src))

	case t == "catch_formal_parameter":
		node := b.node(program.NodeExpr, n)
		typeName := parser.GetNodeText(parser.ChildOfType(n, "catch_type"), b.src)
		return node.Add(b.declare(n.ChildByFieldName("name"), typeName, symbols.KindLocal))

	case t == "resource":
		name := n.ChildByFieldName("name")
		if name == nil {
			return b.convertChildren(b.node(program.NodeExpr, n), n)
		}
		node := b.node(program.NodeExpr, n)
		node.Add(b.convert(n.ChildByFieldName("value")))
		return node.Add(b.declare(name, parser.GetNodeText(n.ChildByFieldName("type"), b.src), symbols.KindLocal))

	case t == "type_pattern":
		node := b.node(program.NodeExpr, n)
		var typeName string
		for _, c := range parser.NamedChildren(n) {
			if c.Type() == "identifier" {
				node.Add(b.declare(c, typeName, symbols.KindLocal))
			} else {
				typeName = parser.GetNodeText(c, b.src)
			}
		}
		return node

	case t == "instanceof_expression":
		node := b.node(program.NodeExpr, n)
		node.Add(b.convert(n.ChildByFieldName("left")))
		right := n.ChildByFieldName("right")
		node.Add(b.convert(right))
		if name := n.ChildByFieldName("name"); name != nil {
			node.Add(b.declare(name, parser.GetNodeText(right, b.src), symbols.KindLocal))
		}
		return node

	case t == "field_access":
		return b.fieldAccess(n)

	case t == "method_invocation":
		return b.methodInvocation(n)

	case t == "method_reference":
		return b.methodReference(n)

	case t == "lambda_expression":
		return b.lambda(n)

	case t == "object_creation_expression":
		return b.objectCreation(n)

	case isTypeDecl(t):
		return b.localType(n)

	case t == "labeled_statement":
		node := b.node(program.NodeStmt, n)
		for _, c := range parser.NamedChildren(n) {
			if c.Type() != "identifier" {
				node.Add(b.convert(c))
			}
		}
		return node

	case t == "break_statement" || t == "continue_statement":
		return b.node(program.NodeStmt, n)

	case t == "cast_expression":
		return b.node(program.NodeExpr, n).Add(b.convert(n.ChildByFieldName("value")))

	case strings.HasSuffix(t, "_statement"):
		return b.convertChildren(b.node(program.NodeStmt, n), n)

	default:
		return b.convertChildren(b.node(program.NodeExpr, n), n)
	}
}

func (b *bodyResolver) node(kind program.NodeKind, n *sitter.Node) *program.Node {
	return &program.Node{Kind: kind, Type: n.Type(), Pos: position(b.file, n)}
}

func (b *bodyResolver) convertChildren(node *program.Node, n *sitter.Node) *program.Node {
	for _, c := range parser.NamedChildren(n) {
		node.Add(b.convert(c))
	}
	return node
}

// variables declares every variable_declarator under n. Initializers are
// resolved before the variable they initialize is declared.
func (b *bodyResolver) variables(node *program.Node, n *sitter.Node, typeName string) *program.Node {
	for _, decl := range parser.NamedChildren(n) {
		if decl.Type() != "variable_declarator" {
			continue
		}
		node.Add(b.convert(decl.ChildByFieldName("value")))
		dims := parser.GetNodeText(decl.ChildByFieldName("dimensions"), b.src)
		node.Add(b.declare(decl.ChildByFieldName("name"), typeName+dims, symbols.KindLocal))
	}
	return node
}

// fieldAccess resolves "qualifier.name" against the static type of the
// qualifier, so a same-named field of an unrelated type keeps its own owner.
func (b *bodyResolver) fieldAccess(n *sitter.Node) *program.Node {
	node := b.node(program.NodeExpr, n)
	object := n.ChildByFieldName("object")
	node.Add(b.convert(object))

	field := n.ChildByFieldName("field")
	if field == nil || field.Type() != "identifier" {
		return node
	}
	name := parser.GetNodeText(field, b.src)
	var id symbols.SymbolID
	if typ := b.typeOf(object); typ.IsValid() {
		id = b.tbl.LookupField(typ, name)
	}
	return node.Add(b.ident(field, name, id))
}

func (b *bodyResolver) methodInvocation(n *sitter.Node) *program.Node {
	node := b.node(program.NodeExpr, n)
	object := n.ChildByFieldName("object")
	node.Add(b.convert(object))

	if name := n.ChildByFieldName("name"); name != nil {
		text := parser.GetNodeText(name, b.src)
		node.Add(b.ident(name, text, b.lookupMethod(object, text)))
	}
	return node.Add(b.convert(n.ChildByFieldName("arguments")))
}

// methodReference resolves the qualifier of "qualifier::name" as an
// expression and name as a method of the qualifier's type.
func (b *bodyResolver) methodReference(n *sitter.Node) *program.Node {
	node := b.node(program.NodeExpr, n)
	qualifier := n.NamedChild(0)
	node.Add(b.convert(qualifier))

	count := int(n.NamedChildCount())
	if count < 2 {
		return node
	}
	name := n.NamedChild(count - 1)
	if name.Type() != "identifier" {
		return node
	}
	text := parser.GetNodeText(name, b.src)
	return node.Add(b.ident(name, text, b.lookupMethod(qualifier, text)))
}

// lookupMethod resolves a method name on the qualifier type, or on the
// enclosing types when unqualified.
func (b *bodyResolver) lookupMethod(object *sitter.Node, name string) symbols.SymbolID {
	var owners []symbols.SymbolID
	if object != nil {
		owners = append(owners, b.typeOf(object))
	} else {
		for i := len(b.frames) - 1; i >= 0; i-- {
			if b.frames[i].vars == nil {
				owners = append(owners, b.frames[i].typ)
			}
		}
	}
	for _, owner := range owners {
		for _, id := range b.tbl.LookupSymbols(owner, name) {
			if b.tbl.Get(id).Kind == symbols.KindMethod {
				return id
			}
		}
	}
	return symbols.NoSymbol
}

func (b *bodyResolver) lambda(n *sitter.Node) *program.Node {
	b.push()
	defer b.pop()

	node := b.node(program.NodeLambda, n)
	params := n.ChildByFieldName("parameters")
	switch {
	case params == nil:
	case params.Type() == "identifier":
		node.Add(b.declare(params, "", symbols.KindParam))
	default:
		for _, p := range parser.NamedChildren(params) {
			if p.Type() == "identifier" {
				node.Add(b.declare(p, "", symbols.KindParam))
				continue
			}
			if typeName, name := b.parameter(p); name != nil {
				node.Add(b.declare(name, typeName, symbols.KindParam))
			}
		}
	}
	return node.Add(b.convert(n.ChildByFieldName("body")))
}

func (b *bodyResolver) objectCreation(n *sitter.Node) *program.Node {
	node := b.node(program.NodeExpr, n)
	typeNode := n.ChildByFieldName("type")
	var classBody *sitter.Node
	for _, c := range parser.NamedChildren(n) {
		switch {
		case c.Type() == "class_body":
			classBody = c
		case sameNode(c, typeNode):
		default:
			node.Add(b.convert(c))
		}
	}
	if classBody == nil {
		return node
	}

	var pending []pendingMethod
	before := b.tbl.Len()
	id := b.decl.declareAnonymous(classBody, parser.GetNodeText(typeNode, b.src), b.method, &pending)
	b.linkFrom(before)
	return node.Add(b.classBody(id, classBody, pending))
}

// localType declares a class, interface, enum or record declared inside a
// method body.
func (b *bodyResolver) localType(n *sitter.Node) *program.Node {
	var pending []pendingMethod
	before := b.tbl.Len()
	id := b.decl.declareType(n, b.method, nil, &pending)
	b.linkFrom(before)
	return b.node(program.NodeStmt, n).Add(b.classBody(id, n.ChildByFieldName("body"), pending))
}

// linkFrom links supertypes of types added after the table had before symbols.
func (b *bodyResolver) linkFrom(before int) {
	for i := before + 1; i <= b.tbl.Len(); i++ {
		if id := symbols.SymbolID(i); b.tbl.Get(id).Kind == symbols.KindType {
			linkSupertype(b.tbl, id)
		}
	}
}

// classBody resolves the methods and field initializers of a local or
// anonymous class. Their bodies become children of the returned node so that
// references inside them count for the enclosing method.
func (b *bodyResolver) classBody(typ symbols.SymbolID, body *sitter.Node, pending []pendingMethod) *program.Node {
	node := &program.Node{Kind: program.NodeClassBody, Type: "class_body", Pos: position(b.file, body)}
	outer := append([]frame(nil), b.frames...)

	b.frames = append(b.frames, frame{typ: typ})
	for _, member := range parser.NamedChildren(body) {
		if member.Type() != "field_declaration" {
			continue
		}
		for _, decl := range parser.NamedChildren(member) {
			if decl.Type() == "variable_declarator" {
				node.Add(b.convert(decl.ChildByFieldName("value")))
			}
		}
	}
	b.frames = outer

	for _, pm := range pending {
		methods := b.resolveMethod(pm, outer)
		node.Add(methods[0].Body)
		b.extra = append(b.extra, methods...)
	}
	return node
}

// typeOf returns the project type of a qualifier expression, or NoSymbol when
// it is not statically known.
func (b *bodyResolver) typeOf(n *sitter.Node) symbols.SymbolID {
	if n == nil {
		return symbols.NoSymbol
	}
	switch n.Type() {
	case "this":
		return b.enclosingType()
	case "super":
		if sym := b.tbl.Get(b.enclosingType()); sym != nil {
			return sym.Super
		}
		return symbols.NoSymbol
	case "identifier":
		name := parser.GetNodeText(n, b.src)
		if id := b.resolveName(name); id.IsValid() {
			return b.typeNamed(b.tbl.Get(id).TypeName)
		}
		// Static access through a type name.
		return b.typeNamed(name)
	case "type_identifier", "scoped_type_identifier", "generic_type":
		return b.typeNamed(parser.GetNodeText(n, b.src))
	case "field_access":
		if field := n.ChildByFieldName("field"); field != nil && field.Type() == "this" {
			return b.typeNamed(parser.GetNodeText(n.ChildByFieldName("object"), b.src))
		}
	}
	return b.typeNamed(b.declaredType(n))
}

// declaredType returns the written type of an expression as declared by its
// variable, field, method or creation expression, or "" when unknown.
func (b *bodyResolver) declaredType(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "this":
		if sym := b.tbl.Get(b.enclosingType()); sym != nil {
			return sym.Name
		}
	case "identifier":
		if id := b.resolveName(parser.GetNodeText(n, b.src)); id.IsValid() {
			return b.tbl.Get(id).TypeName
		}
	case "field_access":
		field := n.ChildByFieldName("field")
		if typ := b.typeOf(n.ChildByFieldName("object")); typ.IsValid() && field != nil {
			if id := b.tbl.LookupField(typ, parser.GetNodeText(field, b.src)); id.IsValid() {
				return b.tbl.Get(id).TypeName
			}
		}
	case "method_invocation":
		name := parser.GetNodeText(n.ChildByFieldName("name"), b.src)
		if id := b.lookupMethod(n.ChildByFieldName("object"), name); id.IsValid() {
			return b.tbl.Get(id).TypeName
		}
	case "parenthesized_expression":
		return b.declaredType(n.NamedChild(0))
	case "cast_expression", "object_creation_expression":
		return parser.GetNodeText(n.ChildByFieldName("type"), b.src)
	case "array_creation_expression":
		raw := parser.GetNodeText(n.ChildByFieldName("type"), b.src)
		for _, c := range parser.NamedChildren(n) {
			if c.Type() == "dimensions_expr" || c.Type() == "dimensions" {
				raw += parser.GetNodeText(c, b.src)
			}
		}
		return raw
	case "array_access":
		return elementType(b.declaredType(n.ChildByFieldName("array")))
	case "ternary_expression":
		consequence := b.declaredType(n.ChildByFieldName("consequence"))
		if consequence != "" && consequence == b.declaredType(n.ChildByFieldName("alternative")) {
			return consequence
		}
	}
	return ""
}

// elementType strips one array dimension from a written type. Non-array
// types yield "".
func elementType(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "...") {
		return strings.TrimSuffix(raw, "...")
	}
	if !strings.HasSuffix(raw, "]") {
		return ""
	}
	i := strings.LastIndexByte(raw, '[')
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(raw[:i])
}

func (b *bodyResolver) typeNamed(raw string) symbols.SymbolID {
	return resolveTypeName(b.tbl, raw, b.file, b.pkg)
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
