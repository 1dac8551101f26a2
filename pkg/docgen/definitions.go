package docgen

import (
	"regexp"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Definition is a component found by a resolver.
type Definition struct {
	Kind DefinitionKind

	// Name is the binding the component is declared or assigned to, such
	// as "Button" or "Baz.Foo". Empty for anonymous default exports.
	Name string

	Exported bool

	// Node is the class, the component function, or the createClass spec object.
	Node *ts.Node

	// Call is the outermost forwardRef/memo call wrapping Node, if any.
	Call *ts.Node

	// Statement is the top-level statement containing the definition.
	Statement *ts.Node
}

var reactClassHeritage = regexp.MustCompile(`(^|\.)(Pure)?Component\s*(<.*>)?$`)

var createClassCallees = map[string]bool{
	"React.createClass": true,
	"createReactClass":  true,
	"createClass":       true,
}

// findDefinitions collects component definitions from top-level statements
// in document order.
func findDefinitions(f *File) []*Definition {
	root := f.Root()
	exported := exportedNames(f)

	var defs []*Definition
	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		for _, def := range definitionsIn(f, stmt, stmt, false) {
			if exported[def.Name] {
				def.Exported = true
			}
			defs = append(defs, def)
		}
	}
	return defs
}

func definitionsIn(f *File, stmt, node *ts.Node, exported bool) []*Definition {
	var defs []*Definition
	add := func(value *ts.Node, name string) {
		if def := classify(f, value, name); def != nil {
			def.Exported = def.Exported || exported
			def.Statement = stmt
			defs = append(defs, def)
		}
	}

	switch node.Kind() {
	case "export_statement":
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			return definitionsIn(f, stmt, decl, true)
		}
		if value := node.ChildByFieldName("value"); value != nil && value.Kind() != "identifier" {
			add(value, "")
		}

	case "class_declaration", "abstract_class_declaration", "function_declaration", "generator_function_declaration":
		add(node, f.Text(node.ChildByFieldName("name")))

	case "lexical_declaration", "variable_declaration":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			decl := node.NamedChild(i)
			if decl.Kind() != "variable_declarator" {
				continue
			}
			name := decl.ChildByFieldName("name")
			if value := decl.ChildByFieldName("value"); value != nil && name != nil && name.Kind() == "identifier" {
				add(value, f.Text(name))
			}
		}

	case "expression_statement":
		expr := node.NamedChild(0)
		if expr != nil && expr.Kind() == "assignment_expression" {
			left := expr.ChildByFieldName("left")
			right := expr.ChildByFieldName("right")
			if right != nil && right.Kind() != "identifier" {
				name := f.Text(left)
				switch {
				case name == "module.exports" || name == "exports.default":
					name = ""
					exported = true
				case strings.HasPrefix(name, "exports."):
					name = strings.TrimPrefix(name, "exports.")
					exported = true
				}
				add(right, name)
			}
		}
	}

	return defs
}

// classify returns a Definition when node declares a React component.
func classify(f *File, node *ts.Node, name string) *Definition {
	for node != nil && node.Kind() == "parenthesized_expression" {
		node = node.NamedChild(0)
	}
	if node == nil {
		return nil
	}

	switch node.Kind() {
	case "class_declaration", "abstract_class_declaration", "class":
		if !isReactClass(f, node) {
			return nil
		}
		if own := node.ChildByFieldName("name"); own != nil && name == "" {
			name = f.Text(own)
		}
		return &Definition{Kind: KindClass, Name: name, Node: node}

	case "call_expression":
		callee := calleeName(f, node)
		if createClassCallees[callee] {
			spec := callArgument(node, 0)
			if spec == nil || spec.Kind() != "object" {
				return nil
			}
			return &Definition{Kind: KindCreateClass, Name: name, Node: spec}
		}

		var kind DefinitionKind
		switch callee {
		case "forwardRef", "React.forwardRef":
			kind = KindForwardRef
		case "memo", "React.memo":
			kind = KindMemo
		default:
			return nil
		}
		inner := classify(f, f.ResolveValue(callArgument(node, 0)), name)
		if inner == nil {
			return nil
		}
		if inner.Call == nil {
			inner.Kind = kind
		}
		inner.Call = node
		if name != "" {
			inner.Name = name
		}
		return inner

	default:
		if isFunctionNode(node) && returnsJSX(f, node) {
			if own := node.ChildByFieldName("name"); own != nil && name == "" {
				name = f.Text(own)
			}
			return &Definition{Kind: KindStateless, Name: name, Node: node}
		}
	}
	return nil
}

func isReactClass(f *File, class *ts.Node) bool {
	if heritage := findChildByKind(class, "class_heritage"); heritage != nil {
		expr := heritage.NamedChild(0)
		if expr != nil && expr.Kind() == "extends_clause" {
			expr = expr.ChildByFieldName("value")
		}
		if expr != nil && reactClassHeritage.MatchString(f.Text(expr)) {
			return true
		}
	}

	body := class.ChildByFieldName("body")
	if body == nil {
		return false
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		if member.Kind() == "method_definition" && f.Text(member.ChildByFieldName("name")) == "render" {
			return true
		}
	}
	return false
}

// returnsJSX reports whether a function returns JSX or a
// React.createElement call. Nested functions are not inspected.
func returnsJSX(f *File, fn *ts.Node) bool {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return false
	}
	if body.Kind() != "statement_block" {
		return isJSXValue(f, body)
	}

	var walk func(n *ts.Node) bool
	walk = func(n *ts.Node) bool {
		if isFunctionNode(n) || n.Kind() == "class" || n.Kind() == "class_declaration" {
			return false
		}
		if n.Kind() == "return_statement" {
			if arg := n.NamedChild(0); arg != nil && isJSXValue(f, arg) {
				return true
			}
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			if walk(n.NamedChild(i)) {
				return true
			}
		}
		return false
	}

	for i := uint(0); i < body.NamedChildCount(); i++ {
		if walk(body.NamedChild(i)) {
			return true
		}
	}
	return false
}

func isJSXValue(f *File, n *ts.Node) bool {
	switch n.Kind() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	case "parenthesized_expression":
		return n.NamedChild(0) != nil && isJSXValue(f, n.NamedChild(0))
	case "ternary_expression":
		cons := n.ChildByFieldName("consequence")
		alt := n.ChildByFieldName("alternative")
		return (cons != nil && isJSXValue(f, cons)) || (alt != nil && isJSXValue(f, alt))
	case "binary_expression":
		right := n.ChildByFieldName("right")
		return right != nil && isJSXValue(f, right)
	case "call_expression":
		callee := calleeName(f, n)
		return callee == "React.createElement" || callee == "createElement"
	}
	return false
}

// exportedNames returns bindings exported by name: export { A }, export
// default A, module.exports = A, exports.A = A. Components wrapped in a
// higher-order call (export default withStyles(A)) count as exported.
func exportedNames(f *File) map[string]bool {
	names := make(map[string]bool)
	var markValue func(n *ts.Node)
	markValue = func(n *ts.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "identifier":
			names[f.Text(n)] = true
		case "call_expression":
			args := n.ChildByFieldName("arguments")
			for i := uint(0); args != nil && i < args.NamedChildCount(); i++ {
				markValue(args.NamedChild(i))
			}
			markValue(n.ChildByFieldName("function"))
		case "parenthesized_expression":
			markValue(n.NamedChild(0))
		}
	}

	root := f.Root()
	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Kind() {
		case "export_statement":
			if clause := findChildByKind(stmt, "export_clause"); clause != nil && stmt.ChildByFieldName("source") == nil {
				for j := uint(0); j < clause.NamedChildCount(); j++ {
					spec := clause.NamedChild(j)
					if spec.Kind() == "export_specifier" {
						names[f.Text(spec.ChildByFieldName("name"))] = true
					}
				}
			}
			if value := stmt.ChildByFieldName("value"); value != nil {
				markValue(value)
			}
		case "expression_statement":
			expr := stmt.NamedChild(0)
			if expr == nil || expr.Kind() != "assignment_expression" {
				continue
			}
			left := f.Text(expr.ChildByFieldName("left"))
			if left == "module.exports" || strings.HasPrefix(left, "exports.") {
				markValue(expr.ChildByFieldName("right"))
			}
		}
	}
	return names
}
