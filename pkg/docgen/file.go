package docgen

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/docgen/pkg/parser"
	"github.com/gnana997/docgen/pkg/parser/queries"
)

// File is a parsed source file handed to resolvers and handlers. Nodes
// reachable from a File are only valid during Extractor.Parse.
type File struct {
	Filename string
	Source   []byte
	Language parser.Language
	IsTSX    bool

	// Flow is set when type annotations are Flow rather than TypeScript.
	Flow bool

	tree     *ts.Tree
	imports  map[string]string
	statics  map[string]map[string]*ts.Node
	types    map[string]*ts.Node
	bindings map[string]*ts.Node
}

func newFile(filename string, source []byte, tree *ts.Tree, lang parser.Language, isTSX, flow bool) *File {
	return &File{
		Filename: filename,
		Source:   source,
		Language: lang,
		IsTSX:    isTSX,
		Flow:     flow,
		tree:     tree,
		imports:  make(map[string]string),
		statics:  make(map[string]map[string]*ts.Node),
		types:    make(map[string]*ts.Node),
		bindings: make(map[string]*ts.Node),
	}
}

// index fills the lookup tables from query matches and top-level bindings.
func (f *File) index(qm *queries.QueryManager) error {
	matches, err := qm.Run(f.tree, f.Language, f.IsTSX, queries.QueryTypeImports, f.Source)
	if err != nil {
		return err
	}
	for _, m := range matches {
		source, ok := m.Capture("source")
		if !ok {
			continue
		}
		if alias, ok := m.Capture("alias"); ok {
			f.imports[alias.Text] = source.Text
			continue
		}
		for _, c := range m.Captures {
			switch c.Field {
			case "default", "named", "namespace":
				f.imports[c.Text] = source.Text
			}
		}
	}

	matches, err = qm.Run(f.tree, f.Language, f.IsTSX, queries.QueryTypeStatics, f.Source)
	if err != nil {
		return err
	}
	for _, m := range matches {
		obj, ok1 := m.Capture("object")
		prop, ok2 := m.Capture("property")
		value, ok3 := m.Capture("value")
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		if f.statics[obj.Text] == nil {
			f.statics[obj.Text] = make(map[string]*ts.Node)
		}
		f.statics[obj.Text][prop.Text] = value.Node
	}

	if f.Language == parser.LanguageTypeScript {
		matches, err = qm.Run(f.tree, f.Language, f.IsTSX, queries.QueryTypeTypes, f.Source)
		if err != nil {
			return err
		}
		for _, m := range matches {
			name, ok1 := m.Capture("name")
			body, ok2 := m.Capture("body")
			if ok1 && ok2 {
				f.types[name.Text] = body.Node
			}
		}
	}

	root := f.Root()
	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		if stmt.Kind() == "export_statement" {
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				stmt = decl
			}
		}
		switch stmt.Kind() {
		case "lexical_declaration", "variable_declaration":
			for j := uint(0); j < stmt.NamedChildCount(); j++ {
				decl := stmt.NamedChild(j)
				if decl.Kind() != "variable_declarator" {
					continue
				}
				name := decl.ChildByFieldName("name")
				value := decl.ChildByFieldName("value")
				if name != nil && value != nil && name.Kind() == "identifier" {
					f.bindings[f.Text(name)] = value
				}
			}
		case "class_declaration", "function_declaration":
			if name := stmt.ChildByFieldName("name"); name != nil {
				f.bindings[f.Text(name)] = stmt
			}
		}
	}

	return nil
}

// Root returns the program node.
func (f *File) Root() *ts.Node {
	return f.tree.RootNode()
}

// Text returns the source text of node.
func (f *File) Text(node *ts.Node) string {
	if node == nil {
		return ""
	}
	return node.Utf8Text(f.Source)
}

// ImportSource returns the module a local binding was imported from.
func (f *File) ImportSource(name string) (string, bool) {
	src, ok := f.imports[name]
	return src, ok
}

// Static returns the value assigned to object.property at the top level
// (Button.propTypes = {...}), or nil.
func (f *File) Static(object, property string) *ts.Node {
	if object == "" {
		return nil
	}
	return f.statics[object][property]
}

// TypeDeclaration returns the body of a named interface or type alias.
func (f *File) TypeDeclaration(name string) *ts.Node {
	return f.types[name]
}

// Binding returns the value of a top-level variable, class or function.
func (f *File) Binding(name string) *ts.Node {
	return f.bindings[name]
}

// ResolveValue follows identifiers through top-level bindings and strips
// parentheses and type assertions.
func (f *File) ResolveValue(node *ts.Node) *ts.Node {
	for depth := 0; node != nil && depth < 8; depth++ {
		switch node.Kind() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			inner := node.NamedChild(0)
			if inner == nil {
				return node
			}
			node = inner
		case "identifier":
			value := f.bindings[f.Text(node)]
			if value == nil {
				return node
			}
			node = value
		default:
			return node
		}
	}
	return node
}

// isLiteral reports whether node is a primitive literal.
func isLiteral(node *ts.Node) bool {
	switch node.Kind() {
	case "string", "number", "true", "false", "null", "template_string", "regex":
		return true
	case "unary_expression":
		arg := node.ChildByFieldName("argument")
		return arg != nil && arg.Kind() == "number"
	}
	return false
}

// propertyName returns the key of an object pair or class member, with
// quotes removed from string keys.
func propertyName(f *File, key *ts.Node) string {
	if key == nil {
		return ""
	}
	switch key.Kind() {
	case "string":
		return unquote(f.Text(key))
	case "computed_property_name":
		return f.Text(key)
	default:
		return f.Text(key)
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

// hasToken reports whether node has an anonymous child token of the given kind.
func hasToken(node *ts.Node, token string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if !child.IsNamed() && strings.HasPrefix(child.Kind(), token) {
			return true
		}
	}
	return false
}

func findChildByKind(node *ts.Node, kinds ...string) *ts.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		for _, kind := range kinds {
			if child.Kind() == kind {
				return child
			}
		}
	}
	return nil
}

func isFunctionNode(node *ts.Node) bool {
	switch node.Kind() {
	case "function_declaration", "function_expression", "function", "arrow_function",
		"generator_function_declaration", "generator_function":
		return true
	}
	return false
}

// calleeName returns the callee of a call expression ("forwardRef",
// "React.forwardRef").
func calleeName(f *File, call *ts.Node) string {
	if call == nil || call.Kind() != "call_expression" {
		return ""
	}
	return f.Text(call.ChildByFieldName("function"))
}

// callArgument returns the idx-th argument of a call expression.
func callArgument(call *ts.Node, idx int) *ts.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	n := 0
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg.Kind() == "comment" {
			continue
		}
		if n == idx {
			return arg
		}
		n++
	}
	return nil
}

// lastSegment returns the part after the final dot ("PropTypes.string" -> "string").
func lastSegment(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}
