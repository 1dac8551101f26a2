package docgen

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/docgen/pkg/doclet"
)

// lifecycleMethods are React and createClass members that are not part of a
// component's public API.
var lifecycleMethods = map[string]bool{
	"constructor":                      true,
	"render":                           true,
	"getInitialState":                  true,
	"getDefaultProps":                  true,
	"getChildContext":                  true,
	"componentWillMount":               true,
	"UNSAFE_componentWillMount":        true,
	"componentDidMount":                true,
	"componentWillReceiveProps":        true,
	"UNSAFE_componentWillReceiveProps": true,
	"shouldComponentUpdate":            true,
	"componentWillUpdate":              true,
	"UNSAFE_componentWillUpdate":       true,
	"componentDidUpdate":               true,
	"componentWillUnmount":             true,
	"componentDidCatch":                true,
	"getSnapshotBeforeUpdate":          true,
	"getDerivedStateFromProps":         true,
	"getDerivedStateFromError":         true,
	"statics":                          true,
	"mixins":                           true,
}

func handleComponentMethods(doc *Documentation, def *Definition, f *File) {
	var container *ts.Node
	switch def.Kind {
	case KindClass:
		container = def.Node.ChildByFieldName("body")
	case KindCreateClass:
		container = def.Node
	}
	if container == nil {
		return
	}

	for i := uint(0); i < container.NamedChildCount(); i++ {
		member := container.NamedChild(i)
		fn := methodFunction(member)
		if fn == nil {
			continue
		}
		name := memberName(f, member)
		if name == "" || lifecycleMethods[name] {
			continue
		}

		method := Method{
			Name:      name,
			Docblock:  leadingDocblock(f, member),
			Modifiers: methodModifiers(member, fn),
			Params:    methodParams(f, fn),
		}
		if ret := fn.ChildByFieldName("return_type"); ret != nil {
			method.Returns = &MethodReturn{Type: describeType(f, ret)}
		}
		doc.Methods = append(doc.Methods, method)
	}
}

// methodFunction returns the function node for a class method, a class
// property holding a function, or an object method.
func methodFunction(member *ts.Node) *ts.Node {
	switch member.Kind() {
	case "method_definition":
		return member
	case "field_definition", "public_field_definition", "pair":
		if value := member.ChildByFieldName("value"); value != nil && isFunctionNode(value) {
			return value
		}
	}
	return nil
}

func methodModifiers(member, fn *ts.Node) []string {
	modifiers := []string{}
	if hasToken(member, "static") {
		modifiers = append(modifiers, "static")
	}
	if hasToken(fn, "async") {
		modifiers = append(modifiers, "async")
	}
	if hasToken(fn, "*") || fn.Kind() == "generator_function" {
		modifiers = append(modifiers, "generator")
	}
	if hasToken(member, "get") {
		modifiers = append(modifiers, "get")
	}
	if hasToken(member, "set") {
		modifiers = append(modifiers, "set")
	}
	return modifiers
}

func methodParams(f *File, fn *ts.Node) []MethodParam {
	params := []MethodParam{}
	list := fn.ChildByFieldName("parameters")
	if list == nil {
		if single := fn.ChildByFieldName("parameter"); single != nil {
			params = append(params, MethodParam{Name: f.Text(single)})
		}
		return params
	}

	for i := uint(0); i < list.NamedChildCount(); i++ {
		p := list.NamedChild(i)
		param := MethodParam{}
		switch p.Kind() {
		case "comment":
			continue
		case "assignment_pattern":
			param.Name = f.Text(p.ChildByFieldName("left"))
			param.Optional = true
		case "rest_pattern":
			param.Name = f.Text(p)
		case "required_parameter", "optional_parameter":
			pattern := p.ChildByFieldName("pattern")
			param.Name = f.Text(pattern)
			param.Type = describeType(f, p.ChildByFieldName("type"))
			param.Optional = p.Kind() == "optional_parameter" || p.ChildByFieldName("value") != nil
		default:
			param.Name = f.Text(p)
		}
		params = append(params, param)
	}
	return params
}

// handleComponentMethodsJSDoc merges @param and @returns tags from method
// docblocks into the method descriptions.
func handleComponentMethodsJSDoc(doc *Documentation, def *Definition, f *File) {
	for i := range doc.Methods {
		m := &doc.Methods[i]
		if m.Docblock == "" {
			continue
		}

		m.Description = doclet.Clean(m.Docblock)
		for _, d := range doclet.Parse(m.Docblock) {
			switch d.Tag {
			case "param", "arg", "argument":
				typ, rest := splitJSDocType(d.Value)
				name, rest := splitWord(rest)
				optional := false
				if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
					optional = true
					name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
					name, _, _ = strings.Cut(name, "=")
				}
				mergeParam(m, name, typ, jsdocDescription(rest), optional)

			case "returns", "return":
				typ, rest := splitJSDocType(d.Value)
				ret := m.Returns
				if ret == nil {
					ret = &MethodReturn{}
					m.Returns = ret
				}
				if typ != "" && ret.Type == nil {
					ret.Type = &TypeDescriptor{Name: typ}
				}
				ret.Description = jsdocDescription(rest)
			}
		}
	}
}

func mergeParam(m *Method, name, typ, description string, optional bool) {
	for i := range m.Params {
		p := &m.Params[i]
		if p.Name != name {
			continue
		}
		if typ != "" && p.Type == nil {
			p.Type = &TypeDescriptor{Name: typ}
		}
		p.Description = description
		p.Optional = p.Optional || optional
		return
	}
}

// splitJSDocType splits "{string} rest" into ("string", "rest").
func splitJSDocType(value string) (typ, rest string) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "{") {
		return "", value
	}
	depth := 0
	for i, r := range value {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(value[1:i]), strings.TrimSpace(value[i+1:])
			}
		}
	}
	return "", value
}

func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func jsdocDescription(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "-"))
}
