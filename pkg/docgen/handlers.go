package docgen

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// Handler fills in one aspect of a component's documentation.
type Handler interface {
	Handle(doc *Documentation, def *Definition, f *File)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(doc *Documentation, def *Definition, f *File)

// Handle calls fn(doc, def, f).
func (fn HandlerFunc) Handle(doc *Documentation, def *Definition, f *File) {
	fn(doc, def, f)
}

var (
	PropTypeHandler              Handler = HandlerFunc(handlePropTypes)
	PropTypeCompositionHandler   Handler = HandlerFunc(handlePropTypeComposition)
	PropDocblockHandler          Handler = HandlerFunc(handlePropDocblocks)
	TypeAnnotationHandler        Handler = HandlerFunc(handleTypeAnnotations)
	DefaultPropsHandler          Handler = HandlerFunc(handleDefaultProps)
	ComponentDocblockHandler     Handler = HandlerFunc(handleComponentDocblock)
	ComponentMethodsHandler      Handler = HandlerFunc(handleComponentMethods)
	ComponentMethodsJSDocHandler Handler = HandlerFunc(handleComponentMethodsJSDoc)
)

// DefaultHandlers returns the baseline handler list in execution order.
// The display name is left to the caller.
func DefaultHandlers() []Handler {
	return []Handler{
		PropTypeHandler,
		PropTypeCompositionHandler,
		PropDocblockHandler,
		TypeAnnotationHandler,
		DefaultPropsHandler,
		ComponentDocblockHandler,
		ComponentMethodsHandler,
		ComponentMethodsJSDocHandler,
	}
}

func handleComponentDocblock(doc *Documentation, def *Definition, f *File) {
	doc.Description = statementDocblock(f, def)
}

// StaticDisplayName returns an explicitly assigned displayName: a static
// class field, a createClass spec property, or Component.displayName = '...'.
func StaticDisplayName(def *Definition, f *File) (string, bool) {
	value := f.ResolveValue(memberValue(f, def, "displayName"))
	if value == nil {
		return "", false
	}
	switch value.Kind() {
	case "string":
		return unquote(f.Text(value)), true
	case "template_string":
		if value.NamedChildCount() == 0 || (value.NamedChildCount() == 1 && value.NamedChild(0).Kind() == "string_fragment") {
			return unquote(f.Text(value)), true
		}
	}
	return "", false
}

// memberValue looks up a static member of a component: a static class
// field or getter, a createClass spec property, or a top-level assignment
// Component.prop = value.
func memberValue(f *File, def *Definition, prop string) *ts.Node {
	switch def.Kind {
	case KindClass:
		if v := classStatic(f, def.Node, prop); v != nil {
			return v
		}
		// Assignments target the binding name, which may differ from the class name.
		if own := def.Node.ChildByFieldName("name"); own != nil && f.Text(own) != def.Name {
			if v := f.Static(f.Text(own), prop); v != nil {
				return v
			}
		}
	case KindCreateClass:
		if v := objectProperty(f, def.Node, prop); v != nil {
			if v.Kind() == "method_definition" {
				return returnedValue(v)
			}
			return v
		}
	}
	return f.Static(def.Name, prop)
}

func classStatic(f *File, class *ts.Node, prop string) *ts.Node {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		if !hasToken(member, "static") || memberName(f, member) != prop {
			continue
		}
		switch member.Kind() {
		case "field_definition", "public_field_definition":
			return member.ChildByFieldName("value")
		case "method_definition":
			return returnedValue(member)
		}
	}
	return nil
}

// memberName returns the name of a class member or object property.
func memberName(f *File, member *ts.Node) string {
	switch member.Kind() {
	case "field_definition":
		return propertyName(f, member.ChildByFieldName("property"))
	case "pair":
		return propertyName(f, member.ChildByFieldName("key"))
	default:
		return propertyName(f, member.ChildByFieldName("name"))
	}
}

// objectProperty returns the value of prop in an object literal, or the
// method_definition node for shorthand methods.
func objectProperty(f *File, obj *ts.Node, prop string) *ts.Node {
	for i := uint(0); i < obj.NamedChildCount(); i++ {
		child := obj.NamedChild(i)
		switch child.Kind() {
		case "pair":
			if memberName(f, child) == prop {
				return child.ChildByFieldName("value")
			}
		case "method_definition":
			if memberName(f, child) == prop {
				return child
			}
		}
	}
	return nil
}

// returnedValue returns the argument of the first top-level return
// statement in a function or method body.
func returnedValue(fn *ts.Node) *ts.Node {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	if body.Kind() != "statement_block" {
		return body
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt.Kind() == "return_statement" {
			return stmt.NamedChild(0)
		}
	}
	return nil
}

// componentFunction returns the function implementing a function component.
func componentFunction(def *Definition) *ts.Node {
	switch def.Kind {
	case KindStateless, KindForwardRef, KindMemo:
		return def.Node
	}
	return nil
}

// firstParameter returns the first formal parameter of fn. TypeScript
// parameters are returned as required_parameter/optional_parameter nodes.
func firstParameter(fn *ts.Node) *ts.Node {
	if params := fn.ChildByFieldName("parameters"); params != nil {
		for i := uint(0); i < params.NamedChildCount(); i++ {
			if p := params.NamedChild(i); p.Kind() != "comment" {
				return p
			}
		}
		return nil
	}
	// Single unparenthesized arrow parameter.
	return fn.ChildByFieldName("parameter")
}
