package docgen

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// handleDefaultProps records defaults from parameter destructuring, then
// from defaultProps (or getDefaultProps), which take precedence.
func handleDefaultProps(doc *Documentation, def *Definition, f *File) {
	if fn := componentFunction(def); fn != nil {
		if param := firstParameter(fn); param != nil {
			destructuringDefaults(doc, f, param)
		}
	}

	var obj *ts.Node
	if def.Kind == KindCreateClass {
		if m := objectProperty(f, def.Node, "getDefaultProps"); m != nil {
			obj = f.ResolveValue(returnedValue(m))
		}
	}
	if obj == nil {
		obj = f.ResolveValue(memberValue(f, def, "defaultProps"))
	}
	if obj == nil || obj.Kind() != "object" {
		return
	}

	eachPropEntry(f, obj, 0, func(name string, _, value *ts.Node) {
		if value == nil {
			return
		}
		doc.PropDescriptor(name).DefaultValue = defaultValue(f, value)
	})
}

func destructuringDefaults(doc *Documentation, f *File, param *ts.Node) {
	pattern := param
	switch param.Kind() {
	case "required_parameter", "optional_parameter":
		pattern = param.ChildByFieldName("pattern")
	case "assignment_pattern":
		pattern = param.ChildByFieldName("left")
	}
	if pattern == nil || pattern.Kind() != "object_pattern" {
		return
	}

	for i := uint(0); i < pattern.NamedChildCount(); i++ {
		child := pattern.NamedChild(i)
		switch child.Kind() {
		case "object_assignment_pattern":
			// { variant = 'primary' }
			left := child.ChildByFieldName("left")
			right := child.ChildByFieldName("right")
			if left != nil && right != nil {
				doc.PropDescriptor(f.Text(left)).DefaultValue = defaultValue(f, right)
			}
		case "pair_pattern":
			// { variant: v = 'primary' }
			value := child.ChildByFieldName("value")
			if value != nil && value.Kind() == "assignment_pattern" {
				if right := value.ChildByFieldName("right"); right != nil {
					name := propertyName(f, child.ChildByFieldName("key"))
					doc.PropDescriptor(name).DefaultValue = defaultValue(f, right)
				}
			}
		}
	}
}

// defaultValue renders a default expression. Identifiers resolve through
// top-level bindings; the result is computed when it is still a reference
// or a call.
func defaultValue(f *File, node *ts.Node) *DefaultValue {
	if node.Kind() == "identifier" && f.Text(node) != "undefined" {
		node = f.ResolveValue(node)
	}
	switch node.Kind() {
	case "call_expression", "member_expression", "identifier", "new_expression":
		return &DefaultValue{Value: f.Text(node), Computed: f.Text(node) != "undefined"}
	}
	return &DefaultValue{Value: f.Text(node)}
}
