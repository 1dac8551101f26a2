package docgen

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

const maxResolveDepth = 4

var simplePropTypes = map[string]bool{
	"array":       true,
	"bigint":      true,
	"bool":        true,
	"func":        true,
	"number":      true,
	"object":      true,
	"string":      true,
	"any":         true,
	"element":     true,
	"elementType": true,
	"node":        true,
	"symbol":      true,
}

func propTypesObject(f *File, def *Definition) *ts.Node {
	obj := f.ResolveValue(memberValue(f, def, "propTypes"))
	if obj == nil || obj.Kind() != "object" {
		return nil
	}
	return obj
}

// eachPropEntry visits the pairs and shorthand properties of a propTypes
// object, following spreads of local objects.
func eachPropEntry(f *File, obj *ts.Node, depth int, visit func(name string, entry, value *ts.Node)) {
	for i := uint(0); i < obj.NamedChildCount(); i++ {
		child := obj.NamedChild(i)
		switch child.Kind() {
		case "pair":
			visit(memberName(f, child), child, child.ChildByFieldName("value"))
		case "shorthand_property_identifier":
			name := f.Text(child)
			visit(name, child, f.Binding(name))
		case "spread_element":
			arg := f.ResolveValue(child.NamedChild(0))
			if arg != nil && arg.Kind() == "object" && depth < maxResolveDepth {
				eachPropEntry(f, arg, depth+1, visit)
			}
		}
	}
}

func handlePropTypes(doc *Documentation, def *Definition, f *File) {
	obj := propTypesObject(f, def)
	if obj == nil {
		return
	}

	eachPropEntry(f, obj, 0, func(name string, entry, value *ts.Node) {
		prop := doc.PropDescriptor(name)
		if value == nil {
			prop.Type = &PropType{Name: "custom", Raw: name}
			return
		}
		prop.Type, prop.Required = propType(f, value)
	})
}

// handlePropTypeComposition records modules whose propTypes are spread in.
func handlePropTypeComposition(doc *Documentation, def *Definition, f *File) {
	obj := propTypesObject(f, def)
	if obj == nil {
		return
	}

	for i := uint(0); i < obj.NamedChildCount(); i++ {
		child := obj.NamedChild(i)
		if child.Kind() != "spread_element" {
			continue
		}
		arg := child.NamedChild(0)
		for arg != nil && arg.Kind() == "member_expression" {
			arg = arg.ChildByFieldName("object")
		}
		if arg == nil || arg.Kind() != "identifier" {
			continue
		}
		if src, ok := f.ImportSource(f.Text(arg)); ok {
			doc.AddComposes(src)
		}
	}
}

func handlePropDocblocks(doc *Documentation, def *Definition, f *File) {
	obj := propTypesObject(f, def)
	if obj == nil {
		return
	}

	eachPropEntry(f, obj, 0, func(name string, entry, _ *ts.Node) {
		prop := doc.PropDescriptor(name)
		if block := leadingDocblock(f, entry); block != "" {
			prop.Description = block
		}
	})
}

// propType describes a PropTypes validator expression and reports whether
// it is marked isRequired.
func propType(f *File, node *ts.Node) (*PropType, bool) {
	required := false
	if node.Kind() == "member_expression" && f.Text(node.ChildByFieldName("property")) == "isRequired" {
		required = true
		node = node.ChildByFieldName("object")
	}
	return buildPropType(f, node, 0), required
}

func buildPropType(f *File, node *ts.Node, depth int) *PropType {
	for node != nil && node.Kind() == "parenthesized_expression" {
		node = node.NamedChild(0)
	}
	if node == nil {
		return &PropType{Name: "custom"}
	}

	switch node.Kind() {
	case "member_expression", "identifier":
		name := lastSegment(f.Text(node))
		if simplePropTypes[name] {
			return &PropType{Name: name}
		}
		if node.Kind() == "identifier" && depth < maxResolveDepth {
			if value := f.Binding(name); value != nil {
				return buildPropType(f, value, depth+1)
			}
		}

	case "call_expression":
		if pt := buildCallPropType(f, node, depth); pt != nil {
			return pt
		}
	}

	return &PropType{Name: "custom", Raw: f.Text(node)}
}

func buildCallPropType(f *File, call *ts.Node, depth int) *PropType {
	callee := lastSegment(calleeName(f, call))
	arg := callArgument(call, 0)

	switch callee {
	case "oneOf":
		pt := &PropType{Name: "enum"}
		values := f.ResolveValue(arg)
		if values == nil || values.Kind() != "array" {
			pt.Computed = true
			pt.Value = f.Text(arg)
			return pt
		}
		for _, el := range arrayElements(values) {
			pt.Enum = append(pt.Enum, EnumValue{Value: f.Text(el), Computed: !isLiteral(el)})
		}
		return pt

	case "oneOfType":
		pt := &PropType{Name: "union"}
		values := f.ResolveValue(arg)
		if values == nil || values.Kind() != "array" {
			pt.Computed = true
			pt.Value = f.Text(arg)
			return pt
		}
		for _, el := range arrayElements(values) {
			pt.Of = append(pt.Of, buildPropType(f, el, depth+1))
		}
		return pt

	case "arrayOf", "objectOf":
		if arg == nil {
			return nil
		}
		return &PropType{Name: callee, Of: []*PropType{buildPropType(f, arg, depth+1)}}

	case "instanceOf":
		if arg == nil {
			return nil
		}
		return &PropType{Name: "instanceOf", Value: f.Text(arg)}

	case "shape", "exact":
		pt := &PropType{Name: callee}
		obj := f.ResolveValue(arg)
		if obj == nil || obj.Kind() != "object" {
			pt.Computed = true
			pt.Value = f.Text(arg)
			return pt
		}
		eachPropEntry(f, obj, depth+1, func(name string, entry, value *ts.Node) {
			field := ShapeField{Name: name, Description: leadingDocblock(f, entry)}
			if value == nil {
				field.Type = &PropType{Name: "custom", Raw: name}
			} else {
				var required bool
				field.Type, required = propType(f, value)
				field.Type.Required = required
			}
			pt.Shape = append(pt.Shape, field)
		})
		return pt
	}
	return nil
}

func arrayElements(array *ts.Node) []*ts.Node {
	var out []*ts.Node
	for i := uint(0); i < array.NamedChildCount(); i++ {
		if el := array.NamedChild(i); el.Kind() != "comment" {
			out = append(out, el)
		}
	}
	return out
}
