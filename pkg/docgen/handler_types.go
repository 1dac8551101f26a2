package docgen

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/docgen/pkg/parser"
)

// handleTypeAnnotations documents props declared through Flow or
// TypeScript annotations. Flow sources are parsed with the TypeScript
// grammar, so both share one code path and differ only in the target field.
func handleTypeAnnotations(doc *Documentation, def *Definition, f *File) {
	if f.Language != parser.LanguageTypeScript {
		return
	}
	typ := propsTypeNode(f, def)
	if typ == nil {
		return
	}

	for _, member := range typeMembers(f, doc, typ, 0) {
		name := memberName(f, member)
		if name == "" {
			continue
		}
		prop := doc.PropDescriptor(name)

		var desc *TypeDescriptor
		if member.Kind() == "method_signature" {
			desc = &TypeDescriptor{Name: "signature", Raw: f.Text(member)}
		} else {
			desc = describeType(f, member.ChildByFieldName("type"))
		}
		if f.Flow {
			prop.FlowType = desc
		} else {
			prop.TSType = desc
		}
		prop.Required = !hasToken(member, "?")

		if block := leadingDocblock(f, member); block != "" {
			prop.Description = block
		}
	}
}

// propsTypeNode finds the type annotation describing a component's props.
func propsTypeNode(f *File, def *Definition) *ts.Node {
	switch def.Kind {
	case KindClass:
		if heritage := findChildByKind(def.Node, "class_heritage"); heritage != nil {
			if clause := findChildByKind(heritage, "extends_clause"); clause != nil {
				if args := clause.ChildByFieldName("type_arguments"); args != nil {
					return typeArgument(args, 0)
				}
			}
		}
		// Flow: class Foo extends React.Component { props: Props }
		if body := def.Node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.NamedChildCount(); i++ {
				member := body.NamedChild(i)
				if member.Kind() == "public_field_definition" && memberName(f, member) == "props" && !hasToken(member, "static") {
					return member.ChildByFieldName("type")
				}
			}
		}

	case KindStateless, KindForwardRef, KindMemo:
		if param := firstParameter(def.Node); param != nil {
			if typ := param.ChildByFieldName("type"); typ != nil {
				return typ
			}
		}
		if def.Call != nil {
			if args := def.Call.ChildByFieldName("type_arguments"); args != nil {
				idx := 0
				if def.Kind == KindForwardRef {
					idx = 1
				}
				if typ := typeArgument(args, idx); typ != nil {
					return typ
				}
			}
		}
		// const Button: React.FC<ButtonProps> = ...
		holder := def.Node
		if def.Call != nil {
			holder = def.Call
		}
		if decl := holder.Parent(); decl != nil && decl.Kind() == "variable_declarator" {
			if ann := decl.ChildByFieldName("type"); ann != nil {
				if generic := findChildByKind(ann, "generic_type"); generic != nil {
					if args := generic.ChildByFieldName("type_arguments"); args != nil {
						return typeArgument(args, 0)
					}
				}
			}
		}
	}
	return nil
}

func typeArgument(args *ts.Node, idx int) *ts.Node {
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

// typeMembers flattens a props type into its property and method
// signatures. Unresolvable imported types are recorded as composed modules.
func typeMembers(f *File, doc *Documentation, typ *ts.Node, depth int) []*ts.Node {
	if typ == nil || depth > maxResolveDepth {
		return nil
	}

	switch typ.Kind() {
	case "type_annotation", "parenthesized_type", "readonly_type":
		return typeMembers(f, doc, typ.NamedChild(0), depth)

	case "object_type", "interface_body":
		var out []*ts.Node
		for i := uint(0); i < typ.NamedChildCount(); i++ {
			member := typ.NamedChild(i)
			if member.Kind() == "property_signature" || member.Kind() == "method_signature" {
				out = append(out, member)
			}
		}
		return out

	case "intersection_type":
		var out []*ts.Node
		for i := uint(0); i < typ.NamedChildCount(); i++ {
			out = append(out, typeMembers(f, doc, typ.NamedChild(i), depth+1)...)
		}
		return out

	case "generic_type":
		name := f.Text(typ.ChildByFieldName("name"))
		switch lastSegment(name) {
		case "PropsWithChildren", "Readonly", "Partial", "Required":
			if args := typ.ChildByFieldName("type_arguments"); args != nil {
				return typeMembers(f, doc, typeArgument(args, 0), depth+1)
			}
		}
		return namedTypeMembers(f, doc, name, depth)

	case "type_identifier":
		return namedTypeMembers(f, doc, f.Text(typ), depth)
	}
	return nil
}

func namedTypeMembers(f *File, doc *Documentation, name string, depth int) []*ts.Node {
	body := f.TypeDeclaration(name)
	if body == nil {
		if src, ok := f.ImportSource(name); ok {
			doc.AddComposes(src)
		}
		return nil
	}

	var out []*ts.Node
	if decl := body.Parent(); decl != nil && decl.Kind() == "interface_declaration" {
		if ext := findChildByKind(decl, "extends_type_clause"); ext != nil {
			for i := uint(0); i < ext.NamedChildCount(); i++ {
				out = append(out, typeMembers(f, doc, ext.NamedChild(i), depth+1)...)
			}
		}
	}
	return append(out, typeMembers(f, doc, body, depth+1)...)
}

// describeType converts a type node into a TypeDescriptor.
func describeType(f *File, node *ts.Node) *TypeDescriptor {
	if node == nil {
		return nil
	}

	switch node.Kind() {
	case "type_annotation", "parenthesized_type", "opting_type_annotation", "omitting_type_annotation":
		return describeType(f, node.NamedChild(0))

	case "predefined_type", "type_identifier", "nested_type_identifier", "this_type":
		return &TypeDescriptor{Name: f.Text(node)}

	case "literal_type":
		return &TypeDescriptor{Name: "literal", Value: f.Text(node)}

	case "union_type", "intersection_type":
		name := "union"
		if node.Kind() == "intersection_type" {
			name = "intersection"
		}
		desc := &TypeDescriptor{Name: name, Raw: f.Text(node)}
		for _, member := range flattenTypeMembers(node) {
			desc.Elements = append(desc.Elements, describeType(f, member))
		}
		return desc

	case "generic_type":
		desc := &TypeDescriptor{Name: f.Text(node.ChildByFieldName("name")), Raw: f.Text(node)}
		if args := node.ChildByFieldName("type_arguments"); args != nil {
			for i := uint(0); i < args.NamedChildCount(); i++ {
				desc.Elements = append(desc.Elements, describeType(f, args.NamedChild(i)))
			}
		}
		return desc

	case "array_type":
		return &TypeDescriptor{
			Name:     "Array",
			Raw:      f.Text(node),
			Elements: []*TypeDescriptor{describeType(f, node.NamedChild(0))},
		}

	case "tuple_type":
		desc := &TypeDescriptor{Name: "tuple", Raw: f.Text(node)}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			desc.Elements = append(desc.Elements, describeType(f, node.NamedChild(i)))
		}
		return desc

	case "function_type", "object_type", "constructor_type":
		return &TypeDescriptor{Name: "signature", Raw: f.Text(node)}
	}

	return &TypeDescriptor{Name: f.Text(node)}
}

// flattenTypeMembers flattens the left-recursive binary tree tree-sitter
// builds for A | B | C.
func flattenTypeMembers(node *ts.Node) []*ts.Node {
	kind := node.Kind()
	var out []*ts.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == kind {
			out = append(out, flattenTypeMembers(child)...)
			continue
		}
		out = append(out, child)
	}
	return out
}
