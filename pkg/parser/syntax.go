package parser

import ts "github.com/tree-sitter/go-tree-sitter"

// Position is a 1-based line/column position in source code.
type Position struct {
	Line   int
	Column int
}

// SyntaxError returns the position of the first ERROR or MISSING node in
// the tree, in document order. ok is false for a clean tree.
func SyntaxError(tree *ts.Tree) (pos Position, kind string, ok bool) {
	if tree == nil {
		return Position{}, "", false
	}
	root := tree.RootNode()
	if !root.HasError() {
		return Position{}, "", false
	}

	node := firstErrorNode(root)
	if node == nil {
		return Position{}, "", false
	}

	start := node.StartPosition()
	kind = "unexpected token"
	if node.IsMissing() {
		kind = "missing " + node.Kind()
	}
	return Position{Line: int(start.Row) + 1, Column: int(start.Column) + 1}, kind, true
}

func firstErrorNode(node *ts.Node) *ts.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
