package docgen

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// parseDocblock strips the comment markers and leading asterisks from a
// /** ... */ comment. It returns false for other comments.
func parseDocblock(comment string) (string, bool) {
	if !strings.HasPrefix(comment, "/**") || !strings.HasSuffix(comment, "*/") || len(comment) < 5 {
		return "", false
	}
	// "/**/" and "/***" banners are not docblocks.
	body := comment[2 : len(comment)-2]
	if len(body) < 2 || (body[1] != ' ' && body[1] != '\t' && body[1] != '\n' && body[1] != '\r') {
		return "", false
	}

	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "*") {
			trimmed = trimmed[1:]
			if strings.HasPrefix(trimmed, " ") || strings.HasPrefix(trimmed, "\t") {
				trimmed = trimmed[1:]
			}
			lines[i] = trimmed
		} else {
			lines[i] = trimmed
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), true
}

// leadingDocblock returns the docblock of the comment run directly before
// node. The comment nearest to node wins.
func leadingDocblock(f *File, node *ts.Node) string {
	for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		switch prev.Kind() {
		case "comment":
			if doc, ok := parseDocblock(f.Text(prev)); ok {
				return doc
			}
		case ",", ";":
			// member separators
		default:
			return ""
		}
	}
	return ""
}

// statementDocblock returns the docblock attached to a definition's
// top-level statement.
func statementDocblock(f *File, def *Definition) string {
	if def.Statement == nil {
		return ""
	}
	return leadingDocblock(f, def.Statement)
}
