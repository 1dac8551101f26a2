package doclet

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse scans desc for doclet lines and returns them in source order.
//
// A doclet line starts (after optional indentation) with `@tag`, where tag
// is a bare identifier followed by whitespace or the end of the line. The
// remainder of the line is the value. Non-blank lines that follow a doclet
// without starting a new tag are folded into its value with a single
// space; a blank line ends the doclet.
//
// Repeated tags are all returned. Only the cleaner collapses lines.
func Parse(desc string) []Doclet {
	doclets := []Doclet{}
	open := false

	for _, line := range splitLines(desc) {
		if tag, value, ok := splitTagLine(line); ok {
			doclets = append(doclets, Doclet{Tag: tag, Value: value})
			open = true
			continue
		}

		text := strings.TrimSpace(line)
		if text == "" {
			open = false
			continue
		}
		if !open {
			continue
		}

		last := &doclets[len(doclets)-1]
		if last.Value == "" {
			last.Value = text
		} else {
			last.Value += " " + text
		}
	}

	return doclets
}

// splitTagLine reports whether line opens a doclet and returns its parts.
// "@mention?" does not count: the tag must end at whitespace or end of line.
func splitTagLine(line string) (tag, value string, ok bool) {
	s := strings.TrimLeftFunc(line, unicode.IsSpace)
	if len(s) < 2 || s[0] != '@' {
		return "", "", false
	}

	end := 1
	for end < len(s) && isTagByte(s[end]) {
		end++
	}
	if end == 1 {
		return "", "", false
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); !unicode.IsSpace(r) {
			return "", "", false
		}
	}

	return s[1:end], strings.TrimSpace(s[end:]), true
}

func isTagByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func splitLines(desc string) []string {
	if desc == "" {
		return nil
	}
	desc = strings.ReplaceAll(desc, "\r\n", "\n")
	desc = strings.ReplaceAll(desc, "\r", "\n")
	return strings.Split(desc, "\n")
}
