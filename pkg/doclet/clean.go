package doclet

import "strings"

// Clean returns desc with every doclet line removed, together with the
// continuation lines folded into it by Parse. Prose is left as written;
// only the blank line left behind by a removed block between two
// paragraphs is collapsed, and the result is trimmed.
//
// Clean is idempotent, and for a description without doclets it is
// strings.TrimSpace(desc).
func Clean(desc string) string {
	var kept []string
	open := false
	removed := false

	for _, line := range splitLines(desc) {
		if _, _, ok := splitTagLine(line); ok {
			open = true
			removed = true
			continue
		}

		blank := strings.TrimSpace(line) == ""
		if open && !blank {
			continue
		}
		open = false

		if blank && removed && len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "" {
			continue
		}
		if !blank {
			removed = false
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
