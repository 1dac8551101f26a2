// Package doclet parses `@tag value` annotation lines out of docblock
// descriptions and strips them from the displayed prose.
package doclet

// Doclet is a single `@tag value` annotation.
type Doclet struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// Find returns the first doclet carrying tag.
func Find(doclets []Doclet, tag string) (Doclet, bool) {
	for _, d := range doclets {
		if d.Tag == tag {
			return d, true
		}
	}
	return Doclet{}, false
}

// Last returns the last doclet carrying any of the given tags.
// Later lines override earlier ones for single-valued tags like @type.
func Last(doclets []Doclet, tags ...string) (Doclet, bool) {
	for i := len(doclets) - 1; i >= 0; i-- {
		for _, tag := range tags {
			if doclets[i].Tag == tag {
				return doclets[i], true
			}
		}
	}
	return Doclet{}, false
}

// All returns every doclet carrying tag, in source order.
func All(doclets []Doclet, tag string) []Doclet {
	var out []Doclet
	for _, d := range doclets {
		if d.Tag == tag {
			out = append(out, d)
		}
	}
	return out
}
