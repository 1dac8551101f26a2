package metadata

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gnana997/docgen/pkg/docgen"
	"github.com/gnana997/docgen/pkg/doclet"
)

var literalPattern = regexp.MustCompile(`^('|"|true|false|-?\d)`)

// MalformedDocletError reports an override doclet whose value could not be
// interpreted. The raw value has still been applied.
type MalformedDocletError struct {
	Prop   string
	Doclet doclet.Doclet
	Reason string
}

func (e *MalformedDocletError) Error() string {
	return fmt.Sprintf("prop %s: malformed @%s %q: %s", e.Prop, e.Doclet.Tag, e.Doclet.Value, e.Reason)
}

// ApplyPropDoclets copies override doclets onto the prop's structured
// fields. For each recognized tag the last occurrence wins:
//
//	@type {T}                      replaces Type with {name: T}
//	@type {('a'|'b')}              becomes an enum when every member is a literal, else a union
//	@default v / @defaultValue v   replaces DefaultValue
//	@required                      marks the prop required
//
// Other doclets are left alone. A malformed @type is stored raw and
// reported through the returned error.
func ApplyPropDoclets(p *Prop) error {
	var err error

	if d, ok := doclet.Last(p.Doclets, "type"); ok {
		var reason string
		p.Type, reason = typeFromDoclet(d.Value)
		if reason != "" {
			err = &MalformedDocletError{Prop: p.Name, Doclet: d, Reason: reason}
		}
	}

	if d, ok := doclet.Last(p.Doclets, "default", "defaultValue"); ok {
		p.DefaultValue = &docgen.DefaultValue{Value: d.Value, Computed: false}
	}

	if _, ok := doclet.Find(p.Doclets, "required"); ok {
		p.Required = true
	}

	return err
}

func typeFromDoclet(raw string) (*docgen.PropType, string) {
	value := strings.TrimSpace(raw)
	if strings.HasPrefix(value, "{") != strings.HasSuffix(value, "}") {
		return &docgen.PropType{Name: "custom", Raw: raw}, "unbalanced braces"
	}
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(value, "{"), "}"))
	if value == "" {
		return &docgen.PropType{Name: "custom", Raw: raw}, "empty type"
	}

	if !strings.HasPrefix(value, "(") || !strings.HasSuffix(value, ")") {
		return &docgen.PropType{Name: value}, ""
	}

	members := strings.Split(value[1:len(value)-1], "|")
	allLiterals := true
	for i, m := range members {
		members[i] = strings.TrimSpace(m)
		if members[i] == "" {
			return &docgen.PropType{Name: "custom", Raw: raw}, "empty alternative"
		}
		if !literalPattern.MatchString(members[i]) {
			allLiterals = false
		}
	}

	if allLiterals {
		pt := &docgen.PropType{Name: "enum"}
		for _, m := range members {
			pt.Enum = append(pt.Enum, docgen.EnumValue{Value: m, Computed: false})
		}
		return pt, ""
	}

	pt := &docgen.PropType{Name: "union"}
	for _, m := range members {
		if literalPattern.MatchString(m) {
			pt.Of = append(pt.Of, &docgen.PropType{Name: "literal", Value: m})
			continue
		}
		pt.Of = append(pt.Of, &docgen.PropType{Name: m})
	}
	return pt, ""
}
