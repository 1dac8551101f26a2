package metadata

import (
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gnana997/docgen/pkg/docgen"
)

// DisplayNameHandler returns a handler that fills in a component's display
// name. An explicit displayName static wins, then the name the component
// is bound to, then a name derived from filePath.
func DisplayNameHandler(filePath string) docgen.Handler {
	return docgen.HandlerFunc(func(doc *docgen.Documentation, def *docgen.Definition, f *docgen.File) {
		if name, ok := docgen.StaticDisplayName(def, f); ok {
			doc.DisplayName = name
			return
		}
		if def.Name != "" {
			doc.DisplayName = def.Name
			return
		}
		doc.DisplayName = nameFromPath(filePath)
	})
}

// nameFromPath turns "src/date-picker.js" into "DatePicker". Index files
// take the name of their directory.
func nameFromPath(filePath string) string {
	p := filepath.ToSlash(filePath)
	base := path.Base(p)
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "index" {
		name = path.Base(path.Dir(p))
	}
	if name == "" || name == "." || name == "/" {
		return ""
	}

	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripNumericSuffix removes trailing digits unless nothing would be left.
func stripNumericSuffix(name string) string {
	trimmed := strings.TrimRightFunc(name, func(r rune) bool { return r >= '0' && r <= '9' })
	if trimmed == "" {
		return name
	}
	return trimmed
}
