// Package metadata turns raw docgen output into normalized component and
// prop records: docblocks are split into doclets and cleaned prose, doclet
// overrides are applied to props, and display names are inferred.
package metadata

import (
	"github.com/gnana997/docgen/pkg/docgen"
	"github.com/gnana997/docgen/pkg/doclet"
)

// SourceNode describes the file a batch of components comes from.
type SourceNode struct {
	ID           string `json:"id"`
	AbsolutePath string `json:"absolutePath,omitempty"`
	RelativePath string `json:"relativePath,omitempty"`
	MediaType    string `json:"mediaType,omitempty"`
	Extension    string `json:"extension,omitempty"`
}

// Component is a normalized component.
type Component struct {
	DisplayName string          `json:"displayName"`
	Docblock    string          `json:"docblock"`
	Doclets     []doclet.Doclet `json:"doclets"`
	Description string          `json:"description"`
	Props       []Prop          `json:"props"`
	Methods     []docgen.Method `json:"methods,omitempty"`
	Composes    []string        `json:"composes,omitempty"`
}

// Prop is a normalized prop.
type Prop struct {
	Name         string                 `json:"name"`
	Docblock     string                 `json:"docblock"`
	Doclets      []doclet.Doclet        `json:"doclets"`
	Description  string                 `json:"description"`
	Type         *docgen.PropType       `json:"type,omitempty"`
	FlowType     *docgen.TypeDescriptor `json:"flowType,omitempty"`
	TSType       *docgen.TypeDescriptor `json:"tsType,omitempty"`
	Required     bool                   `json:"required"`
	DefaultValue *docgen.DefaultValue   `json:"defaultValue,omitempty"`
}

// Handler is a caller-supplied extraction step. It runs after the baseline
// handlers and the display name handler, and also receives the source node.
type Handler interface {
	Handle(doc *docgen.Documentation, def *docgen.Definition, f *docgen.File, source SourceNode)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(doc *docgen.Documentation, def *docgen.Definition, f *docgen.File, source SourceNode)

// Handle calls fn.
func (fn HandlerFunc) Handle(doc *docgen.Documentation, def *docgen.Definition, f *docgen.File, source SourceNode) {
	fn(doc, def, f, source)
}

// Options configure a Normalize call.
type Options struct {
	// Resolver selects components; nil finds all of them.
	Resolver docgen.Resolver

	Handlers []Handler

	// Cwd makes paths in error messages relative.
	Cwd string

	ParserOptions docgen.ParserOptions
}
