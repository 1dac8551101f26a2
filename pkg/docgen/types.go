// Package docgen extracts React component documentation from JavaScript,
// Flow and TypeScript sources.
//
// Extraction runs in two phases. A Resolver finds component definitions in
// a parsed file, then every Handler in the configured list fills in one
// aspect of each definition's Documentation (prop types, defaults,
// docblocks, methods).
package docgen

import (
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	// ErrNoComponentDefinitions is returned when a resolver finds no components.
	ErrNoComponentDefinitions = errors.New("no suitable component definition found")

	// ErrMultipleDefinitions is returned by FindExportedComponentDefinition
	// when a file exports more than one component.
	ErrMultipleDefinitions = errors.New("multiple exported component definitions found")
)

// Location is a 1-based position in source code.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ParseError reports source that could not be parsed.
type ParseError struct {
	Message  string
	Filename string
	Location *Location
}

func (e *ParseError) Error() string {
	if e.Location == nil {
		return e.Message
	}
	return fmt.Sprintf("%s (%d:%d)", e.Message, e.Location.Line, e.Location.Column)
}

// DefinitionKind describes how a component was declared.
type DefinitionKind string

const (
	KindClass       DefinitionKind = "class"
	KindCreateClass DefinitionKind = "createClass"
	KindStateless   DefinitionKind = "stateless"
	KindForwardRef  DefinitionKind = "forwardRef"
	KindMemo        DefinitionKind = "memo"
)

// Documentation is the raw per-component result of extraction.
type Documentation struct {
	DisplayName string                                `json:"displayName,omitempty"`
	Description string                                `json:"description"`
	Props       *orderedmap.OrderedMap[string, *Prop] `json:"props,omitempty"`
	Methods     []Method                              `json:"methods,omitempty"`
	Composes    []string                              `json:"composes,omitempty"`
}

// NewDocumentation returns an empty Documentation.
func NewDocumentation() *Documentation {
	return &Documentation{Props: orderedmap.New[string, *Prop]()}
}

// PropDescriptor returns the prop named name, adding it at the end of the
// prop order when it does not exist yet.
func (d *Documentation) PropDescriptor(name string) *Prop {
	if p, ok := d.Props.Get(name); ok {
		return p
	}
	p := &Prop{}
	d.Props.Set(name, p)
	return p
}

// AddComposes records a module whose props are spread into this component.
func (d *Documentation) AddComposes(module string) {
	for _, m := range d.Composes {
		if m == module {
			return
		}
	}
	d.Composes = append(d.Composes, module)
}

// Prop is the raw description of a single prop.
type Prop struct {
	Type         *PropType       `json:"type,omitempty"`
	FlowType     *TypeDescriptor `json:"flowType,omitempty"`
	TSType       *TypeDescriptor `json:"tsType,omitempty"`
	Required     bool            `json:"required"`
	Description  string          `json:"description"`
	DefaultValue *DefaultValue   `json:"defaultValue,omitempty"`
}

// PropType describes a runtime PropTypes validator.
//
// Name is one of the PropTypes names (string, func, ...), "enum", "union",
// "arrayOf", "objectOf", "shape", "exact", "instanceOf" or "custom".
type PropType struct {
	Name     string       `json:"name"`
	Raw      string       `json:"raw,omitempty"`
	Value    string       `json:"value,omitempty"`
	Computed bool         `json:"computed,omitempty"`
	Required bool         `json:"required,omitempty"`
	Enum     []EnumValue  `json:"enum,omitempty"`
	Of       []*PropType  `json:"of,omitempty"`
	Shape    []ShapeField `json:"shape,omitempty"`
}

// EnumValue is one allowed value of a oneOf validator.
type EnumValue struct {
	Value    string `json:"value"`
	Computed bool   `json:"computed"`
}

// ShapeField is one member of a shape or exact validator.
type ShapeField struct {
	Name        string    `json:"name"`
	Type        *PropType `json:"type"`
	Description string    `json:"description,omitempty"`
}

// TypeDescriptor describes a Flow or TypeScript type annotation.
type TypeDescriptor struct {
	Name     string            `json:"name"`
	Raw      string            `json:"raw,omitempty"`
	Value    string            `json:"value,omitempty"`
	Elements []*TypeDescriptor `json:"elements,omitempty"`
}

// DefaultValue is a prop's default.
type DefaultValue struct {
	Value    string `json:"value"`
	Computed bool   `json:"computed"`
}

// Method documents a public component method.
type Method struct {
	Name        string        `json:"name"`
	Docblock    string        `json:"docblock,omitempty"`
	Modifiers   []string      `json:"modifiers"`
	Params      []MethodParam `json:"params"`
	Returns     *MethodReturn `json:"returns,omitempty"`
	Description string        `json:"description,omitempty"`
}

// MethodParam documents a method parameter.
type MethodParam struct {
	Name        string          `json:"name"`
	Type        *TypeDescriptor `json:"type,omitempty"`
	Optional    bool            `json:"optional,omitempty"`
	Description string          `json:"description,omitempty"`
}

// MethodReturn documents a method's return value.
type MethodReturn struct {
	Type        *TypeDescriptor `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
}
