package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gnana997/docgen/pkg/docgen"
	"github.com/gnana997/docgen/pkg/doclet"
	"github.com/gnana997/docgen/pkg/parser"
)

var unknownComponents atomic.Int64

// FallbackIdentity returns a path-like identity for sources without an
// absolute path. Every call returns a new value.
func FallbackIdentity() string {
	return fmt.Sprintf("/UnknownComponent%d", unknownComponents.Add(1))
}

// Normalizer extracts components from source and normalizes their
// docblocks. It is safe for concurrent use.
type Normalizer struct {
	extractor *docgen.Extractor
	logger    *slog.Logger
}

// NewNormalizer creates a Normalizer backed by extractor.
func NewNormalizer(extractor *docgen.Extractor, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{extractor: extractor, logger: logger}
}

// Normalize extracts every component in content.
//
// A file without components yields no components and no error. Any other
// extraction failure is returned as an *ExtractionError.
func (n *Normalizer) Normalize(ctx context.Context, content []byte, source SourceNode, opts Options) ([]Component, error) {
	identity := source.AbsolutePath
	filename := source.AbsolutePath
	if identity == "" {
		identity = FallbackIdentity()
		filename = identity
		if source.Extension != "" {
			filename += "." + source.Extension
		}
	}

	parserOpts := opts.ParserOptions
	if parserOpts.Language == "" &&
		parser.DetectLanguage(filename) == parser.LanguageUnknown &&
		parser.DetectMediaType(source.MediaType, "") == parser.LanguageTypeScript {
		parserOpts.Language = "typescript"
	}

	handlers := make([]docgen.Handler, 0, 9+len(opts.Handlers))
	handlers = append(handlers, docgen.DefaultHandlers()...)
	handlers = append(handlers, DisplayNameHandler(identity))
	for _, h := range opts.Handlers {
		handlers = append(handlers, docgen.HandlerFunc(func(doc *docgen.Documentation, def *docgen.Definition, f *docgen.File) {
			h.Handle(doc, def, f, source)
		}))
	}

	docs, err := n.extractor.Parse(content, opts.Resolver, handlers, docgen.Options{
		Filename:      filename,
		Cwd:           opts.Cwd,
		ParserOptions: parserOpts,
	})
	if errors.Is(err, docgen.ErrNoComponentDefinitions) {
		n.logger.DebugContext(ctx, "no components", "file", identity)
		return nil, nil
	}
	if err != nil {
		errPath := identity
		if source.AbsolutePath != "" {
			errPath = relativePath(opts.Cwd, source.AbsolutePath)
		}
		return nil, newExtractionError(err, errPath, content)
	}

	if len(docs) == 1 {
		docs[0].DisplayName = stripNumericSuffix(docs[0].DisplayName)
	}

	components := make([]Component, 0, len(docs))
	for _, doc := range docs {
		components = append(components, n.normalizeComponent(ctx, doc))
	}
	return components, nil
}

func (n *Normalizer) normalizeComponent(ctx context.Context, doc *docgen.Documentation) Component {
	c := Component{
		DisplayName: doc.DisplayName,
		Docblock:    doc.Description,
		Doclets:     doclet.Parse(doc.Description),
		Description: doclet.Clean(doc.Description),
		Props:       make([]Prop, 0, doc.Props.Len()),
		Methods:     doc.Methods,
		Composes:    doc.Composes,
	}

	for pair := doc.Props.Oldest(); pair != nil; pair = pair.Next() {
		raw := pair.Value
		p := Prop{
			Name:         pair.Key,
			Docblock:     raw.Description,
			Doclets:      doclet.Parse(raw.Description),
			Description:  doclet.Clean(raw.Description),
			Type:         raw.Type,
			FlowType:     raw.FlowType,
			TSType:       raw.TSType,
			Required:     raw.Required,
			DefaultValue: raw.DefaultValue,
		}
		if err := ApplyPropDoclets(&p); err != nil {
			n.logger.DebugContext(ctx, "malformed doclet",
				"component", c.DisplayName,
				"error", err)
		}
		c.Props = append(c.Props, p)
	}
	return c
}

func relativePath(cwd, p string) string {
	if cwd == "" {
		return p
	}
	if rel, err := filepath.Rel(cwd, p); err == nil {
		return rel
	}
	return p
}
