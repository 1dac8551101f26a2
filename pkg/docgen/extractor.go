package docgen

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/docgen/pkg/parser"
	"github.com/gnana997/docgen/pkg/parser/queries"
)

// ParserOptions tune how sources are parsed.
type ParserOptions struct {
	// Language forces a grammar: "javascript", "flow" or "typescript".
	// Empty detects it from the filename and a @flow pragma.
	Language string `yaml:"language" json:"language,omitempty" validate:"omitempty,oneof=javascript flow typescript"`

	// ErrorRecovery documents files with syntax errors instead of failing.
	ErrorRecovery bool `yaml:"error_recovery" json:"errorRecovery,omitempty"`
}

// Options configure a single Parse call.
type Options struct {
	// Filename selects the grammar and appears in error messages.
	Filename string

	// Cwd makes Filename relative in error messages.
	Cwd string

	ParserOptions ParserOptions
}

// Extractor parses sources and runs handlers over each component found.
// It is safe for concurrent use.
type Extractor struct {
	parsers *parser.ParserManager
	queries *queries.QueryManager
	logger  *slog.Logger
	owned   bool
}

// New creates an Extractor with its own parser and query managers.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	pm := parser.NewParserManager(logger)
	e := NewWithManagers(pm, queries.NewQueryManager(pm, logger), logger)
	e.owned = true
	return e
}

// NewWithManagers creates an Extractor sharing existing managers.
func NewWithManagers(pm *parser.ParserManager, qm *queries.QueryManager, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{parsers: pm, queries: qm, logger: logger}
}

// Close releases the managers created by New.
func (e *Extractor) Close() error {
	if !e.owned {
		return nil
	}
	return errors.Join(e.queries.Close(), e.parsers.Close())
}

// Parse extracts documentation for every component the resolver selects.
// Handlers run in order on a fresh Documentation per component.
//
// Returns ErrNoComponentDefinitions when the resolver finds nothing, and a
// *ParseError when the source does not parse.
func (e *Extractor) Parse(src []byte, resolver Resolver, handlers []Handler, opts Options) ([]*Documentation, error) {
	if resolver == nil {
		resolver = FindAllComponentDefinitions
	}

	tree, file, err := e.parse(src, opts)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	if err := file.index(e.queries); err != nil {
		return nil, fmt.Errorf("index %s: %w", file.Filename, err)
	}

	defs, err := resolver.Resolve(file)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, ErrNoComponentDefinitions
	}

	docs := make([]*Documentation, 0, len(defs))
	for _, def := range defs {
		doc := NewDocumentation()
		for _, h := range handlers {
			h.Handle(doc, def, file)
		}
		docs = append(docs, doc)
	}

	e.logger.Debug("extracted components",
		"file", file.Filename,
		"components", len(docs),
		"flow", file.Flow)

	return docs, nil
}

// parse selects a grammar and parses src. JavaScript that fails to parse is
// retried with the TSX grammar, which accepts Flow annotations.
func (e *Extractor) parse(src []byte, opts Options) (*ts.Tree, *File, error) {
	filename := displayFilename(opts)

	lang, isTSX, flow := e.grammarFor(src, opts)
	tree, err := e.parsers.Parse(src, lang, isTSX)
	if err != nil {
		return nil, nil, err
	}

	if tree.RootNode().HasError() && lang == parser.LanguageJavaScript && opts.ParserOptions.Language == "" {
		retry, err := e.parsers.Parse(src, parser.LanguageTypeScript, true)
		if err == nil && !retry.RootNode().HasError() {
			e.logger.Debug("reparsed with flow grammar", "file", filename)
			tree.Close()
			tree, lang, isTSX, flow = retry, parser.LanguageTypeScript, true, true
		} else if retry != nil {
			retry.Close()
		}
	}

	if pos, kind, ok := parser.SyntaxError(tree); ok && !opts.ParserOptions.ErrorRecovery {
		tree.Close()
		return nil, nil, &ParseError{
			Message:  kind,
			Filename: filename,
			Location: &Location{Line: pos.Line, Column: pos.Column},
		}
	}

	return tree, newFile(filename, src, tree, lang, isTSX, flow), nil
}

func (e *Extractor) grammarFor(src []byte, opts Options) (lang parser.Language, isTSX, flow bool) {
	switch opts.ParserOptions.Language {
	case "flow":
		return parser.LanguageTypeScript, true, true
	case "typescript":
		return parser.LanguageTypeScript, parser.IsTSXFile(opts.Filename) || filepath.Ext(opts.Filename) == "", false
	case "javascript":
		return parser.LanguageJavaScript, false, false
	}

	if parser.DetectLanguage(opts.Filename) == parser.LanguageTypeScript {
		return parser.LanguageTypeScript, parser.IsTSXFile(opts.Filename), false
	}
	if parser.IsFlowSource(src) {
		return parser.LanguageTypeScript, true, true
	}
	return parser.LanguageJavaScript, false, false
}

func displayFilename(opts Options) string {
	if opts.Filename == "" || opts.Cwd == "" {
		return opts.Filename
	}
	if rel, err := filepath.Rel(opts.Cwd, opts.Filename); err == nil {
		return rel
	}
	return opts.Filename
}
