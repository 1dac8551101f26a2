package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/docgen/pkg/util"
)

// grammar is one of the three compiled grammars a source can be parsed
// with. Flow sources are parsed as TSX.
type grammar int

const (
	grammarJavaScript grammar = iota
	grammarTypeScript
	grammarTSX

	grammarCount
)

func grammarFor(lang Language, isTSX bool) (grammar, error) {
	switch {
	case lang == LanguageJavaScript:
		return grammarJavaScript, nil
	case lang == LanguageTypeScript && isTSX:
		return grammarTSX, nil
	case lang == LanguageTypeScript:
		return grammarTypeScript, nil
	}
	return 0, fmt.Errorf("unsupported language: %s", lang)
}

func (g grammar) String() string {
	switch g {
	case grammarJavaScript:
		return "javascript"
	case grammarTypeScript:
		return "typescript"
	case grammarTSX:
		return "tsx"
	}
	return "unknown"
}

func (g grammar) language() unsafe.Pointer {
	switch g {
	case grammarTypeScript:
		return ts_typescript.LanguageTypescript()
	case grammarTSX:
		return ts_typescript.LanguageTSX()
	}
	return ts_javascript.Language()
}

// ParserManager hands out tree-sitter parsers for JavaScript, TypeScript and
// TSX. Each grammar gets its own pool, created on first use. Callers own the
// returned trees and must Close them. Safe for concurrent use.
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.Parse(src, LanguageJavaScript, false)
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	mu    sync.Mutex
	pools [grammarCount]*parserPool

	logger   *slog.Logger
	poolSize int
	parses   atomic.Int64
}

// NewParserManager creates a ParserManager with the default pool size.
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithSize(logger, 0)
}

// NewParserManagerWithSize creates a ParserManager whose pools hold at most
// poolSize parsers each. Zero selects util.Concurrency(0). The size should
// cover the number of goroutines parsing at once; extra callers wait for a
// parser to be released.
func NewParserManagerWithSize(logger *slog.Logger, poolSize int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserManager{
		logger:   logger,
		poolSize: util.Concurrency(poolSize),
	}
}

// Parse parses source with the grammar for lang. isTSX selects the TSX
// grammar for TypeScript and is ignored for JavaScript, whose grammar
// accepts JSX.
//
// Trees with syntax errors are returned as is; see SyntaxError.
func (pm *ParserManager) Parse(source []byte, lang Language, isTSX bool) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}
	g, err := grammarFor(lang, isTSX)
	if err != nil {
		return nil, err
	}
	pm.parses.Add(1)

	pool, err := pm.pool(g)
	if err != nil {
		return nil, err
	}

	p, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("acquire %s parser: %w", g, err)
	}
	tree := p.Parse(source, nil)
	pool.release(p)

	if tree == nil {
		return nil, fmt.Errorf("%s parser returned no tree", g)
	}
	if tree.RootNode().HasError() {
		pm.logger.Debug("parse tree contains errors", "grammar", g.String())
	}
	return tree, nil
}

// ParseFile parses source with the grammar implied by filePath's extension.
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return pm.Parse(source, lang, IsTSXFile(filePath))
}

// Close closes every pooled parser. The manager must not be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	created := 0
	for i, pool := range pm.pools {
		if pool == nil {
			continue
		}
		created += pool.createdCount()
		pool.close()
		pm.pools[i] = nil
	}

	pm.logger.Debug("closed parser manager",
		"parsers_created", created,
		"parses", pm.parses.Load())
	return nil
}

func (pm *ParserManager) pool(g grammar) (*parserPool, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.pools[g] == nil {
		pm.pools[g] = newParserPool(g, pm.poolSize, pm.logger)
		pm.logger.Debug("created parser pool", "grammar", g.String(), "max_size", pm.poolSize)
	}
	return pm.pools[g], nil
}

// GetLanguagePointer returns the grammar a tree for lang was parsed with,
// so queries can be compiled against it.
func (pm *ParserManager) GetLanguagePointer(lang Language, isTSX bool) (unsafe.Pointer, error) {
	g, err := grammarFor(lang, isTSX)
	if err != nil {
		return nil, err
	}
	return g.language(), nil
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	stats := ParserStats{ParsesCalled: int(pm.parses.Load())}
	for _, pool := range pm.pools {
		if pool != nil {
			stats.ParsersCreated += pool.createdCount()
		}
	}
	return stats
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int
}
