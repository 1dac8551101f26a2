package parser

import (
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// parserPool holds up to maxSize parsers for one grammar. Parsers are
// created on demand; once maxSize exist, acquire waits for a release.
type parserPool struct {
	grammar grammar
	idle    chan *ts.Parser
	maxSize int
	logger  *slog.Logger

	mu      sync.Mutex
	created int
}

func newParserPool(g grammar, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		grammar: g,
		idle:    make(chan *ts.Parser, maxSize),
		maxSize: maxSize,
		logger:  logger,
	}
}

func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.idle:
		return parser, nil
	default:
	}

	p.mu.Lock()
	if p.created >= p.maxSize {
		p.mu.Unlock()
		return <-p.idle, nil
	}
	p.created++
	p.mu.Unlock()

	parser, err := p.newParser()
	if err != nil {
		p.mu.Lock()
		p.created--
		p.mu.Unlock()
		return nil, err
	}
	return parser, nil
}

func (p *parserPool) newParser() (*ts.Parser, error) {
	parser := ts.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("create parser")
	}
	if err := parser.SetLanguage(ts.NewLanguage(p.grammar.language())); err != nil {
		parser.Close()
		return nil, fmt.Errorf("set %s language: %w", p.grammar, err)
	}
	p.logger.Debug("created parser", "grammar", p.grammar.String())
	return parser, nil
}

// release resets parser and returns it to the pool, closing it if the
// pool is full.
func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}
	parser.Reset()

	select {
	case p.idle <- parser:
	default:
		parser.Close()
	}
}

func (p *parserPool) close() {
	close(p.idle)
	for parser := range p.idle {
		parser.Close()
	}
}

func (p *parserPool) createdCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}
