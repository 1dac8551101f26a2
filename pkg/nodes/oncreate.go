package nodes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gnana997/docgen/pkg/metadata"
	"github.com/gnana997/docgen/pkg/parser"
)

// Loader reads the content of a source.
type Loader func(ctx context.Context, source metadata.SourceNode) ([]byte, error)

// Normalizer extracts normalized components from source content.
// *metadata.Normalizer implements it.
type Normalizer interface {
	Normalize(ctx context.Context, content []byte, source metadata.SourceNode, opts metadata.Options) ([]metadata.Component, error)
}

// CanParse reports whether source looks like JavaScript or TypeScript,
// judging by its media type first and its extension second.
func CanParse(source metadata.SourceNode) bool {
	return parser.DetectMediaType(source.MediaType, source.Extension) != parser.LanguageUnknown
}

// Processor runs extraction and emission for sources as they appear.
type Processor struct {
	normalizer Normalizer
	emitter    *Emitter
	load       Loader
	opts       metadata.Options
	logger     *slog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(normalizer Normalizer, emitter *Emitter, load Loader, opts metadata.Options, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		normalizer: normalizer,
		emitter:    emitter,
		load:       load,
		opts:       opts,
		logger:     logger,
	}
}

// OnCreateNode extracts and emits the components of source, returning how
// many were emitted. Sources that are not JavaScript or TypeScript are
// skipped without loading them. Failures are reported through the logger
// and returned; they never affect other sources.
func (p *Processor) OnCreateNode(ctx context.Context, source metadata.SourceNode) (int, error) {
	if !CanParse(source) {
		return 0, nil
	}

	content, err := p.load(ctx, source)
	if err != nil {
		p.report(ctx, source, err)
		return 0, fmt.Errorf("load %s: %w", source.ID, err)
	}

	components, err := p.normalizer.Normalize(ctx, content, source, p.opts)
	if err != nil {
		p.report(ctx, source, err)
		return 0, err
	}

	if err := p.emitter.Emit(ctx, source, components); err != nil {
		p.report(ctx, source, err)
		return 0, err
	}
	return len(components), nil
}

func (p *Processor) report(ctx context.Context, source metadata.SourceNode, err error) {
	attrs := []any{"file", p.displayPath(source), "error", err}

	var xerr *metadata.ExtractionError
	if errors.As(err, &xerr) && xerr.CodeFrame != "" {
		attrs = append(attrs, "frame", xerr.CodeFrame)
	}

	p.logger.ErrorContext(ctx, "There was a problem parsing component metadata", attrs...)
}

func (p *Processor) displayPath(source metadata.SourceNode) string {
	if source.RelativePath != "" {
		return source.RelativePath
	}
	if source.AbsolutePath != "" && p.opts.Cwd != "" {
		if rel, err := filepath.Rel(p.opts.Cwd, source.AbsolutePath); err == nil {
			return rel
		}
	}
	if source.AbsolutePath != "" {
		return source.AbsolutePath
	}
	return source.ID
}
