package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gnana997/docgen/pkg/cache"
	"github.com/gnana997/docgen/pkg/metadata"
	"github.com/gnana997/docgen/pkg/nodes"
	"github.com/gnana997/docgen/pkg/util"
)

// Config wires a Pipeline.
type Config struct {
	// Root is the directory sources are discovered in.
	Root string

	Normalizer nodes.Normalizer

	// Store receives the emitted nodes.
	Store *nodes.Store

	// CreateNodeID mints node ids (nil = nodes.DefaultNodeID).
	CreateNodeID func(string) string

	// Files reads sources (nil = a new util.FileCache).
	Files util.FileCache

	// Cache persists results across runs (optional).
	Cache *cache.Store

	// Metrics records processing metrics (optional).
	Metrics *Metrics

	Options Options
	Logger  *slog.Logger
}

// Pipeline extracts components from every source under a root into a
// node store.
type Pipeline struct {
	root      string
	match     *matcher
	store     *nodes.Store
	processor *nodes.Processor
	memo      *cachingNormalizer
	files     util.FileCache
	ownFiles  bool
	persisted *cache.Store
	metrics   *Metrics
	opts      Options
	logger    *slog.Logger

	mu      sync.Mutex
	sources map[string]bool
}

// New creates a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Normalizer == nil || cfg.Store == nil {
		return nil, errors.New("pipeline needs a normalizer and a store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	match, err := newMatcher(cfg.Options.Include, cfg.Options.Exclude)
	if err != nil {
		return nil, err
	}

	files, ownFiles := cfg.Files, false
	if files == nil {
		files, ownFiles = util.NewFileCache(&util.FileCacheConfig{Logger: logger}), true
	}

	memo, err := newCachingNormalizer(cfg.Normalizer, cfg.Options.MemoSize, cfg.Cache, cfg.Options.CacheSalt, cfg.Metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}

	opts := cfg.Options
	if opts.Normalize.Cwd == "" {
		opts.Normalize.Cwd = root
	}

	p := &Pipeline{
		root:      root,
		match:     match,
		store:     cfg.Store,
		memo:      memo,
		files:     files,
		ownFiles:  ownFiles,
		persisted: cfg.Cache,
		metrics:   cfg.Metrics,
		opts:      opts,
		logger:    logger,
		sources:   make(map[string]bool),
	}

	load := func(_ context.Context, source metadata.SourceNode) ([]byte, error) {
		return p.files.Read(source.AbsolutePath)
	}
	emitter := nodes.NewEmitter(cfg.Store, cfg.CreateNodeID, logger)
	p.processor = nodes.NewProcessor(memo, emitter, load, opts.Normalize, logger)
	return p, nil
}

// Root returns the absolute root directory.
func (p *Pipeline) Root() string {
	return p.root
}

// Close releases the file cache when the pipeline created it.
func (p *Pipeline) Close() error {
	if p.ownFiles {
		return p.files.Close()
	}
	return nil
}

// Source describes the file at path as a source node. Its id is the path
// relative to the root with forward slashes.
func (p *Pipeline) Source(path string) metadata.SourceNode {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(p.root, path)
	}
	rel := relSlash(p.root, abs)
	ext := strings.TrimPrefix(filepath.Ext(abs), ".")
	return metadata.SourceNode{
		ID:           rel,
		AbsolutePath: abs,
		RelativePath: rel,
		MediaType:    mediaType(ext),
		Extension:    ext,
	}
}

// Matches reports whether path is a source the pipeline would discover.
func (p *Pipeline) Matches(path string) bool {
	return p.match.matches(relSlash(p.root, path))
}

// ProcessFile extracts the file at path and replaces its nodes in the
// store. Returns the number of components emitted.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (int, error) {
	start := time.Now()
	source := p.Source(path)

	n, err := p.processor.OnCreateNode(ctx, source)
	p.metrics.observeFile(start, n, err)
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	p.sources[source.ID] = true
	p.metrics.setSources(len(p.sources))
	p.mu.Unlock()
	return n, nil
}

// RemoveFile drops the nodes of the file at path.
func (p *Pipeline) RemoveFile(ctx context.Context, path string) error {
	source := p.Source(path)
	p.files.Invalidate(source.AbsolutePath)

	p.mu.Lock()
	delete(p.sources, source.ID)
	p.metrics.setSources(len(p.sources))
	p.mu.Unlock()

	if err := p.store.DeleteOwner(ctx, source.ID); err != nil {
		return fmt.Errorf("remove %s: %w", source.ID, err)
	}
	if p.persisted != nil {
		if err := p.persisted.Delete(source.ID); err != nil {
			p.logger.WarnContext(ctx, "cache delete failed", "file", source.ID, "error", err)
		}
	}
	return nil
}

// Run discovers every source under the root and processes them on a
// worker pool. Failing files are recorded in Stats and never stop the
// run; only discovery errors and cancellation end it early.
func (p *Pipeline) Run(ctx context.Context, progress ProgressCallback) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	files, err := DiscoverFiles(p.root, p.opts.Include, p.opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)

	p.logger.InfoContext(ctx, "File discovery complete", "root", p.root, "files_found", len(files))

	if len(files) > 0 {
		p.processAll(ctx, files, stats, progress)
	}

	if p.persisted != nil && !stats.Cancelled {
		keep := make(map[string]bool, len(files))
		for _, f := range files {
			keep[p.Source(f).ID] = true
		}
		if removed, err := p.persisted.Prune(keep); err != nil {
			p.logger.WarnContext(ctx, "cache prune failed", "error", err)
		} else if removed > 0 {
			p.logger.DebugContext(ctx, "pruned cache entries", "removed", removed)
		}
	}

	stats.Duration = time.Since(start)
	p.logger.InfoContext(ctx, "Extraction complete",
		"files_processed", stats.FilesProcessed,
		"files_failed", stats.FilesFailed,
		"components", stats.Components,
		"duration_ms", stats.Duration.Milliseconds())

	return stats, nil
}

func (p *Pipeline) processAll(ctx context.Context, files []string, stats *Stats, progress ProgressCallback) {
	pool := NewWorkerPool(ctx, p.opts.Workers, p.ProcessFile, p.logger)
	stats.WorkerCount = pool.numWorkers
	pool.Start()
	defer pool.Stop()

	total := len(files)

	// The collector must run before submission starts, or a full jobs
	// channel blocks submission while nobody drains results.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for finished := 0; finished < total; finished++ {
			select {
			case <-ctx.Done():
				stats.Cancelled = true
				return

			case result := <-pool.Results():
				stats.FilesProcessed++
				stats.Components += result.Components
				if result.Components > 0 {
					stats.FilesWithComponents++
				}
				if progress != nil {
					progress(finished+1, total, result.Path)
				}

			case fileErr := <-pool.Errors():
				stats.FilesFailed++
				stats.Errors = append(stats.Errors, fileErr)
				if progress != nil {
					progress(finished+1, total, fileErr.Path)
				}
			}
		}
	}()

	for i, file := range files {
		if err := pool.Submit(FileJob{Path: file, JobID: i}); err != nil {
			break
		}
	}
	pool.FinishSubmitting()

	<-done
}

func mediaType(ext string) string {
	switch ext {
	case "js", "mjs", "cjs":
		return "application/javascript"
	case "jsx":
		return "text/jsx"
	case "ts", "mts", "cts":
		return "application/typescript"
	case "tsx":
		return "text/tsx"
	}
	return ""
}
