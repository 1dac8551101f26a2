package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/gnana997/docgen/pkg/cache"
	"github.com/gnana997/docgen/pkg/catalog"
	"github.com/gnana997/docgen/pkg/docgen"
	"github.com/gnana997/docgen/pkg/metadata"
	"github.com/gnana997/docgen/pkg/nodes"
	"github.com/gnana997/docgen/pkg/pipeline"
	"github.com/gnana997/docgen/pkg/util"
)

// projectFlags are the flags of commands that extract a source tree.
type projectFlags struct {
	noCache  bool
	workers  int
	resolver string
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "do not read or write the persistent result cache")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "files processed at once (0 = auto)")
	cmd.Flags().StringVar(&f.resolver, "resolver", "", "component resolver: all, exported or single")
}

// project is an opened source tree: its config, pipeline and node store.
type project struct {
	root     string
	cfg      *ProjectConfig
	logger   *slog.Logger
	store    *nodes.Store
	metrics  *pipeline.Metrics
	pipeline *pipeline.Pipeline

	mu      sync.Mutex
	closers []func() error
}

// openProject loads the config of the tree at dir and wires a pipeline
// over it. The caller must Close the project.
func openProject(opts *globalOptions, flags *projectFlags, dir string) (_ *project, err error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	cfg, err := loadConfigFor(opts, root)
	if err != nil {
		return nil, err
	}
	if flags.resolver != "" {
		cfg.Resolver = flags.resolver
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}

	p := &project{
		root:    root,
		cfg:     cfg,
		logger:  opts.logger(cfg),
		store:   nodes.NewStore(),
		metrics: pipeline.NewMetrics(),
	}
	defer func() {
		if err != nil {
			p.Close()
		}
	}()

	pipeOpts, err := cfg.pipelineOptions(root)
	if err != nil {
		return nil, err
	}

	extractor := docgen.New(p.logger)
	p.onClose(extractor.Close)

	var results *cache.Store
	if cfg.Cache.Path != "" && !flags.noCache {
		results, err = cache.Open(resolvePath(root, cfg.Cache.Path), p.logger)
		if err != nil {
			return nil, err
		}
		p.onClose(results.Close)
	}

	p.pipeline, err = pipeline.New(pipeline.Config{
		Root:       root,
		Normalizer: metadata.NewNormalizer(extractor, p.logger),
		Store:      p.store,
		Cache:      results,
		Metrics:    p.metrics,
		Options:    pipeOpts,
		Logger:     p.logger,
	})
	if err != nil {
		return nil, err
	}
	p.onClose(p.pipeline.Close)
	return p, nil
}

// loadConfigFor reads --config, or the default config file below root.
func loadConfigFor(opts *globalOptions, root string) (*ProjectConfig, error) {
	if opts.configPath != "" {
		return loadProjectConfig(opts.configPath, true)
	}
	return loadProjectConfig(filepath.Join(root, defaultConfigPath), false)
}

// logger builds the command logger. Flags win over the config file.
func (o *globalOptions) logger(cfg *ProjectConfig) *slog.Logger {
	lc := o.log
	if lc.Level == "" && cfg != nil {
		lc.Level = util.LogLevel(cfg.Log.Level)
	}
	if lc.Format == "" && cfg != nil {
		lc.Format = util.LogFormat(cfg.Log.Format)
	}
	logger := util.NewLogger(lc)
	util.SetDefault(logger)
	return logger
}

func (p *project) onClose(fn func() error) {
	p.mu.Lock()
	p.closers = append(p.closers, fn)
	p.mu.Unlock()
}

// Close releases resources in reverse order of acquisition.
func (p *project) Close() error {
	p.mu.Lock()
	closers := p.closers
	p.closers = nil
	p.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	return errors.Join(errs...)
}

// run extracts the whole tree once and logs a summary.
func (p *project) run(ctx context.Context) (*pipeline.Stats, error) {
	stats, err := p.pipeline.Run(ctx, nil)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Components extracted",
		"files", stats.FilesDiscovered,
		"with_components", stats.FilesWithComponents,
		"components", stats.Components,
		"failed", stats.FilesFailed)
	return stats, nil
}

// catalog snapshots the node store. Validation problems are logged.
func (p *project) catalog() *catalog.Catalog {
	cat := catalog.FromStore(p.cfg.Catalog.Name, p.cfg.Catalog.Version, p.store)
	for _, err := range cat.Validate() {
		p.logger.Warn("Catalog validation", "error", err)
	}
	return cat
}
