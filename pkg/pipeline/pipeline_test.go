package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/docgen/pkg/cache"
	"github.com/gnana997/docgen/pkg/docgen"
	"github.com/gnana997/docgen/pkg/metadata"
	"github.com/gnana997/docgen/pkg/nodes"
)

const projectDir = "testdata/project"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func newNormalizer(t *testing.T) *metadata.Normalizer {
	t.Helper()
	e := docgen.New(testLogger())
	t.Cleanup(func() { e.Close() })
	return metadata.NewNormalizer(e, testLogger())
}

func newPipeline(t *testing.T, root string, mutate func(*Config)) (*Pipeline, *nodes.Store) {
	t.Helper()
	store := nodes.NewStore()
	cfg := Config{
		Root:       root,
		Normalizer: newNormalizer(t),
		Store:      store,
		Options:    DefaultOptions(),
		Logger:     testLogger(),
	}
	cfg.Options.Workers = 2
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p, store
}

func componentNames(store *nodes.Store) []string {
	var names []string
	for _, n := range store.NodesOfType(nodes.TypeComponentMetadata) {
		names = append(names, n.Component.DisplayName)
	}
	sort.Strings(names)
	return names
}

func TestDiscoverFiles(t *testing.T) {
	opts := DefaultOptions()
	files, err := DiscoverFiles(projectDir, opts.Include, opts.Exclude)
	require.NoError(t, err)

	root, err := filepath.Abs(projectDir)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f))
		rel = append(rel, relSlash(root, f))
	}
	assert.Equal(t, []string{
		"src/Broken.js",
		"src/Button.jsx",
		"src/components/Card/index.tsx",
		"src/utils.js",
	}, rel)
}

func TestDiscoverFiles_IncludeOnly(t *testing.T) {
	files, err := DiscoverFiles(projectDir, []string{"**/*.tsx"}, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "index.tsx", filepath.Base(files[0]))
}

func TestDiscoverFiles_InvalidPattern(t *testing.T) {
	_, err := DiscoverFiles(projectDir, []string{"[invalid"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid include pattern")

	_, err = DiscoverFiles(projectDir, nil, []string{"[invalid"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}

func TestNew_RequiresNormalizerAndStore(t *testing.T) {
	_, err := New(Config{Root: projectDir})
	assert.Error(t, err)
}

func TestSource(t *testing.T) {
	p, _ := newPipeline(t, projectDir, nil)

	src := p.Source(filepath.Join(p.Root(), "src", "components", "Card", "index.tsx"))
	assert.Equal(t, "src/components/Card/index.tsx", src.ID)
	assert.Equal(t, src.ID, src.RelativePath)
	assert.Equal(t, "tsx", src.Extension)
	assert.Equal(t, "text/tsx", src.MediaType)
	assert.True(t, filepath.IsAbs(src.AbsolutePath))

	rel := p.Source("src/Button.jsx")
	assert.Equal(t, "src/Button.jsx", rel.ID)
	assert.Equal(t, "text/jsx", rel.MediaType)
}

func TestRun(t *testing.T) {
	metrics := NewMetrics()
	p, store := newPipeline(t, projectDir, func(c *Config) { c.Metrics = metrics })

	var mu sync.Mutex
	var progressed []string
	stats, err := p.Run(context.Background(), func(done, total int, path string) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 4, total)
		progressed = append(progressed, path)
	})
	require.NoError(t, err)

	assert.Equal(t, 4, stats.FilesDiscovered)
	assert.Equal(t, 3, stats.FilesProcessed)
	assert.Equal(t, 1, stats.FilesFailed)
	assert.Equal(t, 2, stats.FilesWithComponents)
	assert.Equal(t, 2, stats.Components)
	assert.Equal(t, 2, stats.WorkerCount)
	assert.False(t, stats.Cancelled)
	assert.Len(t, progressed, 4)

	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "Broken.js", filepath.Base(stats.Errors[0].Path))
	var xerr *metadata.ExtractionError
	assert.True(t, errors.As(stats.Errors[0], &xerr))

	assert.Equal(t, []string{"Button", "Card"}, componentNames(store))
	assert.ElementsMatch(t, []string{"src/Button.jsx", "src/components/Card/index.tsx"}, store.Owners())

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.FilesProcessed.WithLabelValues(resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FilesProcessed.WithLabelValues(resultFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Components))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Sources))
}

func TestRun_PersistentCache(t *testing.T) {
	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), testLogger())
	require.NoError(t, err)
	defer db.Close()

	first, _ := newPipeline(t, projectDir, func(c *Config) { c.Cache = db })
	_, err = first.Run(context.Background(), nil)
	require.NoError(t, err)

	n, err := db.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n, "successful files are persisted")

	metrics := NewMetrics()
	second, store := newPipeline(t, projectDir, func(c *Config) {
		c.Cache = db
		c.Metrics = metrics
	})
	stats, err := second.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.CacheHits.WithLabelValues(layerDisk)))
	assert.Equal(t, 1, stats.FilesFailed)
	assert.Equal(t, []string{"Button", "Card"}, componentNames(store))
}

func TestRun_CacheSaltInvalidates(t *testing.T) {
	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), testLogger())
	require.NoError(t, err)
	defer db.Close()

	first, _ := newPipeline(t, projectDir, func(c *Config) { c.Cache = db })
	_, err = first.Run(context.Background(), nil)
	require.NoError(t, err)

	metrics := NewMetrics()
	second, _ := newPipeline(t, projectDir, func(c *Config) {
		c.Cache = db
		c.Metrics = metrics
		c.Options.CacheSalt = "v2"
	})
	_, err = second.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Zero(t, testutil.ToFloat64(metrics.CacheHits.WithLabelValues(layerDisk)))
}

func TestRun_CallerHandlersBypassCache(t *testing.T) {
	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), testLogger())
	require.NoError(t, err)
	defer db.Close()

	var mu sync.Mutex
	var seen []string
	handler := metadata.HandlerFunc(func(doc *docgen.Documentation, _ *docgen.Definition, _ *docgen.File, _ metadata.SourceNode) {
		mu.Lock()
		seen = append(seen, doc.DisplayName)
		mu.Unlock()
	})

	metrics := NewMetrics()
	p, _ := newPipeline(t, projectDir, func(c *Config) {
		c.Cache = db
		c.Metrics = metrics
		c.Options.Normalize.Handlers = []metadata.Handler{handler}
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := p.Run(ctx, nil)
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"Button", "Card", "Button", "Card"}, seen, "handlers run on every pass")
	assert.Zero(t, testutil.ToFloat64(metrics.CacheHits.WithLabelValues(layerMemory)))
	assert.Zero(t, testutil.ToFloat64(metrics.CacheHits.WithLabelValues(layerDisk)))

	n, err := db.Len()
	require.NoError(t, err)
	assert.Zero(t, n, "results computed with handlers are not persisted")
}

func TestProcessFile_MemoryCache(t *testing.T) {
	metrics := NewMetrics()
	p, store := newPipeline(t, projectDir, func(c *Config) { c.Metrics = metrics })
	ctx := context.Background()

	n, err := p.ProcessFile(ctx, "src/Button.jsx")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = p.ProcessFile(ctx, "src/Button.jsx")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheHits.WithLabelValues(layerMemory)))
	assert.Len(t, store.NodesOfType(nodes.TypeComponentMetadata), 1, "a second pass replaces the first")
	assert.Len(t, store.NodesOfType(nodes.TypeComponentProp), 1)
}

func TestRemoveFile(t *testing.T) {
	p, store := newPipeline(t, projectDir, nil)
	ctx := context.Background()

	_, err := p.ProcessFile(ctx, "src/Button.jsx")
	require.NoError(t, err)
	require.NotZero(t, store.Len())

	require.NoError(t, p.RemoveFile(ctx, "src/Button.jsx"))
	assert.Zero(t, store.Len())
	assert.Empty(t, store.Owners())
}

func TestMatches(t *testing.T) {
	p, _ := newPipeline(t, projectDir, nil)

	assert.True(t, p.Matches(filepath.Join(p.Root(), "src", "New.tsx")))
	assert.False(t, p.Matches(filepath.Join(p.Root(), "src", "New.test.tsx")))
	assert.False(t, p.Matches(filepath.Join(p.Root(), "node_modules", "x", "a.js")))
	assert.False(t, p.Matches(filepath.Join(p.Root(), "README.md")))
}

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg), "registering twice fails")

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.cacheHit(layerMemory)
		nilMetrics.watchEvent("write")
		nilMetrics.setSources(1)
	})
}

func TestValidatePatterns(t *testing.T) {
	assert.NoError(t, ValidatePatterns([]string{"**/*.js"}, []string{"dist/**"}))
	assert.Error(t, ValidatePatterns(nil, []string{"[invalid"}))
}
