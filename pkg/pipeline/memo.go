package pipeline

import (
	"context"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/docgen/pkg/cache"
	"github.com/gnana997/docgen/pkg/metadata"
	"github.com/gnana997/docgen/pkg/nodes"
)

// Cache layers reported to Metrics.
const (
	layerMemory = "memory"
	layerDisk   = "disk"
)

// cachingNormalizer serves results for unchanged content from an LRU and,
// when configured, a persistent store, before falling back to next.
// Calls with caller handlers always go to next: handlers have side effects
// and cannot be keyed.
type cachingNormalizer struct {
	next    nodes.Normalizer
	memo    *lru.Cache[string, []metadata.Component]
	store   *cache.Store
	salt    string
	metrics *Metrics
	logger  *slog.Logger
}

func newCachingNormalizer(next nodes.Normalizer, size int, store *cache.Store, salt string, metrics *Metrics, logger *slog.Logger) (*cachingNormalizer, error) {
	if size <= 0 {
		size = DefaultOptions().MemoSize
	}
	memo, err := lru.New[string, []metadata.Component](size)
	if err != nil {
		return nil, err
	}
	return &cachingNormalizer{
		next:    next,
		memo:    memo,
		store:   store,
		salt:    salt,
		metrics: metrics,
		logger:  logger,
	}, nil
}

func (c *cachingNormalizer) Normalize(ctx context.Context, content []byte, source metadata.SourceNode, opts metadata.Options) ([]metadata.Component, error) {
	if len(opts.Handlers) > 0 {
		return c.next.Normalize(ctx, content, source, opts)
	}

	digest := cache.Digest(content, c.salt)
	key := source.AbsolutePath + "\x00" + digest

	if components, ok := c.memo.Get(key); ok {
		c.metrics.cacheHit(layerMemory)
		return components, nil
	}

	if c.store != nil {
		components, ok, err := c.store.Get(source.ID, digest)
		if err != nil {
			c.logger.WarnContext(ctx, "cache read failed", "file", source.ID, "error", err)
		} else if ok {
			c.metrics.cacheHit(layerDisk)
			c.memo.Add(key, components)
			return components, nil
		}
	}

	components, err := c.next.Normalize(ctx, content, source, opts)
	if err != nil {
		return nil, err
	}

	c.memo.Add(key, components)
	if c.store != nil {
		if err := c.store.Put(source.ID, digest, components); err != nil {
			c.logger.WarnContext(ctx, "cache write failed", "file", source.ID, "error", err)
		}
	}
	return components, nil
}
