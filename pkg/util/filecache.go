package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// FileCache reads source files through memory maps and keeps them mapped
// until they are invalidated or the cache is closed. No file descriptor is
// held open for a cached entry.
//
// Entries are revalidated against the file's size and modification time on
// every Get, so a cache shared with a watcher never serves stale content.
//
// Thread-safe: Multiple goroutines can call methods concurrently.
type FileCache interface {
	// Get returns the file content. The returned slice aliases the mapping
	// and is only valid until the entry is invalidated; use Read for a copy.
	Get(filePath string) (*MappedFile, error)

	// Read returns a private copy of the file content.
	Read(filePath string) ([]byte, error)

	// Invalidate unmaps filePath if it is cached.
	Invalidate(filePath string)

	// Size returns number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	Close() error
}

// FileCacheConfig configures a FileCache.
type FileCacheConfig struct {
	// MaxFiles caps the number of mapped files (0 = unlimited)
	MaxFiles int

	Logger *slog.Logger
}

// DefaultFileCacheConfig returns the default configuration.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{MaxFiles: 10000}
}

// MappedFile is a cached file.
type MappedFile struct {
	Path    string
	Data    mmap.MMap
	Size    int64
	ModTime time.Time

	mapped bool
}

// FileCacheStats contains cache metrics.
type FileCacheStats struct {
	FilesLoaded  int64
	FilesCached  int
	CacheHits    int64
	CacheMisses  int64
	MmapFailures int64
}

// NewFileCache creates a FileCache. A nil config selects the defaults.
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &fileCacheImpl{
		maxFiles: config.MaxFiles,
		logger:   logger,
		cache:    make(map[string]*MappedFile),
	}
}

type fileCacheImpl struct {
	maxFiles int
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]*MappedFile
	stats FileCacheStats
}

func (fc *fileCacheImpl) Get(filePath string) (*MappedFile, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.getLocked(filePath)
}

func (fc *fileCacheImpl) Read(filePath string) ([]byte, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	// The copy happens under the lock so Invalidate cannot unmap mid-read.
	mf, err := fc.getLocked(filePath)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(mf.Data))
	copy(out, mf.Data)
	return out, nil
}

func (fc *fileCacheImpl) getLocked(filePath string) (*MappedFile, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		fc.stats.CacheMisses++
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	if mf, ok := fc.cache[filePath]; ok {
		if mf.Size == stat.Size() && mf.ModTime.Equal(stat.ModTime()) {
			fc.stats.CacheHits++
			return mf, nil
		}
		fc.releaseLocked(mf)
		delete(fc.cache, filePath)
	}
	fc.stats.CacheMisses++

	if fc.maxFiles > 0 && len(fc.cache) >= fc.maxFiles {
		return nil, fmt.Errorf("file cache limit reached: %d files (limit: %d files)",
			len(fc.cache), fc.maxFiles)
	}

	mf, err := fc.load(filePath)
	if err != nil {
		return nil, err
	}
	fc.cache[filePath] = mf
	fc.stats.FilesLoaded++

	return mf, nil
}

// load must be called with fc.mu held.
func (fc *fileCacheImpl) load(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	mf := &MappedFile{Path: filePath, Size: stat.Size(), ModTime: stat.ModTime()}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		return mf, nil
	}

	// The mapping outlives the descriptor, so only the mapping is cached.
	data, err := mmap.Map(file, mmap.RDONLY, 0)
	file.Close()
	if err != nil {
		fc.logger.Warn("mmap failed, using fallback",
			"file", filePath,
			"size", stat.Size(),
			"error", err)
		fc.stats.MmapFailures++

		raw, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				filePath, err, readErr)
		}
		mf.Data = mmap.MMap(raw)
		return mf, nil
	}

	mf.Data = data
	mf.mapped = true
	return mf, nil
}

func (fc *fileCacheImpl) releaseLocked(mf *MappedFile) {
	if mf.mapped {
		if err := mf.Data.Unmap(); err != nil {
			fc.logger.Warn("failed to unmap file", "path", mf.Path, "error", err)
		}
	}
	mf.Data = nil
}

func (fc *fileCacheImpl) Invalidate(filePath string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if mf, ok := fc.cache[filePath]; ok {
		fc.releaseLocked(mf)
		delete(fc.cache, filePath)
	}
}

func (fc *fileCacheImpl) Size() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.cache)
}

func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	stats := fc.stats
	stats.FilesCached = len(fc.cache)
	return stats
}

func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	for _, mf := range fc.cache {
		fc.releaseLocked(mf)
	}
	fc.cache = make(map[string]*MappedFile)

	fc.logger.Debug("file cache closed",
		"files_loaded", fc.stats.FilesLoaded,
		"cache_hits", fc.stats.CacheHits,
		"cache_misses", fc.stats.CacheMisses,
		"mmap_failures", fc.stats.MmapFailures)

	return nil
}
