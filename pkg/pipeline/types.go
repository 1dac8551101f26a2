// Package pipeline discovers component sources in a directory tree and runs
// extraction and node emission over them in parallel, once or continuously
// as files change.
package pipeline

import (
	"time"

	"github.com/gnana997/docgen/pkg/metadata"
)

// Options configures discovery and processing.
type Options struct {
	// Include glob patterns, relative to the root.
	Include []string

	// Exclude glob patterns, relative to the root. Matching directories
	// are not descended into.
	Exclude []string

	// Workers is the number of files processed at once (0 = auto).
	Workers int

	// MemoSize bounds the in-memory result cache (0 = default).
	MemoSize int

	// CacheSalt is mixed into cache digests; change it to invalidate
	// persisted results, e.g. on a version bump. It must identify the
	// resolver and parser options in Normalize, which are not part of the
	// key. Results are never cached when Normalize has caller handlers.
	CacheSalt string

	// Normalize is passed to every Normalize call.
	Normalize metadata.Options
}

// DefaultOptions returns options matching JavaScript and TypeScript
// sources while skipping dependencies, build output, tests and stories.
func DefaultOptions() Options {
	return Options{
		Include: []string{
			"**/*.js",
			"**/*.jsx",
			"**/*.mjs",
			"**/*.ts",
			"**/*.tsx",
		},
		Exclude: []string{
			"node_modules/**",
			"**/node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			".next/**",
			"coverage/**",
			".docgen/**",
			"**/*.d.ts",
			"**/*.test.*",
			"**/*.spec.*",
			"**/*.stories.*",
			"**/__tests__/**",
			"**/__mocks__/**",
		},
		MemoSize: 1024,
	}
}

// FileError records a file that failed to process.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Stats summarizes a Run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesFailed     int

	// FilesWithComponents counts processed files that yielded at least
	// one component.
	FilesWithComponents int
	Components          int

	Errors      []FileError
	WorkerCount int
	Cancelled   bool
	Duration    time.Duration
}

// ProgressCallback is called after every file of a Run.
type ProgressCallback func(done, total int, path string)
