package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DiscoverFiles walks root applying include/exclude globs.
// Returns a sorted slice of absolute file paths for deterministic output.
func DiscoverFiles(root string, include, exclude []string) ([]string, error) {
	m, err := newMatcher(include, exclude)
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}
		if path == absRoot {
			return nil
		}

		rel := relSlash(absRoot, path)
		if m.excluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !m.included(rel) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ValidatePatterns reports the first include or exclude glob that does
// not compile.
func ValidatePatterns(include, exclude []string) error {
	_, err := newMatcher(include, exclude)
	return err
}

// matcher applies validated include/exclude globs to slash-separated
// relative paths.
type matcher struct {
	include []string
	exclude []string
}

func newMatcher(include, exclude []string) (*matcher, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	return &matcher{include: include, exclude: exclude}, nil
}

func (m *matcher) excluded(rel string) bool {
	for _, pattern := range m.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (m *matcher) included(rel string) bool {
	if len(m.include) == 0 {
		return true
	}
	for _, pattern := range m.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// matches reports whether a file at rel would be discovered. Only the
// path itself is checked, not its parent directories.
func (m *matcher) matches(rel string) bool {
	return !m.excluded(rel) && m.included(rel)
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
