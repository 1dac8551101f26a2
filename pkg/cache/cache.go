// Package cache persists normalized components per source file in a bbolt
// database, so files whose content did not change skip extraction on the
// next run. Each entry records the digest it was computed from; a lookup
// with a different digest is a miss.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/gnana997/docgen/pkg/metadata"
)

var bucketResults = []byte("results")

// entry is the stored form of one file's result.
type entry struct {
	Digest     string               `json:"digest"`
	Components []metadata.Component `json:"components"`
	StoredAt   time.Time            `json:"storedAt"`
}

// Store is a persistent result cache. It is safe for concurrent use.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
}

// Open opens (or creates) the cache database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResults)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Digest returns the cache digest of content. Salt covers everything else
// the result depends on, such as parser options and the tool version.
func Digest(content []byte, salt string) string {
	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the components stored for path if they were computed from
// the same digest.
func (s *Store) Get(path, digest string) ([]metadata.Component, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketResults).Get([]byte(path)); v != nil {
			// bbolt slices are only valid within the transaction
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	if data == nil {
		return nil, false, nil
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		s.logger.Warn("discarding corrupt cache entry", "path", path, "error", err)
		return nil, false, nil
	}
	if e.Digest != digest {
		return nil, false, nil
	}
	return e.Components, true, nil
}

// Put stores the components computed for path from digest, replacing any
// earlier entry for path.
func (s *Store) Put(path, digest string, components []metadata.Component) error {
	data, err := json.Marshal(entry{Digest: digest, Components: components, StoredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResults).Put([]byte(path), data)
	})
}

// Delete removes the entry for path.
func (s *Store) Delete(path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResults).Delete([]byte(path))
	})
}

// Prune removes entries whose path is not in keep and returns how many
// were removed.
func (s *Store) Prune(keep map[string]bool) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		var stale [][]byte
		err := b.ForEach(func(k, _ []byte) error {
			if !keep[string(k)] {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Len returns the number of entries.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketResults).Stats().KeyN
		return nil
	})
	return n, err
}
