// Package preferences persists user interface settings such as the theme.
package preferences

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DarkModeKey is the key the theme flag is stored under
const DarkModeKey = "carEstimatorDarkMode"

var bucketName = []byte("preferences")

// Store reads and writes the theme preference
type Store interface {
	DarkMode() (bool, error)
	SetDarkMode(dark bool) error
}

// MemoryStore keeps the preference for the lifetime of the process
type MemoryStore struct {
	mu   sync.RWMutex
	dark bool
}

// NewMemoryStore creates a store holding the given default
func NewMemoryStore(defaultDark bool) *MemoryStore {
	return &MemoryStore{dark: defaultDark}
}

// DarkMode implements Store
func (m *MemoryStore) DarkMode() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dark, nil
}

// SetDarkMode implements Store
func (m *MemoryStore) SetDarkMode(dark bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dark = dark
	return nil
}

// BoltStore keeps preferences in a BoltDB file. The file is opened per call
// so several CLI processes can share it.
type BoltStore struct {
	path        string
	defaultDark bool
}

// NewBoltStore returns a store backed by the file at path. The file and its
// directory are created on first write.
func NewBoltStore(path string, defaultDark bool) *BoltStore {
	return &BoltStore{path: path, defaultDark: defaultDark}
}

// Path returns the database file location
func (b *BoltStore) Path() string {
	return b.path
}

// DarkMode implements Store. A missing file or key yields the default.
func (b *BoltStore) DarkMode() (bool, error) {
	if _, err := os.Stat(b.path); os.IsNotExist(err) {
		return b.defaultDark, nil
	}

	db, err := bolt.Open(b.path, 0o600, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return b.defaultDark, fmt.Errorf("open preferences: %w", err)
	}
	defer func() { _ = db.Close() }()

	dark := b.defaultDark
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}
		raw := bucket.Get([]byte(DarkModeKey))
		if raw == nil {
			return nil
		}
		if e := json.Unmarshal(raw, &dark); e != nil {
			// unreadable values fall back to the default
			dark = b.defaultDark
		}
		return nil
	})
	if err != nil {
		return b.defaultDark, fmt.Errorf("read preferences: %w", err)
	}
	return dark, nil
}

// SetDarkMode implements Store
func (b *BoltStore) SetDarkMode(dark bool) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	db, err := bolt.Open(b.path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	defer func() { _ = db.Close() }()

	enc, err := json.Marshal(dark)
	if err != nil {
		return err
	}
	return db.Update(func(tx *bolt.Tx) error {
		bucket, e := tx.CreateBucketIfNotExists(bucketName)
		if e != nil {
			return e
		}
		return bucket.Put([]byte(DarkModeKey), enc)
	})
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*BoltStore)(nil)
)
