package preferences

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(true)
	dark, err := s.DarkMode()
	require.NoError(t, err)
	assert.True(t, dark)

	require.NoError(t, s.SetDarkMode(false))
	dark, _ = s.DarkMode()
	assert.False(t, dark)
}

func TestBoltStore_DefaultWhenMissing(t *testing.T) {
	s := NewBoltStore(filepath.Join(t.TempDir(), "nested", "prefs.bolt"), true)
	dark, err := s.DarkMode()
	require.NoError(t, err)
	assert.True(t, dark)
}

func TestBoltStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.bolt")

	require.NoError(t, NewBoltStore(path, true).SetDarkMode(false))

	// a fresh store over the same file sees the saved value
	dark, err := NewBoltStore(path, true).DarkMode()
	require.NoError(t, err)
	assert.False(t, dark)

	require.NoError(t, NewBoltStore(path, true).SetDarkMode(true))
	dark, err = NewBoltStore(path, false).DarkMode()
	require.NoError(t, err)
	assert.True(t, dark)
}

func TestBoltStore_CorruptValueFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.bolt")
	db, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return b.Put([]byte(DarkModeKey), []byte("maybe"))
	}))
	require.NoError(t, db.Close())

	dark, err := NewBoltStore(path, false).DarkMode()
	require.NoError(t, err)
	assert.False(t, dark)
}
