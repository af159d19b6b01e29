package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	fs, err := NewFileStorage(path)
	require.NoError(t, err)

	v, err := fs.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, fs.Set("token", []byte("abc"), 0))
	require.NoError(t, fs.Set("ignored", nil, 0))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := NewFileStorage(path)
	require.NoError(t, err)

	v, err = reopened.Get("token")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)

	v, err = reopened.Get("ignored")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, reopened.Delete("token"))
	require.NoError(t, reopened.Delete("token"))

	v, err = reopened.Get("token")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestFileStorageExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	fs, err := NewFileStorage("")
	require.NoError(t, err)

	fs.now = func() time.Time { return now }

	require.NoError(t, fs.Set("k", []byte("v"), time.Minute))

	v, err := fs.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Minute)

	v, err = fs.Get("k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestFileStorageReset(t *testing.T) {
	fs, err := NewFileStorage(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)

	require.NoError(t, fs.Set("a", []byte("1"), 0))
	require.NoError(t, fs.Set("b", []byte("2"), 0))
	require.NoError(t, fs.Reset())

	for _, k := range []string{"a", "b"} {
		v, errGet := fs.Get(k)
		require.NoError(t, errGet)
		assert.Nil(t, v)
	}

	require.NoError(t, fs.Close())
}

func TestFileStorageCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := NewFileStorage(path)
	require.Error(t, err)
}
