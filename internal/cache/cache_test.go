package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	m := CacheManager()
	assert.Equal(t, filepath.Join(home, ".packbnk"), m.GetCacheDir())
	assert.Equal(t, filepath.Join(home, ".packbnk", "index.db"), m.GetIndexPath())
}

func TestCacheFiles(t *testing.T) {
	t.Parallel()

	m := &Cache{home: t.TempDir()}
	require.NoError(t, m.EnsureDir(m.GetCacheDir()))

	path := m.GetIndexPath()
	assert.False(t, m.FileExists(path))
	assert.Zero(t, m.GetFileSize(path))

	require.NoError(t, os.WriteFile(path, []byte("12345"), 0644))
	assert.True(t, m.FileExists(path))
	assert.Equal(t, int64(5), m.GetFileSize(path))
}
