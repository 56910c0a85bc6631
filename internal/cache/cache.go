package cache

import (
	"os"
	"path/filepath"
)

// Cache locates per-user packbnk data
type Cache struct {
	home string
}

// CacheManager creates a cache rooted in the user's home directory, or the
// working directory when there is none
func CacheManager() *Cache {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Cache{home: home}
}

// GetCacheDir returns the directory holding packbnk data
func (m *Cache) GetCacheDir() string {
	return filepath.Join(m.home, ".packbnk")
}

// GetIndexPath returns the default location of the SQLite index
func (m *Cache) GetIndexPath() string {
	return filepath.Join(m.GetCacheDir(), "index.db")
}

// EnsureDir creates a directory and all parent directories
func (m *Cache) EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// FileExists checks if a file exists
func (m *Cache) FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// GetFileSize returns the size of a file, or 0 if it doesn't exist
func (m *Cache) GetFileSize(filename string) int64 {
	info, err := os.Stat(filename)
	if err != nil {
		return 0
	}
	return info.Size()
}
