package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"

	"github.com/bianoble/protovend/internal/repourl"
)

// Cache holds one working clone per repository identity. It is shared by
// every dependency in a run; callers serialize work on a repository with Lock.
type Cache struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Cache at the given directory.
// The directory is created if it does not exist.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	return &Cache{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// DefaultDir returns the default cache directory under XDG_CACHE_HOME.
func DefaultDir() string {
	return filepath.Join(xdg.CacheHome, "protovend", "repos")
}

// Dir returns the clone directory for url. Different access protocols for
// the same repository share a directory.
func (c *Cache) Dir(url repourl.URL) string {
	return filepath.Join(c.dir, entryName(url))
}

// Lock acquires the per-repository lock for url and returns its release
// function. The first caller populates the entry; later callers wait and
// then find it present.
func (c *Cache) Lock(url repourl.URL) func() {
	key := url.Identity()

	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Has reports whether a clone for url exists.
func (c *Cache) Has(url repourl.URL) bool {
	_, err := os.Stat(filepath.Join(c.Dir(url), ".git"))
	return err == nil
}

// Remove deletes the clone for url, if any.
func (c *Cache) Remove(url repourl.URL) error {
	if err := os.RemoveAll(c.Dir(url)); err != nil {
		return fmt.Errorf("removing cache entry for %s: %w", url, err)
	}
	return nil
}

// Clean deletes the whole cache directory. A cache that does not exist is
// already clean.
func (c *Cache) Clean() error {
	if err := os.RemoveAll(c.dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing cache directory %s: %w", c.dir, err)
	}
	return nil
}

// Size returns the total size of the cache in bytes.
func (c *Cache) Size() (int64, error) {
	var total int64
	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	return total, err
}

// Path returns the cache directory path.
func (c *Cache) Path() string {
	return c.dir
}

// entryName is a readable prefix plus a hash of the identity, so two
// repositories with the same sanitised path never collide.
func entryName(url repourl.URL) string {
	h := sha256.Sum256([]byte(url.Identity()))
	readable := strings.ReplaceAll(url.SanitisedPath(), "/", "-")
	if readable == "" {
		readable = "repo"
	}
	return readable + "-" + hex.EncodeToString(h[:])[:12]
}
