// Package cache stages prefetched, decompressed segments on local disk
// until a restore consumes them.
//
// An entry lives at <dir>/<name>.tmp, where dir is the destination
// file's directory unless an explicit cache directory is configured. The
// cache assumes a single archiver process per directory; nothing guards
// against two processes staging the same name.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/newthinker/walarchive/internal/core"
	"github.com/newthinker/walarchive/internal/fsutil"
	"go.uber.org/zap"
)

// EntrySuffix is appended to a segment name to form its cache file name.
const EntrySuffix = ".tmp"

// Cache is a local-disk staging area keyed by segment name.
type Cache struct {
	dir    string
	logger *zap.Logger
}

// New creates a cache. An empty dir stages entries next to each
// destination file.
func New(dir string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{dir: dir, logger: logger}
}

// Path returns the entry path for name when restoring to dst.
func (c *Cache) Path(name, dst string) string {
	dir := c.dir
	if dir == "" {
		dir = filepath.Dir(dst)
	}
	return filepath.Join(dir, name+EntrySuffix)
}

// Has reports whether an entry for name is staged.
func (c *Cache) Has(name, dst string) bool {
	_, err := os.Stat(c.Path(name, dst))
	return err == nil
}

// Put stages data for name. Entries are written atomically so a crash
// never leaves a truncated entry that a later restore would trust. A
// configured cache directory is created on first use.
func (c *Cache) Put(name, dst string, data []byte) error {
	path := c.Path(name, dst)
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0700); err != nil {
			return core.WrapError(core.ErrCacheFailed, fmt.Errorf("creating cache dir: %w", err))
		}
	}
	if err := fsutil.WriteBytes(path, data, 0600); err != nil {
		return core.WrapError(core.ErrCacheFailed, err)
	}
	c.logger.Debug("saved for later", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// Pop reads and removes the entry for name. A missing entry is reported
// as ok == false with a nil error; any other read failure is an error.
func (c *Cache) Pop(name, dst string) (data []byte, ok bool, err error) {
	path := c.Path(name, dst)

	data, err = os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, core.WrapError(core.ErrCacheFailed, fmt.Errorf("reading %s: %w", path, err))
	}

	// The payload is already in memory; a leftover entry holds the same
	// bytes and is harmless.
	if err := os.Remove(path); err != nil {
		c.logger.Warn("removing cache entry", zap.String("path", path), zap.Error(err))
	}
	return data, true, nil
}
