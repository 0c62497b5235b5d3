// Package archiver moves WAL segments between the local disk and the
// object store. Upload compresses on the way out, Download restores with
// prefetch through the local segment cache, and Cleanup applies
// retention by segment name.
package archiver

import (
	"fmt"

	"github.com/newthinker/walarchive/internal/cache"
	"github.com/newthinker/walarchive/internal/compress"
	"github.com/newthinker/walarchive/internal/metrics"
	"github.com/newthinker/walarchive/internal/storage/archive"
	"go.uber.org/zap"
)

// Operation names used in logs and metrics.
const (
	OpArchive = "archive"
	OpRestore = "restore"
	OpCleanup = "cleanup"
)

// Config holds archiver settings that do not vary per call.
type Config struct {
	// CacheDir overrides where prefetched segments are staged. Empty
	// stages them next to the destination file.
	CacheDir string

	// Compression configures the compressors built for Upload.
	Compression compress.Options
}

// Archiver orchestrates uploads, restores and retention against a store.
// A single Archiver is meant to serve one process; concurrent archivers
// sharing a cache directory are not coordinated.
type Archiver struct {
	store   archive.Storage
	cache   *cache.Cache
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Registry
}

// New creates an Archiver on top of store. A nil logger discards output
// and a nil registry gets a private one.
func New(cfg Config, store archive.Storage, logger *zap.Logger, reg *metrics.Registry) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Archiver{
		store:   store,
		cache:   cache.New(cfg.CacheDir, logger),
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
	}
}

func (a *Archiver) compressor(method compress.Method) (compress.Compressor, error) {
	if method == "" {
		method = compress.MethodLibrary
	}
	c, err := compress.New(method, a.cfg.Compression)
	if err != nil {
		return nil, fmt.Errorf("selecting compressor: %w", err)
	}
	return c, nil
}
