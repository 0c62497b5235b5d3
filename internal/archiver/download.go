package archiver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newthinker/walarchive/internal/compress"
	"github.com/newthinker/walarchive/internal/core"
	"github.com/newthinker/walarchive/internal/fsutil"
	"github.com/newthinker/walarchive/internal/segment"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// DownloadOptions controls a single Download.
type DownloadOptions struct {
	// Mode selects the remote representation; empty means compress.ModeAuto.
	Mode compress.Mode
	// Prefetch is the window size: the requested segment plus
	// Prefetch-1 successors. 0 and 1 both fetch only the requested one.
	Prefetch int
}

// Download materializes segment name at dst. A staged cache entry is used
// when present; otherwise the prefetch window is fetched concurrently into
// the cache first. dst is written atomically: on any error it is left
// absent or at its previous content.
//
// Only the requested segment's failure is returned. Failures of
// successors in the window are logged and dropped.
func (a *Archiver) Download(ctx context.Context, name, dst string, opts DownloadOptions) (err error) {
	started := time.Now()
	source := "cache"
	defer func() {
		a.metrics.RecordDownload(source, err)
		a.metrics.ObserveOperation(OpRestore, started, err)
	}()

	if opts.Mode == "" {
		opts.Mode = compress.ModeAuto
	}

	data, ok, err := a.cache.Pop(name, dst)
	if err != nil {
		return err
	}
	if ok {
		a.logger.Debug("served from cache", zap.String("segment", name))
	} else {
		source = "remote"
		if err := a.fetchWindow(ctx, name, dst, opts); err != nil {
			return err
		}
		data, ok, err = a.cache.Pop(name, dst)
		if err != nil {
			return err
		}
		if !ok {
			return core.WrapError(core.ErrCacheFailed,
				fmt.Errorf("%s missing from cache after fetch", name))
		}
	}

	a.logger.Debug("writing file", zap.String("path", dst), zap.Int("bytes", len(data)))
	return fsutil.WriteBytes(dst, data, 0600)
}

// fetchWindow fetches the requested segment and its successors into the
// cache on a pool scoped to this call. Successors already staged by an
// earlier call are skipped.
func (a *Archiver) fetchWindow(ctx context.Context, name, dst string, opts DownloadOptions) error {
	names := segment.Window(name, opts.Prefetch)
	errs := make([]error, len(names))

	p := pool.New().WithMaxGoroutines(max(opts.Prefetch, 1))
	scheduled := 0
	for i, n := range names {
		if i > 0 && a.cache.Has(n, dst) {
			continue
		}
		scheduled++
		p.Go(func() {
			errs[i] = a.fetchToCache(ctx, n, dst, opts.Mode)
		})
	}
	p.Wait()
	a.metrics.RecordPrefetchScheduled(scheduled)

	for i := 1; i < len(names); i++ {
		if errs[i] != nil {
			a.metrics.RecordPrefetchFailure()
			a.logger.Warn("prefetch failed",
				zap.String("segment", names[i]),
				zap.Error(errs[i]),
			)
		}
	}
	return errs[0]
}

func (a *Archiver) fetchToCache(ctx context.Context, name, dst string, mode compress.Mode) error {
	data, err := a.resolve(ctx, name, mode)
	if err != nil {
		return err
	}
	return a.cache.Put(name, dst, data)
}

// resolve fetches the payload for name, picking the representation from
// mode, and returns it decompressed.
func (a *Archiver) resolve(ctx context.Context, name string, mode compress.Mode) ([]byte, error) {
	remote, compressed := name, false

	switch mode {
	case compress.ModeAuto:
		gz := segment.CompressedName(name)
		found, err := a.exists(ctx, gz)
		if err != nil {
			return nil, err
		}
		if found {
			remote, compressed = gz, true
			break
		}
		found, err = a.exists(ctx, name)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, core.WrapError(core.ErrSegmentNotFound, errors.New(name))
		}
	case compress.ModeCompressed:
		remote, compressed = segment.CompressedName(name), true
	case compress.ModePlain:
	default:
		return nil, fmt.Errorf("unknown compression mode: %q", mode)
	}

	a.logger.Debug("fetching file", zap.String("object", remote))
	data, err := a.store.Fetch(ctx, remote)
	if err != nil {
		if errors.Is(err, core.ErrObjectNotFound) {
			return nil, core.WrapError(core.ErrSegmentNotFound, err)
		}
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("%s: %w", remote, err))
	}
	a.metrics.RecordFetch(compressed, len(data))

	if !compressed {
		return data, nil
	}
	a.logger.Debug("decompressing", zap.String("object", remote))
	raw, err := compress.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", remote, err)
	}
	return raw, nil
}

func (a *Archiver) exists(ctx context.Context, object string) (bool, error) {
	found, err := a.store.Exists(ctx, object)
	if err != nil {
		return false, core.WrapError(core.ErrFetchFailed, fmt.Errorf("probing %s: %w", object, err))
	}
	return found, nil
}
