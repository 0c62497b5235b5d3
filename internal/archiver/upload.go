package archiver

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/newthinker/walarchive/internal/compress"
	"github.com/newthinker/walarchive/internal/core"
	"github.com/newthinker/walarchive/internal/segment"
	"go.uber.org/zap"
)

// UploadOptions controls a single Upload.
type UploadOptions struct {
	// Compress stores the segment as name.gz instead of name.
	Compress bool
	// Method picks the compressor; empty means compress.MethodLibrary.
	Method compress.Method
}

// Upload stores the local file src under name. With compression enabled
// the payload is compressed into a temp file that is removed afterwards
// whatever the outcome, and the object is named name + ".gz". No
// existence check is made; an existing object is overwritten.
func (a *Archiver) Upload(ctx context.Context, src, name string, opts UploadOptions) (err error) {
	started := time.Now()
	var sourceSize, storedSize int64
	defer func() {
		a.metrics.RecordUpload(opts.Compress, err, sourceSize, storedSize)
		a.metrics.ObserveOperation(OpArchive, started, err)
	}()

	info, err := os.Stat(src)
	if err != nil {
		return core.WrapError(core.ErrUploadFailed, err)
	}
	sourceSize = info.Size()

	if !opts.Compress {
		storedSize = sourceSize
		return a.put(ctx, src, name)
	}

	c, err := a.compressor(opts.Method)
	if err != nil {
		return core.WrapError(core.ErrCompressionFailed, err)
	}

	a.logger.Debug("compressing file", zap.String("path", src), zap.String("method", string(opts.Method)))
	tmp, err := c.Compress(ctx, src)
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(tmp); rmErr != nil {
			a.logger.Warn("removing compressed temp file", zap.String("path", tmp), zap.Error(rmErr))
		}
	}()

	if info, statErr := os.Stat(tmp); statErr == nil {
		storedSize = info.Size()
	}
	return a.put(ctx, tmp, segment.CompressedName(name))
}

func (a *Archiver) put(ctx context.Context, localPath, objectName string) error {
	a.logger.Debug("uploading file", zap.String("object", objectName))
	if err := a.store.Upload(ctx, localPath, objectName); err != nil {
		return core.WrapError(core.ErrUploadFailed, fmt.Errorf("%s: %w", objectName, err))
	}
	return nil
}
