package compress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/newthinker/walarchive/internal/core"
)

// Gzip compresses in-process, reading the source ChunkSize bytes at a time.
type Gzip struct {
	Level   int
	TempDir string
}

// Compress implements Compressor.
func (g *Gzip) Compress(ctx context.Context, srcPath string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", core.WrapError(core.ErrCompressionFailed, err)
	}
	defer src.Close()

	out, err := createTemp(g.TempDir)
	if err != nil {
		return "", err
	}
	tmpPath := out.Name()

	if err := g.stream(ctx, src, out); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return "", core.WrapError(core.ErrCompressionFailed, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return "", core.WrapError(core.ErrCompressionFailed,
			fmt.Errorf("closing %s: %w", tmpPath, err))
	}
	return tmpPath, nil
}

func (g *Gzip) stream(ctx context.Context, src io.Reader, dst io.Writer) error {
	zw, err := gzip.NewWriterLevel(dst, g.Level)
	if err != nil {
		return err
	}

	buf := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := zw.Write(buf[:n]); err != nil {
				zw.Close()
				return fmt.Errorf("writing compressed data: %w", err)
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			zw.Close()
			return fmt.Errorf("reading source: %w", rerr)
		}
	}
	return zw.Close()
}
