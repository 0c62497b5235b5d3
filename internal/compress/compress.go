// Package compress turns local WAL segments into gzip payloads for upload
// and inflates downloaded payloads back into raw segments.
package compress

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/newthinker/walarchive/internal/core"
)

// ChunkSize bounds the memory used while streaming a source file
// through the library compressor.
const ChunkSize = 1 << 20

// Compression levels accepted by the library compressor.
const (
	DefaultLevel    = gzip.DefaultCompression
	BestSpeed       = gzip.BestSpeed
	BestCompression = gzip.BestCompression
)

// Method selects how uploads are compressed.
type Method string

const (
	// MethodLibrary compresses in-process with klauspost/compress.
	MethodLibrary Method = "library"
	// MethodGzip pipes the source through an external gzip binary.
	MethodGzip Method = "gzip"
)

// ParseMethod parses a compression method name.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodLibrary, MethodGzip:
		return Method(s), nil
	default:
		return "", fmt.Errorf("unknown compression method: %q", s)
	}
}

// Mode tells a download which remote representation to fetch.
type Mode string

const (
	// ModeAuto prefers name.gz and falls back to the plain name.
	ModeAuto Mode = "auto"
	// ModeCompressed always fetches name.gz and inflates it.
	ModeCompressed Mode = "true"
	// ModePlain always fetches name verbatim.
	ModePlain Mode = "false"
)

// ParseMode parses "auto" or any boolean spelling accepted by strconv.
func ParseMode(s string) (Mode, error) {
	if s == string(ModeAuto) {
		return ModeAuto, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return "", fmt.Errorf("unknown compression mode: %q", s)
	}
	if b {
		return ModeCompressed, nil
	}
	return ModePlain, nil
}

// Compressor writes a compressed copy of a local file to a private temp
// file and returns its path. The caller owns the returned file.
type Compressor interface {
	Compress(ctx context.Context, srcPath string) (string, error)
}

// Options configures New.
type Options struct {
	Level    int
	GzipPath string
	TempDir  string // "" uses os.TempDir
}

// New returns the compressor for method.
func New(method Method, opts Options) (Compressor, error) {
	switch method {
	case MethodLibrary:
		return &Gzip{Level: opts.Level, TempDir: opts.TempDir}, nil
	case MethodGzip:
		path := opts.GzipPath
		if path == "" {
			path = "gzip"
		}
		return &External{Path: path, TempDir: opts.TempDir}, nil
	default:
		return nil, fmt.Errorf("unknown compression method: %q", method)
	}
}

// Decompress inflates a fully buffered gzip payload. The whole object is
// held in memory, which is fine for segment sized objects only.
func Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, core.WrapError(core.ErrDecompressionFailed, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, core.WrapError(core.ErrDecompressionFailed, err)
	}
	return out, nil
}

func createTemp(dir string) (*os.File, error) {
	f, err := os.CreateTemp(dir, "walarchive-*.gz")
	if err != nil {
		return nil, core.WrapError(core.ErrCompressionFailed,
			fmt.Errorf("creating temp file: %w", err))
	}
	return f, nil
}
