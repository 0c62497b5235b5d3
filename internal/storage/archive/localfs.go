// internal/storage/archive/localfs.go
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/newthinker/walarchive/internal/core"
	"github.com/newthinker/walarchive/internal/fsutil"
)

// LocalFS implements Storage on a local or network-mounted directory.
// Object names map directly to file names under basePath.
type LocalFS struct {
	basePath string
}

// NewLocalFS creates a new LocalFS storage
func NewLocalFS(basePath string) (*LocalFS, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating base path: %w", err)
	}
	return &LocalFS{basePath: basePath}, nil
}

func (l *LocalFS) fullPath(name string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(name))
}

func (l *LocalFS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(l.fullPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (l *LocalFS) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(l.fullPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.WrapError(core.ErrObjectNotFound, fmt.Errorf("%s: %w", name, err))
	}
	return data, err
}

// Upload copies through the atomic writer, so a reader of the archive
// directory never sees a half-copied segment.
func (l *LocalFS) Upload(ctx context.Context, localPath, name string) error {
	fullPath := l.fullPath(name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}
	return fsutil.CopyFile(localPath, fullPath, 0644)
}

func (l *LocalFS) Delete(ctx context.Context, name string) error {
	err := os.Remove(l.fullPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return core.WrapError(core.ErrObjectNotFound, fmt.Errorf("%s: %w", name, err))
	}
	return err
}

func (l *LocalFS) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	err := filepath.WalkDir(l.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		// In-flight atomic writes
		if strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})

	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
