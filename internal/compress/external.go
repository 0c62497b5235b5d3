package compress

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/newthinker/walarchive/internal/core"
)

// External runs `<Path> -c <src>` and captures stdout into the temp file.
// A non-zero exit is a hard failure and is never retried.
type External struct {
	Path    string
	TempDir string
}

// Compress implements Compressor.
func (e *External) Compress(ctx context.Context, srcPath string) (string, error) {
	out, err := createTemp(e.TempDir)
	if err != nil {
		return "", err
	}
	tmpPath := out.Name()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Path, "-c", srcPath)
	cmd.Stdout = out
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	closeErr := out.Close()

	if runErr != nil {
		os.Remove(tmpPath)
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", core.WrapError(core.ErrCompressionFailed,
				fmt.Errorf("%s: %w: %s", e.Path, runErr, msg))
		}
		return "", core.WrapError(core.ErrCompressionFailed,
			fmt.Errorf("%s: %w", e.Path, runErr))
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", core.WrapError(core.ErrCompressionFailed,
			fmt.Errorf("closing %s: %w", tmpPath, closeErr))
	}
	return tmpPath, nil
}
