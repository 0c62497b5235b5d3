// Package segment implements the naming conventions for archived WAL
// segments: compressed object names, logical identities used by
// retention, and successor names used by prefetch.
package segment

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/newthinker/walarchive/internal/core"
)

// CompressedSuffix marks a remote object holding a gzip payload.
const CompressedSuffix = ".gz"

// CompressedName returns the remote name of the compressed representation.
func CompressedName(name string) string {
	return name + CompressedSuffix
}

// StripCompressed drops a trailing ".gz".
func StripCompressed(name string) string {
	return strings.TrimSuffix(name, CompressedSuffix)
}

// Identity returns the logical identity of a stored name: everything
// before the first dot. "000000010000000000000005.00000028.backup.gz"
// and "000000010000000000000005.gz" both map to
// "000000010000000000000005".
func Identity(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// Next returns the name offset positions after name, treating it as a
// fixed-width hexadecimal number. The result is upper case and padded to
// the width of name. An offset that carries past that width returns
// ErrInvalidSegment rather than a longer name.
func Next(name string, offset int) (string, error) {
	if name == "" {
		return "", core.WrapError(core.ErrInvalidSegment, fmt.Errorf("empty name"))
	}
	if offset < 0 {
		return "", core.WrapError(core.ErrInvalidSegment, fmt.Errorf("negative offset %d", offset))
	}

	n, ok := new(big.Int).SetString(name, 16)
	if !ok || strings.HasPrefix(name, "+") || strings.HasPrefix(name, "-") {
		return "", core.WrapError(core.ErrInvalidSegment, fmt.Errorf("%q is not hexadecimal", name))
	}
	n.Add(n, big.NewInt(int64(offset)))

	next := strings.ToUpper(n.Text(16))
	if len(next) > len(name) {
		return "", core.WrapError(core.ErrInvalidSegment,
			fmt.Errorf("%q + %d overflows %d hex digits", name, offset, len(name)))
	}
	return strings.Repeat("0", len(name)-len(next)) + next, nil
}

// Window returns name followed by up to size-1 successors. It stops early
// at the first successor Next cannot produce, so a non-hex name or one at
// the top of its range yields a shorter window. The first element is
// always name itself.
func Window(name string, size int) []string {
	names := []string{name}
	for i := 1; i < size; i++ {
		next, err := Next(name, i)
		if err != nil {
			break
		}
		names = append(names, next)
	}
	return names
}
