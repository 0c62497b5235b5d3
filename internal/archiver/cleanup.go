package archiver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/newthinker/walarchive/internal/core"
	"github.com/newthinker/walarchive/internal/segment"
	"go.uber.org/zap"
)

// CleanupOptions controls a retention pass.
type CleanupOptions struct {
	// DryRun reports what would be deleted without deleting it.
	DryRun bool
}

// Cleanup deletes every stored object whose logical identity sorts
// strictly before the identity of cutoff, and returns the deleted names.
// Deletion is irreversible.
func (a *Archiver) Cleanup(ctx context.Context, cutoff string) ([]string, error) {
	return a.CleanupWith(ctx, cutoff, CleanupOptions{})
}

// CleanupWith is Cleanup with options.
//
// Stored names are first keyed by their name without ".gz". When both X
// and X.gz exist they share a key and only X.gz, the later of the two in
// sorted order, is considered by the pass; X stays behind.
func (a *Archiver) CleanupWith(ctx context.Context, cutoff string, opts CleanupOptions) (deleted []string, err error) {
	started := time.Now()
	defer func() {
		if !opts.DryRun {
			a.metrics.RecordCleanup(len(deleted))
		}
		a.metrics.ObserveOperation(OpCleanup, started, err)
	}()

	names, err := a.store.List(ctx, "")
	if err != nil {
		return nil, core.WrapError(core.ErrListFailed, err)
	}
	sort.Strings(names)

	stored := make(map[string]string, len(names))
	for _, name := range names {
		stored[segment.StripCompressed(name)] = name
	}

	limit := segment.Identity(cutoff)
	var removing []string
	for key, name := range stored {
		if segment.Identity(key) < limit {
			removing = append(removing, name)
		}
	}
	sort.Strings(removing)

	if opts.DryRun {
		for _, name := range removing {
			a.logger.Info("would remove file", zap.String("object", name))
		}
		return removing, nil
	}

	for _, name := range removing {
		a.logger.Debug("removing file", zap.String("object", name))
		if err := a.store.Delete(ctx, name); err != nil {
			return deleted, core.WrapError(core.ErrDeleteFailed, fmt.Errorf("%s: %w", name, err))
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}
