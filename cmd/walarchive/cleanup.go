package main

import (
	"fmt"

	"github.com/newthinker/walarchive/internal/archiver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cleanupDryRun bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <cutoff>",
	Short: "Delete archived segments older than a cutoff",
	Long: `Delete every archived object whose name sorts before <cutoff>,
ignoring any ".gz" suffix and anything after the first dot. <cutoff> is
typically the oldest segment still needed, e.g. the %r of
archive_cleanup_command or a backup label such as
000000010000000000000010.00000028.backup.

Deletion is irreversible; use --dry-run to preview.`,
	Args: cobra.ExactArgs(1),
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "list what would be deleted without deleting")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := setup(ctx, archiver.OpCleanup, nil)
	if err != nil {
		return err
	}
	defer s.close()

	cutoff := args[0]
	s.log.Info("cleaning up archive", zap.String("cutoff", cutoff), zap.Bool("dry_run", cleanupDryRun))

	removed, err := s.archiver.CleanupWith(ctx, cutoff, archiver.CleanupOptions{DryRun: cleanupDryRun})
	if cleanupDryRun {
		for _, name := range removed {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	}
	if err != nil {
		s.log.Error("cleanup failed", zap.Int("deleted", len(removed)), zap.Error(err))
		return err
	}
	s.log.Info("cleanup complete", zap.Int("deleted", len(removed)), zap.Bool("dry_run", cleanupDryRun))
	return nil
}
