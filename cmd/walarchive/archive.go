package main

import (
	"github.com/newthinker/walarchive/internal/archiver"
	"github.com/newthinker/walarchive/internal/compress"
	"github.com/newthinker/walarchive/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	archiveNoCompress bool
	archiveMethod     string
)

var archiveCmd = &cobra.Command{
	Use:   "archive <path> <name>",
	Short: "Upload a WAL segment to the archive",
	Long: `Upload the file at <path> under <name>. With compression enabled
(the default) the object is stored as <name>.gz.

Intended as archive_command = 'walarchive archive %p %f'.`,
	Args: cobra.ExactArgs(2),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().BoolVar(&archiveNoCompress, "no-compress", false, "store the segment uncompressed")
	archiveCmd.Flags().StringVar(&archiveMethod, "method", "", "compression method: library or gzip")
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := setup(ctx, archiver.OpArchive, func(cfg *config.Config) {
		if cmd.Flags().Changed("no-compress") {
			cfg.Archive.Compress = !archiveNoCompress
		}
		if cmd.Flags().Changed("method") {
			cfg.Archive.Method = archiveMethod
		}
	})
	if err != nil {
		return err
	}
	defer s.close()

	path, name := args[0], args[1]
	method, err := compress.ParseMethod(s.cfg.Archive.Method)
	if err != nil {
		return err
	}
	opts := archiver.UploadOptions{
		Compress: s.cfg.Archive.Compress,
		Method:   method,
	}

	s.log.Info("archiving file",
		zap.String("path", path),
		zap.String("segment", name),
		zap.Bool("compress", opts.Compress),
	)
	if err := s.archiver.Upload(ctx, path, name, opts); err != nil {
		s.log.Error("archive failed", zap.String("segment", name), zap.Error(err))
		return err
	}
	s.log.Info("archive complete", zap.String("segment", name))
	return nil
}
