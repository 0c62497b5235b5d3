package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/newthinker/walarchive/internal/archiver"
	"github.com/newthinker/walarchive/internal/compress"
	"github.com/newthinker/walarchive/internal/config"
	"github.com/newthinker/walarchive/internal/core"
	"github.com/newthinker/walarchive/internal/logger"
	"github.com/newthinker/walarchive/internal/metrics"
	"github.com/newthinker/walarchive/internal/storage/archive"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// session holds what a single storage command needs.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	metrics  *metrics.Registry
	archiver *archiver.Archiver
}

// commandContext is canceled on SIGINT, SIGTERM or when --timeout expires.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// loadConfig reads the config file, applies global and command flag
// overrides, then validates the result.
func loadConfig(override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if metricsTextfile != "" {
		cfg.Metrics.Textfile = metricsTextfile
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setup(ctx context.Context, operation string, override func(*config.Config)) (*session, error) {
	log := logger.ForOperation(logger.Must(debug), operation)

	cfg, err := loadConfig(override)
	if err != nil {
		log.Error("invalid configuration", zap.Error(err))
		_ = log.Sync()
		return nil, err
	}

	store, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		log.Error("opening storage", zap.String("type", cfg.Storage.Type), zap.Error(err))
		_ = log.Sync()
		return nil, err
	}

	reg := metrics.NewRegistry()
	a := archiver.New(archiver.Config{
		CacheDir: cfg.Restore.CacheDir,
		Compression: compress.Options{
			Level:    cfg.Archive.Level,
			GzipPath: cfg.Archive.GzipPath,
		},
	}, store, log, reg)

	return &session{
		cfg:      cfg,
		log:      log,
		metrics:  reg,
		archiver: a,
	}, nil
}

// close writes the metrics textfile when one is configured and flushes
// the logger. A failed metrics write never fails the command.
func (s *session) close() {
	if path := s.cfg.Metrics.Textfile; path != "" {
		if err := s.metrics.WriteTextfile(path); err != nil {
			s.log.Warn("writing metrics textfile", zap.String("path", path), zap.Error(err))
		}
	}
	_ = s.log.Sync()
}

// openStorage builds the configured archive backend.
func openStorage(ctx context.Context, cfg config.StorageConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "localfs":
		fs, err := archive.NewLocalFS(cfg.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case "s3":
		s3, err := archive.NewS3(ctx, archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown storage type %q", cfg.Type))
	}
}
