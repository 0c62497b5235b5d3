package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/walarchive/internal/core"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
storage:
  type: s3
  s3:
    bucket: "wal-archive"
    region: "eu-west-1"
    prefix: "pg/main"

archive:
  method: gzip

restore:
  prefetch: 8
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Storage.Type != "s3" {
		t.Errorf("expected s3, got %s", cfg.Storage.Type)
	}
	if cfg.Storage.S3.Bucket != "wal-archive" {
		t.Errorf("expected bucket wal-archive, got %s", cfg.Storage.S3.Bucket)
	}
	if cfg.Archive.Method != "gzip" {
		t.Errorf("expected method gzip, got %s", cfg.Archive.Method)
	}
	if cfg.Restore.Prefetch != 8 {
		t.Errorf("expected prefetch 8, got %d", cfg.Restore.Prefetch)
	}

	// Keys absent from the file keep their defaults
	if !cfg.Archive.Compress {
		t.Error("expected compress to default to true")
	}
	if cfg.Restore.Compression != "auto" {
		t.Errorf("expected compression auto, got %s", cfg.Restore.Compression)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WALARCHIVE_STORAGE_PATH", "/mnt/archive")
	t.Setenv("WALARCHIVE_RESTORE_PREFETCH", "4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Storage.Path != "/mnt/archive" {
		t.Errorf("expected path from env, got %q", cfg.Storage.Path)
	}
	if cfg.Restore.Prefetch != 4 {
		t.Errorf("expected prefetch 4 from env, got %d", cfg.Restore.Prefetch)
	}
}

func TestLoad_ExpandsEnvReferences(t *testing.T) {
	t.Setenv("TEST_WAL_SECRET", "s3cr3t")

	content := []byte(`
storage:
  type: s3
  s3:
    bucket: b
    access_key: key
    secret_key: "${TEST_WAL_SECRET}"
`)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Storage.S3.SecretKey != "s3cr3t" {
		t.Errorf("expected expanded secret, got %q", cfg.Storage.S3.SecretKey)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Storage.Type != "localfs" {
		t.Errorf("expected default storage localfs, got %s", cfg.Storage.Type)
	}
	if cfg.Archive.Method != "library" {
		t.Errorf("expected default method library, got %s", cfg.Archive.Method)
	}
	if cfg.Archive.Level != -1 {
		t.Errorf("expected default level -1, got %d", cfg.Archive.Level)
	}
	if cfg.Restore.Prefetch != 0 {
		t.Errorf("expected default prefetch 0, got %d", cfg.Restore.Prefetch)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := *Defaults()
		cfg.Storage.Path = "/mnt/archive"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "localfs without path",
			mutate:  func(c *Config) { c.Storage.Path = "" },
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Storage.Type = "s3" },
			wantErr: core.ErrConfigMissing,
		},
		{
			name: "s3 with half credentials",
			mutate: func(c *Config) {
				c.Storage.Type = "s3"
				c.Storage.S3.Bucket = "b"
				c.Storage.S3.AccessKey = "key"
			},
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "unknown storage type",
			mutate:  func(c *Config) { c.Storage.Type = "ftp" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "unknown method",
			mutate:  func(c *Config) { c.Archive.Method = "bzip2" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "level too high",
			mutate:  func(c *Config) { c.Archive.Level = 10 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name: "gzip method without binary",
			mutate: func(c *Config) {
				c.Archive.Method = "gzip"
				c.Archive.GzipPath = ""
			},
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "unknown compression mode",
			mutate:  func(c *Config) { c.Restore.Compression = "maybe" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "negative prefetch",
			mutate:  func(c *Config) { c.Restore.Prefetch = -1 },
			wantErr: core.ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
