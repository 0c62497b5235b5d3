package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/newthinker/walarchive/internal/compress"
	"github.com/newthinker/walarchive/internal/core"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// WALARCHIVE_STORAGE_S3_BUCKET for storage.s3.bucket.
const EnvPrefix = "WALARCHIVE"

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Restore RestoreConfig `mapstructure:"restore"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type StorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// ArchiveConfig holds settings for the archive (upload) command.
type ArchiveConfig struct {
	Compress bool   `mapstructure:"compress"`
	Method   string `mapstructure:"method"` // "library" or "gzip"
	Level    int    `mapstructure:"level"`
	GzipPath string `mapstructure:"gzip_path"`
}

// RestoreConfig holds settings for the restore (download) command.
type RestoreConfig struct {
	Compression string `mapstructure:"compression"` // "auto", "true" or "false"
	Prefetch    int    `mapstructure:"prefetch"`
	CacheDir    string `mapstructure:"cache_dir"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Load reads configuration from file. An empty path skips the file and
// applies defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys
// that are absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.s3.bucket", d.Storage.S3.Bucket)
	v.SetDefault("storage.s3.endpoint", d.Storage.S3.Endpoint)
	v.SetDefault("storage.s3.region", d.Storage.S3.Region)
	v.SetDefault("storage.s3.access_key", d.Storage.S3.AccessKey)
	v.SetDefault("storage.s3.secret_key", d.Storage.S3.SecretKey)
	v.SetDefault("storage.s3.prefix", d.Storage.S3.Prefix)
	v.SetDefault("archive.compress", d.Archive.Compress)
	v.SetDefault("archive.method", d.Archive.Method)
	v.SetDefault("archive.level", d.Archive.Level)
	v.SetDefault("archive.gzip_path", d.Archive.GzipPath)
	v.SetDefault("restore.compression", d.Restore.Compression)
	v.SetDefault("restore.prefetch", d.Restore.Prefetch)
	v.SetDefault("restore.cache_dir", d.Restore.CacheDir)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Storage: StorageConfig{
			Type: "localfs",
		},
		Archive: ArchiveConfig{
			Compress: true,
			Method:   string(compress.MethodLibrary),
			Level:    compress.DefaultLevel,
			GzipPath: "gzip",
		},
		Restore: RestoreConfig{
			Compression: string(compress.ModeAuto),
			Prefetch:    0,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "localfs":
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage path required when type is localfs"))
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when type is s3"))
		}
		if (c.Storage.S3.AccessKey == "") != (c.Storage.S3.SecretKey == "") {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("s3 access_key and secret_key must be set together"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	if _, err := compress.ParseMethod(c.Archive.Method); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}
	if c.Archive.Level < compress.DefaultLevel || c.Archive.Level > compress.BestCompression {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive level must be between %d and %d, got %d",
				compress.DefaultLevel, compress.BestCompression, c.Archive.Level))
	}
	if c.Archive.Method == string(compress.MethodGzip) && c.Archive.GzipPath == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("gzip_path required when method is gzip"))
	}

	if _, err := compress.ParseMode(c.Restore.Compression); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}
	if c.Restore.Prefetch < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("prefetch cannot be negative, got %d", c.Restore.Prefetch))
	}

	return nil
}
