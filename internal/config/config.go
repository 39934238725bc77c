// Package config loads launchpad settings from defaults, an optional YAML file
// and LAUNCHPAD_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/mod/semver"
)

// EnvPrefix prefixes every environment override, e.g. LAUNCHPAD_STORAGE_DRIVER.
const EnvPrefix = "LAUNCHPAD"

// Storage drivers understood by site.Open.
const (
	DriverMemory     = "memory"
	DriverSQLite     = "sqlite"
	DriverPostgres   = "postgres"
	DriverFilesystem = "fs"
	DriverS3         = "s3"
)

// Config holds application configuration.
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Site       SiteConfig       `mapstructure:"site"`
	Device     DeviceConfig     `mapstructure:"device"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Log        LogConfig        `mapstructure:"log"`
	HTTP       HTTPConfig       `mapstructure:"http"`
}

// StorageConfig selects and configures the site document backend.
type StorageConfig struct {
	Driver      string   `mapstructure:"driver"`
	SQLitePath  string   `mapstructure:"sqlite_path"`
	PostgresDSN string   `mapstructure:"postgres_dsn"`
	FSRoot      string   `mapstructure:"fs_root"`
	Prefix      string   `mapstructure:"prefix"`
	S3          S3Config `mapstructure:"s3"`
}

// S3Config holds S3 / MinIO settings for the s3 driver.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

// SiteConfig holds document-level settings.
type SiteConfig struct {
	MaxVersion string `mapstructure:"max_version"`
	SeedFile   string `mapstructure:"seed_file"`
}

// DeviceConfig describes the form factor tiles are filtered for.
type DeviceConfig struct {
	Class string `mapstructure:"class"`
}

// NavigationConfig lists application types that navigate in place.
type NavigationConfig struct {
	InPlace map[string]bool `mapstructure:"in_place"`
}

// LogConfig configures the slog handler and optional rotating file.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// HTTPConfig holds the serve mode listener.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration. path overrides LAUNCHPAD_CONFIG; when both are
// empty only defaults and environment variables apply.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "launchpad.db")
	v.SetDefault("storage.postgres_dsn", "postgres://localhost/launchpad?sslmode=disable")
	v.SetDefault("storage.fs_root", "./sitedata")
	v.SetDefault("storage.prefix", "launchpad")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.path_style", false)
	v.SetDefault("site.max_version", "3.1.0")
	v.SetDefault("site.seed_file", "")
	v.SetDefault("device.class", "desktop")
	v.SetDefault("navigation.in_place", map[string]bool{"SAPUI5": true})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("http.addr", ":8080")

	v.SetConfigType("yaml")
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Navigation.InPlace = normalizeInPlace(c.Navigation.InPlace)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks enumerated values and the schema version.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverFilesystem, DriverS3:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverS3 && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage.s3.bucket required for s3 driver")
	}
	switch c.Device.Class {
	case "desktop", "tablet", "phone":
	default:
		return fmt.Errorf("unknown device class %q", c.Device.Class)
	}
	if !semver.IsValid("v" + c.Site.MaxVersion) {
		return fmt.Errorf("invalid site.max_version %q", c.Site.MaxVersion)
	}
	return nil
}

// viper lower-cases map keys; application types are upper case.
func normalizeInPlace(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[strings.ToUpper(k)] = v
	}
	return out
}
