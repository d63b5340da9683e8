// Package config loads and persists backdrop's configuration through viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ErrFirstRun is returned when no config file existed and a default one was
// just written. The user should review it (folder, budget, access key)
// before running again.
var ErrFirstRun = errors.New("a default configuration file has been created, review it before proceeding")

// Config is everything backdrop needs for one acquisition run.
type Config struct {
	Folder   string   `mapstructure:"folder"`
	MaxSize  int64    `mapstructure:"max_size"`
	Fetch    Fetch    `mapstructure:"fetch"`
	Download Download `mapstructure:"download"`
}

// Fetch selects which photos to ask the catalog for.
type Fetch struct {
	Count int    `mapstructure:"count"`
	Topic string `mapstructure:"topic"`
	Query string `mapstructure:"query"`
}

// Download controls the requested rendition. Width and height of zero keep
// the original size.
type Download struct {
	Format string `mapstructure:"format"`
	Width  uint   `mapstructure:"width"`
	Height uint   `mapstructure:"height"`
}

var validFormats = map[string]bool{
	"png":  true,
	"jpg":  true,
	"webp": true,
}

// Dir returns the directory holding backdrop's config file.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(base, "backdrop"), nil
}

// DefaultFolder returns the default wallpaper destination.
func DefaultFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Backdrop"
	}
	return filepath.Join(home, "Pictures", "Backdrop")
}

// SetDefaults registers every config key with its default value. Explicit
// defaults also make env-only overrides visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("folder", DefaultFolder())
	v.SetDefault("max_size", int64(100_000_000))
	v.SetDefault("fetch.count", 10)
	v.SetDefault("fetch.topic", "")
	v.SetDefault("fetch.query", "")
	v.SetDefault("download.format", "png")
	v.SetDefault("download.width", 0)
	v.SetDefault("download.height", 0)
}

// Load reads the config file into a Config.
//
// cfgFile overrides the default location when non-empty. Keys can also be
// set through BACKDROP_* environment variables (dots become underscores,
// e.g. BACKDROP_FETCH_COUNT). On the first run the default file is written
// and ErrFirstRun returned.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("BACKDROP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		cfgFile = filepath.Join(dir, "config.yaml")
	}
	v.SetConfigFile(cfgFile)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := writeDefault(v, cfgFile); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrFirstRun, cfgFile)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AccessKey resolves the API access key. It is kept out of the config
// struct so it never ends up in the on-disk file by accident; set
// BACKDROP_ACCESS_KEY, or UNSPLASH_ACCESS_KEY for compatibility.
func AccessKey(v *viper.Viper) string {
	if key := v.GetString("access_key"); key != "" {
		return key
	}
	return os.Getenv("UNSPLASH_ACCESS_KEY")
}

func writeDefault(v *viper.Viper, cfgFile string) error {
	if err := os.MkdirAll(filepath.Dir(cfgFile), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := v.SafeWriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Folder == "" {
		return errors.New("folder must not be empty")
	}
	if c.MaxSize <= 0 {
		return errors.New("max_size must be positive")
	}
	if c.Fetch.Count < 1 {
		return errors.New("fetch.count must be at least 1")
	}
	if !validFormats[c.Download.Format] {
		return fmt.Errorf("unsupported download format: %s", c.Download.Format)
	}
	return nil
}

// Custom reports whether a custom rendition size was configured.
func (d Download) Custom() bool {
	return d.Width > 0 && d.Height > 0
}
