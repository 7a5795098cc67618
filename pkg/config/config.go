// Package config loads the warpviz configuration file.
//
// Configuration lives in a TOML file (default ~/.config/warpviz/config.toml)
// and collects everything that used to be scattered per-invocation flags:
// external tool locations, default pattern parameters, and cache settings.
// All fields have documented defaults; a missing config file is not an
// error. The configuration is constructed once per invocation, validated,
// and passed down - commands never re-declare defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tbruckner/warpviz/pkg/errors"
)

// appName is used for XDG directory lookups.
const appName = "warpviz"

// Config is the top-level configuration.
type Config struct {
	Tools        ToolsConfig        `toml:"tools"`
	Checkerboard CheckerboardConfig `toml:"checkerboard"`
	Colormap     ColormapConfig     `toml:"colormap"`
	Cache        CacheConfig        `toml:"cache"`
}

// ToolsConfig locates the external binaries.
type ToolsConfig struct {
	// ANTsBinDir is the directory holding antsRegistration and
	// antsApplyTransforms. Empty means PATH lookup.
	ANTsBinDir string `toml:"ants_bin_dir"`

	// ANTsThreads limits ANTs parallelism (0 = tool default).
	ANTsThreads int `toml:"ants_threads"`

	// FSLBinDir is the directory holding bet and fast. Empty means PATH.
	FSLBinDir string `toml:"fsl_bin_dir"`

	// FSLClasses is the number of tissue classes for fast.
	FSLClasses int `toml:"fsl_classes"`

	// Mesher is the surface-converter binary invoked by the surface stage.
	Mesher string `toml:"mesher"`
}

// CheckerboardConfig holds default pattern parameters.
type CheckerboardConfig struct {
	GridSize int    `toml:"grid_size"`
	Axis     string `toml:"axis"`
	Mode     string `toml:"mode"`
	Colors   int    `toml:"colors"`
}

// ColormapConfig holds default color table parameters.
type ColormapConfig struct {
	Dim        int     `toml:"dim"`
	Bright     float64 `toml:"bright"`
	Downsample int     `toml:"downsample"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir overrides the file cache directory (default ~/.cache/warpviz/).
	Dir string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	// Scope namespaces keys on shared Redis instances (e.g. a study name).
	Scope string `toml:"scope"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tools: ToolsConfig{
			FSLClasses: 3,
		},
		Checkerboard: CheckerboardConfig{
			GridSize: 10,
			Axis:     "axial",
			Mode:     "binary",
			Colors:   512,
		},
		Colormap: ColormapConfig{
			Dim:        512,
			Bright:     0.6,
			Downsample: 16,
		},
		Cache: CacheConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
		},
	}
}

// Load reads the configuration from path, applying defaults for any field
// the file omits. An empty path loads DefaultPath(); a missing file at the
// default path just yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	usingDefault := path == ""
	if usingDefault {
		var err error
		if path, err = DefaultPath(); err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); err != nil {
		if usingDefault && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeDecode, err, "parse config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Checkerboard.GridSize <= 0 {
		return errors.New(errors.ErrCodeInvalidGrid, "checkerboard.grid_size must be positive, got %d", c.Checkerboard.GridSize)
	}
	if c.Colormap.Downsample <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "colormap.downsample must be positive, got %d", c.Colormap.Downsample)
	}
	if c.Colormap.Bright < 0 || c.Colormap.Bright > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "colormap.bright must be in [0,1], got %g", c.Colormap.Bright)
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend must be file, redis, or none, got %q", c.Cache.Backend)
	}
	return nil
}

// DefaultPath returns the config file location using the XDG standard
// (~/.config/warpviz/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the cache directory using the XDG standard
// (~/.cache/warpviz/), unless overridden in the config file.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
