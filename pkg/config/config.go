// Package config loads tool configuration from a TOML file.
//
// The file lives at the XDG config path (~/.config/provis/config.toml)
// and every value has a working default, so the file is optional. CLI
// flags override file values; the merge happens at the command layer.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/provgraph/provis/pkg/errors"
)

// Config is the full configuration tree.
type Config struct {
	Engine  Engine  `toml:"engine"`
	Cache   Cache   `toml:"cache"`
	Archive Archive `toml:"archive"`
	Serve   Serve   `toml:"serve"`
}

// Engine configures layout computation.
type Engine struct {
	Strategy string `toml:"strategy"`
	Tool     string `toml:"tool"`
	ToolPath string `toml:"tool_path"`
	Workers  int    `toml:"workers"`
	Depth    int    `toml:"depth"`
	Zoom     bool   `toml:"zoom"`
}

// Cache configures the layout/artifact cache.
type Cache struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Redis   Redis  `toml:"redis"`
}

// Redis holds connection settings for the redis cache backend.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Archive configures the run archive.
type Archive struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
	Mongo   Mongo  `toml:"mongo"`
}

// Mongo holds connection settings for the mongo archive backend.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Serve configures the HTTP facade.
type Serve struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Engine: Engine{
			Strategy: "hierarchical",
			Tool:     "dot",
		},
		Cache: Cache{
			Backend: "file",
			Dir:     defaultCacheDir(),
			Redis:   Redis{Addr: "localhost:6379"},
		},
		Archive: Archive{
			Backend: "sqlite",
			Path:    filepath.Join(defaultDataDir(), "runs.db"),
			Mongo: Mongo{
				URI:        "mongodb://localhost:27017",
				Database:   "provis",
				Collection: "runs",
			},
		},
		Serve: Serve{Addr: "127.0.0.1:8080"},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "provis.toml"
	}
	return filepath.Join(dir, "provis", "config.toml")
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".provis-cache"
	}
	return filepath.Join(dir, "provis")
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "provis")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".provis"
	}
	return filepath.Join(home, ".local", "share", "provis")
}

// Load reads the file at path, or the default location when path is
// empty. A missing file at the default location yields Default(); a
// missing explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		code := errors.ErrCodeInvalidConfig
		if os.IsNotExist(err) {
			code = errors.ErrCodeFileNotFound
		}
		return cfg, errors.Wrap(code, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the enum fields the TOML decoder cannot.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (have: file, redis, none)", c.Cache.Backend)
	}
	switch c.Archive.Backend {
	case "sqlite", "mongo", "memory", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown archive backend %q (have: sqlite, mongo, memory, none)", c.Archive.Backend)
	}
	return nil
}
