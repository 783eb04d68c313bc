// Package config loads the optional cdhidef configuration file.
//
// The file is TOML at ~/.config/cdhidef/config.toml (XDG aware). It holds
// clustering defaults plus cache, archive and server settings; command
// line flags override config values, config values override built-in
// defaults. A missing file is not an error — everything has a default.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/idekerlab/cdhidef-go/pkg/finder"
)

// appName is used for config, cache and data directories.
const appName = "cdhidef"

// Backend names accepted in the cache and archive sections.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the full configuration tree.
type Config struct {
	Hidef   Hidef   `toml:"hidef"`
	Cache   CacheC  `toml:"cache"`
	Archive Archive `toml:"archive"`
	Server  Server  `toml:"server"`
}

// Hidef configures the clustering subprocess defaults.
type Hidef struct {
	Command string  `toml:"command"`
	TempDir string  `toml:"tempdir"`
	T       float64 `toml:"t"`
	K       int     `toml:"k"`
	J       float64 `toml:"j"`
	MinRes  float64 `toml:"minres"`
	MaxRes  float64 `toml:"maxres"`
	S       float64 `toml:"s"`
	CT      int     `toml:"ct"`
	Alg     string  `toml:"alg"`
}

// CacheC configures the document cache.
type CacheC struct {
	Backend string `toml:"backend"` // file | redis | none
	Dir     string `toml:"dir"`     // file backend; empty means XDG cache dir
	Redis   Redis  `toml:"redis"`
}

// Redis holds redis connection settings.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Archive configures the serve-mode conversion archive.
type Archive struct {
	Backend string `toml:"backend"` // file | mongo
	Dir     string `toml:"dir"`     // file backend; empty means XDG data dir
	Mongo   Mongo  `toml:"mongo"`
}

// Mongo holds mongodb connection settings.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Server configures serve mode.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	fopts := finder.DefaultOptions()
	return Config{
		Hidef: Hidef{
			Command: fopts.Command,
			TempDir: fopts.TempDir,
			T:       fopts.T,
			K:       fopts.K,
			J:       fopts.J,
			MinRes:  fopts.MinRes,
			MaxRes:  fopts.MaxRes,
			S:       fopts.S,
			CT:      fopts.CT,
			Alg:     fopts.Algorithm,
		},
		Cache: CacheC{
			Backend: BackendFile,
			Redis:   Redis{Addr: "localhost:6379"},
		},
		Archive: Archive{
			Backend: BackendFile,
			Mongo: Mongo{
				URI:        "mongodb://localhost:27017",
				Database:   appName,
				Collection: "conversions",
			},
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads the config file at path on top of the defaults.
// A missing file returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FinderOptions converts the hidef section into finder options.
func (c Config) FinderOptions() finder.Options {
	return finder.Options{
		T:         c.Hidef.T,
		K:         c.Hidef.K,
		J:         c.Hidef.J,
		MinRes:    c.Hidef.MinRes,
		MaxRes:    c.Hidef.MaxRes,
		S:         c.Hidef.S,
		CT:        c.Hidef.CT,
		Algorithm: c.Hidef.Alg,
		Command:   c.Hidef.Command,
		TempDir:   c.Hidef.TempDir,
	}
}

// DefaultPath returns the standard config file location
// (~/.config/cdhidef/config.toml, honoring XDG_CONFIG_HOME).
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

// CacheDir returns the cache directory using XDG standard
// (~/.cache/cdhidef/), unless the config overrides it.
func (c Config) CacheDir() (string, error) {
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

// ArchiveDir returns the archive directory for the file backend
// (~/.local/share/cdhidef/conversions/), unless the config overrides it.
func (c Config) ArchiveDir() (string, error) {
	if c.Archive.Dir != "" {
		return c.Archive.Dir, nil
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, "conversions"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "conversions"), nil
}
