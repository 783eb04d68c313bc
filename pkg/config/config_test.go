package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Hidef.Command != "hidef_finder.py" {
		t.Errorf("Hidef.Command = %q", cfg.Hidef.Command)
	}
	if cfg.Hidef.Alg != "louvain" {
		t.Errorf("Hidef.Alg = %q", cfg.Hidef.Alg)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Archive.Backend != BackendFile {
		t.Errorf("Archive.Backend = %q, want file", cfg.Archive.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load() missing file error: %v", err)
	}
	if cfg.Hidef.K != Default().Hidef.K {
		t.Errorf("missing file should return defaults, got %+v", cfg.Hidef)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[hidef]
alg = "leiden"
k = 7

[cache]
backend = "redis"

[cache.redis]
addr = "cache.internal:6379"

[server]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Hidef.Alg != "leiden" || cfg.Hidef.K != 7 {
		t.Errorf("hidef overrides not applied: %+v", cfg.Hidef)
	}
	// Untouched values keep their defaults.
	if cfg.Hidef.T != 0.1 {
		t.Errorf("Hidef.T = %v, want default 0.1", cfg.Hidef.T)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.Redis.Addr != "cache.internal:6379" {
		t.Errorf("cache overrides not applied: %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[hidef\nbroken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() on malformed TOML should error")
	}
}

func TestFinderOptions(t *testing.T) {
	cfg := Default()
	cfg.Hidef.Alg = "leiden"
	cfg.Hidef.CT = 50

	opts := cfg.FinderOptions()
	if opts.Algorithm != "leiden" || opts.CT != 50 {
		t.Errorf("FinderOptions = %+v", opts)
	}
	if opts.T != cfg.Hidef.T || opts.Command != cfg.Hidef.Command {
		t.Errorf("FinderOptions should mirror the hidef section: %+v", opts)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	if path != filepath.Join("/tmp/xdg-config", "cdhidef", "config.toml") {
		t.Errorf("DefaultPath() = %q", path)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	cfg := Default()
	dir, err := cfg.CacheDir()
	if err != nil {
		t.Fatalf("CacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) || !strings.HasSuffix(dir, "cdhidef") {
		t.Errorf("CacheDir() = %q, want under %q ending in cdhidef", dir, home)
	}

	cfg.Cache.Dir = "/custom/cache"
	dir, _ = cfg.CacheDir()
	if dir != "/custom/cache" {
		t.Errorf("CacheDir() override = %q", dir)
	}
}

func TestArchiveDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	cfg := Default()
	dir, err := cfg.ArchiveDir()
	if err != nil {
		t.Fatalf("ArchiveDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-data", "cdhidef", "conversions") {
		t.Errorf("ArchiveDir() = %q", dir)
	}
}
