// Package config loads wheeltool settings from a TOML file.
//
// The file is optional. Without it wheeltool evaluates markers for the
// running platform with a CPython 3.12 interpreter, keeps residual marker
// conditions from METADATA files and caches parsed metadata on disk for 24
// hours.
//
//	legacy_markers = "evaluate"   # or "compat"
//
//	[environment]
//	python_version = "3.11"
//	sys_platform = "linux"
//
//	[cache]
//	ttl = "24h"
//	dir = "/var/cache/wheeltool"
//	redis_url = "redis://cache:6379/0"
//	prefix = "ci:"
package config

import (
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/wheeltool/pkg/errors"
	"github.com/matzehuels/wheeltool/pkg/marker"
	"github.com/matzehuels/wheeltool/pkg/wheel"
)

const (
	appName         = "wheeltool"
	defaultCacheTTL = 24 * time.Hour

	LegacyEvaluate = "evaluate"
	LegacyCompat   = "compat"
)

// Config holds all file-based settings.
type Config struct {
	LegacyMarkers string            `toml:"legacy_markers"` // "evaluate" (default) or "compat"
	Environment   map[string]string `toml:"environment"`    // Marker variable overrides
	Cache         Cache             `toml:"cache"`
}

// Cache configures the metadata cache.
type Cache struct {
	Dir      string   `toml:"dir"`       // Local cache directory (default: XDG cache dir)
	TTL      Duration `toml:"ttl"`       // Entry lifetime (default: 24h)
	RedisURL string   `toml:"redis_url"` // Shared Redis cache; overrides Dir when set
	Prefix   string   `toml:"prefix"`    // Key prefix for shared caches
}

// Duration is a time.Duration written as a string such as "90m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		LegacyMarkers: LegacyEvaluate,
		Environment:   map[string]string{},
		Cache:         Cache{TTL: Duration{defaultCacheTTL}},
	}
}

// Load reads the file at path on top of the defaults. Unknown keys are an
// error so typos do not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// LoadDefault loads the file at [DefaultPath] if it exists and returns the
// path that was used ("" when falling back to defaults).
func LoadDefault() (Config, string, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), "", nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

// Validate checks value constraints.
func (c Config) Validate() error {
	switch c.LegacyMarkers {
	case "", LegacyEvaluate, LegacyCompat:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "legacy_markers must be %q or %q, got %q", LegacyEvaluate, LegacyCompat, c.LegacyMarkers)
	}

	names := make([]string, 0, len(c.Environment))
	for name := range c.Environment {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !marker.KnownVariable(name) || name == "extra" {
			return errs.New(errs.ErrCodeInvalidConfig, "unknown environment variable %q", name)
		}
	}

	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	return nil
}

// LegacyPolicy maps LegacyMarkers to the parser setting.
func (c Config) LegacyPolicy() wheel.LegacyPolicy {
	if c.LegacyMarkers == LegacyCompat {
		return wheel.LegacyCompat
	}
	return wheel.LegacyEvaluate
}

// TargetEnvironment returns the default environment with the configured
// overrides applied. A non-empty platform replaces the configured
// sys_platform; the platform variables derived from it yield to the ones set
// explicitly in [environment].
func (c Config) TargetEnvironment(platform string) marker.Environment {
	overrides := maps.Clone(c.Environment)
	if platform != "" {
		if overrides == nil {
			overrides = map[string]string{}
		}
		delete(overrides, "sys.platform")
		overrides["sys_platform"] = platform
	}
	return marker.DefaultEnvironment().With(overrides)
}

// CacheDir returns the configured cache directory or the XDG default
// (~/.cache/wheeltool).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// DefaultPath returns $XDG_CONFIG_HOME/wheeltool/config.toml, falling back
// to ~/.config/wheeltool/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns the cache directory using the XDG standard
// (~/.cache/wheeltool/).
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
