package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wheeltool/pkg/buildinfo"
	"github.com/matzehuels/wheeltool/pkg/cache"
	"github.com/matzehuels/wheeltool/pkg/config"
	"github.com/matzehuels/wheeltool/pkg/marker"
	"github.com/matzehuels/wheeltool/pkg/pipeline"
	"github.com/matzehuels/wheeltool/pkg/wheel"
)

const appName = "wheeltool"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	flags globalFlags
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath    string
	noCache       bool
	compat        bool
	pythonVersion string
	platform      string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Invoked with a single wheel path, the root command prints the wheel's
// dependency report as JSON.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.reportCommand()
	root.Version = buildinfo.Version
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/wheeltool/config.toml)")
	flags.BoolVar(&c.flags.noCache, "no-cache", false, "disable the metadata cache")
	flags.BoolVar(&c.flags.compat, "compat", false, "drop non-extra marker conditions from METADATA requirements")
	flags.StringVar(&c.flags.pythonVersion, "python-version", "", "target interpreter version for marker evaluation (e.g. 3.11)")
	flags.StringVar(&c.flags.platform, "platform", "", "target sys_platform for marker evaluation (e.g. linux, darwin, win32)")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.splitMarkerCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Settings
// =============================================================================

// loadConfig reads the --config file, or the default file when present.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.flags.configPath != "" {
		return config.Load(c.flags.configPath)
	}
	cfg, path, err := config.LoadDefault()
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return cfg, nil
}

// environment returns the configured marker environment with flag
// overrides applied on top.
func (c *CLI) environment(cfg config.Config) marker.Environment {
	env := cfg.TargetEnvironment(c.flags.platform)
	if c.flags.pythonVersion != "" {
		env = env.WithPython(c.flags.pythonVersion)
	}
	return env
}

// pipelineOptions builds the run options for one wheel.
func (c *CLI) pipelineOptions(cfg config.Config, wheelPath string) pipeline.Options {
	legacy := cfg.LegacyPolicy()
	if c.flags.compat {
		legacy = wheel.LegacyCompat
	}
	return pipeline.Options{
		WheelPath:   wheelPath,
		Legacy:      legacy,
		Environment: c.environment(cfg),
		CacheTTL:    cfg.Cache.TTL.Duration,
		Logger:      c.Logger,
	}
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config) *pipeline.Runner {
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	return pipeline.NewRunner(c.newCache(ctx, cfg), keyer, c.Logger)
}

// newCache picks the cache backend. A backend that cannot be reached
// disables caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, cfg config.Config) cache.Cache {
	if c.flags.noCache {
		return cache.NewNullCache()
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}
