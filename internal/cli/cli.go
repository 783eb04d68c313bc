// Package cli implements the cdhidef command-line interface.
//
// This package provides commands for running HiDeF community detection
// and converting its output into the interchange document, serving the
// converter over HTTP, and managing the document cache. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - run: Cluster an edge list with HiDeF and emit the document
//   - convert: Convert an existing HiDeF nodes/edges pair
//   - serve: Run the conversion HTTP service
//   - cache: Manage the document cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context to allow structured progress
// tracking.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idekerlab/cdhidef-go/pkg/buildinfo"
	"github.com/idekerlab/cdhidef-go/pkg/cache"
	"github.com/idekerlab/cdhidef-go/pkg/config"
	"github.com/idekerlab/cdhidef-go/pkg/errors"
	"github.com/idekerlab/cdhidef-go/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "cdhidef"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Process exit statuses. They match what callers scripted against the
// original converter expect.
const (
	ExitClusteringFailed = 1 // hidef subprocess exited abnormally
	ExitUnexpected       = 2 // anything not covered by a specific status
	ExitMissingInput     = 3 // the input edge list does not exist
	ExitEmptyInput       = 4 // the input edge list is a zero-byte file
	ExitNoOutput         = 5 // hidef ran but produced no output files
	ExitAborted          = 6 // the user quit the watch view mid-run
)

// ExitError carries a process exit status alongside the underlying
// error. main inspects it to pick the status code.
type ExitError struct {
	Status int
	Err    error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// exitErr wraps err with the given status.
func exitErr(status int, err error) error {
	return &ExitError{Status: status, Err: err}
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string
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
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "cdhidef runs HiDeF community detection and emits CDAPS documents",
		Long:         `cdhidef wraps the HiDeF hierarchical community detection tool: it clusters an edge list, converts the resulting hierarchy into the CDAPS interchange document, and can serve the converter over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.config/cdhidef/config.toml)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file, falling back to the default
// location when --config is not set.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	documentCache, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(documentCache, nil, c.Logger), nil
}

// newCache builds the document cache from the config. Cache setup
// failures degrade to a null cache rather than failing the run, except
// for an explicitly configured redis backend that is unreachable.
func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == config.BackendRedis {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Exit Status Mapping
// =============================================================================

// runExitStatus maps a pipeline error to the run command's exit status.
// The input file was already validated when this is called, so a
// MISSING_INPUT here means hidef finished without writing its output
// pair.
func runExitStatus(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeClusteringFailed:
		return ExitClusteringFailed
	case errors.ErrCodeMissingInput:
		return ExitNoOutput
	case errors.ErrCodeEmptyInput:
		return ExitEmptyInput
	default:
		return ExitUnexpected
	}
}
