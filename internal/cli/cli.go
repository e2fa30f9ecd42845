// Package cli implements the rmdlink command-line interface.
//
// # Commands
//
//   - profile: Look up a profile or a single attribute
//   - publications: Show a profile's publication sections
//   - serve: Run the HTTP lookup and invalidation service
//   - cache: Inspect, clear and invalidate cached records
//   - config: Show or validate the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed to the fetcher, the cache backends and the server, and through
// context.Context to the commands themselves.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/psulibraries/rmdlink/pkg/buildinfo"
	"github.com/psulibraries/rmdlink/pkg/cache"
	"github.com/psulibraries/rmdlink/pkg/config"
	"github.com/psulibraries/rmdlink/pkg/rmd"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "rmdlink"

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

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "rmdlink looks up faculty profiles in the Researcher Metadata Database",
		Long:         `rmdlink fetches faculty profiles (publications, grants, bio fields) from the Researcher Metadata Database API and caches them, from the command line or as an HTTP service.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/rmdlink/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the cache for this run")

	root.AddCommand(c.profileCommand())
	root.AddCommand(c.publicationsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Fetcher Factory
// =============================================================================

// loadConfig reads and validates the configuration.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the configured cache backend, or fallback when none is
// configured. --no-cache always yields a NullStore.
func (c *CLI) openStore(ctx context.Context, cfg *config.Config, fallback string) (cache.Store, error) {
	if c.noCache {
		return cache.NewNullStore(), nil
	}
	opts := cfg.CacheOptions(fallback)
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullStore(), nil
		}
		opts.Dir = dir
	}
	c.Logger.Debug("opening cache", "backend", opts.Backend)
	return cache.Open(ctx, opts)
}

// newFetcher builds a fetcher from the configuration. The caller must
// close the returned store.
func (c *CLI) newFetcher(ctx context.Context, fallback string) (*rmd.Fetcher, cache.Store, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := c.openStore(ctx, cfg, fallback)
	if err != nil {
		return nil, nil, nil, err
	}
	f := rmd.NewFetcher(store, rmd.NewHTTPClient(cfg.HTTPTimeout(), nil), cfg,
		rmd.WithLogger(c.Logger),
		rmd.WithKeyer(cfg.Keyer()),
	)
	return f, store, cfg, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/rmdlink/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
