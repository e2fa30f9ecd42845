package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/psulibraries/rmdlink/pkg/cache"
	"github.com/psulibraries/rmdlink/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached RMD records",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInvalidateCommand())

	return cmd
}

// fileCacheDir returns the directory of the file backend.
func fileCacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// usesFileCache reports whether one-shot commands cache to disk.
func usesFileCache(cfg *config.Config) bool {
	return cfg.Cache.Backend == "" || cfg.Cache.Backend == cache.BackendFile
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached record",
		Long: `Remove every cached record.

For the file backend the cache directory is emptied. For shared backends
every entry tagged rmd_data is invalidated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			if !usesFileCache(cfg) {
				return c.invalidate(cmd, nil, "", true)
			}

			dir, err := fileCacheDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				c.printInfo("Cache is empty")
				return nil
			}

			store, err := cache.NewFileStore(dir)
			if err != nil {
				return err
			}
			count, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}

			c.printSuccess("Cleared %d cached entries", count)
			c.printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := fileCacheDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}
}

// cacheInvalidateCommand creates the "cache invalidate" subcommand.
func (c *CLI) cacheInvalidateCommand() *cobra.Command {
	var (
		tags []string
		user string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Drop cached records by tag, user or all",
		Example: `  rmdlink cache invalidate --user abc123
  rmdlink cache invalidate --tag node:42
  rmdlink cache invalidate --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(tags) == 0 && user == "" && !all {
				return fmt.Errorf("one of --tag, --user or --all is required")
			}
			return c.invalidate(cmd, tags, user, all)
		},
	}

	cmd.Flags().StringArrayVar(&tags, "tag", nil, "invalidate entries carrying this tag (repeatable)")
	cmd.Flags().StringVar(&user, "user", "", "invalidate every record of this username")
	cmd.Flags().BoolVar(&all, "all", false, "invalidate every record")
	cmd.MarkFlagsMutuallyExclusive("tag", "user", "all")
	return cmd
}

func (c *CLI) invalidate(cmd *cobra.Command, tags []string, user string, all bool) error {
	ctx := cmd.Context()
	f, store, _, err := c.newFetcher(ctx, cache.BackendFile)
	if err != nil {
		return err
	}
	defer store.Close()

	var n int
	switch {
	case all:
		n, err = f.InvalidateAll(ctx)
	case user != "":
		n, err = f.InvalidateUser(ctx, user)
	default:
		n, err = f.InvalidateTags(ctx, tags...)
	}
	if err != nil {
		return err
	}
	c.printSuccess("Invalidated %d cached entries", n)
	return nil
}
