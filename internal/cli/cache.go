package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/incept5/eve-showcase/internal/config"
	"github.com/incept5/eve-showcase/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the on-disk cache",
		Long: `Manage the on-disk cache. It holds rendered diagrams when the file
backend is configured and the last good copy of a remote catalog.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.sweepCache(cmd.Context(), "Cleared", (*cache.FileCache).Clear)
		},
	}
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.sweepCache(cmd.Context(), "Pruned", (*cache.FileCache).Prune)
		},
	}
}

// sweepCache runs a FileCache sweep over the configured cache directory.
func (c *CLI) sweepCache(ctx context.Context, verb string, sweep func(*cache.FileCache, context.Context) (int, error)) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return fmt.Errorf("get cache dir: %w", err)
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	defer fc.Close()

	count, err := sweep(fc, ctx)
	if err != nil {
		return err
	}

	printSuccess("%s %d cached entries", verb, count)
	printDetail("Directory: %s", dir)
	if cfg.Cache.Backend == config.CacheRedis {
		printWarning("Diagrams in redis are not touched; they expire after %s", cfg.Cache.TTL)
	}
	return nil
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
			dir, err := cfg.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
