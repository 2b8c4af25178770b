package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tooltree/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the treemap and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var redisURL string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached treemaps and rendered outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if redisURL != "" {
				return clearRedis(cmd.Context(), redisURL)
			}

			dir, err := cacheDir()
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
			count, err := clearCache(cmd.Context(), fc)
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis", "", "clear the Redis cache used by 'serve --redis' instead")
	return cmd
}

// clearRedis clears the server's Redis cache.
func clearRedis(ctx context.Context, url string) error {
	rc, err := cache.NewRedisCache(ctx, url, appName+":")
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rc.Close()

	count, err := clearCache(ctx, rc)
	if err != nil {
		return err
	}
	printSuccess("Cleared %d cached entries from Redis", count)
	return nil
}

// clearCache empties c if it supports clearing.
func clearCache(ctx context.Context, c cache.Cache) (int, error) {
	cl, ok := c.(cache.Clearer)
	if !ok {
		return 0, fmt.Errorf("cache does not support clearing")
	}
	count, err := cl.Clear(ctx)
	if err != nil {
		return count, fmt.Errorf("clear cache: %w", err)
	}
	return count, nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
