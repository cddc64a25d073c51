package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skilltree/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the build result cache",
	}

	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cache backend and its size",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := cacheBackend()
			ch, err := newCache(cmd.Context(), backend)
			if err != nil {
				return err
			}
			defer ch.Close()

			printKeyValue("Backend", backend)
			switch ch := ch.(type) {
			case *cache.FileCache:
				entries, size, err := ch.Stats()
				if err != nil {
					return fmt.Errorf("read cache: %w", err)
				}
				printKeyValue("Directory", ch.Dir())
				printKeyValue("Entries", fmt.Sprintf("%d", entries))
				printKeyValue("Size", formatBytes(size))
			case *cache.MemoryCache:
				printDetail("Memory cache lives for one process only")
			}
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached build results",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := cacheBackend()
			ch, err := newCache(cmd.Context(), backend)
			if err != nil {
				return err
			}
			defer ch.Close()

			count, err := clearCache(cmd.Context(), ch)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			if fc, ok := ch.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// clearCache empties the backends that support it.
func clearCache(ctx context.Context, ch cache.Cache) (int, error) {
	switch ch := ch.(type) {
	case *cache.FileCache:
		return ch.Clear()
	case *cache.RedisCache:
		return ch.Clear(ctx)
	default:
		return 0, nil
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
