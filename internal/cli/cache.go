package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pinboard/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the resource descriptor cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove cached resource descriptors and renders",
		Long: `Clear empties the configured cache: the cache directory, or every key
below the pinboard prefix when cache.redis is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch := c.newCache(cmd.Context())
			defer ch.Close()

			cl, ok := ch.(cache.Clearer)
			if !ok {
				c.printInfo("Caching is disabled")
				return nil
			}
			n, err := cl.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			c.printSuccess("Cleared cache")
			c.printDetail("Removed: %d", n)
			if fc, ok := ch.(*cache.FileCache); ok {
				c.printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.Config.Cache.DirOrDefault()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}
