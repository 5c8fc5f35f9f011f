package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pinboard/pkg/iiif"
	boardio "github.com/matzehuels/pinboard/pkg/io"
	"github.com/matzehuels/pinboard/pkg/store"
)

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) pushCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "push <board.json>",
		Short: "Publish a board to the shared store as a fragment",
		Long: `Push exports a board as a IIIF canvas fragment and saves it in the store
under a name, the file name without extension by default. The store is a
directory, a SQLite file when store.sqlite is set, or redis when
store.redis is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := boardio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = baseName(args[0])
			}
			canvas, err := iiif.Export(s, c.Config.Export)
			if err != nil {
				return err
			}
			err = c.withStore(cmd.Context(), func(st store.Store) error {
				return spin(cmd.Context(), cmd.ErrOrStderr(), "Pushing "+name, func(ctx context.Context) error {
					return store.SaveCanvas(ctx, st, name, canvas)
				})
			})
			if err != nil {
				return err
			}
			c.printSuccess("Pushed %s", name)
			c.printStats(len(s.Items), len(s.Connections), 0)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "board name in the store")
	return cmd
}

func (c *CLI) pullCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull <name>",
		Short: "Fetch a fragment from the shared store as a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			var canvas iiif.Canvas
			err := c.withStore(cmd.Context(), func(st store.Store) error {
				return spin(cmd.Context(), cmd.ErrOrStderr(), "Pulling "+name, func(ctx context.Context) error {
					var err error
					canvas, err = store.LoadCanvas(ctx, st, name)
					return err
				})
			})
			if err != nil {
				return err
			}

			s, rep := iiif.Import(canvas, c.Config.Export)
			for _, sk := range rep.Skipped {
				c.printWarning("skipped %s", sk)
			}
			if output == "" {
				output = name + ".json"
			}
			if err := c.writeBoard(s, output); err != nil {
				return err
			}
			c.printStats(rep.Items, rep.Connections, len(rep.Skipped))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "board file to write (default: <name>.json, - for stdout)")
	return cmd
}

func (c *CLI) listCommand() *cobra.Command {
	var remove string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List boards in the shared store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if remove != "" {
					if err := st.Delete(cmd.Context(), remove); err != nil {
						return err
					}
					c.printSuccess("Deleted %s", remove)
					return nil
				}
				names, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(names) == 0 {
					c.printInfo("The store is empty")
					return nil
				}
				for _, n := range names {
					c.printInfo("%s", n)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&remove, "delete", "", "delete the named board instead of listing")
	return cmd
}

// baseName is the file name of path without directory and extension.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
