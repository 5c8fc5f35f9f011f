package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
	boardio "github.com/matzehuels/pinboard/pkg/io"
	"github.com/matzehuels/pinboard/pkg/render"
)

// Render formats.
const (
	formatSVG   = "svg"
	formatPNG   = "png"
	formatDOT   = "dot"
	formatGraph = "graph"
)

var renderFormats = []string{formatSVG, formatPNG, formatDOT, formatGraph}

type renderOpts struct {
	formats   []string
	output    string
	scale     float64
	images    bool
	highlight string
	noLabels  bool
	detailed  bool
	pinned    bool
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render <board.json>",
		Short: "Draw a board as SVG, PNG or a Graphviz graph",
		Long: `Render draws the board as it appears on the canvas (svg, png) or as a
connection graph: dot writes Graphviz source and graph lays it out with
Graphviz and writes SVG. --pinned keeps graph nodes at their board
positions.`,
		Example: `  pinboard render board.json -f svg,png
  pinboard render board.json -f graph --pinned -o letters`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := boardio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			if opts.output == "" {
				opts.output = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
			}
			t := startTimer(loggerFromContext(cmd.Context()))
			for _, f := range opts.formats {
				data, err := c.renderFormat(cmd, s, strings.TrimSpace(f), opts)
				if err != nil {
					return err
				}
				path := outputPath(opts.output, f, len(opts.formats) > 1)
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				c.printFile(path)
			}
			t.done("rendered", "formats", len(opts.formats))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", []string{formatSVG}, "output formats: "+strings.Join(renderFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or basename (default: input name)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "pixels per canvas unit for png")
	cmd.Flags().BoolVar(&opts.images, "images", false, "embed resource previews in svg")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "item id to outline")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit connection labels")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include resource ids in graph nodes")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "pin graph nodes to board positions")

	return cmd
}

func (c *CLI) renderFormat(cmd *cobra.Command, s board.State, format string, opts renderOpts) ([]byte, error) {
	ropts := []render.Option{
		render.WithAnchorOffset(c.Config.Board.AnchorOffset),
		render.WithScale(opts.scale),
	}
	if opts.images {
		ropts = append(ropts, render.WithImages())
	}
	if opts.highlight != "" {
		ropts = append(ropts, render.WithHighlight(opts.highlight))
	}
	if opts.noLabels {
		ropts = append(ropts, render.WithoutLabels())
	}
	dot := render.DOTOptions{Detailed: opts.detailed, Pinned: opts.pinned}

	switch format {
	case formatSVG:
		return render.RenderSVG(s, ropts...), nil
	case formatPNG:
		return render.RenderPNG(s, ropts...)
	case formatDOT:
		return []byte(render.ToDOT(s, dot)), nil
	case formatGraph:
		return render.RenderDOTSVG(cmd.Context(), render.ToDOT(s, dot))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want %s)", format, strings.Join(renderFormats, ", "))
}

// outputPath derives the file name for one format. A single format with an
// explicit extension is used as given.
func outputPath(base, format string, multi bool) string {
	if !multi && filepath.Ext(base) != "" {
		return base
	}
	ext := format
	if format == formatGraph {
		ext = "graph.svg"
	}
	return base + "." + ext
}
