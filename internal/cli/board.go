package cli

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/iiif"
	boardio "github.com/matzehuels/pinboard/pkg/io"
	"github.com/matzehuels/pinboard/pkg/route"
)

// =============================================================================
// Board File Helpers
// =============================================================================

// readBoard loads a native board file. A missing file is an empty board so
// edit can start from scratch.
func readBoard(path string) (board.State, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return board.State{}, nil
	}
	return boardio.ImportJSON(path)
}

// writeBoard saves s to path, or to the command output when path is empty
// or "-".
func (c *CLI) writeBoard(s board.State, path string) error {
	if path == "" || path == "-" {
		return boardio.WriteJSON(s, c.out)
	}
	if err := boardio.ExportJSON(s, path); err != nil {
		return err
	}
	c.printSuccess("Wrote board")
	c.printFile(path)
	return nil
}

// =============================================================================
// export
// =============================================================================

func (c *CLI) exportCommand() *cobra.Command {
	var (
		output      string
		baseID      string
		label       string
		toClipboard bool
	)

	cmd := &cobra.Command{
		Use:   "export <board.json>",
		Short: "Convert a board into a IIIF canvas fragment",
		Long: `Export converts a board into a IIIF Presentation 3 canvas. Items become
painting annotations targeting their region and connections become linking
annotations. The fragment is written to stdout unless -o or --clipboard is
given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := boardio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			opts := c.Config.Export
			if baseID != "" {
				opts.BaseID = baseID
			}
			if label != "" {
				opts.Label = label
			}
			canvas, err := iiif.Export(s, opts)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := iiif.WriteJSON(canvas, &buf); err != nil {
				return err
			}
			switch {
			case toClipboard:
				if err := clipboard.WriteAll(buf.String()); err != nil {
					return errors.Wrap(errors.ErrCodeUnsupported, err, "clipboard unavailable")
				}
				c.printSuccess("Copied fragment to clipboard")
			case output != "" && output != "-":
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return err
				}
				c.printSuccess("Exported canvas %s", canvas.ID)
				c.printFile(output)
			default:
				_, err := c.out.Write(buf.Bytes())
				return err
			}
			c.printStats(len(s.Items), len(s.Connections), 0)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&baseID, "id", "", "canvas id (default from config)")
	cmd.Flags().StringVar(&label, "label", "", "canvas label")
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "copy the fragment to the clipboard")

	return cmd
}

// =============================================================================
// import
// =============================================================================

func (c *CLI) importCommand() *cobra.Command {
	var (
		output        string
		fromClipboard bool
	)

	cmd := &cobra.Command{
		Use:   "import [fragment.json]",
		Short: "Convert a IIIF canvas fragment into a board",
		Long: `Import reads a IIIF canvas and rebuilds the board from its annotations.
Entries that cannot be used are reported and skipped; the rest of the board
is still imported. Reads stdin when no file is given or the file is "-".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				canvas iiif.Canvas
				err    error
			)
			switch {
			case fromClipboard:
				text, cerr := clipboard.ReadAll()
				if cerr != nil {
					return errors.Wrap(errors.ErrCodeUnsupported, cerr, "clipboard unavailable")
				}
				canvas, err = iiif.ReadJSON(strings.NewReader(text))
			case len(args) == 0 || args[0] == "-":
				canvas, err = iiif.ReadJSON(cmd.InOrStdin())
			default:
				canvas, err = iiif.ImportFile(args[0])
			}
			if err != nil {
				return err
			}

			s, rep := iiif.Import(canvas, c.Config.Export)
			logger := loggerFromContext(cmd.Context())
			for _, sk := range rep.Skipped {
				logger.Warn("skipped annotation", "id", sk.ID, "motivation", sk.Motivation, "err", sk.Err)
			}
			if err := c.writeBoard(s, output); err != nil {
				return err
			}
			if output != "" && output != "-" {
				c.printStats(rep.Items, rep.Connections, len(rep.Skipped))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "board file to write (default: stdout)")
	cmd.Flags().BoolVar(&fromClipboard, "clipboard", false, "read the fragment from the clipboard")

	return cmd
}

// =============================================================================
// arrange
// =============================================================================

func (c *CLI) arrangeCommand() *cobra.Command {
	var (
		template string
		ids      []string
		at       string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "arrange <board.json>",
		Short: "Lay out items with a template",
		Long: `Arrange moves items into a grid, a sequence or a side-by-side comparison.
Without --ids every item is arranged, in z-order. The layout starts at --at,
or at the top-left corner of the arranged items. The board is rewritten in
place unless -o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := board.Template(template)
			if !t.Valid() {
				return errors.New(errors.ErrCodeInvalidInput, "unknown template %q (want grid, sequence or comparison)", template)
			}
			s, err := boardio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				for _, it := range s.Items {
					ids = append(ids, it.ID)
				}
			}
			origin, err := arrangeOrigin(s, ids, at)
			if err != nil {
				return err
			}
			arranged := s.ApplyTemplate(ids, t, origin, c.Config.Templates)
			if board.Equal(arranged, s) {
				c.printInfo("Nothing to arrange")
				return nil
			}
			if output == "" {
				output = args[0]
			}
			return c.writeBoard(arranged, output)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", string(board.TemplateGrid), "grid, sequence or comparison")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "item ids to arrange, in order")
	cmd.Flags().StringVar(&at, "at", "", "layout origin as x,y")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: rewrite the input)")

	return cmd
}

func arrangeOrigin(s board.State, ids []string, at string) (geom.Point, error) {
	if at != "" {
		return parsePoint(at)
	}
	var (
		box   geom.Rect
		found bool
	)
	for _, id := range ids {
		it, ok := s.Item(id)
		if !ok {
			return geom.Point{}, errors.New(errors.ErrCodeNotFound, "item %q not found", id)
		}
		if !found {
			box, found = it.Rect(), true
			continue
		}
		box = box.Union(it.Rect())
	}
	return box.Min(), nil
}

// parsePoint parses "x,y".
func parsePoint(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "point %q: want x,y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "point %q: want x,y", s)
	}
	return geom.Pt(x, y), nil
}

// =============================================================================
// route
// =============================================================================

func (c *CLI) routeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "route <board.json>",
		Short: "Print the computed path of every connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := boardio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			routed := route.All(s, c.Config.Board.AnchorOffset)
			if len(routed) == 0 {
				c.printInfo("No connections")
				return nil
			}
			for _, rt := range routed {
				from, _ := s.Item(rt.Conn.FromID)
				to, _ := s.Item(rt.Conn.ToID)
				c.printKeyValue(shortID(rt.Conn.ID), fmt.Sprintf("%s.%s %s %s.%s",
					itemName(from), rt.Conn.FromAnchor, iconArrow, itemName(to), rt.Conn.ToAnchor))
				c.printDetail("%s, %.0fpx", rt.Conn.Style, rt.Path.Length())
				c.printDetail("%s", rt.Path.SVG())
			}
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// itemName is a short human label for an item.
func itemName(it board.Item) string {
	name := it.Label()
	if it.IsNote() {
		name = it.Text()
	}
	if line, _, ok := strings.Cut(name, "\n"); ok {
		name = line
	}
	if r := []rune(name); len(r) > 24 {
		name = string(r[:23]) + "…"
	}
	if name == "" {
		return shortID(it.ID)
	}
	return strconv.Quote(name)
}
