package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
)

// DOTOptions configures node-link export.
type DOTOptions struct {
	// Detailed adds kind and resource id lines to node labels.
	Detailed bool
	// Pinned fixes node positions to the board layout (neato -n).
	// When false, Graphviz lays the graph out top to bottom.
	Pinned bool
}

// points per canvas unit when pinning positions.
const dotScale = 0.75

// ToDOT converts the board's items and connections into Graphviz DOT.
// Dangling connections are skipped.
func ToDOT(s board.State, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph board {\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n  overlap=true;\n  splines=true;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n  ranksep=0.5;\n  nodesep=0.3;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n\n")

	idx := s.Index()
	for _, it := range s.Items {
		attrs := nodeAttrs(it, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", it.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range s.Connections {
		_, okFrom := idx[c.FromID]
		_, okTo := idx[c.ToID]
		if !okFrom || !okTo {
			continue
		}
		attrs := []string{fmt.Sprintf("color=%q", strokeColor(c.Color))}
		if text := connectionText(c); text != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", text))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.FromID, c.ToID, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(it board.Item, opts DOTOptions) []string {
	label := firstLine(it.Label())
	if label == "" {
		label = it.ID
	}
	if opts.Detailed {
		label += fmt.Sprintf("\nkind: %s", it.Kind())
		if it.ResourceID != "" {
			label += "\nresource: " + it.ResourceID
		}
	}
	st := styleFor(it)
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", st.fill),
		fmt.Sprintf("color=%q", st.stroke),
	}
	if st.dashed {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	if opts.Pinned {
		c := it.Rect().Center()
		// Graphviz y grows upward.
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", dotNum(c.X*dotScale), dotNum(-c.Y*dotScale)))
	}
	return attrs
}

func dotNum(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

// RenderDOTSVG lays out and renders a DOT graph to SVG using Graphviz.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	if pinnedRe.MatchString(dot) {
		gv.SetLayout(graphviz.NEATO)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	pinnedRe  = regexp.MustCompile(`(?m)^\s*layout=neato;`)
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-point size attributes with a
// zero-origin viewBox so the output scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
