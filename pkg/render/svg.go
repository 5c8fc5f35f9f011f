package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/route"
)

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

// RenderSVG draws s as an SVG document in canvas coordinates.
func RenderSVG(s board.State, opts ...Option) []byte {
	r := newRenderer(opts...)
	f := r.frame(s)
	x0, y0 := int(math.Floor(f.X)), int(math.Floor(f.Y))
	w, h := int(math.Ceil(f.X+f.W))-x0, int(math.Ceil(f.Y+f.H))-y0

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(w, h, x0, y0, w, h)
	canvas.Def()
	canvas.Marker("arrow", 10, 5, 8, 8, `viewBox="0 0 10 10"`, `orient="auto-start-reverse"`)
	canvas.Path("M 0 0 L 10 5 L 0 10 z", "fill:context-stroke")
	canvas.MarkerEnd()
	canvas.DefEnd()
	canvas.Rect(x0, y0, w, h, "fill:#fafafa")

	canvas.Group(`id="connections"`)
	for _, rt := range route.All(s, r.offset) {
		r.svgConnection(canvas, rt)
	}
	canvas.Gend()

	canvas.Group(`id="items"`)
	for _, it := range s.Items {
		r.svgItem(canvas, it)
	}
	canvas.Gend()

	canvas.End()
	return buf.Bytes()
}

func (r renderer) svgConnection(canvas *svg.SVG, rt route.Routed) {
	c := rt.Conn
	width := 1.5
	if c.ID == r.highlight {
		width = 3
	}
	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g", strokeColor(c.Color), width)
	canvas.Group(fmt.Sprintf(`id="conn-%s"`, attrEscaper.Replace(c.ID)), `class="connection"`)
	canvas.Path(rt.Path.SVG(), style, `marker-end="url(#arrow)"`)
	if text := connectionText(c); r.labels && text != "" {
		m := rt.Path.Midpoint()
		canvas.Text(int(math.Round(m.X)), int(math.Round(m.Y-4)), text,
			fmt.Sprintf("font-family:%s;font-size:%gpx;fill:%s;text-anchor:middle", FontFamily, fontSize-2, strokeColor(c.Color)))
	}
	canvas.Gend()
}

func (r renderer) svgItem(canvas *svg.SVG, it board.Item) {
	st := styleFor(it)
	x, y, w, h := rect(it.Rect())

	attrs := []string{fmt.Sprintf(`id="item-%s"`, attrEscaper.Replace(it.ID)), fmt.Sprintf(`class="item %s"`, it.Kind())}
	if it.Opacity < 1 {
		attrs = append(attrs, fmt.Sprintf(`opacity="%g"`, math.Max(it.Opacity, 0)))
	}
	canvas.Group(attrs...)
	canvas.Title(it.Label())

	stroke := 1.0
	if it.ID == r.highlight {
		stroke = 3
	}
	style := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%g", st.fill, st.stroke, stroke)
	if st.dashed {
		style += ";stroke-dasharray:6,4"
	}
	canvas.Roundrect(x, y, w, h, 4, 4, style)

	if preview := it.Preview(); r.images && preview != "" {
		canvas.Image(x+2, y+2, max(w-4, 1), max(h-4, 1), attrEscaper.Replace(preview), `preserveAspectRatio="xMidYMid meet"`)
	}

	label := fit(firstLine(it.Label()), it.W-8)
	canvas.Text(x+w/2, y+h/2, label,
		fmt.Sprintf("font-family:%s;font-size:%gpx;fill:#222;text-anchor:middle;dominant-baseline:middle", FontFamily, fontSize))
	if it.Locked {
		canvas.Text(x+w-10, y+14, "🔒", "font-size:10px")
	}
	canvas.Gend()
}

func rect(r geom.Rect) (int, int, int, int) {
	return int(math.Round(r.X)), int(math.Round(r.Y)), max(int(math.Round(r.W)), 1), max(int(math.Round(r.H)), 1)
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	return s
}
