package render

import (
	"bytes"
	"math"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/route"
)

// arrowSize is the length of an arrowhead in canvas units.
const arrowSize = 8.0

// RenderPNG rasterizes s at the configured scale. Preview images are not
// fetched; resources are drawn as labelled boxes.
func RenderPNG(s board.State, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)
	f := r.frame(s)
	w := int(math.Ceil(f.W * r.scale))
	h := int(math.Ceil(f.H * r.scale))

	dc := gg.NewContext(w, h)
	dc.SetHexColor("#fafafa")
	dc.Clear()
	dc.Scale(r.scale, r.scale)
	dc.Translate(-f.X, -f.Y)

	for _, rt := range route.All(s, r.offset) {
		r.pngConnection(dc, rt)
	}
	for _, it := range s.Items {
		r.pngItem(dc, it)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func (r renderer) pngConnection(dc *gg.Context, rt route.Routed) {
	pts := rt.Path.Flatten()
	if len(pts) < 2 {
		return
	}
	color := strokeColor(rt.Conn.Color)
	width := 1.5
	if rt.Conn.ID == r.highlight {
		width = 3
	}
	dc.SetHexColor(color)
	dc.SetLineWidth(width)
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
	arrowhead(dc, pts[len(pts)-2], pts[len(pts)-1])

	if text := connectionText(rt.Conn); r.labels && text != "" {
		m := rt.Path.Midpoint()
		dc.SetHexColor(color)
		dc.DrawStringAnchored(text, m.X, m.Y-4, 0.5, 0)
	}
}

func arrowhead(dc *gg.Context, from, tip geom.Point) {
	angle := math.Atan2(tip.Y-from.Y, tip.X-from.X)
	const spread = math.Pi / 7
	dc.MoveTo(tip.X, tip.Y)
	dc.LineTo(tip.X-arrowSize*math.Cos(angle-spread), tip.Y-arrowSize*math.Sin(angle-spread))
	dc.LineTo(tip.X-arrowSize*math.Cos(angle+spread), tip.Y-arrowSize*math.Sin(angle+spread))
	dc.ClosePath()
	dc.Fill()
}

func (r renderer) pngItem(dc *gg.Context, it board.Item) {
	st := styleFor(it)
	alpha := 1.0
	if it.Opacity > 0 && it.Opacity < 1 {
		alpha = it.Opacity
	}
	dc.Push()
	defer dc.Pop()

	dc.DrawRoundedRectangle(it.X, it.Y, it.W, it.H, 4)
	setHex(dc, st.fill, alpha)
	dc.FillPreserve()
	setHex(dc, st.stroke, alpha)
	dc.SetLineWidth(1)
	if it.ID == r.highlight {
		dc.SetLineWidth(3)
	}
	if st.dashed {
		dc.SetDash(6, 4)
	}
	dc.Stroke()
	dc.SetDash()

	setHex(dc, "#222222", alpha)
	dc.DrawStringAnchored(fit(firstLine(it.Label()), it.W-8), it.X+it.W/2, it.Y+it.H/2, 0.5, 0.5)
}

func setHex(dc *gg.Context, hex string, alpha float64) {
	if alpha >= 1 {
		dc.SetHexColor(hex)
		return
	}
	v, _ := strconv.ParseUint(hex[1:], 16, 32) // styleFor colors are always #rrggbb
	dc.SetRGBA255(int(v>>16&0xff), int(v>>8&0xff), int(v&0xff), int(alpha*255))
}
