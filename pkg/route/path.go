package route

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
)

// PathKind tells how the points of a [Path] are interpreted.
type PathKind int

const (
	// Polyline paths visit every point in order.
	Polyline PathKind = iota
	// Cubic paths hold exactly four points: start, two controls, end.
	Cubic
)

// cubicSteps is how many segments a cubic is flattened into.
const cubicSteps = 16

// Path is a renderable connection path in canvas space.
type Path struct {
	Kind   PathKind
	Points []geom.Point
}

// Compute builds the path between start and end.
func Compute(start, end geom.Point, waypoints []geom.Point, style board.Style, dir board.Direction) Path {
	if len(waypoints) > 0 {
		pts := make([]geom.Point, 0, len(waypoints)+2)
		pts = append(pts, start)
		pts = append(pts, waypoints...)
		pts = append(pts, end)
		return Path{Kind: Polyline, Points: pts}
	}
	mx, my := (start.X+end.X)/2, (start.Y+end.Y)/2
	switch style {
	case board.Elbow:
		if horizontalFirst(start, end, dir) {
			return Path{Kind: Polyline, Points: []geom.Point{
				start, geom.Pt(mx, start.Y), geom.Pt(mx, end.Y), end,
			}}
		}
		return Path{Kind: Polyline, Points: []geom.Point{
			start, geom.Pt(start.X, my), geom.Pt(end.X, my), end,
		}}
	case board.Curved:
		return Path{Kind: Cubic, Points: []geom.Point{
			start, geom.Pt(mx, start.Y), geom.Pt(mx, end.Y), end,
		}}
	default:
		return Path{Kind: Polyline, Points: []geom.Point{start, end}}
	}
}

func horizontalFirst(start, end geom.Point, dir board.Direction) bool {
	switch dir {
	case board.HorizontalFirst:
		return true
	case board.VerticalFirst:
		return false
	}
	return math.Abs(end.X-start.X) >= math.Abs(end.Y-start.Y)
}

// Start returns the first point of the path.
func (p Path) Start() geom.Point {
	if len(p.Points) == 0 {
		return geom.Point{}
	}
	return p.Points[0]
}

// End returns the last point of the path.
func (p Path) End() geom.Point {
	if len(p.Points) == 0 {
		return geom.Point{}
	}
	return p.Points[len(p.Points)-1]
}

// Flatten returns the path as a polyline. Cubics are sampled uniformly.
func (p Path) Flatten() []geom.Point {
	if p.Kind != Cubic || len(p.Points) != 4 {
		return slices.Clone(p.Points)
	}
	out := make([]geom.Point, 0, cubicSteps+1)
	for i := 0; i <= cubicSteps; i++ {
		out = append(out, p.at(float64(i)/cubicSteps))
	}
	return out
}

// at evaluates a cubic path at t in [0, 1].
func (p Path) at(t float64) geom.Point {
	a, b, c, d := p.Points[0], p.Points[1], p.Points[2], p.Points[3]
	u := 1 - t
	w0, w1, w2, w3 := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return geom.Pt(
		w0*a.X+w1*b.X+w2*c.X+w3*d.X,
		w0*a.Y+w1*b.Y+w2*c.Y+w3*d.Y,
	)
}

// Segments returns consecutive point pairs of the flattened path.
func (p Path) Segments() [][2]geom.Point {
	pts := p.Flatten()
	if len(pts) < 2 {
		return nil
	}
	out := make([][2]geom.Point, len(pts)-1)
	for i := range out {
		out[i] = [2]geom.Point{pts[i], pts[i+1]}
	}
	return out
}

// Length returns the length of the flattened path.
func (p Path) Length() float64 {
	var l float64
	for _, s := range p.Segments() {
		l += geom.Dist(s[0], s[1])
	}
	return l
}

// Midpoint returns the point halfway along the path. Labels are drawn here.
func (p Path) Midpoint() geom.Point {
	if p.Kind == Cubic && len(p.Points) == 4 {
		return p.at(0.5)
	}
	half := p.Length() / 2
	for _, s := range p.Segments() {
		d := geom.Dist(s[0], s[1])
		if d >= half && d > 0 {
			t := half / d
			return geom.Pt(s[0].X+(s[1].X-s[0].X)*t, s[0].Y+(s[1].Y-s[0].Y)*t)
		}
		half -= d
	}
	return p.Start()
}

// SVG returns the path as SVG path data ("M ... L ..." or "M ... C ...").
func (p Path) SVG() string {
	if len(p.Points) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, p.Points[0])
	if p.Kind == Cubic && len(p.Points) == 4 {
		b.WriteString(" C ")
		writePoint(&b, p.Points[1])
		b.WriteString(" ")
		writePoint(&b, p.Points[2])
		b.WriteString(" ")
		writePoint(&b, p.Points[3])
		return b.String()
	}
	for _, pt := range p.Points[1:] {
		b.WriteString(" L ")
		writePoint(&b, pt)
	}
	return b.String()
}

func writePoint(b *strings.Builder, p geom.Point) {
	b.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
}

// HitPath reports whether pt lies within tolerance of the path.
func HitPath(p Path, pt geom.Point, tolerance float64) bool {
	for _, s := range p.Segments() {
		if geom.SegmentDistance(pt, s[0], s[1]) <= tolerance {
			return true
		}
	}
	return false
}
