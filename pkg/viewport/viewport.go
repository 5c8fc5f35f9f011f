// Package viewport maps between screen space and board canvas space.
//
// A [Viewport] is the pan/zoom transform of one open board. It is a pure
// value: converting points never changes it, and panning or zooming never
// touches the board state. The transform is
//
//	screen = canvas*Scale + (X, Y)
//	canvas = (screen - (X, Y)) / Scale
//
// Scale is always kept inside [Options.MinScale, Options.MaxScale].
//
// # Grid Snap
//
// When [Options.GridSnap] is enabled, [Viewport.Place] quantizes converted
// points to [Options.GridSize] before they are used to place or move items.
// [Viewport.ToCanvas] itself stays exact so hit-testing is unaffected.
package viewport

import (
	"math"

	"github.com/matzehuels/pinboard/pkg/geom"
)

// Default transform limits and factors.
const (
	DefaultMinScale      = 0.1
	DefaultMaxScale      = 5.0
	DefaultZoomInFactor  = 1.2
	DefaultZoomOutFactor = 0.8
	DefaultGridSize      = 24.0
)

// Options configures scale bounds, zoom steps and grid snapping.
type Options struct {
	MinScale      float64 `toml:"min_scale" yaml:"min_scale" json:"minScale"`
	MaxScale      float64 `toml:"max_scale" yaml:"max_scale" json:"maxScale"`
	ZoomInFactor  float64 `toml:"zoom_in_factor" yaml:"zoom_in_factor" json:"zoomInFactor"`
	ZoomOutFactor float64 `toml:"zoom_out_factor" yaml:"zoom_out_factor" json:"zoomOutFactor"`
	GridSnap      bool    `toml:"grid_snap" yaml:"grid_snap" json:"gridSnap"`
	GridSize      float64 `toml:"grid_size" yaml:"grid_size" json:"gridSize"`
}

// DefaultOptions returns the stock limits: scale 0.1–5.0, ×1.2 / ×0.8 zoom
// steps and a 24 unit grid (snap disabled).
func DefaultOptions() Options {
	return Options{
		MinScale:      DefaultMinScale,
		MaxScale:      DefaultMaxScale,
		ZoomInFactor:  DefaultZoomInFactor,
		ZoomOutFactor: DefaultZoomOutFactor,
		GridSize:      DefaultGridSize,
	}
}

// withDefaults fills zero fields so a zero Options is still usable.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinScale <= 0 {
		o.MinScale = d.MinScale
	}
	if o.MaxScale <= 0 {
		o.MaxScale = d.MaxScale
	}
	if o.MaxScale < o.MinScale {
		o.MinScale, o.MaxScale = o.MaxScale, o.MinScale
	}
	if o.ZoomInFactor <= 0 {
		o.ZoomInFactor = d.ZoomInFactor
	}
	if o.ZoomOutFactor <= 0 {
		o.ZoomOutFactor = d.ZoomOutFactor
	}
	if o.GridSize <= 0 {
		o.GridSize = d.GridSize
	}
	return o
}

// Viewport is the pan/zoom state of a board view.
// The zero value is not usable; create one with [New].
type Viewport struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`

	opts Options
}

// New returns a viewport at the identity transform.
func New(opts Options) *Viewport {
	return &Viewport{Scale: 1, opts: opts.withDefaults()}
}

// Options returns the effective options.
func (v *Viewport) Options() Options { return v.opts }

// SetGridSnap turns grid snapping on or off.
func (v *Viewport) SetGridSnap(on bool) { v.opts.GridSnap = on }

// GridSnap reports whether placement snapping is active.
func (v *Viewport) GridSnap() bool { return v.opts.GridSnap }

// ToCanvas converts a screen point into canvas space.
func (v *Viewport) ToCanvas(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - v.X) / v.Scale, Y: (p.Y - v.Y) / v.Scale}
}

// ToScreen converts a canvas point into screen space.
func (v *Viewport) ToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*v.Scale + v.X, Y: p.Y*v.Scale + v.Y}
}

// ScreenRect converts a canvas rectangle into screen space.
func (v *Viewport) ScreenRect(r geom.Rect) geom.Rect {
	o := v.ToScreen(r.Min())
	return geom.Rect{X: o.X, Y: o.Y, W: r.W * v.Scale, H: r.H * v.Scale}
}

// SnapPoint quantizes a canvas point to the grid when snapping is enabled.
func (v *Viewport) SnapPoint(p geom.Point) geom.Point {
	if !v.opts.GridSnap {
		return p
	}
	return geom.SnapPoint(p, v.opts.GridSize)
}

// Place converts a screen point to canvas space and applies grid snapping.
// Use it for any coordinate that becomes an item position.
func (v *Viewport) Place(p geom.Point) geom.Point {
	return v.SnapPoint(v.ToCanvas(p))
}

// Pan moves the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.X += dx
	v.Y += dy
}

// ZoomIn multiplies the scale by the zoom-in factor.
func (v *Viewport) ZoomIn() { v.setScale(v.Scale * v.opts.ZoomInFactor) }

// ZoomOut multiplies the scale by the zoom-out factor.
func (v *Viewport) ZoomOut() { v.setScale(v.Scale * v.opts.ZoomOutFactor) }

// ZoomAt scales by factor around a screen point, keeping the canvas point
// under it fixed. This is the wheel-zoom behaviour.
func (v *Viewport) ZoomAt(screen geom.Point, factor float64) {
	if factor <= 0 {
		return
	}
	anchor := v.ToCanvas(screen)
	v.setScale(v.Scale * factor)
	v.X = screen.X - anchor.X*v.Scale
	v.Y = screen.Y - anchor.Y*v.Scale
}

// Reset restores {x: 0, y: 0, scale: 1}.
func (v *Viewport) Reset() {
	v.X, v.Y, v.Scale = 0, 0, 1
}

// Visible returns the canvas-space rectangle shown in a screen of the given size.
func (v *Viewport) Visible(screenW, screenH float64) geom.Rect {
	o := v.ToCanvas(geom.Point{})
	return geom.Rect{X: o.X, Y: o.Y, W: screenW / v.Scale, H: screenH / v.Scale}
}

func (v *Viewport) setScale(s float64) {
	v.Scale = math.Max(v.opts.MinScale, math.Min(v.opts.MaxScale, s))
}
