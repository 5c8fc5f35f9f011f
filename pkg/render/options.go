package render

import (
	"regexp"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/route"
)

// Defaults for rendering.
const (
	DefaultMargin = 24.0
	DefaultScale  = 2.0

	FontFamily = `'Helvetica Neue', Helvetica, Arial, sans-serif`
	fontSize   = 13.0
	lineColor  = "#555555"
)

// Option configures SVG and PNG rendering.
type Option func(*renderer)

type renderer struct {
	margin    float64
	offset    float64
	scale     float64
	labels    bool
	images    bool
	highlight string
}

// WithMargin sets the padding around the items.
func WithMargin(m float64) Option { return func(r *renderer) { r.margin = m } }

// WithAnchorOffset sets the anchor distance used to route connections.
func WithAnchorOffset(o float64) Option { return func(r *renderer) { r.offset = o } }

// WithScale sets the PNG pixel density (default 2 for high-DPI output).
func WithScale(s float64) Option { return func(r *renderer) { r.scale = s } }

// WithoutLabels omits connection labels.
func WithoutLabels() Option { return func(r *renderer) { r.labels = false } }

// WithImages embeds preview images as SVG <image> references.
func WithImages() Option { return func(r *renderer) { r.images = true } }

// WithHighlight draws the item or connection with the given id emphasized.
func WithHighlight(id string) Option { return func(r *renderer) { r.highlight = id } }

func newRenderer(opts ...Option) renderer {
	r := renderer{margin: DefaultMargin, offset: route.AnchorOffset, scale: DefaultScale, labels: true}
	for _, o := range opts {
		o(&r)
	}
	if r.margin < 0 {
		r.margin = 0
	}
	if r.scale <= 0 {
		r.scale = DefaultScale
	}
	return r
}

// frame returns the drawn area in canvas space.
func (r renderer) frame(s board.State) geom.Rect {
	b := s.Bounds()
	if !b.Valid() {
		b = geom.R(0, 0, 1, 1)
	}
	return b.Inset(r.margin)
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// strokeColor returns c when it is a hex color, else the default line color.
func strokeColor(c string) string {
	if hexColor.MatchString(c) {
		return c
	}
	return lineColor
}

type itemStyle struct {
	fill, stroke string
	dashed       bool
}

func styleFor(it board.Item) itemStyle {
	switch {
	case it.IsPlaceholder():
		return itemStyle{fill: "#f4f4f4", stroke: "#999999", dashed: true}
	case it.Kind() == board.KindNote:
		return itemStyle{fill: "#fff7b3", stroke: "#c9b400"}
	case it.Kind() == board.KindComposite:
		return itemStyle{fill: "#e8f0fe", stroke: "#4a6fa5"}
	default:
		return itemStyle{fill: "#ffffff", stroke: "#333333"}
	}
}

// connectionText returns the label drawn for c under its display mode.
func connectionText(c board.Connection) string {
	switch c.DisplayMode {
	case board.DisplayNone:
		return ""
	case board.DisplayPurpose:
		return c.Purpose
	}
	switch {
	case c.Label != "" && c.Purpose != "":
		return c.Label + " (" + c.Purpose + ")"
	case c.Label != "":
		return c.Label
	default:
		return c.Purpose
	}
}

// fit truncates s to roughly the number of characters that fit in width.
func fit(s string, width float64) string {
	n := int(width / (fontSize * 0.6))
	rs := []rune(s)
	if n <= 1 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
