package board

import (
	"math"
	"slices"

	"github.com/matzehuels/pinboard/pkg/geom"
)

// Template names one of the fixed arrangement layouts.
type Template string

const (
	TemplateGrid       Template = "grid"
	TemplateSequence   Template = "sequence"
	TemplateComparison Template = "comparison"
)

// Templates lists every supported template.
var Templates = []Template{TemplateGrid, TemplateSequence, TemplateComparison}

// Valid reports whether t is a known template.
func (t Template) Valid() bool { return slices.Contains(Templates, t) }

// Default template spacing.
const (
	DefaultTemplateGap      = 24.0
	DefaultComparisonHeight = 320.0
)

// TemplateOptions tunes the spacing used by [State.ApplyTemplate].
type TemplateOptions struct {
	Gap              float64 `toml:"gap" yaml:"gap" json:"gap"`
	ComparisonHeight float64 `toml:"comparison_height" yaml:"comparison_height" json:"comparisonHeight"`
}

func (o TemplateOptions) withDefaults() TemplateOptions {
	if o.Gap <= 0 {
		o.Gap = DefaultTemplateGap
	}
	if o.ComparisonHeight <= 0 {
		o.ComparisonHeight = DefaultComparisonHeight
	}
	return o
}

// ApplyTemplate arranges the given items starting at origin. An empty ids
// slice arranges every item. Unknown ids and locked items are skipped, and
// the listed order is the layout order.
//
//   - grid: ceil(sqrt(n)) columns, each cell as large as the largest item plus Gap
//   - sequence: one left-to-right row, items centred on the tallest
//   - comparison: pairs (0,1), (2,3), ... side by side, scaled to ComparisonHeight
func (s State) ApplyTemplate(ids []string, t Template, origin geom.Point, opts TemplateOptions) State {
	opts = opts.withDefaults()
	if len(ids) == 0 {
		for _, it := range s.Items {
			ids = append(ids, it.ID)
		}
	}
	idx := s.Index()
	var targets []Item
	for _, id := range ids {
		if i, ok := idx[id]; ok && !s.Items[i].Locked {
			targets = append(targets, s.Items[i])
		}
	}
	if len(targets) == 0 {
		return s
	}

	var placed []geom.Rect
	switch t {
	case TemplateGrid:
		placed = gridLayout(targets, origin, opts.Gap)
	case TemplateSequence:
		placed = sequenceLayout(targets, origin, opts.Gap)
	case TemplateComparison:
		placed = comparisonLayout(targets, origin, opts.Gap, opts.ComparisonHeight)
	default:
		return s
	}

	out := s
	for i, it := range targets {
		r := placed[i]
		out = out.updateItem(it.ID, false, func(it *Item) {
			it.X, it.Y, it.W, it.H = r.X, r.Y, r.W, r.H
		})
	}
	return out
}

func gridLayout(items []Item, origin geom.Point, gap float64) []geom.Rect {
	cols := int(math.Ceil(math.Sqrt(float64(len(items)))))
	var cw, ch float64
	for _, it := range items {
		cw = max(cw, it.W)
		ch = max(ch, it.H)
	}
	cw += gap
	ch += gap
	out := make([]geom.Rect, len(items))
	for i, it := range items {
		col, row := i%cols, i/cols
		out[i] = geom.R(origin.X+float64(col)*cw, origin.Y+float64(row)*ch, it.W, it.H)
	}
	return out
}

func sequenceLayout(items []Item, origin geom.Point, gap float64) []geom.Rect {
	var tallest float64
	for _, it := range items {
		tallest = max(tallest, it.H)
	}
	out := make([]geom.Rect, len(items))
	x := origin.X
	for i, it := range items {
		out[i] = geom.R(x, origin.Y+(tallest-it.H)/2, it.W, it.H)
		x += it.W + gap
	}
	return out
}

func comparisonLayout(items []Item, origin geom.Point, gap, height float64) []geom.Rect {
	scaled := make([]geom.Rect, len(items))
	var leftW float64
	for i, it := range items {
		w := max(it.W*height/it.H, MinSize)
		scaled[i] = geom.R(0, 0, w, height)
		if i%2 == 0 {
			leftW = max(leftW, w)
		}
	}
	out := make([]geom.Rect, len(items))
	for i, r := range scaled {
		row := i / 2
		x := origin.X
		if i%2 == 1 {
			x += leftW + gap
		}
		out[i] = geom.R(x, origin.Y+float64(row)*(height+gap), r.W, r.H)
	}
	return out
}
