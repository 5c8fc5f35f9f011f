package iiif

import (
	"encoding/json"
	"math"
	"mime"
	"path"
	"time"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/observability"
	"github.com/matzehuels/pinboard/pkg/route"
)

// Export defaults.
const (
	DefaultMargin = 24.0
	DefaultBaseID = "urn:pinboard:canvas"
)

// Options controls Export and Import.
type Options struct {
	// BaseID is the canvas id. Annotation ids are derived from it.
	BaseID string `toml:"base_id" yaml:"base_id" json:"baseId,omitempty"`
	// Label is the canvas label.
	Label string `toml:"label" yaml:"label" json:"label,omitempty"`
	// Margin pads the bounding box on every side. Values <= 0 use
	// DefaultMargin.
	Margin float64 `toml:"margin" yaml:"margin" json:"margin,omitempty"`
	// AnchorOffset is the anchor distance used for linking targets, and for
	// matching them back to items on import.
	AnchorOffset float64 `toml:"anchor_offset" yaml:"anchor_offset" json:"anchorOffset,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.BaseID == "" {
		o.BaseID = DefaultBaseID
	}
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
	if o.AnchorOffset <= 0 {
		o.AnchorOffset = route.AnchorOffset
	}
	return o
}

// LinkBody is the JSON value of a linking annotation body. Points are in
// canvas coordinates.
type LinkBody struct {
	ID          string            `json:"id"`
	FromID      string            `json:"fromId,omitempty"`
	ToID        string            `json:"toId,omitempty"`
	FromAnchor  board.Anchor      `json:"fromAnchor"`
	ToAnchor    board.Anchor      `json:"toAnchor"`
	ToPoint     *geom.Point       `json:"toPoint,omitempty"`
	Style       board.Style       `json:"style,omitempty"`
	Direction   board.Direction   `json:"direction,omitempty"`
	Waypoints   []geom.Point      `json:"waypoints,omitempty"`
	Label       string            `json:"label,omitempty"`
	Color       string            `json:"color,omitempty"`
	Purpose     string            `json:"purpose,omitempty"`
	DisplayMode board.DisplayMode `json:"displayMode,omitempty"`
}

// Export converts s into a canvas. Connections with a missing endpoint are
// left out. A non-finite position or waypoint fails the export.
func Export(s board.State, opts Options) (Canvas, error) {
	start := time.Now()
	opts = opts.withDefaults()

	for _, it := range s.Items {
		if !finite(it.X, it.Y, it.W, it.H) {
			return Canvas{}, errors.New(errors.ErrCodeInvalidInput, "item %s has a non-finite position", it.ID)
		}
	}

	bounds := s.Bounds()
	origin := geom.Pt(bounds.X-opts.Margin, bounds.Y-opts.Margin)
	shift := geom.Pt(-origin.X, -origin.Y)

	id := opts.BaseID
	c := Canvas{
		Context: Context,
		ID:      id,
		Type:    TypeCanvas,
		Label:   NewLabel(opts.Label),
		Width:   int(math.Ceil(bounds.W + 2*opts.Margin)),
		Height:  int(math.Ceil(bounds.H + 2*opts.Margin)),
	}

	painting := AnnotationPage{ID: id + "/page/painting", Type: TypeAnnotationPage, Items: []Annotation{}}
	for _, it := range s.Items {
		painting.Items = append(painting.Items, paintingAnnotation(id, it, it.Rect().Translate(shift)))
	}
	c.Items = []AnnotationPage{painting}

	routed := route.All(s, opts.AnchorOffset)
	if len(routed) > 0 {
		linking := AnnotationPage{ID: id + "/page/linking", Type: TypeAnnotationPage}
		for _, r := range routed {
			a, err := linkingAnnotation(id, r, shift)
			if err != nil {
				return Canvas{}, err
			}
			linking.Items = append(linking.Items, a)
		}
		c.Annotations = []AnnotationPage{linking}
	}

	observability.Board().OnExport(len(s.Items), len(routed), time.Since(start))
	return c, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func paintingAnnotation(canvasID string, it board.Item, r geom.Rect) Annotation {
	op := it.Opacity
	ref := &ItemRef{
		ItemID:       it.ID,
		Kind:         it.Kind(),
		ResourceID:   it.ResourceID,
		ResourceType: it.ResourceType,
		Opacity:      &op,
		Locked:       it.Locked,
	}

	var body Body
	switch p := it.Payload.(type) {
	case board.NoteItem:
		body = textBody(p.Text)
	case board.CompositeItem:
		body = textBody(p.Label)
		ref.Layers = p.Layers
	default:
		// The body label is the item's own label, never the resource id
		// fallback, so an unlabelled resource stays unlabelled on import.
		var label string
		if rp, ok := p.(board.ResourceItem); ok {
			label = rp.Label
			if len(rp.Previews) > 0 {
				ref.Previews = rp.Previews
			}
		}
		if preview := it.Preview(); preview != "" {
			body = Body{
				ID:     preview,
				Type:   TypeImage,
				Format: imageFormat(preview),
				Label:  NewLabel(label),
			}
		} else {
			body = textBody(label)
		}
	}

	return Annotation{
		ID:         canvasID + "/annotation/" + it.ID,
		Type:       TypeAnnotation,
		Motivation: MotivationPainting,
		Body:       body,
		Target:     Target(FormatSelector(canvasID, r)),
		Board:      ref,
	}
}

func linkingAnnotation(canvasID string, r route.Routed, shift geom.Point) (Annotation, error) {
	c := r.Conn
	start := r.Path.Start().Add(shift)
	end := r.Path.End().Add(shift)
	lb := LinkBody{
		ID:          c.ID,
		FromID:      c.FromID,
		ToID:        c.ToID,
		FromAnchor:  c.FromAnchor,
		ToAnchor:    c.ToAnchor,
		ToPoint:     &end,
		Style:       c.Style,
		Direction:   c.Direction,
		Label:       c.Label,
		Color:       c.Color,
		Purpose:     c.Purpose,
		DisplayMode: c.DisplayMode,
	}
	for _, w := range c.Waypoints {
		lb.Waypoints = append(lb.Waypoints, w.Add(shift))
	}
	value, err := json.Marshal(lb)
	if err != nil {
		return Annotation{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "connection %s", c.ID)
	}

	return Annotation{
		ID:         canvasID + "/link/" + c.ID,
		Type:       TypeAnnotation,
		Motivation: MotivationLinking,
		Body: Body{
			Type:   TypeTextualBody,
			Format: "application/json",
			Value:  string(value),
		},
		Target: Target(FormatSelector(canvasID, geom.Rect{X: start.X, Y: start.Y})),
	}, nil
}

func textBody(s string) Body {
	return Body{Type: TypeTextualBody, Format: "text/plain", Value: s}
}

func imageFormat(ref string) string {
	if t := mime.TypeByExtension(path.Ext(ref)); t != "" {
		return t
	}
	return "image/jpeg"
}
