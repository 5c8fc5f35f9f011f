package iiif

import (
	"encoding/json"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
)

// Context is the JSON-LD context of Presentation 3 documents.
const Context = "http://iiif.io/api/presentation/3/context.json"

// Resource types and motivations used by the board.
const (
	TypeCanvas         = "Canvas"
	TypeAnnotationPage = "AnnotationPage"
	TypeAnnotation     = "Annotation"
	TypeImage          = "Image"
	TypeTextualBody    = "TextualBody"

	MotivationPainting = "painting"
	MotivationLinking  = "linking"
)

// Canvas is a single board laid out as a IIIF canvas. Painting annotations
// live in Items, linking annotations in Annotations.
type Canvas struct {
	Context     string           `json:"@context,omitempty"`
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Label       Label            `json:"label,omitempty"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	Items       []AnnotationPage `json:"items"`
	Annotations []AnnotationPage `json:"annotations,omitempty"`

	// malformed holds pages that could not be decoded.
	malformed []Skipped
}

// UnmarshalJSON decodes each annotation page on its own. A page that fails to
// decode is kept aside and reported by Import instead of failing the canvas.
func (c *Canvas) UnmarshalJSON(data []byte) error {
	type fields Canvas
	var raw struct {
		fields
		Items       []json.RawMessage `json:"items"`
		Annotations []json.RawMessage `json:"annotations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Canvas(raw.fields)
	c.malformed = nil
	c.Items = c.decodePages(raw.Items)
	c.Annotations = c.decodePages(raw.Annotations)
	return nil
}

func (c *Canvas) decodePages(raw []json.RawMessage) []AnnotationPage {
	if raw == nil {
		return nil
	}
	pages := make([]AnnotationPage, 0, len(raw))
	for _, m := range raw {
		var p AnnotationPage
		if err := json.Unmarshal(m, &p); err != nil {
			c.malformed = append(c.malformed, malformedEntry(m, err))
			continue
		}
		pages = append(pages, p)
	}
	return pages
}

// AnnotationPage groups annotations.
type AnnotationPage struct {
	ID    string       `json:"id"`
	Type  string       `json:"type"`
	Items []Annotation `json:"items"`

	// malformed holds annotations that could not be decoded.
	malformed []Skipped
}

// UnmarshalJSON decodes each annotation on its own so that one entry of an
// unexpected shape does not hide the others.
func (p *AnnotationPage) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    string            `json:"id"`
		Type  string            `json:"type"`
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = AnnotationPage{ID: raw.ID, Type: raw.Type}
	if raw.Items == nil {
		return nil
	}
	p.Items = make([]Annotation, 0, len(raw.Items))
	for _, m := range raw.Items {
		var a Annotation
		if err := json.Unmarshal(m, &a); err != nil {
			p.malformed = append(p.malformed, malformedEntry(m, err))
			continue
		}
		p.Items = append(p.Items, a)
	}
	return nil
}

// malformedEntry describes an entry that failed to decode, keeping its id and
// motivation when those are readable.
func malformedEntry(data json.RawMessage, err error) Skipped {
	var head struct {
		ID         json.RawMessage `json:"id"`
		Motivation json.RawMessage `json:"motivation"`
	}
	_ = json.Unmarshal(data, &head)
	var id, motivation string
	_ = json.Unmarshal(head.ID, &id)
	_ = json.Unmarshal(head.Motivation, &motivation)
	return Skipped{
		ID:         id,
		Motivation: motivation,
		Err:        errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode entry"),
	}
}

// Annotation places a body on a region or point of the canvas.
type Annotation struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Motivation string   `json:"motivation"`
	Body       Body     `json:"body"`
	Target     Target   `json:"target"`
	Board      *ItemRef `json:"board,omitempty"`
}

// Body is the content of an annotation: an image resource or inline text.
type Body struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type"`
	Format string `json:"format,omitempty"`
	Value  string `json:"value,omitempty"`
	Label  Label  `json:"label,omitempty"`
}

// UnmarshalJSON accepts a single body or a list of bodies, of which the
// first is used. A Choice body resolves to its first item.
func (b *Body) UnmarshalJSON(data []byte) error {
	var list []json.RawMessage
	if json.Unmarshal(data, &list) == nil && list != nil {
		if len(list) == 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "empty body list")
		}
		return b.UnmarshalJSON(list[0])
	}
	type plain Body
	var raw struct {
		plain
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type == "Choice" && len(raw.Items) > 0 {
		return b.UnmarshalJSON(raw.Items[0])
	}
	*b = Body(raw.plain)
	return nil
}

// ItemRef is the board extension of a painting annotation. It carries what
// IIIF has no property for.
type ItemRef struct {
	ItemID       string          `json:"itemId"`
	Kind         board.Kind      `json:"kind,omitempty"`
	ResourceID   string          `json:"resourceId,omitempty"`
	ResourceType string          `json:"resourceType,omitempty"`
	Opacity      *float64        `json:"opacity,omitempty"`
	Locked       bool            `json:"locked,omitempty"`
	Previews     []string        `json:"previews,omitempty"`
	Layers       json.RawMessage `json:"layers,omitempty"`
}

// Target is an annotation target in its string form, "<source>#<fragment>".
// It also decodes the SpecificResource object form with a FragmentSelector
// or PointSelector.
type Target string

// UnmarshalJSON accepts a target string or a SpecificResource object.
func (t *Target) UnmarshalJSON(data []byte) error {
	var s string
	if json.Unmarshal(data, &s) == nil {
		*t = Target(s)
		return nil
	}
	var sr struct {
		Source   json.RawMessage `json:"source"`
		Selector struct {
			Type  string   `json:"type"`
			Value string   `json:"value"`
			X     *float64 `json:"x"`
			Y     *float64 `json:"y"`
		} `json:"selector"`
	}
	if err := json.Unmarshal(data, &sr); err != nil {
		return err
	}
	var src string
	if json.Unmarshal(sr.Source, &src) != nil {
		var ref struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(sr.Source, &ref)
		src = ref.ID
	}
	switch {
	case sr.Selector.Value != "":
		*t = Target(src + "#" + sr.Selector.Value)
	case sr.Selector.X != nil && sr.Selector.Y != nil:
		*t = Target(src + "#xywh=" + formatNum(*sr.Selector.X) + "," + formatNum(*sr.Selector.Y) + ",0,0")
	default:
		*t = Target(src)
	}
	return nil
}
