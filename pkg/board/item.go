package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/pinboard/pkg/geom"
)

// NoteURNPrefix prefixes the synthetic resource id of note items.
const NoteURNPrefix = "urn:pinboard:note:"

// PlaceholderURNPrefix prefixes resource ids that could not be resolved.
const PlaceholderURNPrefix = "urn:pinboard:placeholder:"

// Kind tags the payload variant carried by an item.
type Kind string

const (
	KindNote      Kind = "note"
	KindResource  Kind = "resource"
	KindComposite Kind = "composite"
)

// Payload is the variant part of an [Item]. It is implemented by [NoteItem],
// [ResourceItem] and [CompositeItem] only.
type Payload interface {
	Kind() Kind
	clone() Payload
}

// NoteItem is free text typed directly on the board.
type NoteItem struct {
	Text string
}

// ResourceItem pins an externally resolved archival resource. Preview
// references are owned by whoever resolved them; the board never frees them.
type ResourceItem struct {
	Label    string
	Preview  string
	Previews []string
}

// CompositeItem carries the output of the compositing tool. Layers is passed
// through untouched.
type CompositeItem struct {
	Label  string
	Layers json.RawMessage
}

func (NoteItem) Kind() Kind      { return KindNote }
func (ResourceItem) Kind() Kind  { return KindResource }
func (CompositeItem) Kind() Kind { return KindComposite }

func (p NoteItem) clone() Payload { return p }

func (p ResourceItem) clone() Payload {
	p.Previews = slices.Clone(p.Previews)
	return p
}

func (p CompositeItem) clone() Payload {
	p.Layers = bytes.Clone(p.Layers)
	return p
}

// Item is a node on the board.
//
// ID is generated on creation and never changes. ResourceID references the
// archival resource shown, or a synthetic URN for notes and placeholders.
// ResourceType is a display hint only.
type Item struct {
	ID           string
	ResourceID   string
	ResourceType string
	X, Y, W, H   float64
	Opacity      float64
	Locked       bool
	Payload      Payload
}

// NewID returns a fresh opaque identifier.
func NewID() string { return uuid.NewString() }

// NewNote creates a note item occupying r.
func NewNote(text string, r geom.Rect) Item {
	return Item{
		ID:           NewID(),
		ResourceID:   NoteURNPrefix + uuid.NewString(),
		ResourceType: string(KindNote),
		X:            r.X,
		Y:            r.Y,
		W:            r.W,
		H:            r.H,
		Opacity:      1,
		Payload:      NoteItem{Text: text},
	}
}

// NewResource creates an item for a resolved resource.
func NewResource(resourceID, resourceType, label, preview string, r geom.Rect) Item {
	p := ResourceItem{Label: label, Preview: preview}
	if preview != "" {
		p.Previews = []string{preview}
	}
	return Item{
		ID:           NewID(),
		ResourceID:   resourceID,
		ResourceType: resourceType,
		X:            r.X,
		Y:            r.Y,
		W:            r.W,
		H:            r.H,
		Opacity:      1,
		Payload:      p,
	}
}

// NewComposite creates an item holding composited layers.
func NewComposite(resourceID, label string, layers json.RawMessage, r geom.Rect) Item {
	return Item{
		ID:           NewID(),
		ResourceID:   resourceID,
		ResourceType: string(KindComposite),
		X:            r.X,
		Y:            r.Y,
		W:            r.W,
		H:            r.H,
		Opacity:      1,
		Payload:      CompositeItem{Label: label, Layers: bytes.Clone(layers)},
	}
}

// Rect returns the item's bounding box.
func (it Item) Rect() geom.Rect { return geom.Rect{X: it.X, Y: it.Y, W: it.W, H: it.H} }

// Kind returns the payload tag. Items without a payload report KindResource.
func (it Item) Kind() Kind {
	if it.Payload == nil {
		return KindResource
	}
	return it.Payload.Kind()
}

// Label returns the text shown for the item: the note text, the resource
// label or, when neither is set, the resource id.
func (it Item) Label() string {
	var l string
	switch p := it.Payload.(type) {
	case NoteItem:
		l = p.Text
	case ResourceItem:
		l = p.Label
	case CompositeItem:
		l = p.Label
	}
	if l == "" {
		return it.ResourceID
	}
	return l
}

// Text returns the note text, or "" for non-note items.
func (it Item) Text() string {
	if n, ok := it.Payload.(NoteItem); ok {
		return n.Text
	}
	return ""
}

// Preview returns the primary preview reference, if any.
func (it Item) Preview() string {
	if r, ok := it.Payload.(ResourceItem); ok {
		if r.Preview != "" {
			return r.Preview
		}
		if len(r.Previews) > 0 {
			return r.Previews[0]
		}
	}
	return ""
}

// IsNote reports whether the item is a note.
func (it Item) IsNote() bool { return it.Kind() == KindNote }

// IsPlaceholder reports whether the item stands in for an unresolved resource.
func (it Item) IsPlaceholder() bool { return strings.HasPrefix(it.ResourceID, PlaceholderURNPrefix) }

// Clone returns a deep copy.
func (it Item) Clone() Item {
	if it.Payload != nil {
		it.Payload = it.Payload.clone()
	}
	return it
}

type itemJSON struct {
	ID           string          `json:"id"`
	Kind         Kind            `json:"kind"`
	ResourceID   string          `json:"resourceId"`
	ResourceType string          `json:"resourceType,omitempty"`
	X            float64         `json:"x"`
	Y            float64         `json:"y"`
	W            float64         `json:"w"`
	H            float64         `json:"h"`
	Opacity      *float64        `json:"opacity,omitempty"`
	Locked       bool            `json:"locked,omitempty"`
	Annotation   string          `json:"annotation,omitempty"`
	Label        string          `json:"label,omitempty"`
	BlobURL      string          `json:"blobUrl,omitempty"`
	BlobURLs     []string        `json:"blobUrls,omitempty"`
	Layers       json.RawMessage `json:"layers,omitempty"`
}

// MarshalJSON encodes the item with a "kind" discriminator for the payload.
func (it Item) MarshalJSON() ([]byte, error) {
	op := it.Opacity
	j := itemJSON{
		ID:           it.ID,
		Kind:         it.Kind(),
		ResourceID:   it.ResourceID,
		ResourceType: it.ResourceType,
		X:            it.X,
		Y:            it.Y,
		W:            it.W,
		H:            it.H,
		Opacity:      &op,
		Locked:       it.Locked,
	}
	switch p := it.Payload.(type) {
	case NoteItem:
		j.Annotation = p.Text
	case ResourceItem:
		j.Label, j.BlobURL, j.BlobURLs = p.Label, p.Preview, p.Previews
	case CompositeItem:
		j.Label, j.Layers = p.Label, p.Layers
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes an item written by MarshalJSON. A missing kind is
// inferred from the fields present; a missing opacity defaults to 1.
func (it *Item) UnmarshalJSON(data []byte) error {
	var j itemJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	kind := j.Kind
	if kind == "" {
		switch {
		case len(j.Layers) > 0:
			kind = KindComposite
		case j.Annotation != "" || strings.HasPrefix(j.ResourceID, NoteURNPrefix):
			kind = KindNote
		default:
			kind = KindResource
		}
	}
	*it = Item{
		ID:           j.ID,
		ResourceID:   j.ResourceID,
		ResourceType: j.ResourceType,
		X:            j.X,
		Y:            j.Y,
		W:            j.W,
		H:            j.H,
		Opacity:      1,
		Locked:       j.Locked,
	}
	if j.Opacity != nil {
		it.Opacity = *j.Opacity
	}
	switch kind {
	case KindNote:
		it.Payload = NoteItem{Text: j.Annotation}
	case KindResource:
		it.Payload = ResourceItem{Label: j.Label, Preview: j.BlobURL, Previews: j.BlobURLs}
	case KindComposite:
		it.Payload = CompositeItem{Label: j.Label, Layers: j.Layers}
	default:
		return fmt.Errorf("unknown item kind %q", kind)
	}
	return nil
}
