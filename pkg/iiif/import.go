package iiif

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/observability"
	"github.com/matzehuels/pinboard/pkg/route"
)

// MatchTolerance is the largest distance between a linking target point and
// an item anchor for the two to be matched when no item id is given.
const MatchTolerance = 24.0

// Report summarizes an import.
type Report struct {
	Items       int       `json:"items"`
	Connections int       `json:"connections"`
	Skipped     []Skipped `json:"skipped,omitempty"`
}

// Skipped is an entry Import could not use.
type Skipped struct {
	ID         string
	Motivation string
	Err        error
}

func (s Skipped) String() string {
	return fmt.Sprintf("%s %s: %v", s.Motivation, s.ID, s.Err)
}

// MarshalJSON writes the error as its code and message.
func (s Skipped) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         string      `json:"id"`
		Motivation string      `json:"motivation"`
		Code       errors.Code `json:"code,omitempty"`
		Message    string      `json:"message"`
	}{s.ID, s.Motivation, errors.GetCode(s.Err), errors.UserMessage(s.Err)})
}

func (r *Report) skip(a Annotation, err error) {
	r.Skipped = append(r.Skipped, Skipped{ID: a.ID, Motivation: a.Motivation, Err: err})
}

// Import builds a board from c. Painting annotations become items and
// linking annotations become connections; anything else, and any entry that
// fails to parse or resolve, is recorded in the report and skipped. Linking
// targets without item ids are matched against anchors at
// opts.AnchorOffset.
func Import(c Canvas, opts Options) (board.State, Report) {
	start := time.Now()
	opts = opts.withDefaults()
	var rep Report
	s := board.State{Items: []board.Item{}, Connections: []board.Connection{}}

	rep.Skipped = append(rep.Skipped, c.malformed...)
	var links []Annotation
	for _, page := range append(append([]AnnotationPage{}, c.Items...), c.Annotations...) {
		rep.Skipped = append(rep.Skipped, page.malformed...)
		for _, a := range page.Items {
			switch a.Motivation {
			case MotivationPainting:
				it, err := importItem(c.ID, a)
				if err == nil {
					s, err = s.TryAddItem(it)
				}
				if err != nil {
					rep.skip(a, err)
					continue
				}
			case MotivationLinking:
				links = append(links, a)
			default:
				rep.skip(a, errors.New(errors.ErrCodeUnsupported, "motivation %q", a.Motivation))
			}
		}
	}

	// Item positions are final now, so the index and anchors are built once.
	m := newMatcher(s, opts.AnchorOffset)
	for _, a := range links {
		conn, err := m.connection(c.ID, a)
		if err == nil {
			s, err = s.TryAddConnection(conn)
		}
		if err != nil {
			rep.skip(a, err)
		}
	}

	rep.Items = len(s.Items)
	rep.Connections = len(s.Connections)
	observability.Board().OnImport(rep.Items, rep.Connections, len(rep.Skipped), time.Since(start))
	return s, rep
}

func importItem(canvasID string, a Annotation) (board.Item, error) {
	source, r, err := ParseSelector(string(a.Target))
	if err != nil {
		return board.Item{}, err
	}
	if canvasID != "" && source != "" && source != canvasID {
		return board.Item{}, errors.New(errors.ErrCodeUnresolvedReference, "targets canvas %q", source)
	}
	if !r.Valid() {
		return board.Item{}, errors.New(errors.ErrCodeInvalidSelector, "painting region %q has no area", a.Target)
	}

	ref := a.Board
	if ref == nil {
		ref = &ItemRef{}
	}
	it := board.Item{
		ID:           ref.ItemID,
		ResourceID:   ref.ResourceID,
		ResourceType: ref.ResourceType,
		X:            r.X,
		Y:            r.Y,
		W:            r.W,
		H:            r.H,
		Opacity:      1,
		Locked:       ref.Locked,
	}
	if it.ID == "" {
		it.ID = a.ID
	}
	if it.ID == "" {
		return board.Item{}, errors.New(errors.ErrCodeInvalidInput, "annotation has no id")
	}
	if ref.Opacity != nil {
		it.Opacity = min(max(*ref.Opacity, 0), 1)
	}

	kind := ref.Kind
	if kind == "" {
		kind = board.KindResource
		if a.Body.Type == TypeTextualBody && a.Board == nil {
			kind = board.KindNote
		}
	}

	switch kind {
	case board.KindNote:
		it.Payload = board.NoteItem{Text: a.Body.Value}
		if it.ResourceID == "" {
			it.ResourceID = board.NoteURNPrefix + board.NewID()
		}
		if it.ResourceType == "" {
			it.ResourceType = string(board.KindNote)
		}
	case board.KindComposite:
		it.Payload = board.CompositeItem{Label: a.Body.Value, Layers: ref.Layers}
	case board.KindResource:
		p := board.ResourceItem{Label: a.Body.Value, Previews: ref.Previews}
		if a.Body.Type == TypeImage {
			p.Label = a.Body.Label.String()
			p.Preview = a.Body.ID
			if len(p.Previews) == 0 && p.Preview != "" {
				p.Previews = []string{p.Preview}
			}
		}
		it.Payload = p
		if it.ResourceID == "" {
			it.ResourceID = a.Body.ID
		}
		if it.ResourceID == "" {
			it.ResourceID = a.ID
		}
		if it.ResourceType == "" {
			it.ResourceType = a.Body.Type
		}
	default:
		return board.Item{}, errors.New(errors.ErrCodeInvalidPayload, "unknown item kind %q", kind)
	}
	return it, nil
}

// matcher resolves linking endpoints against the imported items.
type matcher struct {
	s      board.State
	idx    map[string]int
	offset float64
}

func newMatcher(s board.State, offset float64) *matcher {
	return &matcher{s: s, idx: s.Index(), offset: offset}
}

func (m *matcher) connection(canvasID string, a Annotation) (board.Connection, error) {
	if a.Body.Value == "" {
		return board.Connection{}, errors.New(errors.ErrCodeInvalidPayload, "linking body is empty")
	}
	var lb LinkBody
	if err := json.Unmarshal([]byte(a.Body.Value), &lb); err != nil {
		return board.Connection{}, errors.Wrap(errors.ErrCodeInvalidPayload, err, "linking body")
	}

	fromID := lb.FromID
	if _, ok := m.idx[fromID]; !ok {
		source, r, err := ParseSelector(string(a.Target))
		if err != nil {
			return board.Connection{}, err
		}
		if canvasID != "" && source != "" && source != canvasID {
			return board.Connection{}, errors.New(errors.ErrCodeUnresolvedReference, "targets canvas %q", source)
		}
		fromID, lb.FromAnchor = m.nearest(r.Min(), lb.FromAnchor, "")
	}
	toID := lb.ToID
	if _, ok := m.idx[toID]; !ok {
		toID = ""
		if lb.ToPoint != nil {
			toID, lb.ToAnchor = m.nearest(*lb.ToPoint, lb.ToAnchor, fromID)
		}
	}
	if fromID == "" || toID == "" {
		return board.Connection{}, errors.New(errors.ErrCodeUnresolvedReference, "connection %s has no matching endpoint", lb.ID)
	}

	return board.Connection{
		ID:          lb.ID,
		FromID:      fromID,
		ToID:        toID,
		FromAnchor:  lb.FromAnchor,
		ToAnchor:    lb.ToAnchor,
		Style:       lb.Style,
		Direction:   lb.Direction,
		Waypoints:   lb.Waypoints,
		Label:       lb.Label,
		Color:       lb.Color,
		Purpose:     lb.Purpose,
		DisplayMode: lb.DisplayMode,
	}, nil
}

// nearest finds the item whose anchor lies closest to p, within
// MatchTolerance. Only the given side is considered when it is valid.
func (m *matcher) nearest(p geom.Point, side board.Anchor, exclude string) (string, board.Anchor) {
	sides := board.Anchors
	if side.Valid() {
		sides = []board.Anchor{side}
	}
	best, bestSide, bestDist := "", side, math.Inf(1)
	for _, it := range m.s.Items {
		if it.ID == exclude {
			continue
		}
		for _, sd := range sides {
			d := geom.Dist(p, route.AnchorPoint(it.Rect(), sd, m.offset))
			if d <= MatchTolerance && d < bestDist {
				best, bestSide, bestDist = it.ID, sd, d
			}
		}
	}
	return best, bestSide
}
