// Package service exposes the board operations shared by the HTTP and MCP
// servers. A Board wraps one history.Store; every mutation goes through
// Apply so it is undoable, and lookups report coded errors that the
// adapters turn into status codes or tool errors.
package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/history"
	"github.com/matzehuels/pinboard/pkg/iiif"
	"github.com/matzehuels/pinboard/pkg/interact"
	"github.com/matzehuels/pinboard/pkg/resolve"
	"github.com/matzehuels/pinboard/pkg/route"
)

// Options configures a Board.
type Options struct {
	Interaction interact.Config
	Export      iiif.Options
	Templates   board.TemplateOptions
	// ResolveTimeout bounds a single resource lookup.
	ResolveTimeout time.Duration
}

// Board is a concurrency-safe facade over one board's live state. Every
// check-then-change operation runs inside a single history.Store update, so
// the store's lock is the only one needed.
type Board struct {
	store    *history.Store
	resolver resolve.Resolver
	opts     Options
}

// New returns a Board over store. A nil resolver turns every added
// resource into a placeholder.
func New(store *history.Store, r resolve.Resolver, opts Options) *Board {
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = 10 * time.Second
	}
	opts.Interaction = interactDefaults(opts.Interaction)
	if opts.Export.AnchorOffset <= 0 {
		opts.Export.AnchorOffset = opts.Interaction.AnchorOffset
	}
	return &Board{store: store, resolver: resolve.WithFallback(r), opts: opts}
}

func interactDefaults(c interact.Config) interact.Config {
	d := interact.DefaultConfig()
	if c.NoteSize.X <= 0 || c.NoteSize.Y <= 0 {
		c.NoteSize = d.NoteSize
	}
	if c.ResourceSize.X <= 0 || c.ResourceSize.Y <= 0 {
		c.ResourceSize = d.ResourceSize
	}
	if c.AnchorOffset <= 0 {
		c.AnchorOffset = d.AnchorOffset
	}
	return c
}

// Store returns the underlying store.
func (b *Board) Store() *history.Store { return b.store }

// State returns a snapshot of the board.
func (b *Board) State() board.State { return b.store.State() }

// Replace swaps the whole board and clears history.
func (b *Board) Replace(s board.State) { b.store.Replace(s.Sanitize()) }

// Undo steps back one mutation.
func (b *Board) Undo() bool { return b.store.Undo() }

// Redo re-applies one undone mutation.
func (b *Board) Redo() bool { return b.store.Redo() }

// nextPosition places new items in a row below the existing content.
func nextPosition(s board.State, gap float64) geom.Point {
	bounds := s.Bounds()
	if !bounds.Valid() {
		return geom.Pt(0, 0)
	}
	return geom.Pt(bounds.X, bounds.Y+bounds.H+gap)
}

func (b *Board) rectAt(s board.State, at *geom.Point, size geom.Point) geom.Rect {
	p := nextPosition(s, board.DefaultTemplateGap)
	if at != nil {
		p = *at
	}
	return geom.R(p.X, p.Y, size.X, size.Y)
}

// AddNote adds a note. A nil position places it below the current content.
func (b *Board) AddNote(text string, at *geom.Point) board.Item {
	var it board.Item
	b.store.Apply("add note", func(s board.State) board.State {
		it = board.NewNote(text, b.rectAt(s, at, b.opts.Interaction.NoteSize))
		return s.AddItem(it)
	})
	return it
}

// AddResource resolves id and adds the resource. Ids that fail to resolve
// become placeholders; malformed ids are rejected.
func (b *Board) AddResource(ctx context.Context, id string, at *geom.Point) (board.Item, error) {
	if err := errors.ValidateResourceID(id); err != nil {
		return board.Item{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, b.opts.ResolveTimeout)
	defer cancel()
	d, _ := b.resolver.Resolve(ctx, id)

	var it board.Item
	b.store.Apply("add resource", func(s board.State) board.State {
		it = board.NewResource(d.ID, d.Type, d.Label, d.Preview, b.rectAt(s, at, b.opts.Interaction.ResourceSize))
		return s.AddItem(it)
	})
	return it, nil
}

// Item returns the item with the given id.
func (b *Board) Item(id string) (board.Item, error) {
	it, ok := b.store.State().Item(id)
	if !ok {
		return board.Item{}, errors.New(errors.ErrCodeNotFound, "item %q not found", id)
	}
	return it, nil
}

// MoveItem moves an item's top-left corner to (x, y). The lookup, the lock
// check and the move happen in one store update.
func (b *Board) MoveItem(id string, x, y float64) (board.Item, error) {
	var (
		it  board.Item
		err error
	)
	b.store.Apply("move item", func(s board.State) board.State {
		cur, ok := s.Item(id)
		switch {
		case !ok:
			err = errors.New(errors.ErrCodeNotFound, "item %q not found", id)
			return s
		case cur.Locked:
			it, err = cur, errors.New(errors.ErrCodeInvalidInput, "item %q is locked", id)
			return s
		}
		s = s.MoveItem(id, x, y)
		it, _ = s.Item(id)
		return s
	})
	return it, err
}

// RemoveItem deletes an item and its connections.
func (b *Board) RemoveItem(id string) error {
	var err error
	b.store.Apply("remove item", func(s board.State) board.State {
		if _, ok := s.Item(id); !ok {
			err = errors.New(errors.ErrCodeNotFound, "item %q not found", id)
			return s
		}
		return s.RemoveItem(id)
	})
	return err
}

// ConnectRequest describes a new connection. Empty anchors are chosen from
// the relative position of the two items.
type ConnectRequest struct {
	FromID     string       `json:"fromId"`
	ToID       string       `json:"toId"`
	FromAnchor board.Anchor `json:"fromAnchor,omitempty"`
	ToAnchor   board.Anchor `json:"toAnchor,omitempty"`
	Style      board.Style  `json:"style,omitempty"`
	Label      string       `json:"label,omitempty"`
	Purpose    string       `json:"purpose,omitempty"`
	Color      string       `json:"color,omitempty"`
}

// Connect adds a connection.
func (b *Board) Connect(req ConnectRequest) (board.Connection, error) {
	var (
		c   board.Connection
		err error
	)
	b.store.Apply("connect", func(s board.State) board.State {
		from, okFrom := s.Item(req.FromID)
		to, okTo := s.Item(req.ToID)
		if !okFrom || !okTo {
			err = board.ErrUnknownItem
			return s
		}
		fa, ta := route.BestAnchors(from.Rect(), to.Rect())
		if req.FromAnchor != "" {
			fa = req.FromAnchor
		}
		if req.ToAnchor != "" {
			ta = req.ToAnchor
		}
		c = board.NewConnection(req.FromID, fa, req.ToID, ta)
		if req.Style != "" {
			c.Style = req.Style
		}
		c.Label, c.Purpose, c.Color = req.Label, req.Purpose, req.Color
		var out board.State
		out, err = s.TryAddConnection(c)
		if err == nil {
			c = out.Connections[len(out.Connections)-1]
		}
		return out
	})
	switch {
	case stderrors.Is(err, board.ErrUnknownItem):
		return c, errors.Wrap(errors.ErrCodeNotFound, err, "connect %s -> %s", req.FromID, req.ToID)
	case err != nil:
		return c, errors.Wrap(errors.ErrCodeInvalidInput, err, "connect %s -> %s", req.FromID, req.ToID)
	}
	return c, nil
}

// RemoveConnection deletes a connection.
func (b *Board) RemoveConnection(id string) error {
	var err error
	b.store.Apply("remove connection", func(s board.State) board.State {
		if _, ok := s.Connection(id); !ok {
			err = errors.New(errors.ErrCodeNotFound, "connection %q not found", id)
			return s
		}
		return s.RemoveConnection(id)
	})
	return err
}

// Arrange applies a layout template to ids (all items when empty).
func (b *Board) Arrange(t board.Template, ids []string, origin geom.Point) error {
	if !t.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "unknown template %q", t)
	}
	b.store.Apply("arrange "+string(t), func(s board.State) board.State {
		return s.ApplyTemplate(ids, t, origin, b.opts.Templates)
	})
	return nil
}

// Export serializes the board as an interchange canvas.
func (b *Board) Export() (iiif.Canvas, error) {
	return iiif.Export(b.store.State(), b.opts.Export)
}

// Import replaces the board with the contents of c.
func (b *Board) Import(c iiif.Canvas) iiif.Report {
	s, report := iiif.Import(c, b.opts.Export)
	b.store.Replace(s)
	return report
}
