package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/history"
	"github.com/matzehuels/pinboard/pkg/resolve"
)

const manifest = "https://example.org/iiif/letters/manifest"

func newBoard() *Board {
	r := resolve.NewStatic(resolve.Descriptor{ID: manifest, Type: "Manifest", Label: "Letters", Preview: "https://example.org/thumb.jpg"})
	return New(history.NewStore(board.State{}, 0), r, Options{})
}

func TestAddNotePlacement(t *testing.T) {
	b := newBoard()
	first := b.AddNote("first", nil)
	assert.Equal(t, geom.R(0, 0, 160, 96), first.Rect())

	second := b.AddNote("second", nil)
	assert.Equal(t, 0.0, second.X)
	assert.Equal(t, 96+board.DefaultTemplateGap, second.Y)

	at := geom.Pt(500, 40)
	third := b.AddNote("third", &at)
	assert.Equal(t, geom.R(500, 40, 160, 96), third.Rect())
	assert.Len(t, b.State().Items, 3)
}

func TestAddResource(t *testing.T) {
	b := newBoard()
	ctx := context.Background()

	it, err := b.AddResource(ctx, manifest, nil)
	require.NoError(t, err)
	assert.Equal(t, "Letters", it.Label())
	assert.Equal(t, manifest, it.ResourceID)

	ph, err := b.AddResource(ctx, "https://example.org/unknown", nil)
	require.NoError(t, err)
	assert.True(t, ph.IsPlaceholder())

	_, err = b.AddResource(ctx, "not a url", nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.Len(t, b.State().Items, 2)
}

func TestMoveAndRemove(t *testing.T) {
	b := newBoard()
	it := b.AddNote("n", nil)

	moved, err := b.MoveItem(it.ID, 100, 200)
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(100, 200), geom.Pt(moved.X, moved.Y))

	_, err = b.MoveItem("ghost", 1, 1)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	b.Store().Apply("lock", func(s board.State) board.State { return s.SetLocked(it.ID, true) })
	_, err = b.MoveItem(it.ID, 0, 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	require.NoError(t, b.RemoveItem(it.ID))
	assert.Empty(t, b.State().Items)
	assert.True(t, errors.Is(b.RemoveItem(it.ID), errors.ErrCodeNotFound))

	assert.True(t, b.Undo())
	assert.Len(t, b.State().Items, 1)
	assert.True(t, b.Redo())
	assert.Empty(t, b.State().Items)
}

func TestMoveRespectsConcurrentLock(t *testing.T) {
	b := newBoard()
	it := b.AddNote("n", nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			locked := i%2 == 0
			b.Store().Apply("lock", func(s board.State) board.State { return s.SetLocked(it.ID, locked) })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 1; i <= 40; i++ {
			moved, err := b.MoveItem(it.ID, float64(i), 0)
			if err == nil {
				assert.False(t, moved.Locked)
			} else {
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
			}
		}
	}()
	wg.Wait()

	// No history step moves an item that was locked before it.
	next := b.State()
	for b.Undo() {
		prev := b.State()
		p, _ := prev.Item(it.ID)
		n, _ := next.Item(it.ID)
		if p.Locked {
			assert.Equal(t, p.X, n.X)
		}
		next = prev
	}
}

func TestConnect(t *testing.T) {
	b := newBoard()
	left := geom.Pt(0, 0)
	right := geom.Pt(400, 0)
	a := b.AddNote("a", &left)
	c := b.AddNote("c", &right)

	conn, err := b.Connect(ConnectRequest{FromID: a.ID, ToID: c.ID, Label: "cites"})
	require.NoError(t, err)
	assert.Equal(t, board.Right, conn.FromAnchor)
	assert.Equal(t, board.Left, conn.ToAnchor)
	assert.Equal(t, "cites", conn.Label)
	assert.NotEmpty(t, conn.ID)

	_, err = b.Connect(ConnectRequest{FromID: a.ID, ToID: c.ID})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "duplicate: %v", err)

	_, err = b.Connect(ConnectRequest{FromID: a.ID, ToID: a.ID})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "self loop: %v", err)

	_, err = b.Connect(ConnectRequest{FromID: a.ID, ToID: "ghost"})
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "dangling: %v", err)

	_, err = b.Connect(ConnectRequest{FromID: a.ID, ToID: c.ID, FromAnchor: board.Bottom, ToAnchor: board.Top, Style: board.Elbow})
	require.NoError(t, err)
	assert.Len(t, b.State().Connections, 2)

	require.NoError(t, b.RemoveConnection(conn.ID))
	assert.True(t, errors.Is(b.RemoveConnection(conn.ID), errors.ErrCodeNotFound))
}

func TestArrange(t *testing.T) {
	b := newBoard()
	for i := 0; i < 4; i++ {
		b.AddNote("n", nil)
	}
	require.NoError(t, b.Arrange(board.TemplateSequence, nil, geom.Pt(0, 0)))
	items := b.State().Items
	for i := 1; i < len(items); i++ {
		assert.Greater(t, items[i].X, items[i-1].X)
		assert.Equal(t, items[0].Y, items[i].Y)
	}
	assert.True(t, errors.Is(b.Arrange("spiral", nil, geom.Pt(0, 0)), errors.ErrCodeInvalidInput))
}

func TestExportImport(t *testing.T) {
	b := newBoard()
	right := geom.Pt(400, 0)
	a := b.AddNote("a", nil)
	c := b.AddNote("c", &right)
	_, err := b.Connect(ConnectRequest{FromID: a.ID, ToID: c.ID})
	require.NoError(t, err)

	canvas, err := b.Export()
	require.NoError(t, err)
	other := newBoard()
	report := other.Import(canvas)
	assert.Empty(t, report.Skipped)
	assert.Len(t, other.State().Items, 2)
	assert.Len(t, other.State().Connections, 1)
	assert.False(t, other.Store().CanUndo())
}
