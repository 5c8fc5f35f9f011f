package interact

import (
	"context"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/resolve"
)

// Drop places the resource with the given id at a screen position and
// selects it. Ids the resolver cannot handle become placeholder items, so a
// drop always adds an item. Drop returns the new item id.
func (m *Machine) Drop(ctx context.Context, resourceID string, screen geom.Point) string {
	d, _ := resolve.WithFallback(m.Resolver).Resolve(ctx, resourceID)
	p := m.Viewport.Place(screen)
	it := board.NewResource(d.ID, d.Type, d.Label, d.Preview,
		geom.R(p.X, p.Y, m.Config.ResourceSize.X, m.Config.ResourceSize.Y))
	m.Store.Apply("drop resource", func(s board.State) board.State { return s.AddItem(it) })
	m.sel = Selection{ItemID: it.ID}
	return it.ID
}
