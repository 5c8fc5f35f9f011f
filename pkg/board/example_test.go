package board_test

import (
	"fmt"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
)

func Example() {
	a := board.NewNote("letter, 1843", geom.R(0, 0, 160, 96))
	b := board.NewNote("reply", geom.R(240, 0, 160, 96))

	s := board.State{}.AddItem(a).AddItem(b)
	s = s.AddConnection(board.NewConnection(a.ID, board.Right, b.ID, board.Left))
	s = s.AddConnection(board.NewConnection(a.ID, board.Right, b.ID, board.Top)) // duplicate triple

	fmt.Println("items:", len(s.Items))
	fmt.Println("connections:", len(s.Connections))

	s = s.RemoveItem(b.ID)
	fmt.Println("after remove:", len(s.Connections))
	// Output:
	// items: 2
	// connections: 1
	// after remove: 0
}

func ExampleState_AlignItem() {
	it := board.NewNote("map", geom.R(40, 40, 100, 80))
	s := board.State{}.AddItem(it)

	canvas := geom.R(0, 0, 2400, 1600)
	s = s.AlignItem(it.ID, board.AlignFill, canvas)

	got, _ := s.Item(it.ID)
	fmt.Println(got.X, got.Y, got.W, got.H)
	// Output: 0 0 2400 1600
}
