package board

import (
	"testing"

	"github.com/matzehuels/pinboard/pkg/geom"
)

func TestApplyTemplate(t *testing.T) {
	var s State
	var ids []string
	sizes := []geom.Rect{
		geom.R(500, 500, 100, 50),
		geom.R(10, 10, 40, 100),
		geom.R(0, 900, 80, 80),
		geom.R(77, 3, 60, 30),
		geom.R(300, 300, 20, 40),
	}
	for i, r := range sizes {
		it := NewNote(string(rune('a'+i)), r)
		ids = append(ids, it.ID)
		s = s.AddItem(it)
	}
	origin := geom.Pt(0, 0)
	opts := TemplateOptions{Gap: 10, ComparisonHeight: 200}

	t.Run("Grid", func(t *testing.T) {
		got := s.ApplyTemplate(ids, TemplateGrid, origin, opts)
		checkInvariants(t, got)
		// 5 items -> 3 columns, cell 110x110.
		wantPos := []geom.Point{{X: 0, Y: 0}, {X: 110, Y: 0}, {X: 220, Y: 0}, {X: 0, Y: 110}, {X: 110, Y: 110}}
		for i, id := range ids {
			it, _ := got.Item(id)
			if it.Rect().Min() != wantPos[i] {
				t.Errorf("item %d at %v, want %v", i, it.Rect().Min(), wantPos[i])
			}
		}
	})

	t.Run("Sequence", func(t *testing.T) {
		got := s.ApplyTemplate(ids[:3], TemplateSequence, origin, opts)
		checkInvariants(t, got)
		a, _ := got.Item(ids[0])
		b, _ := got.Item(ids[1])
		c, _ := got.Item(ids[2])
		if a.X != 0 || b.X != 110 || c.X != 160 {
			t.Errorf("x = %v %v %v, want 0 110 160", a.X, b.X, c.X)
		}
		if a.Y != 25 || b.Y != 0 || c.Y != 10 {
			t.Errorf("y = %v %v %v, want 25 0 10", a.Y, b.Y, c.Y)
		}
		untouched, _ := got.Item(ids[3])
		if untouched.Rect() != sizes[3] {
			t.Error("item outside id list moved")
		}
	})

	t.Run("Comparison", func(t *testing.T) {
		got := s.ApplyTemplate(ids[:4], TemplateComparison, origin, opts)
		checkInvariants(t, got)
		for _, id := range ids[:4] {
			it, _ := got.Item(id)
			if it.H != 200 {
				t.Errorf("item height = %v, want 200", it.H)
			}
		}
		// Left column is as wide as its widest scaled item (100x50 -> 400x200).
		right, _ := got.Item(ids[1])
		if right.X != 410 {
			t.Errorf("right column x = %v, want 410", right.X)
		}
		second, _ := got.Item(ids[2])
		if second.Y != 210 {
			t.Errorf("second row y = %v, want 210", second.Y)
		}
	})

	t.Run("EmptyMeansAll", func(t *testing.T) {
		got := s.ApplyTemplate(nil, TemplateSequence, origin, opts)
		for i := range got.Items {
			if got.Items[i].Rect() == sizes[i] {
				t.Errorf("item %d not arranged", i)
			}
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if got := s.ApplyTemplate(ids, Template("spiral"), origin, opts); !Equal(got, s) {
			t.Error("unknown template changed state")
		}
	})
}
