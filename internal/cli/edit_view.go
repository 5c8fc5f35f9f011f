package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/interact"
	"github.com/matzehuels/pinboard/pkg/route"
)

type cellStyle uint8

const (
	cellPlain cellStyle = iota
	cellLine
	cellNote
	cellResource
	cellPlaceholder
	cellSelected
	cellHandle
	cellPreview
)

var cellStyles = map[cellStyle]lipgloss.Style{
	cellLine:        lipgloss.NewStyle().Foreground(colorGray),
	cellNote:        lipgloss.NewStyle().Foreground(colorYellow),
	cellResource:    lipgloss.NewStyle().Foreground(colorBlue),
	cellPlaceholder: lipgloss.NewStyle().Foreground(colorDim),
	cellSelected:    lipgloss.NewStyle().Bold(true).Foreground(colorCyan),
	cellHandle:      lipgloss.NewStyle().Foreground(colorRed),
	cellPreview:     lipgloss.NewStyle().Foreground(colorGreen),
}

// grid is a character raster of the board view.
type grid struct {
	w, h   int
	runes  [][]rune
	styles [][]cellStyle
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, runes: make([][]rune, h), styles: make([][]cellStyle, h)}
	for y := range g.runes {
		g.runes[y] = []rune(strings.Repeat(" ", w))
		g.styles[y] = make([]cellStyle, w)
	}
	return g
}

func (g *grid) set(x, y int, r rune, st cellStyle) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.runes[y][x] = r
	g.styles[y][x] = st
}

// line draws from a to b with Bresenham's algorithm.
func (g *grid) line(x0, y0, x1, y1 int, r rune, st cellStyle) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		g.set(x0, y0, r, st)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// box draws a filled frame; the interior is cleared so items hide what lies
// beneath them.
func (g *grid) box(x0, y0, x1, y1 int, dashed bool, st cellStyle) {
	h, v := '─', '│'
	if dashed {
		h, v = '┄', '┆'
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r := ' '
			switch {
			case y == y0 && x == x0:
				r = '┌'
			case y == y0 && x == x1:
				r = '┐'
			case y == y1 && x == x0:
				r = '└'
			case y == y1 && x == x1:
				r = '┘'
			case y == y0 || y == y1:
				r = h
			case x == x0 || x == x1:
				r = v
			}
			g.set(x, y, r, st)
		}
	}
}

// text writes s from (x, y), cut to width cells.
func (g *grid) text(x, y, width int, s string, st cellStyle) {
	r := []rune(s)
	if len(r) > width {
		if width <= 0 {
			return
		}
		r = append(r[:width-1], '…')
	}
	for i, c := range r {
		g.set(x+i, y, c, st)
	}
}

func (g *grid) String() string {
	var b strings.Builder
	for y := range g.runes {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= g.w; x++ {
			if x < g.w && g.styles[y][x] == g.styles[y][start] {
				continue
			}
			run := string(g.runes[y][start:x])
			if st, ok := cellStyles[g.styles[y][start]]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			start = x
		}
	}
	return b.String()
}

// =============================================================================
// Board Drawing
// =============================================================================

func toCell(p geom.Point) (int, int) {
	return int(math.Floor(p.X / cellW)), int(math.Floor(p.Y / cellH))
}

// drawBoard rasterizes the machine's board as seen through its viewport:
// connections first, then items in z-order, then the handles of the
// selected connection and the connect preview on top.
func drawBoard(m *interact.Machine, w, h int) *grid {
	g := newGrid(w, h)
	s := m.Store.State()
	sel := m.Selection()
	vp := m.Viewport

	var selected *route.Routed
	for _, rt := range route.All(s, m.Config.AnchorOffset) {
		st := cellLine
		if rt.Conn.ID == sel.ConnID {
			st = cellSelected
			selected = &rt
		}
		drawPath(g, vp.ToScreen, rt.Path.Flatten(), st)
	}

	for _, it := range s.Items {
		drawItem(g, vp.ScreenRect(it.Rect()), it, it.ID == sel.ItemID)
	}

	if selected != nil {
		for _, hd := range route.InsertHandles(selected.Path, len(selected.Conn.Waypoints)) {
			x, y := toCell(vp.ToScreen(hd.Point))
			g.set(x, y, '+', cellHandle)
		}
		for _, wp := range selected.Conn.Waypoints {
			x, y := toCell(vp.ToScreen(wp))
			g.set(x, y, '◆', cellHandle)
		}
	}

	if l, ok := m.PreviewLine(); ok {
		x0, y0 := toCell(vp.ToScreen(l.From))
		x1, y1 := toCell(vp.ToScreen(l.To))
		g.line(x0, y0, x1, y1, '·', cellPreview)
	}
	return g
}

func drawPath(g *grid, toScreen func(geom.Point) geom.Point, pts []geom.Point, st cellStyle) {
	if len(pts) < 2 {
		return
	}
	px, py := toCell(toScreen(pts[0]))
	for _, p := range pts[1:] {
		x, y := toCell(toScreen(p))
		g.line(px, py, x, y, '·', st)
		if x != px || y != py {
			g.set(x, y, arrowRune(x-px, y-py), st)
		}
		px, py = x, y
	}
}

// arrowRune points along the dominant axis of (dx, dy).
func arrowRune(dx, dy int) rune {
	if abs(dx) >= abs(dy) {
		if dx < 0 {
			return '◂'
		}
		return '▸'
	}
	if dy < 0 {
		return '▴'
	}
	return '▾'
}

func drawItem(g *grid, r geom.Rect, it board.Item, selected bool) {
	x0, y0 := toCell(r.Min())
	x1, y1 := toCell(r.Max())
	x1, y1 = max(x1, x0+2), max(y1, y0+2)

	st := cellResource
	switch {
	case selected:
		st = cellSelected
	case it.IsPlaceholder():
		st = cellPlaceholder
	case it.IsNote():
		st = cellNote
	}
	g.box(x0, y0, x1, y1, it.IsPlaceholder(), st)

	inner := x1 - x0 - 1
	label := it.Label()
	if it.IsNote() {
		label = it.Text()
	}
	lines := strings.Split(label, "\n")
	for i, l := range lines {
		if y0+1+i >= y1 {
			break
		}
		g.text(x0+1, y0+1+i, inner, l, st)
	}
	if it.Locked {
		g.set(x1, y0, '■', st)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
