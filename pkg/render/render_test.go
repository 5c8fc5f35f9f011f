package render

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
)

func sample() (board.State, board.Item, board.Item, board.Connection) {
	a := board.NewNote("Letters & <drafts>", geom.R(0, 0, 100, 80))
	b := board.NewResource("https://example.org/iiif/1/manifest", "Manifest", "Map of Leiden", "https://example.org/thumb.jpg?w=200&h=100", geom.R(300, 0, 120, 90))
	c := board.NewConnection(a.ID, board.Right, b.ID, board.Left)
	c.Label = "cites"
	c.Purpose = "evidence"
	c.Color = "#aa0000"
	s := board.State{}.AddItem(a).AddItem(b).AddConnection(c)
	return s, a, b, s.Connections[0]
}

func TestRenderSVG(t *testing.T) {
	s, a, b, c := sample()
	out := string(RenderSVG(s))

	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"), "missing xml header")
	assert.Contains(t, out, `id="item-`+a.ID+`"`)
	assert.Contains(t, out, `id="item-`+b.ID+`"`)
	assert.Contains(t, out, `id="conn-`+c.ID+`"`)
	assert.Contains(t, out, `marker-end="url(#arrow)"`)
	assert.Contains(t, out, "stroke:#aa0000")
	assert.Contains(t, out, "cites (evidence)")
	assert.Contains(t, out, "Letters &amp; &lt;drafts&gt;")
	assert.NotContains(t, out, "<image", "images are opt-in")
	assert.Contains(t, out, `viewBox="-24 -24 468 138"`)
}

func TestRenderSVGOptions(t *testing.T) {
	s, a, _, _ := sample()

	out := string(RenderSVG(s, WithoutLabels()))
	assert.NotContains(t, out, "cites")

	out = string(RenderSVG(s, WithImages()))
	assert.Contains(t, out, "thumb.jpg?w=200&amp;h=100")

	out = string(RenderSVG(s, WithHighlight(a.ID), WithMargin(0)))
	assert.Contains(t, out, "stroke-width:3")
	assert.Contains(t, out, `viewBox="0 0 420 90"`)
}

func TestRenderSVGStyles(t *testing.T) {
	ph := board.NewResource(board.PlaceholderURNPrefix+"x", "", "missing", "", geom.R(0, 0, 50, 50))
	ph.Opacity = 0.5
	ph.Locked = true
	out := string(RenderSVG(board.State{}.AddItem(ph)))
	assert.Contains(t, out, "stroke-dasharray")
	assert.Contains(t, out, `opacity="0.5"`)
}

func TestRenderSVGEmpty(t *testing.T) {
	out := string(RenderSVG(board.State{}))
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "</svg>")
}

func TestRenderPNG(t *testing.T) {
	s := board.State{}.AddItem(board.NewNote("a", geom.R(0, 0, 100, 80)))
	data, err := RenderPNG(s)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 296, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())

	data, err = RenderPNG(s, WithScale(1), WithMargin(0))
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestRenderPNGWithConnections(t *testing.T) {
	s, _, _, _ := sample()
	data, err := RenderPNG(s, WithScale(1))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestToDOT(t *testing.T) {
	s, a, b, _ := sample()
	s.Connections = append(s.Connections, board.NewConnection(a.ID, board.Bottom, "ghost", board.Top))

	dot := ToDOT(s, DOTOptions{})
	assert.True(t, strings.HasPrefix(dot, "digraph board {"))
	assert.Contains(t, dot, `"`+a.ID+`" -> "`+b.ID+`"`)
	assert.NotContains(t, dot, "ghost")
	assert.Contains(t, dot, `label="Map of Leiden"`)
	assert.Contains(t, dot, `label="cites (evidence)"`)
	assert.NotContains(t, dot, "pos=")

	dot = ToDOT(s, DOTOptions{Detailed: true, Pinned: true})
	assert.Contains(t, dot, "layout=neato;")
	assert.Contains(t, dot, `pos="37.50,-30.00!"`)
	assert.Contains(t, dot, `resource: https://example.org/iiif/1/manifest`)
}

func TestRenderDOTSVG(t *testing.T) {
	s, _, _, _ := sample()
	out, err := RenderDOTSVG(context.Background(), ToDOT(s, DOTOptions{}))
	require.NoError(t, err)
	assert.Contains(t, string(out), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`, out)
	assert.Equal(t, "<svg/>", string(normalizeViewBox([]byte("<svg/>"))))
}

func TestConnectionText(t *testing.T) {
	c := board.Connection{Label: "cites", Purpose: "evidence"}
	tests := []struct {
		mode board.DisplayMode
		want string
	}{
		{board.DisplayFull, "cites (evidence)"},
		{board.DisplayPurpose, "evidence"},
		{board.DisplayNone, ""},
	}
	for _, tt := range tests {
		c.DisplayMode = tt.mode
		assert.Equal(t, tt.want, connectionText(c), "mode %v", tt.mode)
	}
}

func TestFitAndColor(t *testing.T) {
	assert.Equal(t, "short", fit("short", 200))
	got := fit("a rather long label that will not fit", 60)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Less(t, len([]rune(got)), 10)

	assert.Equal(t, "#abc", strokeColor("#abc"))
	assert.Equal(t, lineColor, strokeColor("red"))
	assert.Equal(t, lineColor, strokeColor(`#fff" onload="x`))
}
