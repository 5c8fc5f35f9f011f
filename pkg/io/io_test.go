package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/geom"
)

func TestRoundTrip(t *testing.T) {
	a := board.NewNote("letter, 1843", geom.R(0, 0, 160, 96))
	b := board.NewResource("https://example.org/m/1", "Manifest", "Ship log", "https://example.org/t.jpg", geom.R(240, 0, 160, 120))
	c := board.NewComposite("urn:x:composite", "Overlay", []byte(`{"layers":[1,2]}`), geom.R(0, 200, 80, 80))
	s := board.State{}.AddItem(a).AddItem(b).AddItem(c)
	conn := board.NewConnection(a.ID, board.Right, b.ID, board.Left)
	conn.Style = board.Curved
	conn.Waypoints = []geom.Point{{X: 200, Y: 40}}
	s = s.AddConnection(conn)

	var buf bytes.Buffer
	if err := WriteJSON(s, &buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !board.Equal(got, s) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, s)
	}
}

func TestReadJSONSanitizes(t *testing.T) {
	in := `{
	  "items": [
	    {"id": "a", "resourceId": "urn:x:1", "x": 0, "y": 0, "w": 0, "h": -5},
	    {"id": "a", "resourceId": "urn:x:2", "x": 10, "y": 10, "w": 10, "h": 10}
	  ],
	  "connections": [
	    {"id": "self", "fromId": "a", "toId": "a"},
	    {"id": "dangling", "fromId": "a", "toId": "missing"}
	  ]
	}`
	s, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Items) != 2 || s.Items[0].ID == s.Items[1].ID {
		t.Errorf("duplicate ids not repaired: %+v", s.Items)
	}
	if s.Items[0].W <= 0 || s.Items[0].H <= 0 {
		t.Errorf("size not clamped: %+v", s.Items[0])
	}
	if len(s.Connections) != 0 {
		t.Errorf("invalid connections kept: %+v", s.Connections)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"malformed", `{"items": [`, errors.ErrCodeInvalidFormat},
		{"future version", `{"version": 99, "items": []}`, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExportImportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	s := board.State{}.AddItem(board.NewNote("x", geom.R(0, 0, 10, 10)))
	if err := ExportJSON(s, path); err != nil {
		t.Fatal(err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 {
		t.Errorf("items = %d", len(got.Items))
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
	if _, err := ImportJSON(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestWriteEmptyBoard(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(board.State{}, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"items": []`) {
		t.Errorf("empty board should write empty arrays: %s", buf.String())
	}
}

func TestExampleBoard(t *testing.T) {
	s, err := ImportJSON(filepath.Join("..", "..", "examples", "letters.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Items) != 3 || len(s.Connections) != 2 {
		t.Fatalf("got %d items, %d connections", len(s.Items), len(s.Connections))
	}
	chart, ok := s.Item("chart")
	if !ok || !chart.Locked || chart.Label() != "Harbour chart" {
		t.Errorf("chart = %+v", chart)
	}
}
