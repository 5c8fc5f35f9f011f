package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/pinboard/pkg/board"
)

// Version is the format version written by WriteJSON.
const Version = 1

type document struct {
	Version     int                `json:"version"`
	Items       []board.Item       `json:"items"`
	Connections []board.Connection `json:"connections"`
}

// WriteJSON encodes s as JSON and writes it to w.
func WriteJSON(s board.State, w io.Writer) error {
	doc := document{Version: Version, Items: s.Items, Connections: s.Connections}
	if doc.Items == nil {
		doc.Items = []board.Item{}
	}
	if doc.Connections == nil {
		doc.Connections = []board.Connection{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes s to a JSON file at path, replacing it atomically.
func ExportJSON(s board.State, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".board-*.json")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if err := WriteJSON(s, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
