package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
)

// ReadJSON decodes a board from r and sanitizes it. A missing version is
// read as version 1. ReadJSON does not close r.
func ReadJSON(r io.Reader) (board.State, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return board.State{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode board")
	}
	if doc.Version > Version {
		return board.State{}, errors.New(errors.ErrCodeUnsupported, "board format version %d is newer than %d", doc.Version, Version)
	}
	return board.State{Items: doc.Items, Connections: doc.Connections}.Sanitize(), nil
}

// ImportJSON reads a board from the JSON file at path.
func ImportJSON(path string) (board.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return board.State{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	s, err := ReadJSON(f)
	if err != nil {
		return board.State{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
