package iiif

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pinboard/pkg/errors"
)

// WriteJSON encodes c as indented JSON.
func WriteJSON(c Canvas, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a canvas from r. A document whose type is set to anything
// other than "Canvas" is rejected. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Canvas, error) {
	var c Canvas
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Canvas{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode canvas")
	}
	if c.Type != "" && c.Type != TypeCanvas {
		return Canvas{}, errors.New(errors.ErrCodeInvalidFormat, "expected a Canvas, got %q", c.Type)
	}
	return c, nil
}

// ExportFile writes c to a JSON file at path.
func ExportFile(c Canvas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(c, f)
}

// ImportFile reads a canvas from the JSON file at path.
func ImportFile(path string) (Canvas, error) {
	f, err := os.Open(path)
	if err != nil {
		return Canvas{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	c, err := ReadJSON(f)
	if err != nil {
		return Canvas{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
