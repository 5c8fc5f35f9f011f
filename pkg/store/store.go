package store

import (
	"bytes"
	"context"

	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/iiif"
)

// Store saves and loads named fragments.
type Store interface {
	Save(ctx context.Context, name string, data []byte) error
	Load(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// SaveCanvas encodes c and saves it under name.
func SaveCanvas(ctx context.Context, st Store, name string, c iiif.Canvas) error {
	var buf bytes.Buffer
	if err := iiif.WriteJSON(c, &buf); err != nil {
		return err
	}
	return st.Save(ctx, name, buf.Bytes())
}

// LoadCanvas loads and decodes the fragment saved under name.
func LoadCanvas(ctx context.Context, st Store, name string) (iiif.Canvas, error) {
	data, err := st.Load(ctx, name)
	if err != nil {
		return iiif.Canvas{}, err
	}
	return iiif.ReadJSON(bytes.NewReader(data))
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "board %q not found", name)
}
