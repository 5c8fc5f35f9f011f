// Package resolve looks up archival resources by identifier.
//
// The board only needs a minimal [Descriptor] for a dropped resource: its
// type, a display label and an optional preview reference. A [Resolver]
// supplies it. Resolution failures never fail a drop: [WithFallback] turns
// any error into a [Placeholder] descriptor.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
)

// PlaceholderType is the resource type of placeholder descriptors.
const PlaceholderType = "Placeholder"

// Descriptor is what the board learns about a resource.
type Descriptor struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Label   string `json:"label"`
	Preview string `json:"preview,omitempty"`
}

// Resolver looks up a resource descriptor by id.
type Resolver interface {
	Resolve(ctx context.Context, id string) (Descriptor, error)
}

// Func adapts a function to Resolver.
type Func func(ctx context.Context, id string) (Descriptor, error)

func (f Func) Resolve(ctx context.Context, id string) (Descriptor, error) { return f(ctx, id) }

// Placeholder returns the generic descriptor used for unresolved ids. The
// original id is kept as the label so the user can still see what was dropped.
func Placeholder(id string) Descriptor {
	label := id
	if label == "" {
		label = "Unresolved resource"
	}
	return Descriptor{
		ID:    board.PlaceholderURNPrefix + board.NewID(),
		Type:  PlaceholderType,
		Label: label,
	}
}

type fallback struct{ r Resolver }

// WithFallback wraps r so that Resolve never fails: any error or a nil r
// yields Placeholder(id).
func WithFallback(r Resolver) Resolver { return fallback{r} }

func (f fallback) Resolve(ctx context.Context, id string) (Descriptor, error) {
	if f.r == nil {
		return Placeholder(id), nil
	}
	d, err := f.r.Resolve(ctx, id)
	if err != nil {
		return Placeholder(id), nil
	}
	if d.ID == "" {
		d.ID = id
	}
	return d, nil
}

// Static resolves from an in-memory table.
type Static struct {
	mu sync.RWMutex
	m  map[string]Descriptor
}

// NewStatic returns a resolver for the given descriptors.
func NewStatic(ds ...Descriptor) *Static {
	s := &Static{m: make(map[string]Descriptor, len(ds))}
	for _, d := range ds {
		s.m[d.ID] = d
	}
	return s
}

// Add registers or replaces a descriptor.
func (s *Static) Add(d Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[d.ID] = d
}

// Resolve returns the registered descriptor or a NOT_FOUND error.
func (s *Static) Resolve(_ context.Context, id string) (Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.m[id]
	if !ok {
		return Descriptor{}, errors.New(errors.ErrCodeNotFound, "unknown resource %q", id)
	}
	return d, nil
}

// LoadStatic reads a JSON array of descriptors from path.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resources: %w", err)
	}
	var ds []Descriptor
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return NewStatic(ds...), nil
}

// Chain tries each resolver in order and returns the first success.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, id string) (Descriptor, error) {
	var last error = errors.New(errors.ErrCodeUnresolvedReference, "no resolver for %q", id)
	for _, r := range c {
		d, err := r.Resolve(ctx, id)
		if err == nil {
			return d, nil
		}
		last = err
	}
	return Descriptor{}, last
}
