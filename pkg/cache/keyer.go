package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// HashJSON returns the hex SHA-256 of the JSON encoding of v. The API uses
// it to key renders by board content.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return sum(data), nil
}

func sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Keyer builds cache keys for the values the board tooling caches.
type Keyer interface {
	// DescriptorKey is the key of a resolved resource descriptor.
	DescriptorKey(resourceID string) string

	// RenderKey is the key of a rendered board in the given format.
	// stateHash identifies the board content (see [HashJSON]).
	RenderKey(stateHash, format string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DescriptorKey hashes the resource id so arbitrary URLs make safe keys.
func (DefaultKeyer) DescriptorKey(resourceID string) string {
	return "descriptor:" + sum([]byte(resourceID))
}

// RenderKey combines the content hash and the lower-cased format.
func (DefaultKeyer) RenderKey(stateHash, format string) string {
	return "render:" + strings.ToLower(format) + ":" + stateHash
}

// ScopedKeyer prefixes every key, giving each board or tenant its own
// namespace inside a shared backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) DescriptorKey(resourceID string) string {
	return k.prefix + k.inner.DescriptorKey(resourceID)
}

func (k *ScopedKeyer) RenderKey(stateHash, format string) string {
	return k.prefix + k.inner.RenderKey(stateHash, format)
}
