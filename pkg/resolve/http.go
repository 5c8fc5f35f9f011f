package resolve

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/pinboard/pkg/cache"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/httputil"
	"github.com/matzehuels/pinboard/pkg/iiif"
	"github.com/matzehuels/pinboard/pkg/observability"
)

// DefaultTTL is how long fetched descriptors are cached.
const DefaultTTL = 24 * time.Hour

// HTTPResolver dereferences http(s) resource ids and reads the type, label
// and thumbnail from the returned presentation document. Both version 2
// ("@id", "@type") and version 3 ("id", "type") documents are understood.
type HTTPResolver struct {
	client *httputil.Client
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
}

// NewHTTPResolver returns a resolver using client and caching descriptors in
// c. A nil c disables caching.
func NewHTTPResolver(client *httputil.Client, c cache.Cache, ttl time.Duration) *HTTPResolver {
	if client == nil {
		client = httputil.NewClient()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &HTTPResolver{client: client, cache: c, keyer: cache.NewDefaultKeyer(), ttl: ttl}
}

// Resolve fetches or recalls the descriptor for id.
func (r *HTTPResolver) Resolve(ctx context.Context, id string) (Descriptor, error) {
	if err := errors.ValidateResourceID(id); err != nil {
		return Descriptor{}, err
	}
	if !strings.HasPrefix(id, "http://") && !strings.HasPrefix(id, "https://") {
		return Descriptor{}, errors.New(errors.ErrCodeUnresolvedReference, "cannot dereference %q", id)
	}

	key := r.keyer.DescriptorKey(id)
	hooks := observability.Cache()
	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		var d Descriptor
		if json.Unmarshal(data, &d) == nil {
			hooks.OnCacheHit(ctx, "descriptor")
			return d, nil
		}
	}
	hooks.OnCacheMiss(ctx, "descriptor")

	var doc document
	if err := r.client.GetJSON(ctx, id, &doc); err != nil {
		if stderrors.Is(err, httputil.ErrNotFound) {
			return Descriptor{}, errors.Wrap(errors.ErrCodeNotFound, err, "resource %s", id)
		}
		var se *httputil.StatusError
		if stderrors.As(err, &se) && se.Code == http.StatusTooManyRequests {
			return Descriptor{}, errors.Wrap(errors.ErrCodeRateLimited, err, "resource %s", id)
		}
		if stderrors.Is(err, context.DeadlineExceeded) {
			return Descriptor{}, errors.Wrap(errors.ErrCodeTimeout, err, "resource %s", id)
		}
		return Descriptor{}, errors.Wrap(errors.ErrCodeNetwork, err, "resource %s", id)
	}

	d := doc.descriptor(id)
	if data, err := json.Marshal(d); err == nil {
		if r.cache.Set(ctx, key, data, r.ttl) == nil {
			hooks.OnCacheSet(ctx, "descriptor", len(data))
		}
	}
	return d, nil
}

// document is the subset of a presentation resource the resolver reads.
type document struct {
	ID        string          `json:"id"`
	LegacyID  string          `json:"@id"`
	Type      string          `json:"type"`
	LegacyTyp string          `json:"@type"`
	Label     iiif.Label      `json:"label"`
	Thumbnail json.RawMessage `json:"thumbnail"`
}

func (d document) descriptor(requested string) Descriptor {
	out := Descriptor{ID: requested, Type: d.Type, Label: d.Label.String()}
	if out.Type == "" {
		// "sc:Manifest" -> "Manifest"
		t := d.LegacyTyp
		if i := strings.LastIndexByte(t, ':'); i >= 0 {
			t = t[i+1:]
		}
		out.Type = t
	}
	if out.Label == "" {
		out.Label = requested
	}
	out.Preview = thumbnail(d.Thumbnail)
	return out
}

// thumbnail accepts a URL string, an object with id/@id, or a list of
// either, and returns the first URL found.
func thumbnail(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	type ref struct {
		ID       string `json:"id"`
		LegacyID string `json:"@id"`
	}
	pick := func(r ref) string {
		if r.ID != "" {
			return r.ID
		}
		return r.LegacyID
	}
	var one ref
	if json.Unmarshal(raw, &one) == nil && pick(one) != "" {
		return pick(one)
	}
	var many []json.RawMessage
	if json.Unmarshal(raw, &many) == nil {
		for _, m := range many {
			if t := thumbnail(m); t != "" {
				return t
			}
		}
	}
	return ""
}
