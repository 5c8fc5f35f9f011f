// Package observability lets library packages report events without
// depending on a logging or metrics backend.
//
// The board store, the serializer, the resolver cache and the HTTP client
// call the hooks returned by [Board], [Cache] and [HTTP]. Nothing is
// reported until a program installs an implementation, typically once at
// startup:
//
//	observability.LogHooks{Logger: logger}.Install()
//
// Hooks are called synchronously on the caller's goroutine and must be
// cheap. [Noop] implements every hook interface and is the default.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// BoardHooks receives events from the board store and serializer.
type BoardHooks interface {
	// OnMutation records a committed, history-tracked change.
	OnMutation(label string, items, connections int)

	// OnUndo and OnRedo record history navigation. ok is false when the
	// corresponding stack was empty.
	OnUndo(ok bool)
	OnRedo(ok bool)

	// OnImport records a fragment import, including skipped entries.
	OnImport(items, connections, skipped int, duration time.Duration)

	// OnExport records a fragment export.
	OnExport(items, connections int, duration time.Duration)
}

// CacheHooks receives cache lookups by key type ("descriptor", "render").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives the requests made to resolve remote resources.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure. Error statuses go to OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// Noop ignores every event.
type Noop struct{}

func (Noop) OnMutation(string, int, int)                                            {}
func (Noop) OnUndo(bool)                                                            {}
func (Noop) OnRedo(bool)                                                            {}
func (Noop) OnImport(int, int, int, time.Duration)                                  {}
func (Noop) OnExport(int, int, time.Duration)                                       {}
func (Noop) OnCacheHit(context.Context, string)                                     {}
func (Noop) OnCacheMiss(context.Context, string)                                    {}
func (Noop) OnCacheSet(context.Context, string, int)                                {}
func (Noop) OnRequest(context.Context, string, string, string)                      {}
func (Noop) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (Noop) OnError(context.Context, string, string, string, error)                 {}

// hookSet is replaced as a whole, so readers never see a torn update.
type hookSet struct {
	board BoardHooks
	cache CacheHooks
	http  HTTPHooks
}

var current atomic.Pointer[hookSet]

func init() { Reset() }

func update(fn func(*hookSet)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetBoardHooks installs h. A nil h is ignored.
func SetBoardHooks(h BoardHooks) {
	if h != nil {
		update(func(s *hookSet) { s.board = h })
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

func Board() BoardHooks { return current.Load().board }
func Cache() CacheHooks { return current.Load().cache }
func HTTP() HTTPHooks   { return current.Load().http }

// Reset restores [Noop] for every category.
func Reset() {
	current.Store(&hookSet{board: Noop{}, cache: Noop{}, http: Noop{}})
}
