package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every hook event to a charmbracelet logger at debug level.
// It implements BoardHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) OnMutation(label string, items, connections int) {
	h.Logger.Debug("board changed", "op", label, "items", items, "connections", connections)
}

func (h LogHooks) OnUndo(ok bool) { h.Logger.Debug("undo", "applied", ok) }
func (h LogHooks) OnRedo(ok bool) { h.Logger.Debug("redo", "applied", ok) }

func (h LogHooks) OnImport(items, connections, skipped int, d time.Duration) {
	l := h.Logger.With("items", items, "connections", connections, "duration", d.Round(time.Microsecond))
	if skipped > 0 {
		l.Warn("fragment imported with skipped entries", "skipped", skipped)
		return
	}
	l.Debug("fragment imported")
}

func (h LogHooks) OnExport(items, connections int, d time.Duration) {
	h.Logger.Debug("fragment exported", "items", items, "connections", connections, "duration", d.Round(time.Microsecond))
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

// Install registers h for every hook category.
func (h LogHooks) Install() {
	SetBoardHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}
