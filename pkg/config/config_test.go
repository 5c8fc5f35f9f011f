package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/geom"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestParseTOML(t *testing.T) {
	data := []byte(`
[viewport]
grid_snap = true
grid_size = 16

[board]
history_limit = 5
anchor_offset = 30
note_size = { x = 200, y = 120 }

[export]
base_id = "https://example.org/canvas/1"

[cache]
ttl = "1h"

[server]
addr = ":9000"
`)
	cfg, err := Parse(data, ".toml")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Viewport.GridSnap || cfg.Viewport.GridSize != 16 {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Viewport.MaxScale != 5 {
		t.Errorf("untouched max_scale = %v, want default 5", cfg.Viewport.MaxScale)
	}
	if cfg.Board.HistoryLimit != 5 || cfg.Board.AnchorOffset != 30 {
		t.Errorf("board = %+v", cfg.Board)
	}
	if cfg.Board.NoteSize != geom.Pt(200, 120) {
		t.Errorf("note_size = %v", cfg.Board.NoteSize)
	}
	if cfg.Board.HandleRadius != 8 {
		t.Errorf("untouched handle_radius = %v", cfg.Board.HandleRadius)
	}
	if cfg.Export.BaseID != "https://example.org/canvas/1" {
		t.Errorf("export.base_id = %q", cfg.Export.BaseID)
	}
	if cfg.Export.AnchorOffset != 30 {
		t.Errorf("export.anchor_offset = %v, want the board's 30", cfg.Export.AnchorOffset)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("cache.ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
viewport:
  min_scale: 0.5
board:
  history_limit: 10
  resource_size: {x: 100, y: 80}
store:
  namespace: "research:"
`)
	cfg, err := Parse(data, ".yml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Viewport.MinScale != 0.5 || cfg.Board.HistoryLimit != 10 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Board.ResourceSize != geom.Pt(100, 80) {
		t.Errorf("resource_size = %v", cfg.Board.ResourceSize)
	}
	if cfg.Store.Namespace != "research:" {
		t.Errorf("store.namespace = %q", cfg.Store.Namespace)
	}
}

func TestParseEmptyYAML(t *testing.T) {
	cfg, err := Parse(nil, ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("empty file should keep defaults, got %+v", cfg.Server)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
	}{
		{"bad toml", "[viewport", ".toml"},
		{"unknown toml key", "[viewport]\nzoom = 2", ".toml"},
		{"unknown yaml key", "viewport:\n  zoom: 2", ".yaml"},
		{"format", "{}", ".json"},
		{"scale range", "[viewport]\nmin_scale = 3\nmax_scale = 2", ".toml"},
		{"zoom in", "[viewport]\nzoom_in_factor = 0.9", ".toml"},
		{"zoom out", "[viewport]\nzoom_out_factor = 1.5", ".toml"},
		{"history", "[board]\nhistory_limit = -1", ".toml"},
		{"margin", "[export]\nmargin = -4", ".toml"},
		{"addr", "[server]\naddr = \"\"", ".toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.ext)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %q, want INVALID_CONFIG (%v)", errors.GetCode(err), err)
			}
		})
	}
}

func TestLoadAndFind(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(t.TempDir())

	if got := Find(""); got != "" {
		t.Fatalf("Find with no files = %q", got)
	}
	cfg, path, err := LoadDefault("")
	if err != nil || path != "" || cfg.Board.HistoryLimit != Default().Board.HistoryLimit {
		t.Fatalf("LoadDefault = %+v, %q, %v", cfg, path, err)
	}

	xdg := filepath.Join(dir, AppName, "pinboard.toml")
	if err := os.MkdirAll(filepath.Dir(xdg), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xdg, []byte("[board]\nhistory_limit = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Find(""); got != xdg {
		t.Errorf("Find = %q, want %q", got, xdg)
	}

	if err := os.WriteFile("pinboard.yaml", []byte("board:\n  history_limit: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, path, err = LoadDefault("")
	if err != nil {
		t.Fatal(err)
	}
	if path != "pinboard.yaml" || cfg.Board.HistoryLimit != 9 {
		t.Errorf("working directory should win: %q %d", path, cfg.Board.HistoryLimit)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing file: %v", err)
	}
}

func TestDirs(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	if dir, _ := CacheDir(); dir != filepath.Join("/tmp/xdg-cache", AppName) {
		t.Errorf("CacheDir = %q", dir)
	}
	if dir, _ := (Store{}).DirOrDefault(); dir != filepath.Join("/tmp/xdg-data", AppName, "boards") {
		t.Errorf("Store.DirOrDefault = %q", dir)
	}
	if dir, _ := (Cache{Dir: "/x"}).DirOrDefault(); dir != "/x" {
		t.Errorf("Cache.DirOrDefault = %q", dir)
	}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "pinboard.toml"))
	if err != nil {
		t.Fatalf("example config: %v", err)
	}
	if !cfg.Viewport.GridSnap || cfg.Board.HistoryLimit != 200 {
		t.Errorf("example config not applied: %+v", cfg)
	}
	if cfg.Board.NoteSize.X != 200 || cfg.Cache.TTL != 48*time.Hour {
		t.Errorf("note size %v, ttl %v", cfg.Board.NoteSize, cfg.Cache.TTL)
	}
}
