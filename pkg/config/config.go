// Package config loads pinboard settings from a TOML or YAML file.
//
// A file only needs the keys it changes; everything else keeps the value
// from [Default]. The format is chosen by extension:
//
//	# pinboard.toml
//	[viewport]
//	grid_snap = true
//	grid_size = 16
//
//	[board]
//	history_limit = 200
//	note_size = { x = 200, y = 120 }
//
//	[store]
//	redis = "redis://localhost:6379/0"
//
// Unknown keys are rejected so typos surface as INVALID_CONFIG errors
// instead of silently falling back to defaults.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/history"
	"github.com/matzehuels/pinboard/pkg/iiif"
	"github.com/matzehuels/pinboard/pkg/interact"
	"github.com/matzehuels/pinboard/pkg/viewport"
)

// AppName names the config, cache and data directories.
const AppName = "pinboard"

// FileNames are the names searched for by [Find], in order.
var FileNames = []string{"pinboard.toml", "pinboard.yaml", "pinboard.yml"}

// Config is the full settings tree.
type Config struct {
	Viewport  viewport.Options      `toml:"viewport" yaml:"viewport"`
	Board     Board                 `toml:"board" yaml:"board"`
	Export    iiif.Options          `toml:"export" yaml:"export"`
	Templates board.TemplateOptions `toml:"templates" yaml:"templates"`
	Cache     Cache                 `toml:"cache" yaml:"cache"`
	Store     Store                 `toml:"store" yaml:"store"`
	Server    Server                `toml:"server" yaml:"server"`
}

// Board holds the editing constants and history depth.
type Board struct {
	interact.Config `yaml:",inline"`
	HistoryLimit    int `toml:"history_limit" yaml:"history_limit"`
}

// Cache configures the resource descriptor cache. Redis takes precedence
// over Dir when set.
type Cache struct {
	Disabled bool          `toml:"disabled" yaml:"disabled"`
	Dir      string        `toml:"dir" yaml:"dir"`
	TTL      time.Duration `toml:"ttl" yaml:"ttl"`
	Redis    string        `toml:"redis" yaml:"redis"`
	Retries  int           `toml:"retries" yaml:"retries"`
	Timeout  time.Duration `toml:"timeout" yaml:"timeout"`
}

// Store configures where push and pull keep fragments.
type Store struct {
	Dir       string `toml:"dir" yaml:"dir"`
	SQLite    string `toml:"sqlite" yaml:"sqlite"`
	Redis     string `toml:"redis" yaml:"redis"`
	Namespace string `toml:"namespace" yaml:"namespace"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Viewport: viewport.DefaultOptions(),
		Board: Board{
			Config:       interact.DefaultConfig(),
			HistoryLimit: history.DefaultLimit,
		},
		Export: iiif.Options{
			BaseID: iiif.DefaultBaseID,
			Margin: iiif.DefaultMargin,
		},
		Templates: board.TemplateOptions{
			Gap:              board.DefaultTemplateGap,
			ComparisonHeight: board.DefaultComparisonHeight,
		},
		Cache: Cache{
			TTL:     24 * time.Hour,
			Retries: 3,
			Timeout: 10 * time.Second,
		},
		Store:  Store{Namespace: "pinboard:"},
		Server: Server{Addr: "127.0.0.1:7420"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data in the format named by ext (".toml", ".yaml" or
// ".yml") over the defaults and validates the result.
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q", ext)
	}
	// Fragments use the board's anchor offset unless export sets its own.
	if cfg.Export.AnchorOffset == 0 {
		cfg.Export.AnchorOffset = cfg.Board.AnchorOffset
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	v := c.Viewport
	switch {
	case v.MinScale <= 0 || v.MaxScale < v.MinScale:
		return invalid("viewport: need 0 < min_scale <= max_scale, got %g and %g", v.MinScale, v.MaxScale)
	case v.ZoomInFactor <= 1:
		return invalid("viewport.zoom_in_factor must be > 1, got %g", v.ZoomInFactor)
	case v.ZoomOutFactor <= 0 || v.ZoomOutFactor >= 1:
		return invalid("viewport.zoom_out_factor must be in (0, 1), got %g", v.ZoomOutFactor)
	case v.GridSize <= 0:
		return invalid("viewport.grid_size must be > 0, got %g", v.GridSize)
	case c.Board.HistoryLimit < 0:
		return invalid("board.history_limit must be >= 0, got %d", c.Board.HistoryLimit)
	case c.Board.AnchorOffset < 0:
		return invalid("board.anchor_offset must be >= 0, got %g", c.Board.AnchorOffset)
	case c.Export.Margin < 0:
		return invalid("export.margin must be >= 0, got %g", c.Export.Margin)
	case c.Templates.Gap < 0:
		return invalid("templates.gap must be >= 0, got %g", c.Templates.Gap)
	case c.Cache.TTL < 0 || c.Cache.Timeout < 0:
		return invalid("cache.ttl and cache.timeout must not be negative")
	case c.Cache.Retries < 0:
		return invalid("cache.retries must be >= 0, got %d", c.Cache.Retries)
	case c.Server.Addr == "":
		return invalid("server.addr is required")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}
