// Package cli implements the pinboard command-line interface.
package cli

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pinboard/internal/service"
	"github.com/matzehuels/pinboard/pkg/buildinfo"
	"github.com/matzehuels/pinboard/pkg/cache"
	"github.com/matzehuels/pinboard/pkg/config"
	"github.com/matzehuels/pinboard/pkg/history"
	"github.com/matzehuels/pinboard/pkg/httputil"
	"github.com/matzehuels/pinboard/pkg/observability"
	"github.com/matzehuels/pinboard/pkg/resolve"
	"github.com/matzehuels/pinboard/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands. Config is filled in by the root
// command before any subcommand runs.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	// ConfigPath is the file Config was read from, empty for defaults.
	ConfigPath string

	out io.Writer
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output, which goes to stdout by default.
func (c *CLI) SetOutput(w io.Writer) { c.out = w }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          appName,
		Short:        "Pinboard arranges research material on a spatial board",
		Long:         `Pinboard places notes and IIIF resources on an open canvas, connects them, and exchanges boards as IIIF canvas fragments.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd, configPath)
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: search ./ and the config dir)")

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.arrangeCommand())
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.pushCommand())
	root.AddCommand(c.pullCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.mcpCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig(cmd *cobra.Command, explicit string) error {
	cfg, path, err := config.LoadDefault(explicit)
	if err != nil {
		return err
	}
	c.Config, c.ConfigPath = cfg, path
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	observability.LogHooks{Logger: c.Logger}.Install()
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newCache opens the descriptor cache named by the config: redis when a URL
// is set, a file cache otherwise. A cache that cannot be opened is logged
// and replaced by a null cache, since the board works without one.
func (c *CLI) newCache(ctx context.Context) cache.Cache {
	cc := c.Config.Cache
	if cc.Disabled {
		return cache.NewNullCache()
	}
	if cc.Redis != "" {
		rc, err := cache.OpenRedisCache(ctx, cc.Redis, appName+":cache:")
		if err == nil {
			return rc
		}
		c.Logger.Warn("redis cache unavailable", "err", err)
		return cache.NewNullCache()
	}
	dir, err := cc.DirOrDefault()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// newResolver chains an optional static descriptor file in front of the
// HTTP resolver.
func (c *CLI) newResolver(ch cache.Cache, resourcesFile string) (resolve.Resolver, error) {
	cc := c.Config.Cache
	client := httputil.NewClient(
		httputil.WithHTTPClient(&http.Client{Timeout: cc.Timeout}),
		httputil.WithRetry(cc.Retries, time.Second),
		httputil.WithHeader("User-Agent", appName+"/"+buildinfo.Version),
	)
	chain := resolve.Chain{resolve.NewHTTPResolver(client, ch, cc.TTL)}
	if resourcesFile != "" {
		static, err := resolve.LoadStatic(resourcesFile)
		if err != nil {
			return nil, err
		}
		chain = append(resolve.Chain{static}, chain...)
	}
	return chain, nil
}

// newStore opens the fragment store: redis when a URL is set, then a
// SQLite database file, then the data directory.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	sc := c.Config.Store
	switch {
	case sc.Redis != "":
		return store.OpenRedisStore(ctx, sc.Redis, sc.Namespace)
	case sc.SQLite != "":
		return store.OpenSQLiteStore(sc.SQLite)
	}
	dir, err := sc.DirOrDefault()
	if err != nil {
		return nil, err
	}
	return store.NewFileStore(dir)
}

// newService wraps a history store around s with the configured limits.
func (c *CLI) newService(s *history.Store, r resolve.Resolver) *service.Board {
	return service.New(s, r, service.Options{
		Interaction:    c.Config.Board.Config,
		Export:         c.Config.Export,
		Templates:      c.Config.Templates,
		ResolveTimeout: c.Config.Cache.Timeout,
	})
}
