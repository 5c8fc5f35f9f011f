package cli

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pinboard/internal/api"
	"github.com/matzehuels/pinboard/internal/mcpserver"
	"github.com/matzehuels/pinboard/pkg/cache"
	"github.com/matzehuels/pinboard/pkg/errors"
)

const shutdownTimeout = 5 * time.Second

type sessionFlags struct {
	resources string
	noSave    bool
	follow    string
	publish   string
	schedule  string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.resources, "resources", "", "JSON file of known resource descriptors")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "do not write changes back to the board file")
	cmd.Flags().StringVar(&f.follow, "follow", "", "reload when this board is pushed to the store")
	cmd.Flags().StringVar(&f.publish, "publish", "", "push the board to the store under this name on a schedule")
	cmd.Flags().StringVar(&f.schedule, "schedule", "@every 5m", "cron schedule for --publish")
}

// start opens the session and its background workers. The returned wait
// function blocks until pending saves and pushes are written; call it after
// ctx ends.
func (c *CLI) start(ctx context.Context, path string, f sessionFlags) (*session, func(), error) {
	if f.publish != "" && f.publish == f.follow {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "cannot follow and publish the same board %q", f.follow)
	}
	sess, err := c.openSession(ctx, path, f.resources)
	if err != nil {
		return nil, nil, err
	}
	if f.follow == "" && f.publish == "" {
		return sess, c.saver(ctx, sess, f), nil
	}

	st, err := c.newStore(ctx)
	if err != nil {
		sess.Close()
		return nil, nil, err
	}
	fail := func(err error) (*session, func(), error) {
		st.Close()
		sess.Close()
		return nil, nil, err
	}
	if f.follow != "" {
		if err := sess.follow(ctx, st, f.follow, c.Logger); err != nil {
			return fail(err)
		}
	}
	stopPublish := func() {}
	if f.publish != "" {
		if stopPublish, err = sess.publish(ctx, st, f.publish, f.schedule, c.Logger); err != nil {
			return fail(err)
		}
	}
	save := c.saver(ctx, sess, f)
	return sess, func() {
		save()
		stopPublish()
		st.Close()
	}, nil
}

func (c *CLI) saver(ctx context.Context, sess *session, f sessionFlags) func() {
	if f.noSave {
		return func() {}
	}
	return sess.autosave(ctx, c.Logger)
}

func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags sessionFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve <board.json>",
		Short: "Serve a board over HTTP",
		Long: `Serve exposes the board through a JSON API: read and replace the board,
add, move and connect items, undo and redo, exchange IIIF fragments and
render images. Changes are saved back to the board file. With --publish
the board is also pushed to the store on a cron schedule, and with
--follow it is reloaded whenever another process pushes that name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sess, wait, err := c.start(ctx, args[0], flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			keyer := cache.NewScopedKeyer(nil, "board:"+baseName(args[0])+":")
			srv := &http.Server{
				Addr: addr,
				Handler: api.New(sess.board,
					api.WithCache(sess.cache, keyer, c.Config.Cache.TTL),
					api.WithLogger(c.Logger),
				).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			c.Logger.Info("serving", "board", args[0], "addr", "http://"+addr)

			select {
			case err = <-errc:
			case <-ctx.Done():
				shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
				err = srv.Shutdown(shutdownCtx)
				stop()
			}
			cancel()
			wait()
			if stderrors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	return cmd
}

func (c *CLI) mcpCommand() *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "mcp <board.json>",
		Short: "Serve a board to an AI assistant over MCP stdio",
		Long: `Mcp runs a Model Context Protocol server on stdin and stdout so an
assistant can list, add, move, connect and arrange items on the board.
Logs go to stderr. Changes are saved back to the board file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sess, wait, err := c.start(ctx, args[0], flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			err = mcpserver.New(sess.board, c.Logger).ServeStdio()
			cancel()
			wait()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
