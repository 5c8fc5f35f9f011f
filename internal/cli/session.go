package cli

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/matzehuels/pinboard/internal/service"
	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/cache"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/history"
	boardio "github.com/matzehuels/pinboard/pkg/io"
	"github.com/matzehuels/pinboard/pkg/resolve"
	"github.com/matzehuels/pinboard/pkg/store"
)

// session is one board file opened for a long-running command.
type session struct {
	path     string
	history  *history.Store
	cache    cache.Cache
	resolver resolve.Resolver
	board    *service.Board
}

// openSession loads path and wires it to the configured cache and resolver.
func (c *CLI) openSession(ctx context.Context, path, resources string) (*session, error) {
	s, err := readBoard(path)
	if err != nil {
		return nil, err
	}
	ch := c.newCache(ctx)
	r, err := c.newResolver(ch, resources)
	if err != nil {
		ch.Close()
		return nil, err
	}
	hs := history.NewStore(s.Sanitize(), c.Config.Board.HistoryLimit)
	return &session{
		path:     path,
		history:  hs,
		cache:    ch,
		resolver: r,
		board:    c.newService(hs, r),
	}, nil
}

func (s *session) Close() error { return s.cache.Close() }

// autosave writes the board back to its file after every change until ctx
// is done. Saves run on their own goroutine and skip intermediate states
// when changes arrive faster than they can be written. The returned
// function blocks until the last pending save finished.
func (s *session) autosave(ctx context.Context, logger *log.Logger) (wait func()) {
	pending := make(chan board.State, 1)
	unsubscribe := s.history.Subscribe(func(st board.State) {
		for {
			select {
			case pending <- st:
				return
			default:
				select {
				case <-pending:
				default:
				}
			}
		}
	})

	save := func(st board.State) {
		if err := boardio.ExportJSON(st, s.path); err != nil {
			logger.Error("autosave failed", "path", s.path, "err", err)
			return
		}
		logger.Debug("saved", "path", s.path, "items", len(st.Items))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case st := <-pending:
				save(st)
			case <-ctx.Done():
				unsubscribe()
				select {
				case st := <-pending:
					save(st)
				default:
				}
				return
			}
		}
	}()
	return func() { <-done }
}

// watcher is implemented by stores that announce saves from other processes.
type watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// follow replaces the board whenever another process pushes name to st.
func (s *session) follow(ctx context.Context, st store.Store, name string, logger *log.Logger) error {
	w, ok := st.(watcher)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "this store cannot announce updates; use a file or redis store")
	}
	if err := errors.ValidateBoardName(name); err != nil {
		return err
	}
	names, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for n := range names {
			if n != name {
				continue
			}
			canvas, err := store.LoadCanvas(ctx, st, name)
			if err != nil {
				logger.Warn("reload failed", "board", name, "err", err)
				continue
			}
			rep := s.board.Import(canvas)
			logger.Info("reloaded", "board", name, "items", rep.Items, "skipped", len(rep.Skipped))
		}
	}()
	return nil
}

// publisher pushes the board to a store as a fragment on a cron schedule.
// Runs where the board did not change since the last push are skipped.
type publisher struct {
	sess   *session
	st     store.Store
	name   string
	logger *log.Logger

	mu   sync.Mutex
	last board.State
	sent bool
}

// publish schedules pushes of the board under name. spec is a cron
// expression or a descriptor such as "@every 10m". The returned stop
// function waits for a running push to finish.
func (s *session) publish(ctx context.Context, st store.Store, name, spec string, logger *log.Logger) (stop func(), err error) {
	if err := errors.ValidateBoardName(name); err != nil {
		return nil, err
	}
	p := &publisher{sess: s, st: st, name: name, logger: logger}
	sched := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := sched.AddFunc(spec, func() { p.run(ctx) }); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "publish schedule %q", spec)
	}
	sched.Start()
	return func() { <-sched.Stop().Done() }, nil
}

// run pushes the current board unless it equals the last pushed one.
func (p *publisher) run(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.sess.board.State()
	if p.sent && board.Equal(cur, p.last) {
		return
	}
	canvas, err := p.sess.board.Export()
	if err == nil {
		err = store.SaveCanvas(ctx, p.st, p.name, canvas)
	}
	if err != nil {
		p.logger.Warn("publish failed", "board", p.name, "err", err)
		return
	}
	p.last, p.sent = cur, true
	p.logger.Info("published", "board", p.name, "items", len(cur.Items))
}
