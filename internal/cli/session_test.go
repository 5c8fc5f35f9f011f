package cli

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/iiif"
	boardio "github.com/matzehuels/pinboard/pkg/io"
	"github.com/matzehuels/pinboard/pkg/store"
)

func testCLI() *CLI {
	c := New(io.Discard, LogInfo)
	c.Config.Cache.Disabled = true
	c.SetOutput(io.Discard)
	return c
}

func fragment(t *testing.T, s board.State) iiif.Canvas {
	t.Helper()
	c, err := iiif.Export(s, iiif.Options{})
	require.NoError(t, err)
	return c
}

func TestSessionStartsEmptyForMissingFile(t *testing.T) {
	path := t.TempDir() + "/new.json"
	sess, err := testCLI().openSession(context.Background(), path, "")
	require.NoError(t, err)
	defer sess.Close()
	assert.Empty(t, sess.history.State().Items)
}

func TestSessionAutosave(t *testing.T) {
	path := t.TempDir() + "/board.json"
	c := testCLI()
	sess, err := c.openSession(context.Background(), path, "")
	require.NoError(t, err)
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	wait := sess.autosave(ctx, c.Logger)

	note := sess.board.AddNote("saved", nil)
	_, err = sess.board.MoveItem(note.ID, 40, 40)
	require.NoError(t, err)

	cancel()
	wait()

	s, err := boardio.ImportJSON(path)
	require.NoError(t, err)
	require.Len(t, s.Items, 1)
	assert.Equal(t, 40.0, s.Items[0].X)
}

func TestSessionFollowReloadsPushedBoard(t *testing.T) {
	mr := miniredis.RunT(t)
	rs := store.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	defer rs.Close()

	c := testCLI()
	sess, err := c.openSession(context.Background(), t.TempDir()+"/board.json", "")
	require.NoError(t, err)
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, sess.follow(ctx, rs, "letters", c.Logger))

	other := board.State{}.AddItem(board.NewNote("from elsewhere", geom.R(0, 0, 100, 80)))
	require.NoError(t, store.SaveCanvas(ctx, rs, "unrelated", fragment(t, board.State{})))
	require.NoError(t, store.SaveCanvas(ctx, rs, "letters", fragment(t, other)))

	require.Eventually(t, func() bool {
		items := sess.board.State().Items
		return len(items) == 1 && items[0].Text() == "from elsewhere"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionFollowFileStore(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	c := testCLI()
	sess, err := c.openSession(context.Background(), t.TempDir()+"/board.json", "")
	require.NoError(t, err)
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, sess.follow(ctx, fs, "letters", c.Logger))

	other := board.State{}.AddItem(board.NewNote("from disk", geom.R(0, 0, 100, 80)))
	require.NoError(t, store.SaveCanvas(ctx, fs, "letters", fragment(t, other)))

	require.Eventually(t, func() bool {
		items := sess.board.State().Items
		return len(items) == 1 && items[0].Text() == "from disk"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionFollowNeedsWatcher(t *testing.T) {
	fs, err := store.OpenSQLiteStore(t.TempDir() + "/boards.db")
	require.NoError(t, err)
	defer fs.Close()

	sess, err := testCLI().openSession(context.Background(), t.TempDir()+"/board.json", "")
	require.NoError(t, err)
	defer sess.Close()

	assert.Error(t, sess.follow(context.Background(), fs, "letters", testCLI().Logger))
}

func TestPublisherSkipsUnchangedBoard(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	c := testCLI()
	sess, err := c.openSession(context.Background(), t.TempDir()+"/board.json", "")
	require.NoError(t, err)
	defer sess.Close()
	sess.board.AddNote("first", nil)

	p := &publisher{sess: sess, st: fs, name: "letters", logger: c.Logger}
	ctx := context.Background()
	p.run(ctx)
	canvas, err := store.LoadCanvas(ctx, fs, "letters")
	require.NoError(t, err)
	s, _ := iiif.Import(canvas, iiif.Options{})
	assert.Len(t, s.Items, 1)

	// An unchanged board is not pushed again.
	require.NoError(t, fs.Delete(ctx, "letters"))
	p.run(ctx)
	_, err = fs.Load(ctx, "letters")
	assert.Error(t, err)

	sess.board.AddNote("second", nil)
	p.run(ctx)
	canvas, err = store.LoadCanvas(ctx, fs, "letters")
	require.NoError(t, err)
	s, _ = iiif.Import(canvas, iiif.Options{})
	assert.Len(t, s.Items, 2)
}

func TestPublishSchedule(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	c := testCLI()
	sess, err := c.openSession(context.Background(), t.TempDir()+"/board.json", "")
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.publish(context.Background(), fs, "letters", "every now and then", c.Logger)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop, err := sess.publish(ctx, fs, "letters", "@every 1s", c.Logger)
	require.NoError(t, err)
	defer stop()

	require.Eventually(t, func() bool {
		_, err := fs.Load(ctx, "letters")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}
