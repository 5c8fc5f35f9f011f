package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/iiif"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	rs := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { rs.Close() })
	ss, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "boards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })
	return map[string]Store{"file": fs, "redis": rs, "sqlite": ss}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			names, err := st.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, names)

			_, err = st.Load(ctx, "letters")
			assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)

			require.NoError(t, st.Save(ctx, "letters", []byte(`{"a":1}`)))
			require.NoError(t, st.Save(ctx, "atlas", []byte(`{}`)))
			require.NoError(t, st.Save(ctx, "letters", []byte(`{"a":2}`)))

			data, err := st.Load(ctx, "letters")
			require.NoError(t, err)
			assert.Equal(t, `{"a":2}`, string(data))

			names, err = st.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"atlas", "letters"}, names)

			require.NoError(t, st.Delete(ctx, "atlas"))
			require.NoError(t, st.Delete(ctx, "atlas"))
			names, err = st.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"letters"}, names)
		})
	}
}

func TestStoreRejectsBadNames(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, bad := range []string{"", "../etc", "a/b", ".hidden"} {
				err := st.Save(ctx, bad, []byte("{}"))
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidName), "%q: %v", bad, err)
			}
		})
	}
}

func TestCanvasHelpers(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	s := board.State{}.AddItem(board.NewNote("hello", geom.R(10, 10, 100, 50)))
	canvas, err := iiif.Export(s, iiif.Options{})
	require.NoError(t, err)
	require.NoError(t, SaveCanvas(ctx, st, "notes", canvas))

	c, err := LoadCanvas(ctx, st, "notes")
	require.NoError(t, err)
	got, report := iiif.Import(c, iiif.Options{})
	assert.Empty(t, report.Skipped)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "hello", got.Items[0].Text())
}

func TestRedisStoreWatch(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := NewRedisStore(rdb, "")
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	updates, err := st.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, "letters", []byte("{}")))
	select {
	case name := <-updates:
		assert.Equal(t, "letters", name)
	case <-ctx.Done():
		t.Fatal("no update received")
	}
	assert.True(t, mr.Exists("pinboard:board:letters"))
	assert.Equal(t, "pinboard:updates", st.Channel())
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, "a", []byte("{}")))
	require.NoError(t, os.WriteFile(filepath.Join(st.Dir(), "notes.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(st.Dir(), ".tmp-123.json"), nil, 0o644))

	names, err := st.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
}

func TestFileStoreWatch(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	updates, err := st.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(st.Dir(), "notes.txt"), nil, 0o644))
	require.NoError(t, st.Save(ctx, "letters", []byte("{}")))
	select {
	case name := <-updates:
		assert.Equal(t, "letters", name)
	case <-ctx.Done():
		t.Fatal("no update received")
	}
}

func TestBoardName(t *testing.T) {
	tests := []struct {
		path string
		name string
		ok   bool
	}{
		{"/s/letters.json", "letters", true},
		{"/s/.tmp-42", "", false},
		{"/s/.hidden.json", "", false},
		{"/s/notes.txt", "", false},
	}
	for _, tt := range tests {
		name, ok := boardName(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.name, name, tt.path)
	}
}
