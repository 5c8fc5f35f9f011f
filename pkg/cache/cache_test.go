package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = (%v, %v, %v), want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("unexpected hit on empty cache")
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = (%q, %v, %v), want (v, true, nil)", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("hit after delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b"} {
		if err := c.Set(ctx, k, []byte("v"), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Clear = (%d, %v), want (2, nil)", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("hit after clear")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d entries left in the cache dir", len(entries))
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("expected hit before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expected miss after expiry")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want miss", hit, err)
	}
}

func TestHashJSON(t *testing.T) {
	type state struct{ Items []string }
	h1, err := HashJSON(state{Items: []string{"a"}})
	if err != nil {
		t.Fatal(err)
	}
	if h2, _ := HashJSON(state{Items: []string{"a"}}); h1 != h2 {
		t.Error("equal values should hash equally")
	}
	if h2, _ := HashJSON(state{Items: []string{"b"}}); h1 == h2 {
		t.Error("different values should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
	if _, err := HashJSON(make(chan int)); err == nil {
		t.Error("unencodable values should fail")
	}
}

func TestKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	d1 := k.DescriptorKey("https://example.org/iiif/1/manifest")
	d2 := k.DescriptorKey("https://example.org/iiif/2/manifest")
	if d1 == d2 || !strings.HasPrefix(d1, "descriptor:") {
		t.Errorf("descriptor keys %q %q", d1, d2)
	}
	if got := k.RenderKey("abc", "SVG"); got != "render:svg:abc" {
		t.Errorf("RenderKey = %q", got)
	}

	scoped := NewScopedKeyer(nil, "board:letters:")
	if got := scoped.RenderKey("abc", "png"); got != "board:letters:render:png:abc" {
		t.Errorf("scoped RenderKey = %q", got)
	}
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(rdb, "pinboard:")
	defer c.Close()
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("pinboard:k"))

	data, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", string(data))

	mr.FastForward(2 * time.Minute)
	_, hit, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit, "entry should expire")

	require.NoError(t, c.Set(ctx, "k2", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k2"))
	assert.False(t, mr.Exists("pinboard:k2"))
}

func TestRedisCacheClear(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(rdb, "pinboard:cache:")
	defer c.Close()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte("v"), 0))
	}
	require.NoError(t, mr.Set("pinboard:board:letters", "{}"))

	n, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, mr.Exists("pinboard:cache:a"))
	assert.True(t, mr.Exists("pinboard:board:letters"), "keys outside the prefix survive")

	_, err = NewRedisCache(rdb, "").Clear(ctx)
	assert.Error(t, err)
}
