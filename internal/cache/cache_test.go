package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyshelf/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestSnapshotsFreshness(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	snaps := NewSnapshots[[]string](NewMemoryStore[[]string](), 5*time.Minute).WithClock(clock.Now)

	_, found, err := snaps.Lookup(ctx, "1:")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, snaps.Put(ctx, "1:", []string{"Math"}))

	snap, found, err := snaps.Lookup(ctx, "1:")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, snap.Fresh)
	assert.Equal(t, []string{"Math"}, snap.Value)

	clock.Advance(5 * time.Minute)
	snap, found, err = snaps.Lookup(ctx, "1:")
	require.NoError(t, err)
	require.True(t, found, "stale entries are kept")
	assert.False(t, snap.Fresh)
	assert.Equal(t, []string{"Math"}, snap.Value)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := NewRedisStore[[]model.TreeEntry](client, "test:tree:")
	fetched := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	_, found, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.False(t, found)

	entries := []model.TreeEntry{{Path: "Math/a.pdf", Kind: model.KindFile, Size: 10}}
	require.NoError(t, store.Set(ctx, "1", Entry[[]model.TreeEntry]{Value: entries, FetchedAt: fetched}))

	assert.True(t, mr.Exists("test:tree:1"))
	assert.Equal(t, time.Duration(0), mr.TTL("test:tree:1"))

	got, found, err := store.Get(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entries, got.Value)
	assert.True(t, fetched.Equal(got.FetchedAt))
}

func TestRedisStoreCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set("p:1", "{not json"))
	_, found, err := NewRedisStore[[]string](client, "p:").Get(context.Background(), "1")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestContentCache(t *testing.T) {
	var disabled *ContentCache = NewContentCache(0, time.Minute)
	assert.Nil(t, disabled)
	disabled.Add("k", &model.ExtractedContent{Text: "x"})
	_, ok := disabled.Get("k")
	assert.False(t, ok)

	cc := NewContentCache(2, time.Minute)
	key := ContentKey("https://x/a.pdf", false)
	assert.NotEqual(t, key, ContentKey("https://x/a.pdf", true))

	cc.Add(key, &model.ExtractedContent{Text: "ohm"})
	got, ok := cc.Get(key)
	require.True(t, ok)
	assert.Equal(t, "ohm", got.Text)
}
