package respcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

// createTestCache opens an in-memory cache with a controllable clock.
func createTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()

	cache, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	return cache, &now
}

func TestOpen(t *testing.T) {
	t.Run("file-based database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "responses.db")

		cache, err := Open(path)
		require.NoError(t, err)
		ctx := context.Background()
		require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Hour))
		require.NoError(t, cache.Close())

		reopened, err := Open(path)
		require.NoError(t, err)
		defer func() { _ = reopened.Close() }()

		body, ok, err := reopened.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), body)
	})
}

func TestCache_GetSet(t *testing.T) {
	cache, _ := createTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "url", []byte("first"), time.Hour))
	require.NoError(t, cache.Set(ctx, "url", []byte("second"), time.Hour))

	body, ok, err := cache.Get(ctx, "url")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(body))

	require.NoError(t, cache.Delete(ctx, "url"))
	_, ok, err = cache.Get(ctx, "url")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	cache, now := createTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, cache.Set(ctx, "long", []byte("b"), time.Hour))
	require.NoError(t, cache.Set(ctx, "never", []byte("c"), 0))

	*now = now.Add(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are misses")
	_, ok, err = cache.Get(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = cache.Get(ctx, "never")
	require.NoError(t, err)
	assert.False(t, ok, "a zero ttl is not stored")

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Entries: 2, Expired: 1, Bytes: 2}, stats)

	purged, err := cache.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	cleared, err := cache.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)
}

func TestCache_ServesLastFMClient(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`<lfm status="ok"><similartags tag="rock"><tag><name>metal</name></tag></similartags></lfm>`))
	}))
	t.Cleanup(server.Close)

	cache, _ := createTestCache(t)
	newClient := func() *lastfm.Client {
		c, err := lastfm.NewClient(lastfm.Config{
			APIKey:  "test-api-key",
			BaseURL: server.URL,
			Cache:   cache,
		})
		require.NoError(t, err)
		return c
	}

	// Two clients share the cache but not their registries.
	for range 2 {
		tag, err := newClient().Tag("rock")
		require.NoError(t, err)
		similar, err := tag.Similar(context.Background())
		require.NoError(t, err)
		require.Len(t, similar, 1)
		assert.Equal(t, "metal", similar[0].Name())
	}

	assert.Equal(t, int32(1), hits.Load())
	stats, err := cache.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
}
