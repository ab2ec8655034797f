package ghost_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()
	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		cache := ghost.NewMemoryCache(10)
		ctx := context.Background()

		entry := &ghost.CacheEntry{Data: []byte("body"), ExpiresAt: time.Now().Add(time.Minute)}
		require.NoError(t, cache.Set(ctx, "key", entry))

		got, err := cache.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, []byte("body"), got.Data)
		assert.True(t, cache.Has(ctx, "key"))
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		cache := ghost.NewMemoryCache(10)

		_, err := cache.Get(context.Background(), "absent")
		assert.ErrorIs(t, err, ghost.ErrCacheKeyNotFound)
	})

	t.Run("expired entries are dropped", func(t *testing.T) {
		t.Parallel()

		cache := ghost.NewMemoryCache(10)
		ctx := context.Background()

		entry := &ghost.CacheEntry{Data: []byte("stale"), ExpiresAt: time.Now().Add(-time.Second)}
		require.NoError(t, cache.Set(ctx, "key", entry))

		_, err := cache.Get(ctx, "key")
		assert.ErrorIs(t, err, ghost.ErrCacheEntryExpired)
		assert.False(t, cache.Has(ctx, "key"))
	})

	t.Run("eviction keeps the cache at its cap", func(t *testing.T) {
		t.Parallel()

		cache := ghost.NewMemoryCache(2)
		ctx := context.Background()

		require.NoError(t, cache.Set(ctx, "a", &ghost.CacheEntry{ExpiresAt: time.Now().Add(time.Minute)}))
		require.NoError(t, cache.Set(ctx, "b", &ghost.CacheEntry{ExpiresAt: time.Now().Add(2 * time.Minute)}))
		require.NoError(t, cache.Set(ctx, "c", &ghost.CacheEntry{ExpiresAt: time.Now().Add(3 * time.Minute)}))

		// "a" expires first, so it is the one evicted.
		assert.False(t, cache.Has(ctx, "a"))
		assert.True(t, cache.Has(ctx, "b"))
		assert.True(t, cache.Has(ctx, "c"))
	})

	t.Run("clear removes everything", func(t *testing.T) {
		t.Parallel()

		cache := ghost.NewMemoryCache(10)
		ctx := context.Background()

		require.NoError(t, cache.Set(ctx, "a", &ghost.CacheEntry{ExpiresAt: time.Now().Add(time.Minute)}))
		require.NoError(t, cache.Clear(ctx))
		assert.False(t, cache.Has(ctx, "a"))
	})
}

func TestCacheManager(t *testing.T) {
	t.Parallel()
	t.Run("keys are deterministic and param ordered", func(t *testing.T) {
		t.Parallel()

		manager := ghost.NewCacheManager(ghost.NewMemoryCache(10), nil)

		key1 := manager.GetCacheKey("GET", "/posts/", map[string]string{"page": "2", "limit": "5"})
		key2 := manager.GetCacheKey("GET", "/posts/", map[string]string{"limit": "5", "page": "2"})
		assert.Equal(t, key1, key2)

		bare := manager.GetCacheKey("GET", "/posts/", nil)
		assert.Equal(t, "GET:/posts/", bare)
		assert.NotEqual(t, bare, key1)
	})

	t.Run("hit and miss statistics", func(t *testing.T) {
		t.Parallel()

		manager := ghost.NewCacheManager(ghost.NewMemoryCache(10), nil)
		ctx := context.Background()

		_, err := manager.Get(ctx, "key")
		require.Error(t, err)

		require.NoError(t, manager.Set(ctx, "key", []byte("data"), time.Minute))

		data, err := manager.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, []byte("data"), data)

		stats := manager.GetStats()
		assert.Equal(t, int64(1), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
		assert.Equal(t, int64(1), stats.Sets)
		assert.InDelta(t, 0.5, stats.GetHitRate(), 0.001)
	})

	t.Run("etags survive the round trip", func(t *testing.T) {
		t.Parallel()

		manager := ghost.NewCacheManager(ghost.NewMemoryCache(10), nil)
		ctx := context.Background()

		require.NoError(t, manager.SetWithETag(ctx, "key", []byte("data"), `"v1"`, time.Minute))

		entry, err := manager.GetEntry(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, `"v1"`, entry.ETag)
	})
}

func TestCachingPolicy(t *testing.T) {
	t.Parallel()

	policy := ghost.DefaultCachingPolicy()

	tests := []struct {
		name     string
		method   string
		path     string
		status   int
		expected bool
	}{
		{"successful get is cached", "GET", "/posts/", http.StatusOK, true},
		{"writes are never cached", "POST", "/posts/", http.StatusCreated, false},
		{"errors are not cached by default", "GET", "/posts/", http.StatusBadGateway, false},
		{"token endpoint is excluded", "GET", "/authentication/token", http.StatusOK, false},
		{"session endpoint is excluded", "GET", "/session", http.StatusOK, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, policy.ShouldCache(tt.method, tt.path, tt.status))
		})
	}
}

func TestCacheInterceptor(t *testing.T) {
	t.Parallel()
	t.Run("response is cached then served from metadata", func(t *testing.T) {
		t.Parallel()

		manager := ghost.NewCacheManager(ghost.NewMemoryCache(10), nil)
		requestInterceptor, responseInterceptor := ghost.CacheInterceptor(manager, nil)
		ctx := context.Background()

		req := &ghost.Request{
			Method:   "GET",
			Path:     "/posts/",
			Metadata: map[string]interface{}{},
		}
		resp := &ghost.Response{
			StatusCode: http.StatusOK,
			Headers:    http.Header{},
			Body:       []byte(`{"posts":[]}`),
		}

		require.NoError(t, responseInterceptor(ctx, req, resp))

		fresh := &ghost.Request{
			Method:   "GET",
			Path:     "/posts/",
			Metadata: map[string]interface{}{},
		}
		require.NoError(t, requestInterceptor(ctx, fresh))
		assert.Equal(t, []byte(`{"posts":[]}`), fresh.Metadata["cached_response"])
	})

	t.Run("writes invalidate the collection", func(t *testing.T) {
		t.Parallel()

		manager := ghost.NewCacheManager(ghost.NewMemoryCache(10), nil)
		_, responseInterceptor := ghost.CacheInterceptor(manager, nil)
		invalidate := ghost.CacheInvalidationInterceptor(manager)
		ctx := context.Background()

		listReq := &ghost.Request{Method: "GET", Path: "/posts/"}
		listResp := &ghost.Response{StatusCode: http.StatusOK, Headers: http.Header{}, Body: []byte("[]")}
		require.NoError(t, responseInterceptor(ctx, listReq, listResp))

		key := manager.GetCacheKey("GET", "/posts/", nil)
		_, err := manager.Get(ctx, key)
		require.NoError(t, err)

		writeReq := &ghost.Request{Method: "POST", Path: "/posts/"}
		writeResp := &ghost.Response{StatusCode: http.StatusCreated}
		require.NoError(t, invalidate(ctx, writeReq, writeResp))

		_, err = manager.Get(ctx, key)
		assert.Error(t, err)
	})
}
