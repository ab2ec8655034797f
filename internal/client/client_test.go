package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/ghost-client/internal/client"
	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// apiServer fakes enough of the legacy API for client-level tests.
type apiServer struct {
	mu       sync.Mutex
	requests []*http.Request
	handlers map[string]http.HandlerFunc
}

func newAPIServer() *apiServer {
	return &apiServer{handlers: map[string]http.HandlerFunc{}}
}

func (s *apiServer) handle(method, path string, handler http.HandlerFunc) {
	s.handlers[method+" /ghost/api/v0.1"+path] = handler
}

func (s *apiServer) start(t *testing.T) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		s.mu.Unlock()

		handler, ok := s.handlers[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[{"errorType":"NotFoundError","message":"no route"}]}`))

			return
		}

		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	return ts
}

func (s *apiServer) requestCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0

	for _, r := range s.requests {
		if r.Method == method && r.URL.Path == "/ghost/api/v0.1"+path {
			count++
		}
	}

	return count
}

func anonymousConfig(url string) *ghost.Config {
	return &ghost.Config{
		BaseURL:      url,
		ClientID:     "ghost-admin",
		ClientSecret: "secret",
	}
}

func TestVersionResolution(t *testing.T) {
	t.Parallel()
	t.Run("probe result is cached", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer()
		server.handle("GET", "/configuration/about/", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "ghost-admin", r.URL.Query().Get("client_id"))

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"configuration": []map[string]string{{"version": "1.22.1"}},
			})
		})

		ts := server.start(t)
		ctx := context.Background()

		ghostClient, err := client.New(ctx, anonymousConfig(ts.URL))
		require.NoError(t, err)

		version, err := ghostClient.Version(ctx)
		require.NoError(t, err)
		assert.Equal(t, "1.22.1", version)

		version, err = ghostClient.Version(ctx)
		require.NoError(t, err)
		assert.Equal(t, "1.22.1", version)

		assert.Equal(t, 1, server.requestCount("GET", "/configuration/about/"))
	})

	t.Run("failed probe falls back without caching", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer()
		ts := server.start(t)
		ctx := context.Background()

		ghostClient, err := client.New(ctx, anonymousConfig(ts.URL))
		require.NoError(t, err)

		version, err := ghostClient.Version(ctx)
		require.NoError(t, err)
		assert.Equal(t, "1", version)

		_, err = ghostClient.Version(ctx)
		require.NoError(t, err)

		// No handler is registered, so every call probes again.
		assert.Equal(t, 2, server.requestCount("GET", "/configuration/about/"))
	})

	t.Run("pinned version is returned without probing", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer()
		ts := server.start(t)
		ctx := context.Background()

		config := anonymousConfig(ts.URL)
		config.Version = "0.11.9"

		ghostClient, err := client.New(ctx, config)
		require.NoError(t, err)

		version, err := ghostClient.Version(ctx)
		require.NoError(t, err)
		assert.Equal(t, "0.11.9", version)

		assert.Equal(t, 0, server.requestCount("GET", "/configuration/about/"))
	})

	t.Run("invalidate forces a new probe", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer()
		server.handle("GET", "/configuration/about/", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"configuration": []map[string]string{{"version": "2.0.0"}},
			})
		})

		ts := server.start(t)
		ctx := context.Background()

		ghostClient, err := client.New(ctx, anonymousConfig(ts.URL))
		require.NoError(t, err)

		_, err = ghostClient.Version(ctx)
		require.NoError(t, err)

		ghostClient.InvalidateVersion()

		_, err = ghostClient.Version(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, server.requestCount("GET", "/configuration/about/"))
	})
}

func TestSessionRecovery(t *testing.T) {
	t.Parallel()
	t.Run("a seeded refresh token recovers a 401 without a prior login", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer()
		server.handle("POST", "/authentication/token", func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			assert.Equal(t, "seeded-refresh", r.PostForm.Get("refresh_token"))

			_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "access-1"})
		})
		server.handle("GET", "/posts/", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer access-1" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"errors":[{"errorType":"UnauthorizedError","message":"expired"}]}`))

				return
			}

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"posts": []map[string]interface{}{{"id": "1", "title": "T"}},
				"meta":  map[string]interface{}{"pagination": map[string]int{"page": 1, "limit": 15, "pages": 1, "total": 1}},
			})
		})

		ts := server.start(t)
		ctx := context.Background()

		config := anonymousConfig(ts.URL)
		config.RefreshToken = "seeded-refresh"

		ghostClient, err := client.New(ctx, config)
		require.NoError(t, err)

		page, err := ghostClient.Posts().List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, page.Records, 1)
		assert.Equal(t, "1", page.Records[0].ID())

		assert.Equal(t, 1, server.requestCount("POST", "/authentication/token"))
		assert.Equal(t, 2, server.requestCount("GET", "/posts/"))
	})
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		issued int
	)

	server := newAPIServer()
	server.handle("POST", "/authentication/token", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		issued++
		n := issued
		mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  fmt.Sprintf("access-%d", n),
			"refresh_token": fmt.Sprintf("refresh-%d", n),
		})
	})
	server.handle("POST", "/authentication/revoke", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})
	server.handle("POST", "/posts/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"posts": []map[string]interface{}{{"id": "1", "title": "T"}},
		})
	})

	ts := server.start(t)
	ctx := context.Background()

	config := anonymousConfig(ts.URL)
	config.Username = "user@example.com"
	config.Password = "hunter2"

	ghostClient, err := client.New(ctx, config)
	require.NoError(t, err)

	_, err = ghostClient.Posts().Create(ctx, ghost.Record{"title": "T"})
	require.NoError(t, err)

	require.NoError(t, ghostClient.Logout(ctx))

	// The session and the retained login are gone, so the write fails
	// before reaching the server.
	_, err = ghostClient.Posts().Create(ctx, ghost.Record{"title": "T"})
	require.Error(t, err)
	assert.True(t, ghost.IsUnauthorized(err))
	assert.Equal(t, 1, server.requestCount("POST", "/posts/"))

	require.NoError(t, ghostClient.Login(ctx, "user@example.com", "hunter2"))

	_, err = ghostClient.Posts().Create(ctx, ghost.Record{"title": "T"})
	require.NoError(t, err)
	assert.Equal(t, 2, server.requestCount("POST", "/posts/"))
}

func TestEagerLogin(t *testing.T) {
	t.Parallel()
	t.Run("username and password log in during construction", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer()
		server.handle("POST", "/authentication/token", func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			assert.Equal(t, "password", r.PostForm.Get("grant_type"))
			assert.Equal(t, "user@example.com", r.PostForm.Get("username"))

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "access-1",
				"refresh_token": "refresh-1",
			})
		})

		ts := server.start(t)

		config := anonymousConfig(ts.URL)
		config.Username = "user@example.com"
		config.Password = "hunter2"

		_, err := client.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, 1, server.requestCount("POST", "/authentication/token"))
	})

	t.Run("failed eager login fails construction", func(t *testing.T) {
		t.Parallel()

		server := newAPIServer()
		server.handle("POST", "/authentication/token", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":[{"errorType":"UnauthorizedError","message":"bad login"}]}`))
		})

		ts := server.start(t)

		config := anonymousConfig(ts.URL)
		config.Username = "user@example.com"
		config.Password = "wrong"

		_, err := client.New(context.Background(), config)
		require.Error(t, err)
		assert.True(t, ghost.IsUnauthorized(err))
	})
}
