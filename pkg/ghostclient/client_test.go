package ghostclient_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
	"github.com/fivetwenty-io/ghost-client/pkg/ghostclient"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("nil config is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := ghostclient.New(context.Background(), nil)
		assert.ErrorIs(t, err, ghost.ErrConfigRequired)
	})

	t.Run("base URL is required", func(t *testing.T) {
		t.Parallel()

		_, err := ghostclient.New(context.Background(), &ghost.Config{})
		assert.ErrorIs(t, err, ghost.ErrBaseURLRequired)
	})

	t.Run("legacy mode requires both client credentials", func(t *testing.T) {
		t.Parallel()

		_, err := ghostclient.New(context.Background(), &ghost.Config{
			BaseURL:  "https://blog.example.com",
			ClientID: "ghost-admin",
		})
		assert.ErrorIs(t, err, ghost.ErrClientCredsRequired)
	})

	t.Run("scheme and trailing slash are normalized", func(t *testing.T) {
		t.Parallel()

		config := &ghost.Config{
			BaseURL:      "blog.example.com/",
			ClientID:     "ghost-admin",
			ClientSecret: "secret",
		}

		client, err := ghostclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.Equal(t, "https://blog.example.com", config.BaseURL)
	})

	t.Run("admin key mode needs no client credentials", func(t *testing.T) {
		t.Parallel()

		client, err := ghostclient.NewWithAdminKey(context.Background(),
			"https://blog.example.com",
			"6299d57d4d4eb50018a7dd06:9e3ed4884fce9207c1a8b3df97ff2b1b446a8c91")
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("malformed admin key fails construction", func(t *testing.T) {
		t.Parallel()

		_, err := ghostclient.NewWithAdminKey(context.Background(),
			"https://blog.example.com", "no-separator")
		require.Error(t, err)
		assert.True(t, ghost.IsInvalidArgument(err))
	})
}

func TestFromSQLite(t *testing.T) {
	t.Parallel()

	newDatabase := func(t *testing.T) string {
		t.Helper()

		path := filepath.Join(t.TempDir(), "ghost.db")

		db, err := sql.Open("sqlite", path)
		require.NoError(t, err)

		defer func() { _ = db.Close() }()

		_, err = db.Exec(`CREATE TABLE clients (slug TEXT PRIMARY KEY, secret TEXT)`)
		require.NoError(t, err)

		_, err = db.Exec(`INSERT INTO clients (slug, secret) VALUES
			('ghost-admin', 'admin-secret'),
			('ghost-frontend', 'frontend-secret')`)
		require.NoError(t, err)

		return path
	}

	t.Run("reads the default admin client secret", func(t *testing.T) {
		t.Parallel()

		client, err := ghostclient.FromSQLite(context.Background(), newDatabase(t), "https://blog.example.com")
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("a different client slug can be selected", func(t *testing.T) {
		t.Parallel()

		client, err := ghostclient.FromSQLite(context.Background(), newDatabase(t), "https://blog.example.com",
			ghostclient.WithClientSlug("ghost-frontend"))
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("unknown slug fails", func(t *testing.T) {
		t.Parallel()

		_, err := ghostclient.FromSQLite(context.Background(), newDatabase(t), "https://blog.example.com",
			ghostclient.WithClientSlug("nope"))
		assert.Error(t, err)
	})
}
