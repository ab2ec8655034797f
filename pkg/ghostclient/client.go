// Package ghostclient provides the main entry point for creating Ghost API
// clients.
package ghostclient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the sqlite driver for FromSQLite

	"github.com/fivetwenty-io/ghost-client/internal/client"
	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// defaultClientID is the client slug Ghost provisions for its own admin
// panel; FromSQLite falls back to it when no slug is given.
const defaultClientID = "ghost-admin"

// New creates a Ghost API client from a configuration.
func New(ctx context.Context, config *ghost.Config) (ghost.Client, error) {
	if config == nil {
		return nil, ghost.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, ghost.ErrBaseURLRequired
	}

	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	config.BaseURL = baseURL

	if config.AdminKey == "" && !config.SessionAuth {
		// Legacy mode needs the API client credentials even for
		// anonymous reads.
		if config.ClientID == "" || config.ClientSecret == "" {
			return nil, ghost.ErrClientCredsRequired
		}
	}

	ghostClient, err := client.New(ctx, config)
	if err != nil {
		return nil, err
	}

	return ghostClient, nil
}

// NewWithCredentials creates a legacy-mode client and logs in with the given
// username and password.
func NewWithCredentials(ctx context.Context, baseURL, clientID, clientSecret, username, password string) (ghost.Client, error) {
	return New(ctx, &ghost.Config{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     username,
		Password:     password,
	})
}

// NewWithAdminKey creates a client that self-signs tokens from an Admin API
// key of the form "keyID:hexSecret".
func NewWithAdminKey(ctx context.Context, baseURL, adminKey string) (ghost.Client, error) {
	return New(ctx, &ghost.Config{
		BaseURL:  baseURL,
		AdminKey: adminKey,
	})
}

// FromSQLite builds a legacy-mode client by reading the client secret
// straight out of a local Ghost installation's SQLite database. The clientID
// defaults to the admin panel's own client slug.
func FromSQLite(ctx context.Context, dbPath, baseURL string, opts ...FromSQLiteOption) (ghost.Client, error) {
	options := &fromSQLiteOptions{clientID: defaultClientID}
	for _, opt := range opts {
		opt(options)
	}

	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", dbPath, err)
	}

	defer func() { _ = database.Close() }()

	var secret string

	row := database.QueryRowContext(ctx, "SELECT secret FROM clients WHERE slug = ?", options.clientID)

	err = row.Scan(&secret)
	if err != nil {
		return nil, fmt.Errorf("reading secret for client %q: %w", options.clientID, err)
	}

	config := &ghost.Config{
		BaseURL:      baseURL,
		ClientID:     options.clientID,
		ClientSecret: secret,
		Username:     options.username,
		Password:     options.password,
	}

	return New(ctx, config)
}

type fromSQLiteOptions struct {
	clientID string
	username string
	password string
}

// FromSQLiteOption customizes FromSQLite.
type FromSQLiteOption func(*fromSQLiteOptions)

// WithClientSlug selects which API client row to read the secret from.
func WithClientSlug(slug string) FromSQLiteOption {
	return func(o *fromSQLiteOptions) {
		if slug != "" {
			o.clientID = slug
		}
	}
}

// WithLogin makes the resulting client log in eagerly.
func WithLogin(username, password string) FromSQLiteOption {
	return func(o *fromSQLiteOptions) {
		o.username = username
		o.password = password
	}
}
