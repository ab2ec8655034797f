// Package client wires the transport, session management, and resource
// controllers into the public Client interface.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/fivetwenty-io/ghost-client/internal/auth"
	"github.com/fivetwenty-io/ghost-client/internal/constants"
	internalhttp "github.com/fivetwenty-io/ghost-client/internal/http"
	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// GhostClient implements ghost.Client.
type GhostClient struct {
	config    *ghost.Config
	transport *internalhttp.Client
	sessions  auth.SessionManager

	posts  *PostsClient
	tags   *TagsClient
	users  *UsersClient
	images *ImagesClient

	versionMu sync.Mutex
	version   string
}

// New creates a client from a validated configuration. The base URL must
// already be normalized; pkg/ghostclient does that before calling here.
func New(ctx context.Context, config *ghost.Config) (*GhostClient, error) {
	apiBaseURL := strings.TrimSuffix(config.BaseURL, "/") + constants.LegacyAPIPath

	sessions, err := createSessionManager(config, apiBaseURL)
	if err != nil {
		return nil, err
	}

	transport, err := createTransport(config, apiBaseURL, sessions)
	if err != nil {
		return nil, err
	}

	ghostClient := &GhostClient{
		config:    config,
		transport: transport,
		sessions:  sessions,
	}

	ghostClient.posts = NewPostsClient(newResourceController(transport, "posts"), ghostClient.Version)
	ghostClient.tags = NewTagsClient(newResourceController(transport, "tags"))
	ghostClient.users = NewUsersClient(newResourceController(transport, "users"))
	ghostClient.images = NewImagesClient(transport)

	if config.Username != "" && config.Password != "" {
		err = ghostClient.Login(ctx, config.Username, config.Password)
		if err != nil {
			return nil, err
		}
	}

	return ghostClient, nil
}

// createSessionManager picks the credential mode from the configuration:
// admin key, cookie session, or the legacy token endpoint.
func createSessionManager(config *ghost.Config, apiBaseURL string) (auth.SessionManager, error) {
	if config.AdminKey != "" {
		return auth.NewAdminKeyManager(config.AdminKey)
	}

	if config.SessionAuth {
		return auth.NewCookieSessionManager(&auth.CookieConfig{
			APIBaseURL: apiBaseURL,
			Origin:     config.BaseURL,
		}), nil
	}

	return auth.NewLegacyTokenManager(&auth.LegacyConfig{
		APIBaseURL:   apiBaseURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
	}), nil
}

// createTransport builds the HTTP client and registers the configured
// interceptors: logging, rate limiting, and response caching.
func createTransport(config *ghost.Config, apiBaseURL string, sessions auth.SessionManager) (*internalhttp.Client, error) {
	opts := []internalhttp.Option{
		internalhttp.WithUserAgent(config.UserAgent),
	}

	if config.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(config.Logger), internalhttp.WithDebug(config.Debug))
	}

	if config.RetryMax > 0 {
		waitMin := config.RetryWaitMin
		if waitMin <= 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax <= 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, internalhttp.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, internalhttp.WithHTTPTimeout(config.HTTPTimeout))
	}

	var cacheManager *ghost.CacheManager

	if config.Cache != nil {
		cache, err := ghost.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("building cache: %w", err)
		}

		cacheManager = ghost.NewCacheManager(cache, config.Cache.Options)
		opts = append(opts, internalhttp.WithCacheManager(cacheManager))
	}

	transport := internalhttp.NewClient(apiBaseURL, sessions, opts...)

	chain := transport.Interceptors()

	if config.RateLimit > 0 {
		chain.AddRequestInterceptor(ghost.RateLimitInterceptor(config.RateLimit))
	}

	if config.Logger != nil && config.Debug {
		chain.AddRequestInterceptor(ghost.LoggingInterceptor(config.Logger))
		chain.AddResponseInterceptor(ghost.LoggingResponseInterceptor(config.Logger))
	}

	if cacheManager != nil {
		requestInterceptor, responseInterceptor := ghost.CacheInterceptor(cacheManager, nil)
		chain.AddRequestInterceptor(requestInterceptor)
		chain.AddRequestInterceptor(ghost.ConditionalRequestInterceptor(cacheManager))
		chain.AddResponseInterceptor(responseInterceptor)
		chain.AddResponseInterceptor(ghost.CacheInvalidationInterceptor(cacheManager))
	}

	return transport, nil
}

// Posts implements ghost.ResourceClients.
func (c *GhostClient) Posts() ghost.PostsClient { return c.posts }

// Tags implements ghost.ResourceClients.
func (c *GhostClient) Tags() ghost.TagsClient { return c.tags }

// Users implements ghost.ResourceClients.
func (c *GhostClient) Users() ghost.UsersClient { return c.users }

// Images implements ghost.ResourceClients.
func (c *GhostClient) Images() ghost.ImagesClient { return c.images }

// Login implements ghost.SessionClient.
func (c *GhostClient) Login(ctx context.Context, username, password string) error {
	return c.sessions.Login(ctx, username, password)
}

// RefreshSession implements ghost.SessionClient.
func (c *GhostClient) RefreshSession(ctx context.Context) error {
	cred, err := c.sessions.Credential(ctx)
	if err != nil {
		return err
	}

	return c.sessions.Refresh(ctx, cred.Generation)
}

// RevokeAccessToken implements ghost.SessionClient.
func (c *GhostClient) RevokeAccessToken(ctx context.Context) error {
	return c.sessions.RevokeAccessToken(ctx)
}

// RevokeRefreshToken implements ghost.SessionClient.
func (c *GhostClient) RevokeRefreshToken(ctx context.Context) error {
	return c.sessions.RevokeRefreshToken(ctx)
}

// Logout implements ghost.SessionClient.
func (c *GhostClient) Logout(ctx context.Context) error {
	return c.sessions.Logout(ctx)
}

// Version implements ghost.Client.Version. A version pinned in the
// configuration wins; otherwise the public configuration endpoint is probed
// once and the result cached. A failed probe falls back to DefaultVersion
// without caching, so the next call probes again.
func (c *GhostClient) Version(ctx context.Context) (string, error) {
	if c.config.Version != "" && c.config.Version != "auto" {
		return c.config.Version, nil
	}

	c.versionMu.Lock()
	defer c.versionMu.Unlock()

	if c.version != "" {
		return c.version, nil
	}

	version, err := c.probeVersion(ctx)
	if err != nil {
		return constants.DefaultVersion, nil
	}

	c.version = version

	return version, nil
}

// InvalidateVersion implements ghost.Client.InvalidateVersion.
func (c *GhostClient) InvalidateVersion() {
	c.versionMu.Lock()
	c.version = ""
	c.versionMu.Unlock()
}

func (c *GhostClient) probeVersion(ctx context.Context) (string, error) {
	resp, err := c.transport.Get(ctx, constants.VersionEndpoint, nil)
	if err != nil {
		return "", err
	}

	var about struct {
		Configuration []struct {
			Version string `json:"version"`
		} `json:"configuration"`
	}

	err = json.Unmarshal(resp.Body, &about)
	if err != nil {
		return "", &ghost.DecodeError{Path: constants.VersionEndpoint, Err: err}
	}

	if len(about.Configuration) == 0 || about.Configuration[0].Version == "" {
		return "", &ghost.DecodeError{
			Path: constants.VersionEndpoint,
			Err:  fmt.Errorf("response carried no version"),
		}
	}

	return about.Configuration[0].Version, nil
}
