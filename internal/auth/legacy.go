package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/fivetwenty-io/ghost-client/internal/constants"
	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// LegacyConfig configures the legacy token-endpoint session manager.
type LegacyConfig struct {
	// APIBaseURL is the full API prefix, e.g.
	// "http://localhost:2368/ghost/api/v0.1".
	APIBaseURL string

	ClientID     string
	ClientSecret string

	// AccessToken and RefreshToken seed the manager with a previously
	// established session.
	AccessToken  string
	RefreshToken string

	// HTTPClient is optional; http.DefaultClient is used when nil.
	HTTPClient *http.Client
}

// LegacyTokenManager authenticates against the legacy token endpoint with
// password and refresh_token grants. Retained username and password allow a
// transparent re-login when no refresh token survives.
type LegacyTokenManager struct {
	apiBaseURL   string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	// refreshMu serializes refresh attempts so concurrent 401 observers
	// cannot race to overwrite a just-refreshed token.
	refreshMu sync.Mutex

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	username     string
	password     string
	generation   uint64
}

// NewLegacyTokenManager creates a legacy session manager.
func NewLegacyTokenManager(config *LegacyConfig) *LegacyTokenManager {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &LegacyTokenManager{
		apiBaseURL:   strings.TrimSuffix(config.APIBaseURL, "/"),
		clientID:     config.ClientID,
		clientSecret: config.ClientSecret,
		httpClient:   httpClient,
		accessToken:  config.AccessToken,
		refreshToken: config.RefreshToken,
	}
}

// Credential implements SessionManager.Credential. Without an access token
// the client credentials are offered as query parameters, which only
// anonymous-allowed GET requests may use.
func (m *LegacyTokenManager) Credential(ctx context.Context) (*Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred := &Credential{Generation: m.generation}

	if m.accessToken != "" {
		cred.BearerToken = m.accessToken

		return cred, nil
	}

	cred.Query = url.Values{
		"client_id":     []string{m.clientID},
		"client_secret": []string{m.clientSecret},
	}

	return cred, nil
}

// Login implements SessionManager.Login.
func (m *LegacyTokenManager) Login(ctx context.Context, username, password string) error {
	err := m.authenticate(ctx, url.Values{
		"grant_type":    []string{"password"},
		"username":      []string{username},
		"password":      []string{password},
		"client_id":     []string{m.clientID},
		"client_secret": []string{m.clientSecret},
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.username = username
	m.password = password
	m.mu.Unlock()

	return nil
}

// Refresh implements SessionManager.Refresh. A held refresh token is
// exchanged first; when the server rejects it and login credentials were
// retained, the login is replayed instead.
func (m *LegacyTokenManager) Refresh(ctx context.Context, observed uint64) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	m.mu.Lock()
	current := m.generation
	refreshToken := m.refreshToken
	username := m.username
	password := m.password
	m.mu.Unlock()

	if current != observed {
		// Another caller refreshed while we waited.
		return nil
	}

	if refreshToken != "" {
		err := m.authenticate(ctx, url.Values{
			"grant_type":    []string{"refresh_token"},
			"refresh_token": []string{refreshToken},
			"client_id":     []string{m.clientID},
			"client_secret": []string{m.clientSecret},
		})

		authErr := &ghost.AuthError{}
		if err == nil || !errors.As(err, &authErr) || username == "" {
			return err
		}
		// Refresh token rejected; fall back to the retained login.
	}

	if username != "" && password != "" {
		return m.Login(ctx, username, password)
	}

	// Nothing to refresh.
	return nil
}

// RevokeAccessToken implements SessionManager.RevokeAccessToken. The local
// token is cleared even when the revoke call fails, so a client that cannot
// reach the server still ends up logged out locally.
func (m *LegacyTokenManager) RevokeAccessToken(ctx context.Context) error {
	m.mu.Lock()
	token := m.accessToken
	m.mu.Unlock()

	if token == "" {
		return nil
	}

	err := m.revoke(ctx, "access_token", token, token)

	m.mu.Lock()
	if m.accessToken == token {
		m.accessToken = ""
		m.generation++
	}
	m.mu.Unlock()

	return err
}

// RevokeRefreshToken implements SessionManager.RevokeRefreshToken.
func (m *LegacyTokenManager) RevokeRefreshToken(ctx context.Context) error {
	m.mu.Lock()
	token := m.refreshToken
	bearer := m.accessToken
	m.mu.Unlock()

	if token == "" {
		return nil
	}

	err := m.revoke(ctx, "refresh_token", token, bearer)

	m.mu.Lock()
	if m.refreshToken == token {
		m.refreshToken = ""
		m.generation++
	}
	m.mu.Unlock()

	return err
}

// Logout implements SessionManager.Logout: refresh token first, then access
// token, then the retained login credentials.
func (m *LegacyTokenManager) Logout(ctx context.Context) error {
	refreshErr := m.RevokeRefreshToken(ctx)
	accessErr := m.RevokeAccessToken(ctx)

	m.mu.Lock()
	m.username = ""
	m.password = ""
	m.generation++
	m.mu.Unlock()

	return errors.Join(refreshErr, accessErr)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// authenticate posts a grant to the token endpoint and installs the returned
// tokens.
func (m *LegacyTokenManager) authenticate(ctx context.Context, form url.Values) error {
	endpoint := m.apiBaseURL + constants.TokenEndpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting token: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &ghost.AuthError{
			StatusCode: resp.StatusCode,
			Errors:     ghost.ParseErrorBody(body),
		}
	}

	var token tokenResponse

	err = json.Unmarshal(body, &token)
	if err != nil {
		return &ghost.DecodeError{Path: constants.TokenEndpoint, Err: err}
	}

	m.mu.Lock()
	m.accessToken = token.AccessToken
	// A refresh_token grant response carries no new refresh token; the
	// held one stays valid and is kept for the next refresh.
	if token.RefreshToken != "" {
		m.refreshToken = token.RefreshToken
	}
	m.generation++
	m.mu.Unlock()

	return nil
}

// revoke posts a revocation request; the bearer token authorizes the call.
func (m *LegacyTokenManager) revoke(ctx context.Context, hint, token, bearer string) error {
	endpoint := m.apiBaseURL + constants.RevokeEndpoint

	payload, err := json.Marshal(map[string]string{
		"token_type_hint": hint,
		"token":           token,
	})
	if err != nil {
		return fmt.Errorf("encoding revoke request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating revoke request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoking %s: %w", hint, err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)

		return &ghost.RequestError{
			StatusCode: resp.StatusCode,
			Path:       constants.RevokeEndpoint,
			Errors:     ghost.ParseErrorBody(body),
		}
	}

	return nil
}
