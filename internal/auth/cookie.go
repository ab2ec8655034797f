package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/fivetwenty-io/ghost-client/internal/constants"
	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// CookieConfig configures the cookie-backed session manager.
type CookieConfig struct {
	// APIBaseURL is the full API prefix the session endpoint hangs off.
	APIBaseURL string

	// Origin is sent with session requests; servers reject cross-origin
	// session creation without it.
	Origin string

	// HTTPClient is optional; http.DefaultClient is used when nil.
	HTTPClient *http.Client
}

// CookieSessionManager establishes a server-side session and carries the
// session cookie on subsequent requests. Username and password are retained
// so an expired session can be re-established transparently.
type CookieSessionManager struct {
	apiBaseURL string
	origin     string
	httpClient *http.Client

	refreshMu sync.Mutex

	mu         sync.Mutex
	cookie     *http.Cookie
	username   string
	password   string
	generation uint64
}

// NewCookieSessionManager creates a cookie session manager.
func NewCookieSessionManager(config *CookieConfig) *CookieSessionManager {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &CookieSessionManager{
		apiBaseURL: strings.TrimSuffix(config.APIBaseURL, "/"),
		origin:     config.Origin,
		httpClient: httpClient,
	}
}

// Credential implements SessionManager.Credential.
func (m *CookieSessionManager) Credential(ctx context.Context) (*Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return &Credential{Cookie: m.cookie, Generation: m.generation}, nil
}

// Login implements SessionManager.Login. The session cookie from the
// response replaces any previous one.
func (m *CookieSessionManager) Login(ctx context.Context, username, password string) error {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("encoding session request: %w", err)
	}

	endpoint := m.apiBaseURL + constants.SessionEndpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating session request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if m.origin != "" {
		req.Header.Set("Origin", m.origin)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)

		return &ghost.AuthError{
			StatusCode: resp.StatusCode,
			Errors:     ghost.ParseErrorBody(body),
		}
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return &ghost.AuthError{
			StatusCode: resp.StatusCode,
			Errors: []ghost.APIError{{
				ErrorType: "UnexpectedResponseError",
				Message:   "session response carried no cookie",
			}},
		}
	}

	m.mu.Lock()
	m.cookie = cookies[0]
	m.username = username
	m.password = password
	m.generation++
	m.mu.Unlock()

	return nil
}

// Refresh implements SessionManager.Refresh by re-establishing the session
// with the retained credentials.
func (m *CookieSessionManager) Refresh(ctx context.Context, observed uint64) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	m.mu.Lock()
	current := m.generation
	username := m.username
	password := m.password
	m.mu.Unlock()

	if current != observed {
		return nil
	}

	if username == "" || password == "" {
		return nil
	}

	return m.Login(ctx, username, password)
}

// RevokeAccessToken implements SessionManager.RevokeAccessToken by deleting
// the server-side session. The local cookie is dropped even when the delete
// fails.
func (m *CookieSessionManager) RevokeAccessToken(ctx context.Context) error {
	m.mu.Lock()
	cookie := m.cookie
	m.mu.Unlock()

	if cookie == nil {
		return nil
	}

	err := m.deleteSession(ctx, cookie)

	m.mu.Lock()
	if m.cookie == cookie {
		m.cookie = nil
		m.generation++
	}
	m.mu.Unlock()

	return err
}

// RevokeRefreshToken implements SessionManager.RevokeRefreshToken. Cookie
// sessions have no refresh token.
func (m *CookieSessionManager) RevokeRefreshToken(ctx context.Context) error {
	return nil
}

// Logout implements SessionManager.Logout.
func (m *CookieSessionManager) Logout(ctx context.Context) error {
	err := m.RevokeAccessToken(ctx)

	m.mu.Lock()
	m.username = ""
	m.password = ""
	m.mu.Unlock()

	return err
}

func (m *CookieSessionManager) deleteSession(ctx context.Context, cookie *http.Cookie) error {
	endpoint := m.apiBaseURL + constants.SessionEndpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating session delete request: %w", err)
	}

	req.AddCookie(cookie)
	if m.origin != "" {
		req.Header.Set("Origin", m.origin)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)

		return &ghost.RequestError{
			StatusCode: resp.StatusCode,
			Path:       constants.SessionEndpoint,
			Errors:     ghost.ParseErrorBody(body),
		}
	}

	return nil
}
