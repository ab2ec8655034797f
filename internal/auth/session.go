// Package auth implements the session lifecycle of the client: establishing,
// renewing, and revoking the credential that authorizes requests. Each
// credential mode (legacy token exchange, cookie session, self-signed admin
// key) is a separate SessionManager implementation selected at construction.
package auth

import (
	"context"
	"net/http"
	"net/url"
)

// Credential is the single wire representation a request attaches. At most
// one of the carriers is used per request, in the fixed precedence bearer
// token, then session cookie, then query-string client credentials.
type Credential struct {
	// BearerToken goes into the Authorization header.
	BearerToken string

	// Cookie is the session cookie carrier.
	Cookie *http.Cookie

	// Query carries client credentials as query parameters for
	// anonymous-allowed GET requests.
	Query url.Values

	// Generation identifies the session state this credential was read
	// from. A refresh bumps it; Refresh callers pass the generation they
	// observed so a just-refreshed credential is never refreshed again.
	Generation uint64
}

// HasToken reports whether the credential can authorize state-changing
// requests.
func (c *Credential) HasToken() bool {
	return c != nil && (c.BearerToken != "" || c.Cookie != nil)
}

// SessionManager owns the credential state machine of one client instance.
// Implementations serialize state mutation internally; a single instance is
// safe for concurrent use.
type SessionManager interface {
	// Credential returns the current wire credential, or one with no
	// carriers when the session is unauthenticated.
	Credential(ctx context.Context) (*Credential, error)

	// Login authenticates with a username and password and retains them for
	// transparent re-login. Modes without a password exchange return
	// ghost.ErrPasswordLoginNotSupported.
	Login(ctx context.Context, username, password string) error

	// Refresh renews the credential if the given generation is still
	// current; a stale generation means another caller already refreshed
	// and the call is a no-op. Having nothing to refresh is also a no-op,
	// not an error.
	Refresh(ctx context.Context, observed uint64) error

	// RevokeAccessToken revokes and clears the access credential.
	// Idempotent; local state is cleared even when the revoke call fails.
	RevokeAccessToken(ctx context.Context) error

	// RevokeRefreshToken revokes and clears the refresh token, with the
	// same semantics as RevokeAccessToken.
	RevokeRefreshToken(ctx context.Context) error

	// Logout revokes the refresh token, then the access token, then clears
	// every retained credential field.
	Logout(ctx context.Context) error
}
