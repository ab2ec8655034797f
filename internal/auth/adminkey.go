package auth

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fivetwenty-io/ghost-client/internal/constants"
	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// remintMargin is how long before expiry a cached admin token is replaced.
const remintMargin = 30 * time.Second

// AdminKeyManager mints short-lived signed tokens from an Admin API key of
// the form "<key id>:<hex secret>". Tokens are minted locally, so every
// SessionManager operation other than Credential is a no-op.
type AdminKeyManager struct {
	keyID  string
	secret []byte

	// now is swappable for tests.
	now func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewAdminKeyManager parses the admin key and returns a manager. The key
// must contain a single colon separating the key id from the hex-encoded
// secret.
func NewAdminKeyManager(adminKey string) (*AdminKeyManager, error) {
	keyID, hexSecret, ok := strings.Cut(adminKey, ":")
	if !ok || keyID == "" || hexSecret == "" {
		return nil, ghost.ErrMalformedAdminKey
	}

	secret, err := hex.DecodeString(hexSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: secret is not hex encoded", ghost.ErrMalformedAdminKey)
	}

	return &AdminKeyManager{
		keyID:  keyID,
		secret: secret,
		now:    time.Now,
	}, nil
}

// Credential implements SessionManager.Credential. A cached token is reused
// until it approaches expiry, then a fresh one is minted.
func (m *AdminKeyManager) Credential(ctx context.Context) (*Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if m.token == "" || now.After(m.expiresAt.Add(-remintMargin)) {
		token, expiresAt, err := m.mint(now)
		if err != nil {
			return nil, err
		}

		m.token = token
		m.expiresAt = expiresAt
	}

	return &Credential{BearerToken: m.token, Generation: 0}, nil
}

// Login implements SessionManager.Login. Signed keys have no login step.
func (m *AdminKeyManager) Login(ctx context.Context, username, password string) error {
	return ghost.ErrPasswordLoginNotSupported
}

// Refresh implements SessionManager.Refresh. The cached token is discarded
// so the next Credential call mints a new one.
func (m *AdminKeyManager) Refresh(ctx context.Context, observed uint64) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()

	return nil
}

// RevokeAccessToken implements SessionManager.RevokeAccessToken. Minted
// tokens expire on their own; only the local cache is dropped.
func (m *AdminKeyManager) RevokeAccessToken(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.expiresAt = time.Time{}
	m.mu.Unlock()

	return nil
}

// RevokeRefreshToken implements SessionManager.RevokeRefreshToken.
func (m *AdminKeyManager) RevokeRefreshToken(ctx context.Context) error {
	return nil
}

// Logout implements SessionManager.Logout.
func (m *AdminKeyManager) Logout(ctx context.Context) error {
	return m.RevokeAccessToken(ctx)
}

// mint signs a new token. The key id travels in the "kid" header and the
// audience is fixed to the admin surface.
func (m *AdminKeyManager) mint(now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(constants.AdminTokenTTL)

	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		Audience:  jwt.ClaimStrings{constants.AdminTokenAudience},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = m.keyID

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing admin token: %w", err)
	}

	return signed, expiresAt, nil
}
