package ghost

import (
	"context"
	"io"
	"time"
)

// ResourceClients provides access to the resource-specific clients.
type ResourceClients interface {
	Posts() PostsClient
	Tags() TagsClient
	Users() UsersClient
	Images() ImagesClient
}

// SessionClient exposes the session lifecycle of a client instance.
type SessionClient interface {
	// Login authenticates with the server using a username and password and
	// retains the credentials in memory so the session can be re-established
	// transparently later. It is only valid for credential modes that support
	// a password exchange.
	Login(ctx context.Context, username, password string) error

	// RefreshSession renews the active credential: a held refresh token is
	// exchanged first, then retained login credentials are replayed, then
	// key-based modes re-mint a signed token locally. With nothing to refresh
	// it is a no-op, not an error.
	RefreshSession(ctx context.Context) error

	// RevokeAccessToken revokes the access token currently in use. It is
	// idempotent: absent token, no-op. Local token state is cleared even when
	// the revoke call fails at the transport level.
	RevokeAccessToken(ctx context.Context) error

	// RevokeRefreshToken revokes the refresh token currently held, with the
	// same idempotence and local-clearing behavior as RevokeAccessToken.
	RevokeRefreshToken(ctx context.Context) error

	// Logout revokes the refresh token, then the access token, then clears
	// the retained username, password, and session cookie. Authenticated
	// calls fail with an AuthError until a new Login succeeds.
	Logout(ctx context.Context) error
}

// Client is the full Ghost API client surface.
type Client interface {
	ResourceClients
	SessionClient

	// Version returns the server version, resolved at most once per session
	// by probing the public configuration endpoint. When the probe fails the
	// constant DefaultVersion is returned and resolution is retried on the
	// next call. A version fixed in Config is returned as-is.
	Version(ctx context.Context) (string, error)

	// InvalidateVersion drops the cached server version so the next Version
	// call probes again.
	InvalidateVersion()
}

// PostsClient manages the posts collection.
type PostsClient interface {
	List(ctx context.Context, params *ListParams) (*Page, error)
	Get(ctx context.Context, id string, params *ListParams) (Record, error)
	GetBySlug(ctx context.Context, slug string, params *ListParams) (Record, error)
	// Create publishes a new post. A "markdown" field is sent verbatim to
	// 0.x servers and wrapped into a single-card mobiledoc envelope for
	// newer ones.
	Create(ctx context.Context, fields Record) (Record, error)
	Update(ctx context.Context, id string, fields Record) (Record, error)
	Delete(ctx context.Context, id string) error
}

// TagsClient manages the tags collection.
type TagsClient interface {
	List(ctx context.Context, params *ListParams) (*Page, error)
	Get(ctx context.Context, id string, params *ListParams) (Record, error)
	GetBySlug(ctx context.Context, slug string, params *ListParams) (Record, error)
	Create(ctx context.Context, fields Record) (Record, error)
	Update(ctx context.Context, id string, fields Record) (Record, error)
	Delete(ctx context.Context, id string) error
}

// UsersClient reads the users collection. The API rejects user mutation, so
// only the read surface is exposed.
type UsersClient interface {
	List(ctx context.Context, params *ListParams) (*Page, error)
	Get(ctx context.Context, id string, params *ListParams) (Record, error)
	GetBySlug(ctx context.Context, slug string, params *ListParams) (Record, error)
}

// ImagesClient uploads media.
type ImagesClient interface {
	// Upload submits one file as a multipart form and returns its
	// server-relative path, e.g. /content/images/2024/05/example.png.
	Upload(ctx context.Context, input UploadInput) (string, error)
}

// UploadInput names the source of an upload. Exactly one of Path, Reader, or
// Data must be set; Name is required with Reader or Data.
type UploadInput struct {
	// Path is a local file path to upload from.
	Path string
	// Name is the file name to report to the server, used for mime sniffing.
	Name string
	// Reader supplies the file content.
	Reader io.Reader
	// Data supplies the file content as a byte slice.
	Data []byte
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a ghost.Client.
//
// # Credential modes
//
// Exactly one credential mode is active per session, selected by the fields
// provided:
//  1. AdminKey: a "keyID:hexSecret" admin key. The client self-signs
//     short-lived tokens locally; no password exchange is involved.
//  2. SessionAuth with Username/Password: cookie-based session
//     authentication against the session endpoint (modern API versions).
//  3. ClientID/ClientSecret: the legacy token endpoint. Login exchanges a
//     username and password for access and refresh tokens; unauthenticated
//     GETs carry the client credentials as query parameters.
//
// A pre-issued AccessToken/RefreshToken pair may be supplied to resume an
// existing legacy session.
//
// # Timeouts and retries
//
// Per-request deadlines are controlled via the context passed to client
// methods. Transient transport failures (connection errors, 5xx, 429) are
// retried below the auth layer per RetryMax/RetryWaitMin/RetryWaitMax; the
// 401/403 recovery path is separate and always bounded to a single retry.
type Config struct {
	// BaseURL is the root of the Ghost installation, e.g.
	// "https://demo.ghost.io". The constructor trims a trailing slash and
	// adds "https://" when no scheme is present.
	BaseURL string

	// Version pins the server version, e.g. "0.11.9" or "3.0.0". Empty or
	// "auto" resolves the version lazily from the server.
	Version string

	// ClientID and ClientSecret are the legacy API client credentials.
	ClientID     string
	ClientSecret string

	// Username and Password, when both set, make the constructor log in
	// eagerly. Login may also be called explicitly at any time.
	Username string
	Password string

	// SessionAuth selects cookie-based session authentication instead of the
	// legacy token endpoint.
	SessionAuth bool

	// AdminKey is a "keyID:hexSecret" key for self-signed token auth.
	AdminKey string

	// AccessToken and RefreshToken resume a previously established legacy
	// session.
	AccessToken  string
	RefreshToken string

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Logger is an optional structured logger used by the HTTP layer.
	Logger Logger
	// Debug enables request/response logging when a Logger is present.
	Debug bool

	// RetryMax is the maximum number of transport-level retries for
	// transient failures. 0 uses a sensible default.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// HTTPTimeout is the default timeout of the underlying HTTP client.
	// Context deadlines remain the preferred mechanism.
	HTTPTimeout time.Duration

	// RateLimit caps outgoing requests per second. 0 disables client-side
	// rate limiting.
	RateLimit int

	// Cache enables response caching for GET requests.
	Cache *CacheConfig
}
