// Package constants centralizes shared values of the client.
package constants

import "time"

// API surface.
const (
	// LegacyAPIPath is the API prefix of 0.x and 1.x servers.
	LegacyAPIPath = "/ghost/api/v0.1"

	// DefaultVersion is reported when the server version cannot be fetched.
	DefaultVersion = "1"

	// TokenEndpoint exchanges credentials for tokens on legacy servers.
	TokenEndpoint = "/authentication/token"

	// RevokeEndpoint revokes tokens on legacy servers.
	RevokeEndpoint = "/authentication/revoke"

	// SessionEndpoint creates and destroys cookie sessions on modern
	// servers.
	SessionEndpoint = "/session"

	// VersionEndpoint is the public configuration probe.
	VersionEndpoint = "/configuration/about/"

	// UploadEndpoint accepts multipart image uploads.
	UploadEndpoint = "/uploads/"

	// UploadFieldName is the multipart form field carrying the file.
	UploadFieldName = "uploadimage"
)

// Admin key tokens.
const (
	// AdminTokenTTL is the lifetime of self-signed admin tokens. Callers
	// caching them must keep a safety margin under this.
	AdminTokenTTL = 5 * time.Minute

	// AdminTokenAudience is the audience claim of self-signed admin tokens.
	AdminTokenAudience = "/admin/"
)

// Transport defaults.
const (
	DefaultUserAgent = "ghost-client-go"

	DefaultRetryMax     = 2
	DefaultRetryWaitMin = 1 * time.Second
	DefaultRetryWaitMax = 10 * time.Second

	DefaultHTTPTimeout = 30 * time.Second
)
