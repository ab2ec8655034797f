package ghost

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is one entry of the "errors" array in a Ghost error response.
type APIError struct {
	ErrorType string `json:"errorType"         yaml:"errorType"`
	Message   string `json:"message"           yaml:"message"`
	Context   string `json:"context,omitempty" yaml:"context,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.ErrorType == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.ErrorType, e.Message)
}

// RequestError is any non-2xx response outside the handled 401/403 recovery
// path. It carries the HTTP status, the request path, and the structured
// error entries reported by the server.
type RequestError struct {
	StatusCode int
	Path       string
	Errors     []APIError
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed with status %d on %s: %s", e.StatusCode, e.Path, joinErrors(e.Errors))
}

// FirstError returns the first server error entry or nil.
func (e *RequestError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// AuthError means no usable credential was available, or the server rejected
// the credentials. StatusCode is 0 when no network call was attempted.
type AuthError struct {
	StatusCode int
	Errors     []APIError
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("authentication failed: %s", joinErrors(e.Errors))
	}

	return fmt.Sprintf("authentication failed with status %d: %s", e.StatusCode, joinErrors(e.Errors))
}

// DecodeError is a 2xx response whose body could not be parsed as the
// expected structure. It is distinct from transport and status errors so
// callers can tell transport success from a contract violation.
type DecodeError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying parse error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func joinErrors(errs []APIError) string {
	if len(errs) == 0 {
		return "unknown error"
	}

	parts := make([]string, 0, len(errs))
	for i := range errs {
		parts = append(parts, errs[i].Error())
	}

	return strings.Join(parts, "; ")
}

// ErrInvalidArgument is the base of all caller-side contract violations,
// raised before any network call. Test with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// Static errors that can be wrapped with context.
var (
	ErrNoMoreItems               = errors.New("no more items")
	ErrConfigRequired            = errors.New("config is required")
	ErrBaseURLRequired           = errors.New("base URL is required")
	ErrClientCredsRequired       = fmt.Errorf("%w: no client_id or client_secret given or found", ErrInvalidArgument)
	ErrIDRequired                = fmt.Errorf("%w: id is required", ErrInvalidArgument)
	ErrSlugRequired              = fmt.Errorf("%w: slug is required", ErrInvalidArgument)
	ErrNoUploadSource            = fmt.Errorf("%w: either Path, Reader, or Data must be given", ErrInvalidArgument)
	ErrAmbiguousUploadSource     = fmt.Errorf("%w: only one of Path, Reader, or Data may be given", ErrInvalidArgument)
	ErrUploadNameRequired        = fmt.Errorf("%w: Name is required with Reader or Data", ErrInvalidArgument)
	ErrMalformedAdminKey         = fmt.Errorf("%w: admin key must be of the form id:hexsecret", ErrInvalidArgument)
	ErrPasswordLoginNotSupported = errors.New("credential mode does not support username/password login")
)

// NewAuthError builds an AuthError with a single synthesized error entry.
func NewAuthError(statusCode int, errorType, message string) *AuthError {
	return &AuthError{
		StatusCode: statusCode,
		Errors: []APIError{
			{ErrorType: errorType, Message: message},
		},
	}
}

// IsNotFound checks if the error is a 404 from the server.
func IsNotFound(err error) bool {
	reqErr := &RequestError{}

	return errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error is an authentication failure from the
// server or a missing-credential failure raised locally.
func IsUnauthorized(err error) bool {
	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsForbidden checks if the error is a 403 from the server.
func IsForbidden(err error) bool {
	authErr := &AuthError{}
	if errors.As(err, &authErr) {
		return authErr.StatusCode == http.StatusForbidden
	}

	return false
}

// IsInvalidArgument checks if the error is a caller-side contract violation.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// ParseErrorBody extracts the "errors" array from an error response body. A
// body that cannot be parsed yields a single entry carrying the raw text, so
// status errors never mask themselves behind decode failures.
func ParseErrorBody(body []byte) []APIError {
	var envelope struct {
		Errors []APIError `json:"errors"`
	}

	err := json.Unmarshal(body, &envelope)
	if err != nil || len(envelope.Errors) == 0 {
		text := strings.TrimSpace(string(body))
		if text == "" {
			return nil
		}

		return []APIError{{ErrorType: "UnknownError", Message: text}}
	}

	return envelope.Errors
}
