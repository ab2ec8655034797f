// Package http implements the transport under the Ghost API client: request
// building, credential attachment, retries, interceptors, and the single
// automatic re-authentication pass on expired sessions.
package http

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

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/ghost-client/internal/auth"
	"github.com/fivetwenty-io/ghost-client/internal/constants"
	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// Request is one API request relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is JSON-encoded when non-nil. RawBody is sent verbatim with
	// ContentType; at most one of the two may be set.
	Body        interface{}
	RawBody     []byte
	ContentType string
}

// Response is the decoded-enough result of a request: status, headers, and
// the raw body for the caller to unmarshal.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client executes requests against the API, attaching whatever credential
// the session manager currently holds.
type Client struct {
	baseURL      string
	sessions     auth.SessionManager
	httpClient   *http.Client
	userAgent    string
	logger       ghost.Logger
	debug        bool
	interceptors *ghost.InterceptorChain
	cacheManager *ghost.CacheManager

	// retry is the underlying retryable client; options tune it before
	// the standard client is taken from it.
	retry *retryablehttp.Client
}

// NewClient creates a transport client. baseURL is the full API prefix, e.g.
// "https://blog.example.com/ghost/api/v0.1". The session manager may be nil
// for fully anonymous use.
func NewClient(baseURL string, sessions auth.SessionManager, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		sessions:     sessions,
		userAgent:    constants.DefaultUserAgent,
		interceptors: ghost.NewInterceptorChain(),
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = constants.DefaultRetryMax
	retry.RetryWaitMin = constants.DefaultRetryWaitMin
	retry.RetryWaitMax = constants.DefaultRetryWaitMax
	retry.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retry.Logger = nil
	client.retry = retry

	for _, opt := range opts {
		opt(client)
	}

	client.httpClient = retry.StandardClient()

	return client
}

// Interceptors exposes the chain so callers can register additional
// request and response interceptors.
func (c *Client) Interceptors() *ghost.InterceptorChain {
	return c.interceptors
}

// Do executes a request. A 401 or 403 triggers exactly one session refresh
// and one retry; the retried request's outcome is returned as-is. Refresh is
// a no-op when the session has nothing to replay, so a second failure
// surfaces without further attempts.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, cred, err := c.execute(ctx, req)

	authErr := &ghost.AuthError{}
	if err == nil || !errors.As(err, &authErr) || c.sessions == nil || cred == nil {
		return resp, err
	}

	refreshErr := c.sessions.Refresh(ctx, cred.Generation)
	if refreshErr != nil {
		return resp, fmt.Errorf("refreshing session after %d: %w", authErr.StatusCode, refreshErr)
	}

	resp, _, err = c.execute(ctx, req)

	return resp, err
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// execute runs one attempt: resolve the credential, run interceptors, send,
// and map the response. The credential used is returned so Do can decide
// whether a refresh-and-retry makes sense.
func (c *Client) execute(ctx context.Context, req *Request) (*Response, *auth.Credential, error) {
	var (
		cred *auth.Credential
		err  error
	)

	if c.sessions != nil {
		cred, err = c.sessions.Credential(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving credential: %w", err)
		}
	}

	query := cloneValues(req.Query)

	if cred != nil && !cred.HasToken() {
		if req.Method != http.MethodGet {
			return nil, cred, ghost.NewAuthError(http.StatusUnauthorized, "NoPermissionError",
				"write operations require an authenticated session")
		}

		// Anonymous reads carry the client credentials as query
		// parameters.
		for key, values := range cred.Query {
			for _, value := range values {
				query.Add(key, value)
			}
		}
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, cred, err
	}

	ireq := &ghost.Request{
		Method:   req.Method,
		Path:     req.Path,
		Headers:  cloneHeader(req.Header),
		Body:     body,
		Metadata: map[string]interface{}{"query_params": flattenValues(query)},
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, ireq)
	if err != nil {
		return nil, cred, err
	}

	if cached, ok := ireq.Metadata["cached_response"].([]byte); ok {
		return &Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: cached}, cred, nil
	}

	httpResp, err := c.send(ctx, req, ireq, query, cred, body, contentType)
	if err != nil {
		return nil, cred, err
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, cred, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: respBody}

	if httpResp.StatusCode == http.StatusNotModified && c.cacheManager != nil {
		key := c.cacheManager.GetCacheKey(req.Method, req.Path, flattenValues(query))

		entry, cacheErr := c.cacheManager.GetEntry(ctx, key)
		if cacheErr == nil {
			resp.StatusCode = http.StatusOK
			resp.Body = entry.Data
		}
	}

	mappedErr := c.mapError(req.Path, resp)

	iresp := &ghost.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       resp.Body,
		Error:      mappedErr,
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, ireq, iresp)
	if err != nil {
		return resp, cred, err
	}

	return resp, cred, mappedErr
}

// send builds and performs the wire request for one attempt.
func (c *Client) send(ctx context.Context, req *Request, ireq *ghost.Request, query url.Values,
	cred *auth.Credential, body []byte, contentType string,
) (*http.Response, error) {
	fullURL := c.baseURL + req.Path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range ireq.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if cred != nil {
		switch {
		case cred.BearerToken != "":
			httpReq.Header.Set("Authorization", "Bearer "+cred.BearerToken)
		case cred.Cookie != nil:
			httpReq.AddCookie(cred.Cookie)
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("sending request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing %s %s: %w", req.Method, req.Path, err)
	}

	return httpResp, nil
}

// mapError converts non-2xx responses into typed errors.
func (c *Client) mapError(path string, resp *Response) error {
	if resp.StatusCode/100 == 2 {
		return nil
	}

	parsed := ghost.ParseErrorBody(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &ghost.AuthError{StatusCode: resp.StatusCode, Errors: parsed}
	}

	return &ghost.RequestError{StatusCode: resp.StatusCode, Path: path, Errors: parsed}
}

// encodeBody serializes the request body once, so retried attempts resend
// identical bytes.
func encodeBody(req *Request) ([]byte, string, error) {
	if req.RawBody != nil {
		return req.RawBody, req.ContentType, nil
	}

	if req.Body == nil {
		return nil, "", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encoding request body: %w", err)
	}

	return data, "application/json", nil
}

func cloneValues(values url.Values) url.Values {
	cloned := make(url.Values, len(values))
	for key, vals := range values {
		cloned[key] = append([]string(nil), vals...)
	}

	return cloned
}

func cloneHeader(header http.Header) http.Header {
	cloned := make(http.Header, len(header))
	for key, vals := range header {
		cloned[key] = append([]string(nil), vals...)
	}

	return cloned
}

func flattenValues(values url.Values) map[string]string {
	if len(values) == 0 {
		return nil
	}

	flat := make(map[string]string, len(values))
	for key := range values {
		flat[key] = values.Get(key)
	}

	return flat
}
