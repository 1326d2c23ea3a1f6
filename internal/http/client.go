// Package http implements the request pipeline shared by every Sophos
// Central API client: authorization header injection, typed error
// classification, and a single retry budget spent on rate limits and
// transient transport failures alike.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/fivetwenty-io/sophos-central/internal/auth"
	"github.com/fivetwenty-io/sophos-central/internal/constants"
	"github.com/fivetwenty-io/sophos-central/pkg/central"
)

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// JSON decodes the response body into a generic map. Empty bodies, which
// include 204 responses, decode to an empty map.
func (r *Response) JSON() (map[string]interface{}, error) {
	result := map[string]interface{}{}

	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return result, nil
	}

	if err := json.Unmarshal(r.Body, &result); err != nil {
		return nil, fmt.Errorf("decoding response body: %w", err)
	}

	return result, nil
}

// Sleeper waits for the given duration, returning early with the context
// error when the context is done. Tests inject recording sleepers so retry
// waits can be asserted without real delays.
type Sleeper func(ctx context.Context, wait time.Duration) error

// Client is the HTTP request pipeline for the Sophos Central APIs.
//
// Every logical call owns one retry budget of retryMax extra attempts,
// consumed by 429 responses and transient transport failures alike. The
// Authorization header is fetched from the token manager on every attempt,
// so a token refreshed mid-call is picked up by the next attempt. Other
// HTTP error statuses are converted to typed errors and never retried.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenManager   auth.TokenManager
	retryMax       int
	rateLimitRetry bool
	tenantID       string
	userAgent      string
	logger         central.Logger
	debug          bool
	sleep          Sleeper
	interceptors   *central.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the logger used for debug and retry logging.
func WithLogger(logger central.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response debug logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryMax sets the retry budget shared by rate-limit and transport
// retries of one logical call. Values are clamped to the supported range.
func WithRetryMax(retryMax int) Option {
	return func(c *Client) {
		if retryMax < 0 {
			retryMax = 0
		}

		if retryMax > constants.MaxRetryMax {
			retryMax = constants.MaxRetryMax
		}

		c.retryMax = retryMax
	}
}

// WithRateLimitRetry controls whether 429 responses are retried after the
// server-requested wait. Enabled by default.
func WithRateLimitRetry(enabled bool) Option {
	return func(c *Client) {
		c.rateLimitRetry = enabled
	}
}

// WithTenantID sends the X-Tenant-ID header on every request, scoping calls
// made with partner or organization credentials to one tenant.
func WithTenantID(tenantID string) Option {
	return func(c *Client) {
		c.tenantID = tenantID
	}
}

// WithSleeper overrides how retry waits are performed.
func WithSleeper(sleep Sleeper) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithInterceptors attaches a request/response interceptor chain.
func WithInterceptors(chain *central.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a pipeline client for the given API host. A nil token
// manager sends requests without an Authorization header, which is useful
// in tests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:        baseURL,
		httpClient:     httpClient,
		tokenManager:   tokenManager,
		retryMax:       constants.DefaultRetryMax,
		rateLimitRetry: true,
		userAgent:      constants.DefaultUserAgent,
		sleep:          sleepContext,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes the request, classifying the outcome per attempt:
//
//   - 200 and 201 return the response; 204 returns an empty body
//   - 429 waits for Retry-After (60s when unusable) and retries, or
//     surfaces a RateLimitError once the budget is spent
//   - timeouts and connection failures back off 2^attempt seconds and
//     retry, or surface TimeoutError/ConnectionError once spent
//   - every other non-2xx status maps to a typed error immediately
//
// The returned Response is non-nil whenever an HTTP status was received,
// including error statuses.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	body, err := marshalBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	intercepted, err := c.runRequestInterceptors(ctx, req, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.doWithRetries(ctx, req, body, intercepted)

	if ierr := c.runResponseInterceptors(ctx, intercepted, resp, err); ierr != nil && err == nil {
		return resp, ierr
	}

	return resp, err
}

func (c *Client) doWithRetries(ctx context.Context, req *Request, body []byte, intercepted *central.Request) (*Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, req, body, intercepted)
		if err != nil {
			retry, wait, terminal := c.classifyTransport(req, err, attempt)
			if !retry {
				return nil, terminal
			}

			c.warn("transient transport failure, retrying", map[string]interface{}{
				"method":  req.Method,
				"path":    req.Path,
				"wait":    wait.String(),
				"attempt": attempt + 1,
				"error":   err.Error(),
			})

			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, serr
			}

			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := central.RetryAfterFromHeaders(resp.Headers)
			if c.rateLimitRetry && attempt < c.retryMax {
				c.warn("rate limit exceeded, retrying", map[string]interface{}{
					"method":  req.Method,
					"path":    req.Path,
					"wait":    wait.String(),
					"attempt": attempt + 1,
				})

				if serr := c.sleep(ctx, wait); serr != nil {
					return nil, serr
				}

				continue
			}

			return resp, central.ErrorFromResponse(resp.StatusCode, resp.Body, resp.Headers)
		}

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusNoContent:
			return resp, nil
		default:
			return resp, central.ErrorFromResponse(resp.StatusCode, resp.Body, resp.Headers)
		}
	}
}

// send performs one HTTP exchange. The Authorization header is fetched
// fresh for each call.
func (c *Client) send(ctx context.Context, req *Request, body []byte, intercepted *central.Request) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)

	if body != nil {
		httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	if c.tenantID != "" {
		httpReq.Header.Set(constants.HeaderTenantID, c.tenantID)
	}

	if intercepted != nil {
		for key, values := range intercepted.Headers {
			for _, value := range values {
				httpReq.Header.Set(key, value)
			}
		}
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.tokenManager != nil {
		authHeader, err := c.tokenManager.AuthorizationHeader(ctx)
		if err != nil {
			return nil, &authError{cause: err}
		}

		httpReq.Header.Set(constants.HeaderAuthorization, authHeader)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         fullURL,
			"status_code": httpResp.StatusCode,
			"body_bytes":  len(respBody),
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// authError marks token acquisition failures so the retry loop passes them
// through untouched instead of classifying them as transport failures.
type authError struct {
	cause error
}

func (e *authError) Error() string { return e.cause.Error() }

func (e *authError) Unwrap() error { return e.cause }

// classifyTransport decides whether a failed exchange is retried. It
// returns the backoff wait when retrying, or the typed terminal error when
// not.
func (c *Client) classifyTransport(req *Request, err error, attempt int) (retry bool, wait time.Duration, terminal error) {
	authErr := &authError{}
	if errors.As(err, &authErr) {
		return false, 0, authErr.cause
	}

	operation := req.Method + " " + req.Path

	switch {
	case errors.Is(err, context.Canceled):
		return false, 0, &central.NetworkError{Op: operation, Cause: err}
	case isTimeout(err):
		if attempt < c.retryMax {
			return true, backoff(attempt), nil
		}

		return false, 0, &central.TimeoutError{NetworkError: central.NetworkError{Op: operation, Cause: err}}
	case isConnectionFailure(err):
		if attempt < c.retryMax {
			return true, backoff(attempt), nil
		}

		return false, 0, &central.ConnectionError{NetworkError: central.NetworkError{Op: operation, Cause: err}}
	default:
		return false, 0, &central.NetworkError{Op: operation, Cause: err}
	}
}

// backoff returns the exponential wait for the given zero-based attempt:
// 1s, 2s, 4s, ...
func backoff(attempt int) time.Duration {
	return (1 << attempt) * time.Second
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}

func marshalBody(body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (c *Client) runRequestInterceptors(ctx context.Context, req *Request, body []byte) (*central.Request, error) {
	if c.interceptors == nil {
		return nil, nil
	}

	intercepted := &central.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: http.Header{},
		Body:    body,
	}

	if err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted); err != nil {
		return nil, err
	}

	return intercepted, nil
}

func (c *Client) runResponseInterceptors(ctx context.Context, intercepted *central.Request, resp *Response, callErr error) error {
	if c.interceptors == nil || intercepted == nil {
		return nil
	}

	interceptedResp := &central.Response{Error: callErr}
	if resp != nil {
		interceptedResp.StatusCode = resp.StatusCode
		interceptedResp.Headers = resp.Headers
		interceptedResp.Body = resp.Body
	}

	if err := c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, interceptedResp); err != nil {
		if callErr != nil {
			c.warn("response interceptor failed", map[string]interface{}{"error": err.Error()})

			return nil
		}

		return err
	}

	return nil
}

func (c *Client) warn(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}

// sleepContext is the default Sleeper.
func sleepContext(ctx context.Context, wait time.Duration) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CloseIdleConnections releases pooled connections held by the underlying
// transport.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
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

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}
