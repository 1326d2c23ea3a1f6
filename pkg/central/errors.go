package central

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrMissingClientID     = errors.New("client ID is required")
	ErrMissingClientSecret = errors.New("client secret is required")
	ErrConfigRequired      = errors.New("config is required")
	ErrInvalidPageSize     = errors.New("page size must be between 1 and 1000")
	ErrNilPageFunc         = errors.New("page fetch function is required")
	ErrNoMoreItems         = errors.New("no more items")
	ErrNoDataRegion        = errors.New("whoami response contains no data region host")
)

// APIError represents an error response from the Sophos Central API.
//
// Code carries the machine-readable error identifier from the response body
// (for example "badRequest" or "token_expired"); CorrelationID and RequestID
// are support references echoed from the failing response.
type APIError struct {
	StatusCode    int                    `json:"-"                       yaml:"-"`
	Code          string                 `json:"error,omitempty"         yaml:"error,omitempty"`
	Message       string                 `json:"message,omitempty"       yaml:"message,omitempty"`
	CorrelationID string                 `json:"correlationId,omitempty" yaml:"correlationId,omitempty"`
	RequestID     string                 `json:"requestId,omitempty"     yaml:"requestId,omitempty"`
	Raw           map[string]interface{} `json:"-"                       yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}

	if e.Code != "" {
		return fmt.Sprintf("%s (status %d, code %s)", msg, e.StatusCode, e.Code)
	}

	return fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
}

// AuthenticationError indicates an authentication failure.
type AuthenticationError struct {
	APIError
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.APIError.Error()
}

// As implements error matching so errors.As reaches the embedded *APIError.
func (e *AuthenticationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError

		return true
	}

	return false
}

// InvalidCredentialsError indicates the client ID or secret was rejected.
type InvalidCredentialsError struct {
	AuthenticationError
}

// Error implements the error interface.
func (e *InvalidCredentialsError) Error() string {
	return "invalid client credentials: " + e.APIError.Error()
}

// As implements error matching for the authentication error hierarchy.
func (e *InvalidCredentialsError) As(target any) bool {
	switch t := target.(type) {
	case **APIError:
		*t = &e.APIError

		return true
	case **AuthenticationError:
		*t = &e.AuthenticationError

		return true
	}

	return false
}

// TokenExpiredError indicates the access token expired or the server
// reported an expiry-class authentication failure.
type TokenExpiredError struct {
	AuthenticationError
}

// Error implements the error interface.
func (e *TokenExpiredError) Error() string {
	return "access token expired: " + e.APIError.Error()
}

// As implements error matching for the authentication error hierarchy.
func (e *TokenExpiredError) As(target any) bool {
	switch t := target.(type) {
	case **APIError:
		*t = &e.APIError

		return true
	case **AuthenticationError:
		*t = &e.AuthenticationError

		return true
	}

	return false
}

// TokenRefreshError indicates token acquisition failed for a reason other
// than rejected credentials.
type TokenRefreshError struct {
	AuthenticationError

	Cause error
}

// Error implements the error interface.
func (e *TokenRefreshError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("token refresh failed: %v", e.Cause)
	}

	return "token refresh failed: " + e.APIError.Error()
}

// Unwrap returns the underlying cause, if any.
func (e *TokenRefreshError) Unwrap() error {
	return e.Cause
}

// As implements error matching for the authentication error hierarchy.
func (e *TokenRefreshError) As(target any) bool {
	switch t := target.(type) {
	case **APIError:
		*t = &e.APIError

		return true
	case **AuthenticationError:
		*t = &e.AuthenticationError

		return true
	}

	return false
}

// ValidationError indicates the request was malformed (400).
type ValidationError struct {
	APIError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation failed: " + e.APIError.Error()
}

// As implements error matching so errors.As reaches the embedded *APIError.
func (e *ValidationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError

		return true
	}

	return false
}

// PermissionError indicates the principal lacks permission (403).
type PermissionError struct {
	APIError
}

// Error implements the error interface.
func (e *PermissionError) Error() string {
	return "permission denied: " + e.APIError.Error()
}

// As implements error matching so errors.As reaches the embedded *APIError.
func (e *PermissionError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError

		return true
	}

	return false
}

// NotFoundError indicates the requested resource does not exist (404).
type NotFoundError struct {
	APIError
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return "resource not found: " + e.APIError.Error()
}

// As implements error matching so errors.As reaches the embedded *APIError.
func (e *NotFoundError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError

		return true
	}

	return false
}

// RateLimitError indicates the API rate limit was exhausted (429) and the
// retry budget did not cover it. RetryAfter is the server-requested wait.
type RateLimitError struct {
	APIError

	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
	}

	return "rate limit exceeded"
}

// As implements error matching so errors.As reaches the embedded *APIError.
func (e *RateLimitError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError

		return true
	}

	return false
}

// ServerError indicates a server-side failure (5xx).
type ServerError struct {
	APIError
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// As implements error matching so errors.As reaches the embedded *APIError.
func (e *ServerError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError

		return true
	}

	return false
}

// NetworkError indicates a transport-level failure before a response was
// classified.
type NetworkError struct {
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("network error during %s: %v", e.Op, e.Cause)
	}

	return fmt.Sprintf("network error: %v", e.Cause)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// TimeoutError indicates the request timed out after exhausting retries.
type TimeoutError struct {
	NetworkError
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %v", e.Cause)
}

// As implements error matching so errors.As reaches the embedded *NetworkError.
func (e *TimeoutError) As(target any) bool {
	if t, ok := target.(**NetworkError); ok {
		*t = &e.NetworkError

		return true
	}

	return false
}

// ConnectionError indicates the connection could not be established or was
// lost, after exhausting retries.
type ConnectionError struct {
	NetworkError
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Cause)
}

// As implements error matching so errors.As reaches the embedded *NetworkError.
func (e *ConnectionError) As(target any) bool {
	if t, ok := target.(**NetworkError); ok {
		*t = &e.NetworkError

		return true
	}

	return false
}

// PaginationError wraps any error raised while fetching a page, recording
// which page fetch failed. The original error remains reachable through
// errors.As and errors.Is.
type PaginationError struct {
	Page  int
	Cause error
}

// Error implements the error interface.
func (e *PaginationError) Error() string {
	return fmt.Sprintf("pagination failed at page %d: %v", e.Page, e.Cause)
}

// Unwrap returns the wrapped fetch error.
func (e *PaginationError) Unwrap() error {
	return e.Cause
}

// Error codes the token and API services use to signal expiry-class 401s.
const (
	errorCodeInvalidToken = "invalid_token"
	errorCodeTokenExpired = "token_expired"
)

// ErrorFromResponse builds the typed error for a non-2xx API response.
//
// The response body is expected to carry {"error", "message",
// "correlationId", "requestId"}; bodies that do not parse fall back to the
// raw text as the message.
func ErrorFromResponse(statusCode int, body []byte, headers http.Header) error {
	base := APIError{StatusCode: statusCode}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err == nil {
		base.Raw = payload
		base.Code, _ = payload["error"].(string)
		base.Message, _ = payload["message"].(string)
		base.CorrelationID, _ = payload["correlationId"].(string)
		base.RequestID, _ = payload["requestId"].(string)
	} else if len(body) > 0 {
		base.Message = string(body)
	}

	switch {
	case statusCode == http.StatusBadRequest:
		return &ValidationError{APIError: base}
	case statusCode == http.StatusUnauthorized:
		if base.Code == errorCodeInvalidToken || base.Code == errorCodeTokenExpired {
			return &TokenExpiredError{AuthenticationError{APIError: base}}
		}

		return &InvalidCredentialsError{AuthenticationError{APIError: base}}
	case statusCode == http.StatusForbidden:
		return &PermissionError{APIError: base}
	case statusCode == http.StatusNotFound:
		return &NotFoundError{APIError: base}
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			APIError:   base,
			RetryAfter: RetryAfterFromHeaders(headers),
		}
	case statusCode >= http.StatusInternalServerError:
		return &ServerError{APIError: base}
	default:
		return &base
	}
}

// RetryAfterFromHeaders parses the Retry-After header, accepting both the
// integer-seconds and HTTP-date forms. Absent or unusable values fall back
// to the documented 60 second default.
func RetryAfterFromHeaders(headers http.Header) time.Duration {
	const defaultRetryAfter = 60 * time.Second

	value := headers.Get("Retry-After")
	if value == "" {
		return defaultRetryAfter
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := time.Parse(time.RFC1123, value); err == nil {
		if wait := time.Until(t); wait > 0 {
			return wait
		}
	}

	return defaultRetryAfter
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	notFound := &NotFoundError{}

	return errors.As(err, &notFound)
}

// IsUnauthorized checks if the error is an authentication error of any kind.
func IsUnauthorized(err error) bool {
	authErr := &AuthenticationError{}

	return errors.As(err, &authErr)
}

// IsTokenExpired checks if the error reports an expired access token.
func IsTokenExpired(err error) bool {
	expired := &TokenExpiredError{}

	return errors.As(err, &expired)
}

// IsForbidden checks if the error is a permission error.
func IsForbidden(err error) bool {
	permErr := &PermissionError{}

	return errors.As(err, &permErr)
}

// IsRateLimit checks if the error is a rate limit error and returns the
// server-requested wait when it is.
func IsRateLimit(err error) (time.Duration, bool) {
	rateErr := &RateLimitError{}
	if errors.As(err, &rateErr) {
		return rateErr.RetryAfter, true
	}

	return 0, false
}

// IsTimeout checks if the error is a request timeout.
func IsTimeout(err error) bool {
	timeoutErr := &TimeoutError{}

	return errors.As(err, &timeoutErr)
}

// IsConnectionError checks if the error is a connection failure.
func IsConnectionError(err error) bool {
	connErr := &ConnectionError{}

	return errors.As(err, &connErr)
}
