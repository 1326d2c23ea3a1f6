// Package auth implements OAuth2 client-credentials authentication and
// token lifecycle management for the Sophos Central APIs.
package auth

import (
	"sync"
	"time"
	"unicode"

	"github.com/fivetwenty-io/sophos-central/internal/constants"
)

// Token represents an OAuth2 access token with expiration tracking.
// The wire fields mirror the token endpoint response; ExpiresAt is
// computed locally from ExpiresIn when the token is issued.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// Valid reports whether the token can still be used for requests. A token
// expiring within the default threshold counts as invalid so callers refresh
// before the server starts rejecting it.
func (t *Token) Valid() bool {
	return t.ValidWithin(constants.TokenExpiryThreshold)
}

// ValidWithin reports whether the token remains usable for at least the
// given threshold. A zero ExpiresAt means the token never expires.
func (t *Token) ValidWithin(threshold time.Duration) bool {
	return t.ValidAt(time.Now(), threshold)
}

// ValidAt reports whether the token remains usable for at least the given
// threshold past the supplied instant. A zero ExpiresAt means the token
// never expires.
func (t *Token) ValidAt(at time.Time, threshold time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return at.Add(threshold).Before(t.ExpiresAt)
}

// AuthorizationHeader formats the token as an Authorization header value,
// e.g. "Bearer abc123". The token type from the wire is lowercase, so the
// first letter is capitalized to match the header convention.
func (t *Token) AuthorizationHeader() string {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	} else {
		runes := []rune(tokenType)
		runes[0] = unicode.ToUpper(runes[0])
		tokenType = string(runes)
	}

	return tokenType + " " + t.AccessToken
}

// TokenStore provides thread-safe storage for a single token.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates a new empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the stored token, or nil if none is set.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set stores a token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}
