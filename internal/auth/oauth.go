package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/fivetwenty-io/sophos-central/internal/constants"
	"github.com/fivetwenty-io/sophos-central/pkg/central"
)

// Static errors for err113 compliance.
var (
	ErrEmptyAccessToken = errors.New("token response contains no access token")
)

// TokenManager is the authentication surface the HTTP layer depends on.
type TokenManager interface {
	// GetToken returns the cached token, fetching a new one when the
	// cache is empty or the token expires within the configured
	// threshold.
	GetToken(ctx context.Context) (*Token, error)

	// RefreshToken unconditionally fetches a fresh token, replacing
	// whatever is cached.
	RefreshToken(ctx context.Context) (*Token, error)

	// AuthorizationHeader returns the Authorization header value for a
	// valid token, e.g. "Bearer abc123".
	AuthorizationHeader(ctx context.Context) (string, error)
}

// OAuth2Config configures an OAuth2TokenManager.
type OAuth2Config struct {
	// ClientID and ClientSecret for the client_credentials grant.
	ClientID     string
	ClientSecret string

	// TokenURL is the OAuth2 token endpoint. Defaults to the global
	// Sophos identity service.
	TokenURL string

	// WhoAmIURL is the identity resolution endpoint. Defaults to the
	// global Sophos Central API host.
	WhoAmIURL string

	// ExpiryThreshold is how long before expiry a cached token counts as
	// expired. Zero uses the 300 second default.
	ExpiryThreshold time.Duration

	// HTTPClient overrides the HTTP client used for token and whoami
	// requests.
	HTTPClient *http.Client

	// Logger receives debug events. Token material is never logged.
	Logger central.Logger
}

// OAuth2TokenManager manages access tokens for the client_credentials
// grant. A single mutex serializes acquisition, so concurrent callers that
// find an expired cache collapse into one token request; the rest observe
// the refreshed cache once the winner releases the lock.
type OAuth2TokenManager struct {
	clientID        string
	clientSecret    string
	tokenURL        string
	whoamiURL       string
	expiryThreshold time.Duration
	httpClient      *http.Client
	logger          central.Logger

	mu    sync.Mutex
	store *TokenStore

	whoamiMu    sync.Mutex
	whoamiCache *central.WhoAmI

	now func() time.Time
}

// NewOAuth2TokenManager creates a token manager for the given credentials.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	tokenURL := config.TokenURL
	if tokenURL == "" {
		tokenURL = constants.DefaultTokenURL
	}

	whoamiURL := config.WhoAmIURL
	if whoamiURL == "" {
		whoamiURL = constants.DefaultWhoAmIURL
	}

	threshold := config.ExpiryThreshold
	if threshold <= 0 {
		threshold = constants.TokenExpiryThreshold
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = constants.ShortHTTPTimeout
	}

	return &OAuth2TokenManager{
		clientID:        config.ClientID,
		clientSecret:    config.ClientSecret,
		tokenURL:        tokenURL,
		whoamiURL:       whoamiURL,
		expiryThreshold: threshold,
		httpClient:      httpClient,
		logger:          config.Logger,
		store:           NewTokenStore(),
		now:             time.Now,
	}
}

// GetToken returns a valid access token, acquiring a new one when the cache
// is empty or the cached token expires within the threshold.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (*Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token := m.store.Get(); token.ValidAt(m.now(), m.expiryThreshold) {
		return token, nil
	}

	token, err := m.acquireToken(ctx)
	if err != nil {
		return nil, err
	}

	m.store.Set(token)

	return token, nil
}

// RefreshToken discards the cached token and acquires a fresh one. Callers
// racing a refresh serialize on the same lock as GetToken.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) (*Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.acquireToken(ctx)
	if err != nil {
		return nil, err
	}

	m.store.Set(token)

	return token, nil
}

// AuthorizationHeader returns the Authorization header value for a valid
// token.
func (m *OAuth2TokenManager) AuthorizationHeader(ctx context.Context) (string, error) {
	token, err := m.GetToken(ctx)
	if err != nil {
		return "", err
	}

	return token.AuthorizationHeader(), nil
}

// WhoAmI resolves the authenticated principal and its API hosts. The result
// is cached until Invalidate is called.
func (m *OAuth2TokenManager) WhoAmI(ctx context.Context) (*central.WhoAmI, error) {
	m.whoamiMu.Lock()
	defer m.whoamiMu.Unlock()

	if m.whoamiCache != nil {
		return m.whoamiCache, nil
	}

	authHeader, err := m.AuthorizationHeader(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.whoamiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating whoami request: %w", err)
	}

	req.Header.Set(constants.HeaderAuthorization, authHeader)
	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	m.debug("resolving identity", map[string]interface{}{"url": m.whoamiURL})

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, &central.NetworkError{Op: "whoami", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &central.NetworkError{Op: "whoami", Cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &central.TokenExpiredError{
			AuthenticationError: central.AuthenticationError{
				APIError: apiErrorFromBody(resp.StatusCode, body, "authentication failed for whoami"),
			},
		}
	case resp.StatusCode != http.StatusOK:
		return nil, &central.AuthenticationError{
			APIError: apiErrorFromBody(resp.StatusCode, body, "whoami request failed"),
		}
	}

	var whoami central.WhoAmI
	if err := json.Unmarshal(body, &whoami); err != nil {
		return nil, fmt.Errorf("parsing whoami response: %w", err)
	}

	m.whoamiCache = &whoami
	m.debug("identity resolved", map[string]interface{}{
		"id":          whoami.ID,
		"id_type":     whoami.IDType,
		"data_region": whoami.APIHosts.DataRegion,
	})

	return &whoami, nil
}

// Invalidate drops the cached token and identity so the next call
// re-authenticates from scratch.
func (m *OAuth2TokenManager) Invalidate() {
	m.mu.Lock()
	m.store.Clear()
	m.mu.Unlock()

	m.whoamiMu.Lock()
	m.whoamiCache = nil
	m.whoamiMu.Unlock()
}

// acquireToken requests a new token from the token endpoint. Callers must
// hold m.mu.
func (m *OAuth2TokenManager) acquireToken(ctx context.Context) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", m.clientID)
	form.Set("client_secret", m.clientSecret)
	form.Set("scope", "token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &central.TokenRefreshError{Cause: fmt.Errorf("creating token request: %w", err)}
	}

	req.Header.Set(constants.HeaderContentType, constants.ContentTypeForm)

	m.debug("requesting access token", map[string]interface{}{"url": m.tokenURL})

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, &central.TokenRefreshError{Cause: fmt.Errorf("requesting token: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &central.TokenRefreshError{Cause: fmt.Errorf("reading token response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &central.InvalidCredentialsError{
			AuthenticationError: central.AuthenticationError{
				APIError: apiErrorFromBody(resp.StatusCode, body, "invalid client credentials"),
			},
		}
	case resp.StatusCode != http.StatusOK:
		return nil, &central.TokenRefreshError{
			AuthenticationError: central.AuthenticationError{
				APIError: apiErrorFromBody(resp.StatusCode, body, "token acquisition failed"),
			},
		}
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &central.TokenRefreshError{Cause: fmt.Errorf("parsing token response: %w", err)}
	}

	if token.AccessToken == "" {
		return nil, &central.TokenRefreshError{Cause: ErrEmptyAccessToken}
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = m.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	m.debug("access token acquired", map[string]interface{}{
		"expires_in": token.ExpiresIn,
	})

	return &token, nil
}

func (m *OAuth2TokenManager) debug(msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.Debug(msg, fields)
	}
}

// apiErrorFromBody builds an APIError from an error response body, falling
// back to the given message when the body carries none.
func apiErrorFromBody(statusCode int, body []byte, fallback string) central.APIError {
	apiErr := central.APIError{StatusCode: statusCode, Message: fallback}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Raw = payload
		apiErr.Code, _ = payload["error"].(string)
		apiErr.CorrelationID, _ = payload["correlationId"].(string)
		apiErr.RequestID, _ = payload["requestId"].(string)

		if msg, ok := payload["message"].(string); ok && msg != "" {
			apiErr.Message = msg
		}
	}

	return apiErr
}
