package client

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/fivetwenty-io/sophos-central/internal/auth"
	"github.com/fivetwenty-io/sophos-central/internal/http"
	"github.com/fivetwenty-io/sophos-central/pkg/central"
)

// Client implements the central.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager *auth.OAuth2TokenManager
	baseURL      string
	tenantID     string
	logger       central.Logger

	// Resource clients
	endpoints central.EndpointsClient
	alerts    central.AlertsClient
	admins    central.AdminsClient
	roles     central.RolesClient
	tenants   central.TenantsClient
}

// New creates a Sophos Central API client.
//
// Credentials are validated up front but no token is fetched unless host
// resolution needs one: when config.BaseURL is empty, New calls whoami to
// discover the regional API host, which authenticates as a side effect.
func New(ctx context.Context, config *central.Config) (*Client, error) {
	if config == nil {
		return nil, central.ErrConfigRequired
	}

	if config.ClientID == "" {
		return nil, central.ErrMissingClientID
	}

	if config.ClientSecret == "" {
		return nil, central.ErrMissingClientSecret
	}

	tokenManager := newTokenManager(config)

	baseURL, tenantID, err := resolveBaseURL(ctx, config, tokenManager)
	if err != nil {
		return nil, err
	}

	httpOpts := createHTTPClientOptions(config, tenantID)
	httpClient := http.NewClient(baseURL, tokenManager, httpOpts...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      baseURL,
		tenantID:     tenantID,
		logger:       config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

// newTokenManager builds the OAuth2 manager from config, leaving defaulting
// of URLs, threshold, and HTTP client to the auth package.
func newTokenManager(config *central.Config) *auth.OAuth2TokenManager {
	return auth.NewOAuth2TokenManager(&auth.OAuth2Config{
		ClientID:        config.ClientID,
		ClientSecret:    config.ClientSecret,
		TokenURL:        config.TokenURL,
		WhoAmIURL:       config.WhoAmIURL,
		ExpiryThreshold: config.ExpiryThreshold,
		Logger:          config.Logger,
	})
}

// resolveBaseURL returns the regional API host and the tenant ID requests
// are scoped to. An explicit BaseURL skips whoami resolution; otherwise the
// host comes from the whoami apiHosts.dataRegion field, falling back to the
// documented host for config.Region when whoami cannot provide one. Tenant
// principals that did not configure a TenantID are scoped to their own ID.
func resolveBaseURL(ctx context.Context, config *central.Config, tokenManager *auth.OAuth2TokenManager) (string, string, error) {
	if config.BaseURL != "" {
		return normalizeBaseURL(config.BaseURL), config.TenantID, nil
	}

	whoami, err := tokenManager.WhoAmI(ctx)
	if err != nil {
		if config.Region != "" {
			if config.Logger != nil {
				config.Logger.Warn("whoami resolution failed, using region host", map[string]interface{}{
					"region": config.Region,
					"error":  err.Error(),
				})
			}

			return regionBaseURL(config.Region), config.TenantID, nil
		}

		return "", "", fmt.Errorf("resolving API host: %w", err)
	}

	tenantID := config.TenantID
	if tenantID == "" && whoami.IDType == central.IDTypeTenant {
		tenantID = whoami.ID
	}

	if whoami.APIHosts.DataRegion == "" {
		if config.Region != "" {
			return regionBaseURL(config.Region), tenantID, nil
		}

		return "", "", central.ErrNoDataRegion
	}

	return normalizeBaseURL(whoami.APIHosts.DataRegion), tenantID, nil
}

// regionBaseURL derives the documented API host for a data region label
// such as "us03" or "eu01".
func regionBaseURL(region string) string {
	return "https://api-" + region + ".central.sophos.com"
}

// normalizeBaseURL trims a trailing slash and defaults the scheme to https.
func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *central.Config, tenantID string) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryMax(config.RetryMax))
	}

	if config.SkipRateLimitRetry {
		httpOpts = append(httpOpts, http.WithRateLimitRetry(false))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPClient(pooledHTTPClient(config.HTTPTimeout)))
	}

	if tenantID != "" {
		httpOpts = append(httpOpts, http.WithTenantID(tenantID))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	return httpOpts
}

func pooledHTTPClient(timeout time.Duration) *nethttp.Client {
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = timeout

	return httpClient
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.endpoints = NewEndpointsClient(c.httpClient)
	c.alerts = NewAlertsClient(c.httpClient)
	c.admins = NewAdminsClient(c.httpClient)
	c.roles = NewRolesClient(c.httpClient)
	c.tenants = NewTenantsClient(c.httpClient)
}

// Resource client accessors

// Endpoints implements central.Client.Endpoints.
func (c *Client) Endpoints() central.EndpointsClient {
	return c.endpoints
}

// Alerts implements central.Client.Alerts.
func (c *Client) Alerts() central.AlertsClient {
	return c.alerts
}

// Admins implements central.Client.Admins.
func (c *Client) Admins() central.AdminsClient {
	return c.admins
}

// Roles implements central.Client.Roles.
func (c *Client) Roles() central.RolesClient {
	return c.roles
}

// Tenants implements central.Client.Tenants.
func (c *Client) Tenants() central.TenantsClient {
	return c.tenants
}

// BaseURL returns the resolved regional API host.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TenantID returns the tenant ID requests are scoped to, if any.
func (c *Client) TenantID() string {
	return c.tenantID
}

// WhoAmI implements central.Client.WhoAmI.
func (c *Client) WhoAmI(ctx context.Context) (*central.WhoAmI, error) {
	whoami, err := c.tokenManager.WhoAmI(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving identity: %w", err)
	}

	return whoami, nil
}

// AccessToken implements central.Client.AccessToken.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("getting access token: %w", err)
	}

	return token.AccessToken, nil
}

// RefreshToken implements central.Client.RefreshToken.
func (c *Client) RefreshToken(ctx context.Context) error {
	_, err := c.tokenManager.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("refreshing access token: %w", err)
	}

	return nil
}

// InvalidateAuth implements central.Client.InvalidateAuth.
func (c *Client) InvalidateAuth() {
	c.tokenManager.Invalidate()
}

// Raw JSON operations. Errors from the HTTP layer are returned as-is so the
// typed error classification survives errors.As checks.

// Get implements central.Client.Get.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (map[string]interface{}, error) {
	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	return resp.JSON()
}

// Post implements central.Client.Post.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (map[string]interface{}, error) {
	resp, err := c.httpClient.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return resp.JSON()
}

// Patch implements central.Client.Patch.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (map[string]interface{}, error) {
	resp, err := c.httpClient.Patch(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return resp.JSON()
}

// Delete implements central.Client.Delete.
func (c *Client) Delete(ctx context.Context, path string) (map[string]interface{}, error) {
	resp, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return nil, err
	}

	return resp.JSON()
}

// List implements central.Client.List.
func (c *Client) List(ctx context.Context, path string, params *central.QueryParams) (*central.ListResponse[map[string]interface{}], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var list central.ListResponse[map[string]interface{}]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing list response: %w", err)
	}

	return &list, nil
}

// CloseIdleConnections releases pooled transport connections. Session
// owners call this on close.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}
