package central

import (
	"context"
	"net/url"
	"time"
)

// EndpointsClient provides access to the Endpoint API.
type EndpointsClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Endpoint], error)
	Get(ctx context.Context, endpointID string) (*Endpoint, error)
	Update(ctx context.Context, endpointID string, request *EndpointUpdateRequest) (*Endpoint, error)
	Delete(ctx context.Context, endpointID string) error
	Scan(ctx context.Context, endpointID string) (*ScanResponse, error)
	Isolate(ctx context.Context, endpointID, comment string) (*IsolationResponse, error)
	Unisolate(ctx context.Context, endpointID string) error
	TamperProtection(ctx context.Context, endpointID string) (*TamperProtection, error)
	UpdateTamperProtection(ctx context.Context, endpointID string, request *TamperProtectionUpdateRequest) (*TamperProtection, error)
	TamperProtectionPassword(ctx context.Context, endpointID string) (*TamperProtectionPassword, error)
	Paginator(params *QueryParams, maxPages int) (*Paginator[Endpoint], error)
}

// AlertsClient provides access to the Common API alert endpoints.
type AlertsClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Alert], error)
	Get(ctx context.Context, alertID string) (*Alert, error)
	Action(ctx context.Context, alertID string, request *AlertActionRequest) (*AlertActionResponse, error)
	Paginator(params *QueryParams, maxPages int) (*Paginator[Alert], error)
}

// AdminsClient provides access to the Common API admin endpoints.
type AdminsClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Admin], error)
	Get(ctx context.Context, adminID string) (*Admin, error)
	Create(ctx context.Context, request *AdminCreateRequest) (*Admin, error)
	Update(ctx context.Context, adminID string, request *AdminUpdateRequest) (*Admin, error)
	Delete(ctx context.Context, adminID string) error
}

// RolesClient provides access to the Common API role endpoints.
type RolesClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Role], error)
	Get(ctx context.Context, roleID string) (*Role, error)
	Create(ctx context.Context, request *RoleCreateRequest) (*Role, error)
	Update(ctx context.Context, roleID string, request *RoleUpdateRequest) (*Role, error)
	Delete(ctx context.Context, roleID string) error
}

// TenantsClient provides access to the Common API tenant endpoints.
type TenantsClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Tenant], error)
	Get(ctx context.Context, tenantID string) (*Tenant, error)
	Paginator(params *QueryParams, maxPages int) (*Paginator[Tenant], error)
}

// Client is the Sophos Central API client surface.
type Client interface {
	Endpoints() EndpointsClient
	Alerts() AlertsClient
	Admins() AdminsClient
	Roles() RolesClient
	Tenants() TenantsClient

	// WhoAmI resolves the authenticated principal and its API hosts. The
	// result is cached for the lifetime of the client.
	WhoAmI(ctx context.Context) (*WhoAmI, error)

	// AccessToken returns a valid access token, fetching or refreshing as
	// needed.
	AccessToken(ctx context.Context) (string, error)

	// RefreshToken forces a token refresh regardless of expiry.
	RefreshToken(ctx context.Context) error

	// InvalidateAuth drops the cached token and identity so the next call
	// re-authenticates.
	InvalidateAuth()

	// Raw JSON operations against the resolved API host, for paths the
	// typed clients do not cover. Responses decode into a generic map;
	// empty bodies and 204 responses decode to an empty map.
	Get(ctx context.Context, path string, query url.Values) (map[string]interface{}, error)
	Post(ctx context.Context, path string, body interface{}) (map[string]interface{}, error)
	Patch(ctx context.Context, path string, body interface{}) (map[string]interface{}, error)
	Delete(ctx context.Context, path string) (map[string]interface{}, error)

	// List performs a raw paginated listing, decoding items as generic
	// maps, so callers can drive a Paginator over any listing path.
	List(ctx context.Context, path string, params *QueryParams) (*ListResponse[map[string]interface{}], error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NoopLogger is a Logger that discards everything.
type NoopLogger struct{}

// Debug implements Logger.
func (NoopLogger) Debug(string, map[string]interface{}) {}

// Info implements Logger.
func (NoopLogger) Info(string, map[string]interface{}) {}

// Warn implements Logger.
func (NoopLogger) Warn(string, map[string]interface{}) {}

// Error implements Logger.
func (NoopLogger) Error(string, map[string]interface{}) {}

// Config represents client configuration for building a central.Client.
//
// # Authentication
//
// The client authenticates with the OAuth2 client_credentials grant using
// ClientID and ClientSecret. Tokens are cached in memory per client and
// refetched once they are within ExpiryThreshold of expiring. There is no
// cross-process or on-disk token persistence.
//
// # Host resolution
//
// If BaseURL is empty, centralclient.New resolves the regional API host by
// calling the whoami endpoint and using apiHosts.dataRegion, falling back to
// the documented host for Region when whoami cannot provide one. Setting
// BaseURL skips resolution, which is mainly useful for tests and proxies.
//
// # Timeouts and retries
//
// Per-request deadlines should be controlled via context. RetryMax bounds a
// single shared retry budget per call, spent on rate limits and transient
// transport failures alike; other HTTP errors are never retried.
type Config struct {
	// ClientID: OAuth2 client ID for the client_credentials grant.
	ClientID string
	// ClientSecret: OAuth2 client secret used with ClientID.
	ClientSecret string

	// TokenURL: OAuth2 token endpoint. Defaults to the global Sophos
	// identity service.
	TokenURL string
	// WhoAmIURL: identity resolution endpoint. Defaults to the global
	// Sophos Central API host.
	WhoAmIURL string
	// BaseURL: regional API host override. When set, whoami-based host
	// resolution is skipped.
	BaseURL string
	// TenantID: tenant to scope requests to. Needed when the credentials
	// belong to a partner or organization principal; it is sent as the
	// X-Tenant-ID header. Tenant principals are scoped implicitly.
	TenantID string
	// Region: data region label (for example us03 or eu01), used to derive
	// the documented regional host when whoami cannot provide one. BaseURL
	// and whoami-resolved hosts take precedence.
	Region string

	// HTTPTimeout: timeout applied to the underlying HTTP client. Zero
	// uses the default of 30 seconds.
	HTTPTimeout time.Duration
	// RetryMax: shared retry budget per logical call. Zero uses the
	// default of 3.
	RetryMax int
	// RateLimitRetry: whether 429 responses are retried after the
	// server-requested wait. Enabled by default; set SkipRateLimitRetry
	// to turn it off.
	SkipRateLimitRetry bool
	// ExpiryThreshold: how long before expiry a cached token is treated
	// as expired. Zero uses the default of 300 seconds.
	ExpiryThreshold time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger
	// is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Interceptors: optional request/response interceptor chain run around
	// every API call.
	Interceptors *InterceptorChain
}
