package constants

import "time"

// Sophos Central service endpoints.
const (
	// DefaultTokenURL is the global OAuth2 token endpoint.
	DefaultTokenURL = "https://id.sophos.com/api/v2/oauth2/token"

	// DefaultWhoAmIURL is the global identity resolution endpoint.
	DefaultWhoAmIURL = "https://api.central.sophos.com/whoami/v1"

	// DefaultGlobalAPIHost is the global API host used before the data
	// region host is known.
	DefaultGlobalAPIHost = "https://api.central.sophos.com"
)

// API base paths.
const (
	// EndpointAPIBasePath prefixes Endpoint API routes.
	EndpointAPIBasePath = "/endpoint/v1"

	// CommonAPIBasePath prefixes Common API routes (alerts, tenants,
	// admins, roles).
	CommonAPIBasePath = "/common/v1"
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as whoami.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry behavior.
const (
	// DefaultRetryMax is the default maximum number of retries shared
	// across rate-limit and transport failures of one logical call.
	DefaultRetryMax = 3

	// MaxRetryMax caps the configurable retry budget.
	MaxRetryMax = 10

	// DefaultRetryAfter is the wait applied to a 429 response that
	// carries no usable Retry-After header.
	DefaultRetryAfter = 60 * time.Second
)

// Token lifecycle.
const (
	// TokenExpiryThreshold is how long before expiry a cached token is
	// treated as expired and refetched.
	TokenExpiryThreshold = 300 * time.Second
)

// Pagination limits.
const (
	// DefaultPageSize is the page size used when none is requested.
	DefaultPageSize = 50

	// MinPageSize is the smallest page size the API accepts.
	MinPageSize = 1

	// MaxPageSize is the largest page size the API accepts.
	MaxPageSize = 1000
)

// HTTP header names.
const (
	// HeaderAuthorization carries the bearer token.
	HeaderAuthorization = "Authorization"

	// HeaderTenantID scopes requests to a tenant when using partner or
	// organization credentials.
	HeaderTenantID = "X-Tenant-ID"

	// HeaderCorrelationID is returned by the API for support lookups.
	HeaderCorrelationID = "X-Correlation-ID"

	// HeaderRetryAfter carries the rate-limit wait in seconds.
	HeaderRetryAfter = "Retry-After"

	// HeaderContentType and HeaderAccept negotiate request and response
	// bodies.
	HeaderContentType = "Content-Type"
	HeaderAccept      = "Accept"

	// HeaderUserAgent identifies the client.
	HeaderUserAgent = "User-Agent"
)

// Content types.
const (
	// ContentTypeJSON is the media type for API request and response
	// bodies.
	ContentTypeJSON = "application/json"

	// ContentTypeForm is the media type for the OAuth2 token request.
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// User agent.
const (
	// DefaultUserAgent identifies this client to the API.
	DefaultUserAgent = "sophos-central-go/1.0"
)
