package constants

import "errors"

// Configuration errors.
var (
	ErrNoCredentialsConfigured = errors.New("no credentials configured, run 'sophosctl config init' or set SOPHOS_CLIENT_ID and SOPHOS_CLIENT_SECRET")
	ErrUnknownConfigKey        = errors.New("unknown configuration key")
	ErrSecretNotPrintable      = errors.New("client_secret is write-only, it cannot be displayed")
	ErrConfigFileNotFound      = errors.New("configuration file not found")
)

// Validation errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format, expected table, json, or yaml")
	ErrInvalidRegion       = errors.New("invalid region, expected one of us, eu, ap, de, ie")
	ErrInvalidEnabledFlag  = errors.New("enabled flag must be 'true' or 'false'")
)

// Required argument errors.
var (
	ErrEndpointIDRequired = errors.New("endpoint ID is required")
	ErrAlertIDRequired    = errors.New("alert ID is required")
	ErrActionRequired     = errors.New("--action flag is required")
)
