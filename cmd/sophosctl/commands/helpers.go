package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fivetwenty-io/sophos-central/internal/constants"
	"github.com/fivetwenty-io/sophos-central/pkg/central"
	"github.com/fivetwenty-io/sophos-central/pkg/centralclient"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	// Masked replaces secret values in rendered output.
	Masked = "***"

	timeFormat = "2006-01-02 15:04:05"
)

// Common static errors used throughout the commands package.
var (
	ErrClientIDRequired     = errors.New("client ID is required")
	ErrClientSecretRequired = errors.New("client secret is required")
)

// CreateClient builds a Sophos Central client from the effective viper
// configuration (flags, SOPHOS_ environment variables, and the config file).
func CreateClient(ctx context.Context) (central.Client, error) {
	clientID := viper.GetString("client_id")
	clientSecret := viper.GetString("client_secret")

	if clientID == "" || clientSecret == "" {
		return nil, constants.ErrNoCredentialsConfigured
	}

	config := &central.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Region:       viper.GetString("region"),
		TenantID:     viper.GetString("tenant_id"),
		BaseURL:      viper.GetString("base_url"),
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = newStderrLogger()
	}

	client, err := centralclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// stderrLogger writes key-value log lines to stderr for --verbose runs.
type stderrLogger struct{}

func newStderrLogger() central.Logger {
	return stderrLogger{}
}

func (l stderrLogger) Debug(msg string, fields map[string]interface{}) {
	l.write("DEBUG", msg, fields)
}

func (l stderrLogger) Info(msg string, fields map[string]interface{}) {
	l.write("INFO", msg, fields)
}

func (l stderrLogger) Warn(msg string, fields map[string]interface{}) {
	l.write("WARN", msg, fields)
}

func (l stderrLogger) Error(msg string, fields map[string]interface{}) {
	l.write("ERROR", msg, fields)
}

func (stderrLogger) write(level, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var builder strings.Builder
	for _, key := range keys {
		_, _ = fmt.Fprintf(&builder, " %s=%v", key, fields[key])
	}

	_, _ = fmt.Fprintf(os.Stderr, "[%s] %s%s\n", level, msg, builder.String())
}

// titleCase renders an API enum value ("good", "suspicious") for display.
func titleCase(value string) string {
	if value == "" {
		return NotAvailable
	}

	return cases.Title(language.English).String(value)
}

// formatTime renders a timestamp in table output, with zero times shown as
// not available.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}

	return t.Format(timeFormat)
}

// formatStrings joins a list column, with empty lists shown as not available.
func formatStrings(values []string) string {
	if len(values) == 0 {
		return NotAvailable
	}

	return strings.Join(values, ", ")
}

// endpointHealth extracts the overall health of an endpoint for listing.
func endpointHealth(endpoint central.Endpoint) string {
	if endpoint.Health == nil {
		return NotAvailable
	}

	return titleCase(endpoint.Health.Overall)
}

// endpointOS extracts the OS name of an endpoint for listing.
func endpointOS(endpoint central.Endpoint) string {
	if endpoint.OS == nil {
		return NotAvailable
	}

	return endpoint.OS.Name
}

// validateRegion checks a data region label such as "us03" or "eu01"
// against the documented region families.
func validateRegion(region string) error {
	families := []string{"us", "eu", "ap", "de", "ie"}
	for _, family := range families {
		if strings.HasPrefix(region, family) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", constants.ErrInvalidRegion, region)
}

// validateOutputFormat checks the --output flag value.
func validateOutputFormat(format string) error {
	switch format {
	case "", "table", OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}
