//go:build integration

package integration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCLIWorkflow_ConfigRoundTrip drives the config commands end to end in an
// isolated HOME directory. It needs the sophosctl binary but no credentials.
func TestCLIWorkflow_ConfigRoundTrip(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)
	runner.Env = []string{"HOME=" + t.TempDir()}

	// 1. Version works without any configuration
	stdout, stderr, err := runner.Run("version")
	require.NoError(t, err, "Failed to print version: %s", stderr)
	assert.Contains(t, stdout, "Version")

	// 2. Set and read back a value
	clientID := GenerateTestName("it-client")
	stdout, stderr, err = runner.Run("config", "set", "client_id", clientID)
	require.NoError(t, err, "Failed to set client_id: %s", stderr)
	assert.Contains(t, stdout, "client_id")

	stdout, stderr, err = runner.Run("config", "get", "client_id")
	require.NoError(t, err, "Failed to get client_id: %s", stderr)
	assert.Equal(t, clientID, strings.TrimSpace(stdout))

	// 3. The secret is stored but never printable
	_, stderr, err = runner.Run("config", "set", "client_secret", "s3cret-value")
	require.NoError(t, err, "Failed to set client_secret: %s", stderr)

	_, _, err = runner.Run("config", "get", "client_secret")
	require.Error(t, err, "client_secret must not be printable")

	stdout, stderr, err = runner.Run("config", "show", "--output", "json")
	require.NoError(t, err, "Failed to show config: %s", stderr)
	AssertJSONOutput(t, stdout)
	assert.Contains(t, stdout, "***")
	assert.NotContains(t, stdout, "s3cret-value")

	// 4. Invalid values are rejected
	_, _, err = runner.Run("config", "set", "region", "xx99")
	require.Error(t, err, "invalid region must be rejected")

	_, _, err = runner.Run("config", "set", "output", "csv")
	require.Error(t, err, "invalid output format must be rejected")

	_, stderr, err = runner.Run("config", "set", "region", "us03")
	require.NoError(t, err, "Failed to set region: %s", stderr)

	// 5. Unset removes a single value
	_, stderr, err = runner.Run("config", "unset", "client_id")
	require.NoError(t, err, "Failed to unset client_id: %s", stderr)

	stdout, stderr, err = runner.Run("config", "get", "client_id")
	require.NoError(t, err, "Failed to get client_id: %s", stderr)
	assert.Empty(t, strings.TrimSpace(stdout))

	// 6. Clear removes the file entirely
	_, stderr, err = runner.Run("config", "clear")
	require.NoError(t, err, "Failed to clear config: %s", stderr)

	stdout, stderr, err = runner.Run("config", "get", "region")
	require.NoError(t, err, "Failed to get region after clear: %s", stderr)
	assert.Empty(t, strings.TrimSpace(stdout))
}

// TestCLIWorkflow_Identity authenticates against the live API through the CLI
// and checks every output format of whoami.
func TestCLIWorkflow_Identity(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingBinary(t)
	config.SkipIfMissingCredentials(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("whoami")
	require.NoError(t, err, "Failed to resolve identity: %s", stderr)
	assert.Contains(t, stdout, "ID")

	stdout, stderr, err = runner.Run("whoami", "--output", "json")
	require.NoError(t, err, "Failed to resolve identity as JSON: %s", stderr)
	AssertJSONOutput(t, stdout)

	stdout, stderr, err = runner.Run("whoami", "--output", "yaml")
	require.NoError(t, err, "Failed to resolve identity as YAML: %s", stderr)
	AssertYAMLOutput(t, stdout)
}

// TestCLIWorkflow_Listings runs the read-only list commands against the live
// API.
func TestCLIWorkflow_Listings(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingBinary(t)
	config.SkipIfMissingCredentials(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("endpoints", "list", "--page-size", "5", "--output", "json")
	require.NoError(t, err, "Failed to list endpoints: %s", stderr)
	AssertJSONOutput(t, stdout)

	stdout, stderr, err = runner.Run("alerts", "list", "--page-size", "5", "--output", "yaml")
	require.NoError(t, err, "Failed to list alerts: %s", stderr)
	AssertYAMLOutput(t, stdout)

	_, stderr, err = runner.Run("admins", "list", "--page-size", "5")
	require.NoError(t, err, "Failed to list admins: %s", stderr)
}
