//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/sophos-central/pkg/central"
	"github.com/fivetwenty-io/sophos-central/pkg/centralclient"
	"github.com/joho/godotenv"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	ClientID     string
	ClientSecret string
	Region       string
	TenantID     string
	BinaryPath   string
	Verbose      bool
}

// LoadTestConfig loads configuration from a .env file at the repository root
// (if present) and the environment.
func LoadTestConfig() *TestConfig {
	_ = godotenv.Load("../../.env")

	return &TestConfig{
		ClientID:     os.Getenv("SOPHOS_CLIENT_ID"),
		ClientSecret: os.Getenv("SOPHOS_CLIENT_SECRET"),
		Region:       os.Getenv("SOPHOS_REGION"),
		TenantID:     os.Getenv("SOPHOS_TENANT_ID"),
		BinaryPath:   getBinaryPath(),
		Verbose:      os.Getenv("SOPHOSCTL_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the sophosctl binary.
func getBinaryPath() string {
	if path := os.Getenv("SOPHOSCTL_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../sophosctl",
		"./sophosctl",
		"../sophosctl",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "sophosctl" // Fallback to PATH
}

// SkipIfMissingCredentials skips the test when no API credentials are set.
func (config *TestConfig) SkipIfMissingCredentials(t *testing.T) {
	t.Helper()

	if config.ClientID == "" || config.ClientSecret == "" {
		t.Skip("SOPHOS_CLIENT_ID or SOPHOS_CLIENT_SECRET not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips the test when the sophosctl binary is not built.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := os.Stat(config.BinaryPath); os.IsNotExist(err) {
		t.Skipf("sophosctl binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// NewClient builds an API client from the test configuration.
func (config *TestConfig) NewClient(t *testing.T) central.Client {
	t.Helper()

	client, err := centralclient.New(context.Background(), &central.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Region:       config.Region,
		TenantID:     config.TenantID,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return client
}

// CommandRunner provides utilities for running sophosctl commands.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T

	// Env entries appended to the inherited environment for every run,
	// such as an isolated HOME for config tests.
	Env []string
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a sophosctl command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a sophosctl command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	if len(runner.Env) > 0 {
		cmd.Env = append(os.Environ(), runner.Env...)
	}

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// GenerateTestName creates a unique test resource name.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

// AssertJSONOutput verifies command output looks like JSON.
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

// AssertYAMLOutput verifies command output looks like YAML.
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if strings.Contains(output, "---") || strings.Contains(output, ":") {
		return
	}

	t.Errorf("Output does not appear to be YAML: %s", output)
}
