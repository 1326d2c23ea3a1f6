package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/sophos-central/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration persisted to disk.
type Config struct {
	ClientID     string `json:"client_id,omitempty"     yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	Region       string `json:"region,omitempty"        yaml:"region,omitempty"`
	TenantID     string `json:"tenant_id,omitempty"     yaml:"tenant_id,omitempty"`
	BaseURL      string `json:"base_url,omitempty"      yaml:"base_url,omitempty"`

	// Global settings
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
	NoColor bool   `json:"no_color"         yaml:"no_color"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage Sophos Central CLI configuration including credentials and settings",
	}

	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		clientID     string
		clientSecret string
		region       string
		tenantID     string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize CLI configuration",
		Long:  "Interactively collect API credentials and write the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)

			if clientID == "" {
				fmt.Print("Client ID: ")
				clientID, _ = reader.ReadString('\n')
				clientID = strings.TrimSpace(clientID)
			}

			if clientID == "" {
				return ErrClientIDRequired
			}

			if clientSecret == "" {
				fmt.Print("Client Secret: ")
				byteSecret, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read client secret: %w", err)
				}
				clientSecret = string(byteSecret)
				fmt.Println()
			}

			if clientSecret == "" {
				return ErrClientSecretRequired
			}

			if region == "" {
				fmt.Print("Data region (for example us03, blank to resolve automatically): ")
				region, _ = reader.ReadString('\n')
				region = strings.TrimSpace(region)
			}

			if region != "" {
				if err := validateRegion(region); err != nil {
					return err
				}
			}

			if tenantID == "" {
				fmt.Print("Tenant ID (blank for tenant credentials): ")
				tenantID, _ = reader.ReadString('\n')
				tenantID = strings.TrimSpace(tenantID)
			}

			config := loadConfigFile()
			config.ClientID = clientID
			config.ClientSecret = clientSecret
			config.Region = region
			config.TenantID = tenantID

			if err := saveConfigFile(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Configuration saved to %s\n", configFilePath())

			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")
	cmd.Flags().StringVar(&region, "region", "", "data region label")
	cmd.Flags().StringVar(&tenantID, "tenant-id", "", "tenant ID for partner or organization credentials")

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the persisted CLI configuration with the client secret masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfigFile()

			masked := *config
			if masked.ClientSecret != "" {
				masked.ClientSecret = Masked
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(masked)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(masked)
			default:
				return displayConfigTable(&masked)
			}
		},
	}
}

func displayConfigTable(config *Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Setting", "Value")

	_ = table.Append("client_id", formatConfigValue(config.ClientID))
	_ = table.Append("client_secret", formatConfigValue(config.ClientSecret))
	_ = table.Append("region", formatConfigValue(config.Region))
	_ = table.Append("tenant_id", formatConfigValue(config.TenantID))
	_ = table.Append("base_url", formatConfigValue(config.BaseURL))
	_ = table.Append("output", formatConfigValue(config.Output))
	_ = table.Append("no_color", fmt.Sprintf("%t", config.NoColor))

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render config table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return "(not set)"
	}

	return value
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get a configuration value",
		Long:  "Print a single configuration value; the client secret is never printed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfigFile()

			value, err := configValue(config, key)
			if err != nil {
				return err
			}

			fmt.Println(value)

			return nil
		},
	}
}

func configValue(config *Config, key string) (string, error) {
	switch key {
	case "client_id":
		return config.ClientID, nil
	case "client_secret":
		return "", constants.ErrSecretNotPrintable
	case "region":
		return config.Region, nil
	case "tenant_id":
		return config.TenantID, nil
	case "base_url":
		return config.BaseURL, nil
	case "output":
		return config.Output, nil
	case "no_color":
		return fmt.Sprintf("%t", config.NoColor), nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a specific configuration value and persist it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfigFile()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigFile(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if key == "client_secret" {
				value = Masked
			}

			return outputConfigUpdateResult("Set", key, value)
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "client_id":
		config.ClientID = value
	case "client_secret":
		config.ClientSecret = value
	case "region":
		if err := validateRegion(value); err != nil {
			return err
		}

		config.Region = value
	case "tenant_id":
		config.TenantID = value
	case "base_url":
		config.BaseURL = value
	case "output":
		if err := validateOutputFormat(value); err != nil {
			return err
		}

		config.Output = value
	case "no_color":
		config.NoColor = value == "true" || value == "1"
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a specific configuration value and persist the change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfigFile()

			err := unsetConfigValue(config, key)
			if err != nil {
				return err
			}

			err = saveConfigFile(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return outputConfigUpdateResult("Unset", key, "")
		},
	}
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "client_id":
		config.ClientID = ""
	case "client_secret":
		config.ClientSecret = ""
	case "region":
		config.Region = ""
	case "tenant_id":
		config.TenantID = ""
	case "base_url":
		config.BaseURL = ""
	case "output":
		config.Output = ""
	case "no_color":
		config.NoColor = false
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove the configuration file entirely",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := os.Remove(configFilePath())
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			return outputConfigUpdateResult("Cleared", "all configuration", "")
		},
	}
}

// configFilePath returns the configuration file in use, defaulting to
// ~/.sophosctl/config.yml.
func configFilePath() string {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yml"
	}

	return filepath.Join(home, ".sophosctl", "config.yml")
}

// loadConfigFile reads the persisted configuration, returning an empty
// config when the file is missing or unreadable.
func loadConfigFile() *Config {
	config := &Config{}

	// The path comes from the user's own flag or home directory.
	// #nosec G304
	data, err := os.ReadFile(configFilePath())
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

// saveConfigFile persists the configuration with owner-only permissions,
// since it can hold the client secret.
func saveConfigFile(config *Config) error {
	configFile := configFilePath()

	err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func outputConfigUpdateResult(action, key, value string) error {
	output := viper.GetString("output")

	switch output {
	case OutputFormatJSON:
		return outputConfigAsJSON(buildConfigResult(action, key, value))
	case OutputFormatYAML:
		return outputConfigAsYAML(buildConfigResult(action, key, value))
	default:
		return outputConfigAsTable(action, key, value)
	}
}

func buildConfigResult(action, key, value string) map[string]string {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	return result
}

func outputConfigAsJSON(result map[string]string) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(result)
	if err != nil {
		return fmt.Errorf("failed to encode config result as JSON: %w", err)
	}

	return nil
}

func outputConfigAsYAML(result map[string]string) error {
	encoder := yaml.NewEncoder(os.Stdout)

	err := encoder.Encode(result)
	if err != nil {
		return fmt.Errorf("failed to encode config result as YAML: %w", err)
	}

	return nil
}

func outputConfigAsTable(action, key, value string) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("Action", action)
	_ = table.Append("Key", key)

	if value != "" {
		_ = table.Append("Value", value)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render update results table: %w", err)
	}

	return nil
}
