package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/sophos-central/pkg/central"
	"github.com/fivetwenty-io/sophos-central/pkg/centralclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		clientID     string
		clientSecret string
		region       string
		tenantID     string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to Sophos Central",
		Long:  "Validate API credentials against Sophos Central and persist them",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Fall back to the effective configuration for anything not
			// passed as a flag.
			if clientID == "" {
				clientID = viper.GetString("client_id")
			}

			if clientSecret == "" {
				clientSecret = viper.GetString("client_secret")
			}

			if region == "" {
				region = viper.GetString("region")
			}

			if tenantID == "" {
				tenantID = viper.GetString("tenant_id")
			}

			if clientID == "" {
				reader := bufio.NewReader(os.Stdin)
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

			config := &central.Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				Region:       region,
				TenantID:     tenantID,
				BaseURL:      viper.GetString("base_url"),
			}

			// Create client and validate the credentials end to end
			ctx := context.Background()

			client, err := centralclient.New(ctx, config)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			whoami, err := client.WhoAmI(ctx)
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			// Persist the working credentials
			configStruct := loadConfigFile()
			configStruct.ClientID = clientID
			configStruct.ClientSecret = clientSecret
			configStruct.Region = region
			configStruct.TenantID = tenantID

			if err := saveConfigFile(configStruct); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully authenticated as %s (%s)\n", whoami.ID, whoami.IDType)
			if whoami.APIHosts.DataRegion != "" {
				fmt.Printf("Data region host: %s\n", whoami.APIHosts.DataRegion)
			}

			return nil
		},
	}

	// Add flags
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")
	cmd.Flags().StringVar(&region, "region", "", "data region label")
	cmd.Flags().StringVar(&tenantID, "tenant-id", "", "tenant ID for partner or organization credentials")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from Sophos Central",
		Long:  "Remove persisted API credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfigFile()
			config.ClientID = ""
			config.ClientSecret = ""
			config.TenantID = ""

			if err := saveConfigFile(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Println("Successfully logged out")
			return nil
		},
	}
}
