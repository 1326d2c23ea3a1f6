package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewWhoAmICommand creates the whoami command
func NewWhoAmICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the authenticated principal",
		Long:  "Resolve the API credentials to their principal and API hosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			whoami, err := client.WhoAmI(ctx)
			if err != nil {
				return fmt.Errorf("failed to resolve identity: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(whoami)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(whoami)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("ID", whoami.ID)
				_ = table.Append("Type", whoami.IDType)
				_ = table.Append("Global Host", whoami.APIHosts.Global)

				if whoami.APIHosts.DataRegion != "" {
					_ = table.Append("Data Region Host", whoami.APIHosts.DataRegion)
				}

				_ = table.Render()
			}

			return nil
		},
	}
}
