package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fivetwenty-io/sophos-central/internal/constants"
	"github.com/fivetwenty-io/sophos-central/pkg/central"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewAdminsCommand creates the admins command group.
func NewAdminsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "admins",
		Aliases: []string{"admin"},
		Short:   "Manage administrators",
		Long:    "List and inspect Sophos Central administrators",
	}

	cmd.AddCommand(newAdminsListCommand())
	cmd.AddCommand(newAdminsGetCommand())

	return cmd
}

func newAdminsListCommand() *cobra.Command {
	var (
		allPages bool
		pageSize int
		maxItems int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List administrators",
		Long:  "List the administrators of the tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			params := central.NewQueryParams()
			params.PageSize = pageSize

			admins, err := fetchAdmins(ctx, client, params, allPages, maxItems)
			if err != nil {
				return err
			}

			return renderAdmins(admins)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.DefaultPageSize, "number of results per page")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "stop after this many results (implies --all)")

	return cmd
}

func fetchAdmins(ctx context.Context, client central.Client, params *central.QueryParams, allPages bool, maxItems int) ([]central.Admin, error) {
	if !allPages && maxItems <= 0 {
		page, err := client.Admins().List(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list admins: %w", err)
		}

		return page.Items, nil
	}

	fetch := func(ctx context.Context, cursor string) (*central.ListResponse[central.Admin], error) {
		pageParams := params.Clone()
		pageParams.PageFromKey = cursor

		return client.Admins().List(ctx, pageParams)
	}

	paginator, err := central.NewPaginator(fetch, &central.PaginationOptions{PageSize: params.PageSize})
	if err != nil {
		return nil, err
	}

	admins, err := paginator.CollectN(ctx, maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	return admins, nil
}

func renderAdmins(admins []central.Admin) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(admins)
		if err != nil {
			return fmt.Errorf("failed to encode admins as JSON: %w", err)
		}

		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(admins)
		if err != nil {
			return fmt.Errorf("failed to encode admins as YAML: %w", err)
		}

		return nil
	default:
		return renderAdminsTable(admins)
	}
}

func renderAdminsTable(admins []central.Admin) error {
	if len(admins) == 0 {
		_, _ = os.Stdout.WriteString("No admins found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name", "Email", "Role", "Status")

	for _, admin := range admins {
		role := NotAvailable
		if admin.Role != nil {
			role = admin.Role.Name
		}

		_ = table.Append([]string{
			admin.ID,
			fmt.Sprintf("%s %s", admin.FirstName, admin.LastName),
			admin.Email,
			role,
			admin.Status,
		})
	}

	_ = table.Render()

	return nil
}

func newAdminsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ADMIN_ID",
		Short: "Get administrator details",
		Long:  "Display detailed information about a specific administrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adminID := args[0]

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			admin, err := client.Admins().Get(ctx, adminID)
			if err != nil {
				return fmt.Errorf("failed to get admin: %w", err)
			}

			// Output results
			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(admin)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(admin)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("ID", admin.ID)
				_ = table.Append("First Name", admin.FirstName)
				_ = table.Append("Last Name", admin.LastName)
				_ = table.Append("Email", admin.Email)

				if admin.Role != nil {
					_ = table.Append("Role", admin.Role.Name)
				}

				if admin.Status != "" {
					_ = table.Append("Status", admin.Status)
				}

				_, _ = os.Stdout.WriteString("Admin details:\n\n")
				_ = table.Render()
			}

			return nil
		},
	}
}
