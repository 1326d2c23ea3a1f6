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

// NewTenantsCommand creates the tenants command group.
func NewTenantsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tenants",
		Aliases: []string{"tenant"},
		Short:   "Manage tenants",
		Long:    "List and inspect the tenants visible to partner or organization credentials",
	}

	cmd.AddCommand(newTenantsListCommand())
	cmd.AddCommand(newTenantsGetCommand())

	return cmd
}

func newTenantsListCommand() *cobra.Command {
	var (
		allPages bool
		pageSize int
		maxItems int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Long:  "List the tenants managed by the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			params := central.NewQueryParams()
			params.PageSize = pageSize

			tenants, err := fetchTenants(ctx, client, params, allPages, maxItems)
			if err != nil {
				return err
			}

			return renderTenants(tenants)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.DefaultPageSize, "number of results per page")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "stop after this many results (implies --all)")

	return cmd
}

func fetchTenants(ctx context.Context, client central.Client, params *central.QueryParams, allPages bool, maxItems int) ([]central.Tenant, error) {
	if !allPages && maxItems <= 0 {
		page, err := client.Tenants().List(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list tenants: %w", err)
		}

		return page.Items, nil
	}

	paginator, err := client.Tenants().Paginator(params, 0)
	if err != nil {
		return nil, err
	}

	tenants, err := paginator.CollectN(ctx, maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	return tenants, nil
}

func renderTenants(tenants []central.Tenant) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(tenants)
		if err != nil {
			return fmt.Errorf("failed to encode tenants as JSON: %w", err)
		}

		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(tenants)
		if err != nil {
			return fmt.Errorf("failed to encode tenants as YAML: %w", err)
		}

		return nil
	default:
		return renderTenantsTable(tenants)
	}
}

func renderTenantsTable(tenants []central.Tenant) error {
	if len(tenants) == 0 {
		_, _ = os.Stdout.WriteString("No tenants found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name", "Data Region", "Billing Type", "Status")

	for _, tenant := range tenants {
		_ = table.Append([]string{
			tenant.ID,
			tenant.Name,
			tenant.DataRegion,
			tenant.BillingType,
			tenant.Status,
		})
	}

	_ = table.Render()

	return nil
}

func newTenantsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get TENANT_ID",
		Short: "Get tenant details",
		Long:  "Display detailed information about a specific tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := args[0]

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			tenant, err := client.Tenants().Get(ctx, tenantID)
			if err != nil {
				return fmt.Errorf("failed to get tenant: %w", err)
			}

			// Output results
			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(tenant)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(tenant)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("ID", tenant.ID)
				_ = table.Append("Name", tenant.Name)
				_ = table.Append("Data Region", tenant.DataRegion)

				if tenant.DataGeography != "" {
					_ = table.Append("Data Geography", tenant.DataGeography)
				}

				if tenant.BillingType != "" {
					_ = table.Append("Billing Type", tenant.BillingType)
				}

				_ = table.Append("API Host", tenant.APIHost)

				if tenant.Status != "" {
					_ = table.Append("Status", tenant.Status)
				}

				_, _ = os.Stdout.WriteString("Tenant details:\n\n")
				_ = table.Render()
			}

			return nil
		},
	}
}
