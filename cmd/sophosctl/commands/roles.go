package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/sophos-central/internal/constants"
	"github.com/fivetwenty-io/sophos-central/pkg/central"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewRolesCommand creates the roles command group.
func NewRolesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "roles",
		Aliases: []string{"role"},
		Short:   "Manage roles",
		Long:    "List and inspect Sophos Central admin roles",
	}

	cmd.AddCommand(newRolesListCommand())
	cmd.AddCommand(newRolesGetCommand())

	return cmd
}

func newRolesListCommand() *cobra.Command {
	var (
		allPages bool
		pageSize int
		maxItems int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List roles",
		Long:  "List the admin roles of the tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			params := central.NewQueryParams()
			params.PageSize = pageSize

			roles, err := fetchRoles(ctx, client, params, allPages, maxItems)
			if err != nil {
				return err
			}

			return renderRoles(roles)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.DefaultPageSize, "number of results per page")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "stop after this many results (implies --all)")

	return cmd
}

func fetchRoles(ctx context.Context, client central.Client, params *central.QueryParams, allPages bool, maxItems int) ([]central.Role, error) {
	if !allPages && maxItems <= 0 {
		page, err := client.Roles().List(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list roles: %w", err)
		}

		return page.Items, nil
	}

	fetch := func(ctx context.Context, cursor string) (*central.ListResponse[central.Role], error) {
		pageParams := params.Clone()
		pageParams.PageFromKey = cursor

		return client.Roles().List(ctx, pageParams)
	}

	paginator, err := central.NewPaginator(fetch, &central.PaginationOptions{PageSize: params.PageSize})
	if err != nil {
		return nil, err
	}

	roles, err := paginator.CollectN(ctx, maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

func renderRoles(roles []central.Role) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(roles)
		if err != nil {
			return fmt.Errorf("failed to encode roles as JSON: %w", err)
		}

		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(roles)
		if err != nil {
			return fmt.Errorf("failed to encode roles as YAML: %w", err)
		}

		return nil
	default:
		return renderRolesTable(roles)
	}
}

func renderRolesTable(roles []central.Role) error {
	if len(roles) == 0 {
		_, _ = os.Stdout.WriteString("No roles found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name", "Description", "Builtin")

	for _, role := range roles {
		_ = table.Append([]string{
			role.ID,
			role.Name,
			role.Description,
			strconv.FormatBool(role.Builtin),
		})
	}

	_ = table.Render()

	return nil
}

func newRolesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ROLE_ID",
		Short: "Get role details",
		Long:  "Display detailed information about a specific role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roleID := args[0]

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			role, err := client.Roles().Get(ctx, roleID)
			if err != nil {
				return fmt.Errorf("failed to get role: %w", err)
			}

			// Output results
			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(role)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(role)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("ID", role.ID)
				_ = table.Append("Name", role.Name)
				_ = table.Append("Description", role.Description)
				_ = table.Append("Builtin", strconv.FormatBool(role.Builtin))

				for _, permission := range role.Permissions {
					_ = table.Append("Permission: "+permission.Scope, strings.Join(permission.Actions, ", "))
				}

				_, _ = os.Stdout.WriteString("Role details:\n\n")
				_ = table.Render()
			}

			return nil
		},
	}
}
