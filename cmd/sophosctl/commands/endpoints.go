package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/fivetwenty-io/sophos-central/internal/constants"
	"github.com/fivetwenty-io/sophos-central/pkg/central"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewEndpointsCommand creates the endpoints command group.
func NewEndpointsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "endpoints",
		Aliases: []string{"endpoint"},
		Short:   "Manage endpoints",
		Long:    "List, inspect, scan, and isolate Sophos Central endpoints",
	}

	cmd.AddCommand(newEndpointsListCommand())
	cmd.AddCommand(newEndpointsGetCommand())
	cmd.AddCommand(newEndpointsScanCommand())
	cmd.AddCommand(newEndpointsIsolateCommand())
	cmd.AddCommand(newEndpointsUnisolateCommand())
	cmd.AddCommand(newEndpointsDeleteCommand())
	cmd.AddCommand(newTamperProtectionCommand())

	return cmd
}

func newEndpointsListCommand() *cobra.Command {
	var (
		allPages     bool
		pageSize     int
		maxItems     int
		health       string
		endpointType string
		search       string
		sort         []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List endpoints",
		Long:  "List the endpoints visible to the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			params := buildEndpointListParams(pageSize, health, endpointType, search, sort)

			endpoints, err := fetchEndpoints(ctx, client, params, allPages, maxItems)
			if err != nil {
				return err
			}

			return renderEndpoints(endpoints)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.DefaultPageSize, "number of results per page")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "stop after this many results (implies --all)")
	cmd.Flags().StringVar(&health, "health", "", "filter by health status (good, suspicious, bad)")
	cmd.Flags().StringVar(&endpointType, "type", "", "filter by endpoint type (computer, server, securityVm)")
	cmd.Flags().StringVar(&search, "search", "", "search term matched against hostnames")
	cmd.Flags().StringSliceVar(&sort, "sort", nil, "sort expressions, for example hostname or healthStatus:desc")

	return cmd
}

func buildEndpointListParams(pageSize int, health, endpointType, search string, sort []string) *central.QueryParams {
	params := central.NewQueryParams()
	params.PageSize = pageSize

	if health != "" {
		params.WithFilter("healthStatus", health)
	}

	if endpointType != "" {
		params.WithFilter("type", endpointType)
	}

	if search != "" {
		params.WithSearch(search)
		params.WithSearchFields("hostname")
	}

	if len(sort) > 0 {
		params.WithSort(sort...)
	}

	return params
}

func fetchEndpoints(ctx context.Context, client central.Client, params *central.QueryParams, allPages bool, maxItems int) ([]central.Endpoint, error) {
	if !allPages && maxItems <= 0 {
		page, err := client.Endpoints().List(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list endpoints: %w", err)
		}

		return page.Items, nil
	}

	paginator, err := client.Endpoints().Paginator(params, 0)
	if err != nil {
		return nil, err
	}

	endpoints, err := paginator.CollectN(ctx, maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to list endpoints: %w", err)
	}

	return endpoints, nil
}

func renderEndpoints(endpoints []central.Endpoint) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(endpoints)
		if err != nil {
			return fmt.Errorf("failed to encode endpoints as JSON: %w", err)
		}

		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(endpoints)
		if err != nil {
			return fmt.Errorf("failed to encode endpoints as YAML: %w", err)
		}

		return nil
	default:
		return renderEndpointsTable(endpoints)
	}
}

func renderEndpointsTable(endpoints []central.Endpoint) error {
	if len(endpoints) == 0 {
		_, _ = os.Stdout.WriteString("No endpoints found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Hostname", "Type", "Health", "OS", "Last Seen")

	for _, endpoint := range endpoints {
		_ = table.Append([]string{
			endpoint.ID,
			endpoint.Hostname,
			endpoint.Type,
			endpointHealth(endpoint),
			endpointOS(endpoint),
			formatTime(endpoint.LastSeenAt),
		})
	}

	_ = table.Render()

	return nil
}

func newEndpointsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ENDPOINT_ID",
		Short: "Get endpoint details",
		Long:  "Display detailed information about a specific endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID := args[0]

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			endpoint, err := client.Endpoints().Get(ctx, endpointID)
			if err != nil {
				return fmt.Errorf("failed to get endpoint: %w", err)
			}

			// Output results
			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(endpoint)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(endpoint)
			default:
				return renderEndpointTable(endpoint)
			}
		},
	}
}

func renderEndpointTable(endpoint *central.Endpoint) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("ID", endpoint.ID)
	_ = table.Append("Hostname", endpoint.Hostname)
	_ = table.Append("Type", endpoint.Type)
	_ = table.Append("Health", endpointHealth(*endpoint))

	if endpoint.OS != nil {
		_ = table.Append("OS", endpoint.OS.Name)
		_ = table.Append("Platform", endpoint.OS.Platform)
	}

	_ = table.Append("IPv4 Addresses", formatStrings(endpoint.IPv4Addresses))
	_ = table.Append("MAC Addresses", formatStrings(endpoint.MACAddresses))

	if endpoint.AssociatedPerson != nil {
		_ = table.Append("Associated Person", endpoint.AssociatedPerson.Name)
	}

	if endpoint.Group != nil {
		_ = table.Append("Group", endpoint.Group.Name)
	}

	_ = table.Append("Tamper Protection", strconv.FormatBool(endpoint.TamperProtectionEnabled))

	if endpoint.LockdownStatus != "" {
		_ = table.Append("Lockdown Status", endpoint.LockdownStatus)
	}

	if endpoint.IsolationStatus != nil {
		_ = table.Append("Isolation", endpoint.IsolationStatus.Status)
	}

	_ = table.Append("Last Seen", formatTime(endpoint.LastSeenAt))

	_, _ = os.Stdout.WriteString("Endpoint details:\n\n")
	_ = table.Render()

	return nil
}

func newEndpointsScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan ENDPOINT_ID",
		Short: "Scan an endpoint",
		Long:  "Request a malware scan on a specific endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID := args[0]

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			scan, err := client.Endpoints().Scan(ctx, endpointID)
			if err != nil {
				return fmt.Errorf("failed to request scan: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(scan)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(scan)
			default:
				_, _ = fmt.Fprintf(os.Stdout, "Scan requested for endpoint %s\n", endpointID)
				_, _ = fmt.Fprintf(os.Stdout, "  Status: %s\n", scan.Status)

				if !scan.RequestedAt.IsZero() {
					_, _ = fmt.Fprintf(os.Stdout, "  Requested: %s\n", formatTime(scan.RequestedAt))
				}
			}

			return nil
		},
	}
}

func newEndpointsIsolateCommand() *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "isolate ENDPOINT_ID",
		Short: "Isolate an endpoint",
		Long:  "Isolate an endpoint from the network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID := args[0]

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			isolation, err := client.Endpoints().Isolate(ctx, endpointID, comment)
			if err != nil {
				return fmt.Errorf("failed to isolate endpoint: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Isolation requested for endpoint %s\n", endpointID)

			if isolation.Status != "" {
				_, _ = fmt.Fprintf(os.Stdout, "  Status: %s\n", isolation.Status)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "reason recorded with the isolation")

	return cmd
}

func newEndpointsUnisolateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unisolate ENDPOINT_ID",
		Short: "Remove endpoint isolation",
		Long:  "Return an isolated endpoint to the network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID := args[0]

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			err = client.Endpoints().Unisolate(ctx, endpointID)
			if err != nil {
				return fmt.Errorf("failed to remove isolation: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Isolation removed for endpoint %s\n", endpointID)

			return nil
		},
	}
}

func newEndpointsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete ENDPOINT_ID",
		Short: "Delete an endpoint",
		Long:  "Remove an endpoint from Sophos Central",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID := args[0]

			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really delete endpoint '%s'? (y/N): ", endpointID)

				var response string

				_, _ = fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					_, _ = os.Stdout.WriteString("Cancelled\n")

					return nil
				}
			}

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			err = client.Endpoints().Delete(ctx, endpointID)
			if err != nil {
				return fmt.Errorf("failed to delete endpoint: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted endpoint '%s'\n", endpointID)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")

	return cmd
}

func newTamperProtectionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tamper-protection",
		Short: "Manage endpoint tamper protection",
		Long:  "Inspect and update tamper protection for an endpoint",
	}

	cmd.AddCommand(newTamperProtectionGetCommand())
	cmd.AddCommand(newTamperProtectionUpdateCommand())
	cmd.AddCommand(newTamperProtectionPasswordCommand())

	return cmd
}

func newTamperProtectionGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ENDPOINT_ID",
		Short: "Get tamper protection state",
		Long:  "Display the tamper protection state of an endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID := args[0]

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			tamper, err := client.Endpoints().TamperProtection(ctx, endpointID)
			if err != nil {
				return fmt.Errorf("failed to get tamper protection: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(tamper)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(tamper)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("Enabled", strconv.FormatBool(tamper.Enabled))
				_ = table.Append("Globally Enabled", strconv.FormatBool(tamper.GloballyEnabled))

				_ = table.Render()
			}

			return nil
		},
	}
}

func newTamperProtectionUpdateCommand() *cobra.Command {
	var (
		enabled    string
		regenerate bool
	)

	cmd := &cobra.Command{
		Use:   "update ENDPOINT_ID",
		Short: "Update tamper protection",
		Long:  "Enable or disable tamper protection, optionally regenerating the password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID := args[0]

			if enabled != "true" && enabled != "false" {
				return constants.ErrInvalidEnabledFlag
			}

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			request := &central.TamperProtectionUpdateRequest{
				Enabled:            enabled == "true",
				RegeneratePassword: regenerate,
			}

			tamper, err := client.Endpoints().UpdateTamperProtection(ctx, endpointID, request)
			if err != nil {
				return fmt.Errorf("failed to update tamper protection: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Tamper protection updated for endpoint %s\n", endpointID)
			_, _ = fmt.Fprintf(os.Stdout, "  Enabled: %t\n", tamper.Enabled)

			return nil
		},
	}

	cmd.Flags().StringVar(&enabled, "enabled", "", "desired state, true or false (required)")
	cmd.Flags().BoolVar(&regenerate, "regenerate-password", false, "issue a new tamper protection password")
	_ = cmd.MarkFlagRequired("enabled")

	return cmd
}

func newTamperProtectionPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "password ENDPOINT_ID",
		Short: "Show the tamper protection password",
		Long:  "Display the current tamper protection password for an endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID := args[0]

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			password, err := client.Endpoints().TamperProtectionPassword(ctx, endpointID)
			if err != nil {
				return fmt.Errorf("failed to get tamper protection password: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(password)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(password)
			default:
				fmt.Println(password.Password)
			}

			return nil
		},
	}
}
