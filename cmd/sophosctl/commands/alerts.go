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

// NewAlertsCommand creates the alerts command group.
func NewAlertsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alerts",
		Aliases: []string{"alert"},
		Short:   "Manage alerts",
		Long:    "List, inspect, and act on Sophos Central alerts",
	}

	cmd.AddCommand(newAlertsListCommand())
	cmd.AddCommand(newAlertsGetCommand())
	cmd.AddCommand(newAlertsActionCommand())

	return cmd
}

func newAlertsListCommand() *cobra.Command {
	var (
		allPages bool
		pageSize int
		maxItems int
		severity string
		product  string
		category string
		sort     []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts",
		Long:  "List the alerts visible to the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			params := buildAlertListParams(pageSize, severity, product, category, sort)

			alerts, err := fetchAlerts(ctx, client, params, allPages, maxItems)
			if err != nil {
				return err
			}

			return renderAlerts(alerts)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.DefaultPageSize, "number of results per page")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "stop after this many results (implies --all)")
	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity (low, medium, high)")
	cmd.Flags().StringVar(&product, "product", "", "filter by product")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().StringSliceVar(&sort, "sort", nil, "sort expressions, for example raisedAt:desc")

	return cmd
}

func buildAlertListParams(pageSize int, severity, product, category string, sort []string) *central.QueryParams {
	params := central.NewQueryParams()
	params.PageSize = pageSize

	if severity != "" {
		params.WithFilter("severity", severity)
	}

	if product != "" {
		params.WithFilter("product", product)
	}

	if category != "" {
		params.WithFilter("category", category)
	}

	if len(sort) > 0 {
		params.WithSort(sort...)
	}

	return params
}

func fetchAlerts(ctx context.Context, client central.Client, params *central.QueryParams, allPages bool, maxItems int) ([]central.Alert, error) {
	if !allPages && maxItems <= 0 {
		page, err := client.Alerts().List(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list alerts: %w", err)
		}

		return page.Items, nil
	}

	paginator, err := client.Alerts().Paginator(params, 0)
	if err != nil {
		return nil, err
	}

	alerts, err := paginator.CollectN(ctx, maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return alerts, nil
}

func renderAlerts(alerts []central.Alert) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(alerts)
		if err != nil {
			return fmt.Errorf("failed to encode alerts as JSON: %w", err)
		}

		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(alerts)
		if err != nil {
			return fmt.Errorf("failed to encode alerts as YAML: %w", err)
		}

		return nil
	default:
		return renderAlertsTable(alerts)
	}
}

func renderAlertsTable(alerts []central.Alert) error {
	if len(alerts) == 0 {
		_, _ = os.Stdout.WriteString("No alerts found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Severity", "Category", "Product", "Description", "Raised")

	for _, alert := range alerts {
		_ = table.Append([]string{
			alert.ID,
			titleCase(alert.Severity),
			alert.Category,
			alert.Product,
			alert.Description,
			formatTime(alert.RaisedAt),
		})
	}

	_ = table.Render()

	return nil
}

func newAlertsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ALERT_ID",
		Short: "Get alert details",
		Long:  "Display detailed information about a specific alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alertID := args[0]

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			alert, err := client.Alerts().Get(ctx, alertID)
			if err != nil {
				return fmt.Errorf("failed to get alert: %w", err)
			}

			// Output results
			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(alert)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(alert)
			default:
				return renderAlertTable(alert)
			}
		},
	}
}

func renderAlertTable(alert *central.Alert) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("ID", alert.ID)
	_ = table.Append("Severity", titleCase(alert.Severity))
	_ = table.Append("Category", alert.Category)
	_ = table.Append("Product", alert.Product)
	_ = table.Append("Type", alert.Type)
	_ = table.Append("Description", alert.Description)

	if alert.ManagedAgent != nil {
		_ = table.Append("Managed Agent", fmt.Sprintf("%s (%s)", alert.ManagedAgent.ID, alert.ManagedAgent.Type))
	}

	if alert.Person != nil {
		_ = table.Append("Person", alert.Person.Name)
	}

	_ = table.Append("Allowed Actions", formatStrings(alert.AllowedActions))
	_ = table.Append("Raised", formatTime(alert.RaisedAt))

	_, _ = os.Stdout.WriteString("Alert details:\n\n")
	_ = table.Render()

	return nil
}

func newAlertsActionCommand() *cobra.Command {
	var (
		action  string
		message string
	)

	cmd := &cobra.Command{
		Use:   "action ALERT_ID",
		Short: "Act on an alert",
		Long:  "Perform one of the alert's allowed actions, such as acknowledge or clearThreat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alertID := args[0]

			if action == "" {
				return constants.ErrActionRequired
			}

			ctx := context.Background()

			client, err := CreateClient(ctx)
			if err != nil {
				return err
			}

			request := &central.AlertActionRequest{
				Action:  action,
				Message: message,
			}

			result, err := client.Alerts().Action(ctx, alertID, request)
			if err != nil {
				return fmt.Errorf("failed to perform alert action: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(result)
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(result)
			default:
				_, _ = fmt.Fprintf(os.Stdout, "Action '%s' requested for alert %s\n", action, alertID)

				if result.Status != "" {
					_, _ = fmt.Fprintf(os.Stdout, "  Status: %s\n", result.Status)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "action to perform (required)")
	cmd.Flags().StringVar(&message, "message", "", "message recorded with the action")
	_ = cmd.MarkFlagRequired("action")

	return cmd
}
