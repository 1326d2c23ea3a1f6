package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/sophos-central/internal/constants"
	"github.com/fivetwenty-io/sophos-central/internal/http"
	"github.com/fivetwenty-io/sophos-central/pkg/central"
)

const alertsBasePath = constants.CommonAPIBasePath + "/alerts"

// AlertsClient implements central.AlertsClient.
type AlertsClient struct {
	httpClient *http.Client
}

// NewAlertsClient creates a new alerts client.
func NewAlertsClient(httpClient *http.Client) *AlertsClient {
	return &AlertsClient{
		httpClient: httpClient,
	}
}

// List implements central.AlertsClient.List.
func (c *AlertsClient) List(ctx context.Context, params *central.QueryParams) (*central.AlertList, error) {
	var queryParams url.Values
	if params != nil {
		queryParams = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, alertsBasePath, queryParams)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}

	var list central.AlertList

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing alerts list: %w", err)
	}

	return &list, nil
}

// Get implements central.AlertsClient.Get.
func (c *AlertsClient) Get(ctx context.Context, alertID string) (*central.Alert, error) {
	path := alertsBasePath + "/" + alertID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting alert: %w", err)
	}

	var alert central.Alert

	err = json.Unmarshal(resp.Body, &alert)
	if err != nil {
		return nil, fmt.Errorf("parsing alert: %w", err)
	}

	return &alert, nil
}

// Action implements central.AlertsClient.Action.
func (c *AlertsClient) Action(ctx context.Context, alertID string, request *central.AlertActionRequest) (*central.AlertActionResponse, error) {
	path := alertsBasePath + "/" + alertID + "/actions"

	resp, err := c.httpClient.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("performing alert action: %w", err)
	}

	var action central.AlertActionResponse

	err = json.Unmarshal(resp.Body, &action)
	if err != nil {
		return nil, fmt.Errorf("parsing alert action response: %w", err)
	}

	return &action, nil
}

// Paginator implements central.AlertsClient.Paginator.
func (c *AlertsClient) Paginator(params *central.QueryParams, maxPages int) (*central.Paginator[central.Alert], error) {
	base := params.Clone()
	if base.PageSize == 0 {
		base.PageSize = constants.DefaultPageSize
	}

	fetch := func(ctx context.Context, cursor string) (*central.AlertList, error) {
		pageParams := base.Clone()
		pageParams.PageFromKey = cursor

		return c.List(ctx, pageParams)
	}

	paginator, err := central.NewPaginator(fetch, &central.PaginationOptions{
		PageSize: base.PageSize,
		MaxPages: maxPages,
	})
	if err != nil {
		return nil, fmt.Errorf("creating alerts paginator: %w", err)
	}

	return paginator, nil
}
