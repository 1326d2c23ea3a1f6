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

const tenantsBasePath = constants.CommonAPIBasePath + "/tenants"

// TenantsClient implements central.TenantsClient.
type TenantsClient struct {
	httpClient *http.Client
}

// NewTenantsClient creates a new tenants client.
func NewTenantsClient(httpClient *http.Client) *TenantsClient {
	return &TenantsClient{
		httpClient: httpClient,
	}
}

// List implements central.TenantsClient.List.
func (c *TenantsClient) List(ctx context.Context, params *central.QueryParams) (*central.TenantList, error) {
	var queryParams url.Values
	if params != nil {
		queryParams = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, tenantsBasePath, queryParams)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}

	var list central.TenantList

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing tenants list: %w", err)
	}

	return &list, nil
}

// Get implements central.TenantsClient.Get.
func (c *TenantsClient) Get(ctx context.Context, tenantID string) (*central.Tenant, error) {
	path := tenantsBasePath + "/" + tenantID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting tenant: %w", err)
	}

	var tenant central.Tenant

	err = json.Unmarshal(resp.Body, &tenant)
	if err != nil {
		return nil, fmt.Errorf("parsing tenant: %w", err)
	}

	return &tenant, nil
}

// Paginator implements central.TenantsClient.Paginator.
func (c *TenantsClient) Paginator(params *central.QueryParams, maxPages int) (*central.Paginator[central.Tenant], error) {
	base := params.Clone()
	if base.PageSize == 0 {
		base.PageSize = constants.DefaultPageSize
	}

	fetch := func(ctx context.Context, cursor string) (*central.TenantList, error) {
		pageParams := base.Clone()
		pageParams.PageFromKey = cursor

		return c.List(ctx, pageParams)
	}

	paginator, err := central.NewPaginator(fetch, &central.PaginationOptions{
		PageSize: base.PageSize,
		MaxPages: maxPages,
	})
	if err != nil {
		return nil, fmt.Errorf("creating tenants paginator: %w", err)
	}

	return paginator, nil
}
