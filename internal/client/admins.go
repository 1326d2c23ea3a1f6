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

const adminsBasePath = constants.CommonAPIBasePath + "/admins"

// AdminsClient implements central.AdminsClient.
type AdminsClient struct {
	httpClient *http.Client
}

// NewAdminsClient creates a new admins client.
func NewAdminsClient(httpClient *http.Client) *AdminsClient {
	return &AdminsClient{
		httpClient: httpClient,
	}
}

// List implements central.AdminsClient.List.
func (c *AdminsClient) List(ctx context.Context, params *central.QueryParams) (*central.AdminList, error) {
	var queryParams url.Values
	if params != nil {
		queryParams = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, adminsBasePath, queryParams)
	if err != nil {
		return nil, fmt.Errorf("listing admins: %w", err)
	}

	var list central.AdminList

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing admins list: %w", err)
	}

	return &list, nil
}

// Get implements central.AdminsClient.Get.
func (c *AdminsClient) Get(ctx context.Context, adminID string) (*central.Admin, error) {
	path := adminsBasePath + "/" + adminID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting admin: %w", err)
	}

	var admin central.Admin

	err = json.Unmarshal(resp.Body, &admin)
	if err != nil {
		return nil, fmt.Errorf("parsing admin: %w", err)
	}

	return &admin, nil
}

// Create implements central.AdminsClient.Create.
func (c *AdminsClient) Create(ctx context.Context, request *central.AdminCreateRequest) (*central.Admin, error) {
	resp, err := c.httpClient.Post(ctx, adminsBasePath, request)
	if err != nil {
		return nil, fmt.Errorf("creating admin: %w", err)
	}

	var admin central.Admin

	err = json.Unmarshal(resp.Body, &admin)
	if err != nil {
		return nil, fmt.Errorf("parsing admin: %w", err)
	}

	return &admin, nil
}

// Update implements central.AdminsClient.Update.
func (c *AdminsClient) Update(ctx context.Context, adminID string, request *central.AdminUpdateRequest) (*central.Admin, error) {
	path := adminsBasePath + "/" + adminID

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating admin: %w", err)
	}

	var admin central.Admin

	err = json.Unmarshal(resp.Body, &admin)
	if err != nil {
		return nil, fmt.Errorf("parsing admin: %w", err)
	}

	return &admin, nil
}

// Delete implements central.AdminsClient.Delete.
func (c *AdminsClient) Delete(ctx context.Context, adminID string) error {
	path := adminsBasePath + "/" + adminID

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting admin: %w", err)
	}

	return nil
}
