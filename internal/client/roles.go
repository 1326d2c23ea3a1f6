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

const rolesBasePath = constants.CommonAPIBasePath + "/roles"

// RolesClient implements central.RolesClient.
type RolesClient struct {
	httpClient *http.Client
}

// NewRolesClient creates a new roles client.
func NewRolesClient(httpClient *http.Client) *RolesClient {
	return &RolesClient{
		httpClient: httpClient,
	}
}

// List implements central.RolesClient.List.
func (c *RolesClient) List(ctx context.Context, params *central.QueryParams) (*central.RoleList, error) {
	var queryParams url.Values
	if params != nil {
		queryParams = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, rolesBasePath, queryParams)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}

	var list central.RoleList

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing roles list: %w", err)
	}

	return &list, nil
}

// Get implements central.RolesClient.Get.
func (c *RolesClient) Get(ctx context.Context, roleID string) (*central.Role, error) {
	path := rolesBasePath + "/" + roleID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting role: %w", err)
	}

	var role central.Role

	err = json.Unmarshal(resp.Body, &role)
	if err != nil {
		return nil, fmt.Errorf("parsing role: %w", err)
	}

	return &role, nil
}

// Create implements central.RolesClient.Create.
func (c *RolesClient) Create(ctx context.Context, request *central.RoleCreateRequest) (*central.Role, error) {
	resp, err := c.httpClient.Post(ctx, rolesBasePath, request)
	if err != nil {
		return nil, fmt.Errorf("creating role: %w", err)
	}

	var role central.Role

	err = json.Unmarshal(resp.Body, &role)
	if err != nil {
		return nil, fmt.Errorf("parsing role: %w", err)
	}

	return &role, nil
}

// Update implements central.RolesClient.Update.
func (c *RolesClient) Update(ctx context.Context, roleID string, request *central.RoleUpdateRequest) (*central.Role, error) {
	path := rolesBasePath + "/" + roleID

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating role: %w", err)
	}

	var role central.Role

	err = json.Unmarshal(resp.Body, &role)
	if err != nil {
		return nil, fmt.Errorf("parsing role: %w", err)
	}

	return &role, nil
}

// Delete implements central.RolesClient.Delete.
func (c *RolesClient) Delete(ctx context.Context, roleID string) error {
	path := rolesBasePath + "/" + roleID

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting role: %w", err)
	}

	return nil
}
