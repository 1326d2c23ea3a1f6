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

const endpointsBasePath = constants.EndpointAPIBasePath + "/endpoints"

// EndpointsClient implements central.EndpointsClient.
type EndpointsClient struct {
	httpClient *http.Client
}

// NewEndpointsClient creates a new endpoints client.
func NewEndpointsClient(httpClient *http.Client) *EndpointsClient {
	return &EndpointsClient{
		httpClient: httpClient,
	}
}

// List implements central.EndpointsClient.List.
func (c *EndpointsClient) List(ctx context.Context, params *central.QueryParams) (*central.EndpointList, error) {
	var queryParams url.Values
	if params != nil {
		queryParams = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, endpointsBasePath, queryParams)
	if err != nil {
		return nil, fmt.Errorf("listing endpoints: %w", err)
	}

	var list central.EndpointList

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoints list: %w", err)
	}

	return &list, nil
}

// Get implements central.EndpointsClient.Get.
func (c *EndpointsClient) Get(ctx context.Context, endpointID string) (*central.Endpoint, error) {
	path := endpointsBasePath + "/" + endpointID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting endpoint: %w", err)
	}

	var endpoint central.Endpoint

	err = json.Unmarshal(resp.Body, &endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}

	return &endpoint, nil
}

// Update implements central.EndpointsClient.Update.
func (c *EndpointsClient) Update(ctx context.Context, endpointID string, request *central.EndpointUpdateRequest) (*central.Endpoint, error) {
	path := endpointsBasePath + "/" + endpointID

	resp, err := c.httpClient.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating endpoint: %w", err)
	}

	var endpoint central.Endpoint

	err = json.Unmarshal(resp.Body, &endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}

	return &endpoint, nil
}

// Delete implements central.EndpointsClient.Delete.
func (c *EndpointsClient) Delete(ctx context.Context, endpointID string) error {
	path := endpointsBasePath + "/" + endpointID

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting endpoint: %w", err)
	}

	return nil
}

// Scan implements central.EndpointsClient.Scan.
func (c *EndpointsClient) Scan(ctx context.Context, endpointID string) (*central.ScanResponse, error) {
	path := endpointsBasePath + "/" + endpointID + "/scans"

	resp, err := c.httpClient.Post(ctx, path, &central.ScanRequest{Enabled: true})
	if err != nil {
		return nil, fmt.Errorf("starting endpoint scan: %w", err)
	}

	var scan central.ScanResponse

	err = json.Unmarshal(resp.Body, &scan)
	if err != nil {
		return nil, fmt.Errorf("parsing scan response: %w", err)
	}

	return &scan, nil
}

// Isolate implements central.EndpointsClient.Isolate.
func (c *EndpointsClient) Isolate(ctx context.Context, endpointID, comment string) (*central.IsolationResponse, error) {
	path := endpointsBasePath + "/" + endpointID + "/isolation"

	request := &central.IsolationRequest{
		Enabled: true,
		Comment: comment,
	}

	resp, err := c.httpClient.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("isolating endpoint: %w", err)
	}

	var isolation central.IsolationResponse

	err = json.Unmarshal(resp.Body, &isolation)
	if err != nil {
		return nil, fmt.Errorf("parsing isolation response: %w", err)
	}

	return &isolation, nil
}

// Unisolate implements central.EndpointsClient.Unisolate.
func (c *EndpointsClient) Unisolate(ctx context.Context, endpointID string) error {
	path := endpointsBasePath + "/" + endpointID + "/isolation"

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("removing endpoint isolation: %w", err)
	}

	return nil
}

// TamperProtection implements central.EndpointsClient.TamperProtection.
func (c *EndpointsClient) TamperProtection(ctx context.Context, endpointID string) (*central.TamperProtection, error) {
	path := endpointsBasePath + "/" + endpointID + "/tamper-protection"

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting tamper protection: %w", err)
	}

	var tamper central.TamperProtection

	err = json.Unmarshal(resp.Body, &tamper)
	if err != nil {
		return nil, fmt.Errorf("parsing tamper protection: %w", err)
	}

	return &tamper, nil
}

// UpdateTamperProtection implements central.EndpointsClient.UpdateTamperProtection.
func (c *EndpointsClient) UpdateTamperProtection(ctx context.Context, endpointID string, request *central.TamperProtectionUpdateRequest) (*central.TamperProtection, error) {
	path := endpointsBasePath + "/" + endpointID + "/tamper-protection"

	resp, err := c.httpClient.Post(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating tamper protection: %w", err)
	}

	var tamper central.TamperProtection

	err = json.Unmarshal(resp.Body, &tamper)
	if err != nil {
		return nil, fmt.Errorf("parsing tamper protection: %w", err)
	}

	return &tamper, nil
}

// TamperProtectionPassword implements central.EndpointsClient.TamperProtectionPassword.
func (c *EndpointsClient) TamperProtectionPassword(ctx context.Context, endpointID string) (*central.TamperProtectionPassword, error) {
	path := endpointsBasePath + "/" + endpointID + "/tamper-protection/password"

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting tamper protection password: %w", err)
	}

	var password central.TamperProtectionPassword

	err = json.Unmarshal(resp.Body, &password)
	if err != nil {
		return nil, fmt.Errorf("parsing tamper protection password: %w", err)
	}

	return &password, nil
}

// Paginator implements central.EndpointsClient.Paginator.
func (c *EndpointsClient) Paginator(params *central.QueryParams, maxPages int) (*central.Paginator[central.Endpoint], error) {
	base := params.Clone()
	if base.PageSize == 0 {
		base.PageSize = constants.DefaultPageSize
	}

	fetch := func(ctx context.Context, cursor string) (*central.EndpointList, error) {
		pageParams := base.Clone()
		pageParams.PageFromKey = cursor

		return c.List(ctx, pageParams)
	}

	paginator, err := central.NewPaginator(fetch, &central.PaginationOptions{
		PageSize: base.PageSize,
		MaxPages: maxPages,
	})
	if err != nil {
		return nil, fmt.Errorf("creating endpoints paginator: %w", err)
	}

	return paginator, nil
}
