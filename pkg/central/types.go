package central

// PageInfo describes the cursor pagination block returned by list endpoints.
//
// The API pages forward with opaque keys: FromKey identifies the first item
// of the current page and NextKey, when present, is the cursor for the page
// after it. An absent NextKey means the final page. Total and Current are
// only populated when the request asked for page totals.
type PageInfo struct {
	Current int    `json:"current,omitempty" yaml:"current,omitempty"`
	Size    int    `json:"size,omitempty"    yaml:"size,omitempty"`
	Total   int    `json:"total,omitempty"   yaml:"total,omitempty"`
	FromKey string `json:"fromKey,omitempty" yaml:"fromKey,omitempty"`
	NextKey string `json:"nextKey,omitempty" yaml:"nextKey,omitempty"`
	MaxSize int    `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`
}

// HasNextPage reports whether another page follows this one.
func (p PageInfo) HasNextPage() bool {
	return p.NextKey != ""
}

// ListResponse represents one page of a paginated list response.
type ListResponse[T any] struct {
	Items []T      `json:"items" yaml:"items"`
	Pages PageInfo `json:"pages" yaml:"pages"`
}

// WhoAmI represents the whoami identity resolution response.
type WhoAmI struct {
	ID       string   `json:"id"       yaml:"id"`
	IDType   string   `json:"idType"   yaml:"idType"`
	APIHosts APIHosts `json:"apiHosts" yaml:"apiHosts"`
}

// APIHosts carries the API hosts assigned to the authenticated principal.
// DataRegion is the regional host that serves tenant-scoped APIs.
type APIHosts struct {
	Global     string `json:"global"               yaml:"global"`
	DataRegion string `json:"dataRegion,omitempty" yaml:"dataRegion,omitempty"`
}

// Principal ID types returned in WhoAmI.IDType.
const (
	IDTypeTenant       = "tenant"
	IDTypePartner      = "partner"
	IDTypeOrganization = "organization"
)

// EndpointList represents a paginated list of Endpoint resources.
type EndpointList = ListResponse[Endpoint]

// AlertList represents a paginated list of Alert resources.
type AlertList = ListResponse[Alert]

// AdminList represents a paginated list of Admin resources.
type AdminList = ListResponse[Admin]

// RoleList represents a paginated list of Role resources.
type RoleList = ListResponse[Role]

// TenantList represents a paginated list of Tenant resources.
type TenantList = ListResponse[Tenant]
