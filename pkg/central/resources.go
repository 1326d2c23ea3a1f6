package central

import "time"

// Health status values reported for endpoints.
const (
	HealthStatusGood       = "good"
	HealthStatusSuspicious = "suspicious"
	HealthStatusBad        = "bad"
	HealthStatusUnknown    = "unknown"
)

// Endpoint type values.
const (
	EndpointTypeComputer   = "computer"
	EndpointTypeServer     = "server"
	EndpointTypeSecurityVM = "securityVm"
)

// Lockdown status values.
const (
	LockdownStatusCreating      = "creating"
	LockdownStatusInstalled     = "installed"
	LockdownStatusLocked        = "locked"
	LockdownStatusNotInstalled  = "notInstalled"
	LockdownStatusRegistering   = "registering"
	LockdownStatusStarting      = "starting"
	LockdownStatusStopping      = "stopping"
	LockdownStatusUnavailable   = "unavailable"
	LockdownStatusUninstalled   = "uninstalled"
	LockdownStatusUnlocked      = "unlocked"
	LockdownStatusNotApplicable = "notApplicable"
)

// Endpoint represents a managed device in Sophos Central.
type Endpoint struct {
	ID                      string            `json:"id"                           yaml:"id"`
	Type                    string            `json:"type"                         yaml:"type"`
	Tenant                  *TenantReference  `json:"tenant,omitempty"             yaml:"tenant,omitempty"`
	Hostname                string            `json:"hostname"                     yaml:"hostname"`
	Health                  *Health           `json:"health,omitempty"             yaml:"health,omitempty"`
	OS                      *OSInfo           `json:"os,omitempty"                 yaml:"os,omitempty"`
	IPv4Addresses           []string          `json:"ipv4Addresses,omitempty"      yaml:"ipv4Addresses,omitempty"`
	IPv6Addresses           []string          `json:"ipv6Addresses,omitempty"      yaml:"ipv6Addresses,omitempty"`
	MACAddresses            []string          `json:"macAddresses,omitempty"       yaml:"macAddresses,omitempty"`
	AssociatedPerson        *AssociatedPerson `json:"associatedPerson,omitempty"   yaml:"associatedPerson,omitempty"`
	TamperProtectionEnabled bool              `json:"tamperProtectionEnabled"      yaml:"tamperProtectionEnabled"`
	AssignedProducts        []AssignedProduct `json:"assignedProducts,omitempty"   yaml:"assignedProducts,omitempty"`
	LastSeenAt              time.Time         `json:"lastSeenAt,omitempty" yaml:"lastSeenAt,omitempty"`
	LockdownStatus          string            `json:"lockdownStatus,omitempty"     yaml:"lockdownStatus,omitempty"`
	Group                   *EndpointGroup    `json:"group,omitempty"              yaml:"group,omitempty"`
	Encryption              map[string]any    `json:"encryption,omitempty"         yaml:"encryption,omitempty"`
	IsolationStatus         *IsolationStatus  `json:"isolation,omitempty"          yaml:"isolation,omitempty"`
}

// Health carries the overall, threat, and service health of an endpoint.
type Health struct {
	Overall  string          `json:"overall"            yaml:"overall"`
	Threats  *ThreatHealth   `json:"threats,omitempty"  yaml:"threats,omitempty"`
	Services *ServicesHealth `json:"services,omitempty" yaml:"services,omitempty"`
}

// ThreatHealth is the threat component of endpoint health.
type ThreatHealth struct {
	Status string `json:"status" yaml:"status"`
}

// ServicesHealth is the service component of endpoint health.
type ServicesHealth struct {
	Status         string          `json:"status"                   yaml:"status"`
	ServiceDetails []ServiceDetail `json:"serviceDetails,omitempty" yaml:"serviceDetails,omitempty"`
}

// ServiceDetail describes one agent service and its state.
type ServiceDetail struct {
	Name   string `json:"name"   yaml:"name"`
	Status string `json:"status" yaml:"status"`
}

// OSInfo describes the operating system of an endpoint.
type OSInfo struct {
	IsServer     bool   `json:"isServer"               yaml:"isServer"`
	Platform     string `json:"platform"               yaml:"platform"`
	Name         string `json:"name"                   yaml:"name"`
	MajorVersion int    `json:"majorVersion,omitempty" yaml:"majorVersion,omitempty"`
	MinorVersion int    `json:"minorVersion,omitempty" yaml:"minorVersion,omitempty"`
	Build        int    `json:"build,omitempty"        yaml:"build,omitempty"`
}

// AssociatedPerson is the person an endpoint is assigned to.
type AssociatedPerson struct {
	ID       string `json:"id,omitempty"       yaml:"id,omitempty"`
	Name     string `json:"name,omitempty"     yaml:"name,omitempty"`
	ViaLogin string `json:"viaLogin,omitempty" yaml:"viaLogin,omitempty"`
}

// AssignedProduct is a product installed on an endpoint.
type AssignedProduct struct {
	Code    string `json:"code"    yaml:"code"`
	Version string `json:"version" yaml:"version"`
	Status  string `json:"status"  yaml:"status"`
}

// EndpointGroup is the device group an endpoint belongs to.
type EndpointGroup struct {
	ID   string `json:"id,omitempty"   yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// IsolationStatus reports the network isolation state of an endpoint.
type IsolationStatus struct {
	Status           string `json:"status,omitempty"           yaml:"status,omitempty"`
	AdminIsolated    bool   `json:"adminIsolated,omitempty"    yaml:"adminIsolated,omitempty"`
	SelfIsolated     bool   `json:"selfIsolated,omitempty"     yaml:"selfIsolated,omitempty"`
	LastStatusChange string `json:"lastStatusChange,omitempty" yaml:"lastStatusChange,omitempty"`
}

// EndpointUpdateRequest represents a request to update an endpoint.
type EndpointUpdateRequest struct {
	// Hostname updates the reported hostname; empty leaves it unchanged.
	Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	// Group moves the endpoint into the named device group.
	Group *EndpointGroup `json:"group,omitempty" yaml:"group,omitempty"`
}

// ScanRequest represents a request to start an endpoint scan.
type ScanRequest struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// ScanResponse represents the result of requesting an endpoint scan.
type ScanResponse struct {
	ID          string    `json:"id"                    yaml:"id"`
	Status      string    `json:"status"                yaml:"status"`
	RequestedAt time.Time `json:"requestedAt,omitempty" yaml:"requestedAt,omitempty"`
}

// IsolationRequest represents a request to change endpoint isolation.
type IsolationRequest struct {
	Enabled bool   `json:"enabled"           yaml:"enabled"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// IsolationResponse represents the result of an isolation change.
type IsolationResponse struct {
	ID     string `json:"id"     yaml:"id"`
	Status string `json:"status" yaml:"status"`
}

// TamperProtection reports the tamper protection state of an endpoint.
type TamperProtection struct {
	Enabled           bool `json:"enabled"                     yaml:"enabled"`
	GloballyEnabled   bool `json:"globallyEnabled"             yaml:"globallyEnabled"`
	PreviouslyEnabled bool `json:"previouslyEnabled,omitempty" yaml:"previouslyEnabled,omitempty"`
}

// TamperProtectionUpdateRequest represents a tamper protection change.
type TamperProtectionUpdateRequest struct {
	// Enabled turns tamper protection on or off.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// RegeneratePassword requests a new tamper protection password.
	RegeneratePassword bool `json:"regeneratePassword,omitempty" yaml:"regeneratePassword,omitempty"`
}

// TamperProtectionPassword carries the current tamper protection password
// and previously issued ones.
type TamperProtectionPassword struct {
	Password          string   `json:"password"                    yaml:"password"`
	PreviousPasswords []string `json:"previousPasswords,omitempty" yaml:"previousPasswords,omitempty"`
}

// Alert severity values.
const (
	AlertSeverityLow    = "low"
	AlertSeverityMedium = "medium"
	AlertSeverityHigh   = "high"
)

// Alert actions accepted by the alert action endpoint.
const (
	AlertActionAcknowledge   = "acknowledge"
	AlertActionCleanPUA      = "cleanPua"
	AlertActionCleanVirus    = "cleanVirus"
	AlertActionAuthPUA       = "authPua"
	AlertActionClearThreat   = "clearThreat"
	AlertActionClearHMPA     = "clearHmpa"
	AlertActionSendMsgPUA    = "sendMsgPua"
	AlertActionSendMsgThreat = "sendMsgThreat"
)

// Alert represents a Sophos Central alert.
type Alert struct {
	ID             string           `json:"id"                       yaml:"id"`
	AllowedActions []string         `json:"allowedActions,omitempty" yaml:"allowedActions,omitempty"`
	Category       string           `json:"category"                 yaml:"category"`
	Description    string           `json:"description"              yaml:"description"`
	GroupKey       string           `json:"groupKey"                 yaml:"groupKey"`
	ManagedAgent   *ManagedAgent    `json:"managedAgent,omitempty"   yaml:"managedAgent,omitempty"`
	Person         *Person          `json:"person,omitempty"         yaml:"person,omitempty"`
	Product        string           `json:"product"                  yaml:"product"`
	RaisedAt       time.Time        `json:"raisedAt,omitempty" yaml:"raisedAt,omitempty"`
	Severity       string           `json:"severity"                 yaml:"severity"`
	Tenant         *TenantReference `json:"tenant,omitempty"         yaml:"tenant,omitempty"`
	Type           string           `json:"type"                     yaml:"type"`
	Data           map[string]any   `json:"data,omitempty"           yaml:"data,omitempty"`
}

// ManagedAgent is the device or agent an alert refers to.
type ManagedAgent struct {
	ID   string `json:"id"   yaml:"id"`
	Type string `json:"type" yaml:"type"`
}

// Person is a user referenced by an alert.
type Person struct {
	ID   string `json:"id"             yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// AlertActionRequest represents an action to perform on an alert.
type AlertActionRequest struct {
	// Action is one of the alert's allowedActions values.
	Action string `json:"action" yaml:"action"`
	// Message optionally explains why the action was taken.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// AlertActionResponse represents the result of an alert action.
type AlertActionResponse struct {
	ID          string    `json:"id,omitempty"          yaml:"id,omitempty"`
	AlertID     string    `json:"alertId,omitempty"     yaml:"alertId,omitempty"`
	Action      string    `json:"action,omitempty"      yaml:"action,omitempty"`
	Status      string    `json:"status,omitempty"      yaml:"status,omitempty"`
	RequestedAt time.Time `json:"requestedAt,omitempty" yaml:"requestedAt,omitempty"`
	CompletedAt time.Time `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	Result      string    `json:"result,omitempty"      yaml:"result,omitempty"`
}

// TenantReference identifies a tenant in resource payloads.
type TenantReference struct {
	ID   string `json:"id"             yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Tenant represents a Sophos Central tenant.
type Tenant struct {
	ID            string            `json:"id"                      yaml:"id"`
	Name          string            `json:"name"                    yaml:"name"`
	DataRegion    string            `json:"dataRegion"              yaml:"dataRegion"`
	DataGeography string            `json:"dataGeography,omitempty" yaml:"dataGeography,omitempty"`
	BillingType   string            `json:"billingType,omitempty"   yaml:"billingType,omitempty"`
	Partner       *PartnerReference `json:"partner,omitempty"       yaml:"partner,omitempty"`
	APIHost       string            `json:"apiHost"                 yaml:"apiHost"`
	Status        string            `json:"status,omitempty"        yaml:"status,omitempty"`
}

// PartnerReference identifies the managing partner of a tenant.
type PartnerReference struct {
	ID string `json:"id" yaml:"id"`
}

// RoleReference identifies a role assigned to an admin.
type RoleReference struct {
	ID   string `json:"id"             yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Admin represents a Sophos Central administrator.
type Admin struct {
	ID        string            `json:"id"                yaml:"id"`
	FirstName string            `json:"firstName"         yaml:"firstName"`
	LastName  string            `json:"lastName"          yaml:"lastName"`
	Email     string            `json:"email"             yaml:"email"`
	Role      *RoleReference    `json:"role,omitempty"    yaml:"role,omitempty"`
	Tenants   []TenantReference `json:"tenants,omitempty" yaml:"tenants,omitempty"`
	Status    string            `json:"status,omitempty"  yaml:"status,omitempty"`
}

// AdminCreateRequest represents a request to create an admin.
type AdminCreateRequest struct {
	FirstName string   `json:"firstName"           yaml:"firstName"`
	LastName  string   `json:"lastName"            yaml:"lastName"`
	Email     string   `json:"email"               yaml:"email"`
	RoleID    string   `json:"roleId"              yaml:"roleId"`
	TenantIDs []string `json:"tenantIds,omitempty" yaml:"tenantIds,omitempty"`
}

// AdminUpdateRequest represents a request to update an admin. Empty fields
// are left unchanged.
type AdminUpdateRequest struct {
	FirstName string   `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"  yaml:"lastName,omitempty"`
	Email     string   `json:"email,omitempty"     yaml:"email,omitempty"`
	RoleID    string   `json:"roleId,omitempty"    yaml:"roleId,omitempty"`
	TenantIDs []string `json:"tenantIds,omitempty" yaml:"tenantIds,omitempty"`
}

// Permission is one scope/action grant inside a role.
type Permission struct {
	Scope   string   `json:"scope"             yaml:"scope"`
	Actions []string `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Role represents a Sophos Central role.
type Role struct {
	ID          string       `json:"id"                    yaml:"id"`
	Name        string       `json:"name"                  yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Permissions []Permission `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Builtin     bool         `json:"builtin,omitempty"     yaml:"builtin,omitempty"`
}

// RoleCreateRequest represents a request to create a role.
type RoleCreateRequest struct {
	Name        string       `json:"name"                  yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Permissions []Permission `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

// RoleUpdateRequest represents a request to update a role. Empty fields are
// left unchanged.
type RoleUpdateRequest struct {
	Name        string       `json:"name,omitempty"        yaml:"name,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Permissions []Permission `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}
