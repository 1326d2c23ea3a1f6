// Package central provides types, interfaces, and helpers for working with the
// Sophos Central management APIs.
//
// # Overview
//
// The central package defines the domain types (e.g., Endpoint, Alert, Admin,
// Role, Tenant) and the interfaces for resource-oriented clients (e.g.,
// EndpointsClient, AlertsClient). A concrete implementation of these clients
// is provided by the centralclient package, which wires configuration,
// transport, OAuth2 authentication, and data-region discovery. Most consumers
// should import centralclient to construct a client and then interact with
// the resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/sophos-central/pkg/central"
//	  "github.com/fivetwenty-io/sophos-central/pkg/centralclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := centralclient.New(ctx, &central.Config{
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of endpoints
//	  endpoints, err := cli.Endpoints().List(ctx, central.NewQueryParams().WithPageSize(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = endpoints
//	}
//
// # Queries and pagination
//
// Use QueryParams to express common list options (pageSize, pageFromKey,
// sort, search, filters). List endpoints return a ListResponse whose Pages
// block carries the nextKey cursor; the Paginator walks that cursor for you:
//
//	pager, err := cli.Endpoints().Paginator(nil, 0)
//	if err != nil { log.Fatal(err) }
//	for page, err := range pager.Pages(ctx) {
//	  if err != nil { break }
//	  _ = page.Items
//	}
//
// or fetch all results at once:
//
//	all, err := central.FetchAllPages(ctx, fetch, central.DefaultPaginationOptions())
//	if err != nil { /* handle error */ }
//	_ = all
//
// # Errors
//
// API errors are represented by APIError and its typed subclasses
// (InvalidCredentialsError, TokenExpiredError, NotFoundError, RateLimitError,
// ServerError, and friends). Helpers such as IsNotFound, IsUnauthorized, and
// IsRateLimit make it easy to branch on common Central error cases, while
// errors.As walks the hierarchy for callers that need the full detail.
//
// # Interceptors
//
// The package includes generic request/response interceptors (for logging and
// header injection). The centralclient package composes these pieces for a
// sensible default client; applications with advanced needs can also use
// these primitives directly.
//
// # Resources
//
// Resource clients follow a consistent list-get-and-actions pattern across
// Central resources (Endpoints, Alerts, Admins, Roles, Tenants). See the
// individual interfaces in client.go for the full surface area.
package central
