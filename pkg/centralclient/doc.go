// Package centralclient provides the primary entry point for constructing a
// Sophos Central API client that implements the central.Client interface.
//
// It layers configuration, HTTP transport, OAuth2 authentication, and data
// region discovery on top of the resource interfaces and types defined in the
// central package. Most applications should import centralclient to build a
// client, then use the returned central.Client to access resource-specific
// clients, for example Endpoints(), Alerts(), Tenants(), etc.
//
// Quick start
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
//
//	  // Minimal: API credentials only. The client authenticates against
//	  // id.sophos.com and resolves the tenant data region via whoami.
//	  cli, err := centralclient.NewWithCredentials(ctx, "client-id", "client-secret")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with a full configuration:
//	  cli, err = centralclient.New(ctx, &central.Config{
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	    Region:       "us03",        // fallback host if whoami lacks one
//	    TenantID:     "tenant-uuid", // partner and organization principals
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the central.Client interface
//	  endpoints, err := cli.Endpoints().List(ctx, central.NewQueryParams().WithPageSize(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = endpoints
//	}
//
// # Host resolution
//
// After authenticating, New calls the whoami endpoint and uses the returned
// apiHosts.dataRegion as the base URL for all API requests. Setting
// Config.BaseURL skips resolution entirely, which is useful for tests and
// proxies. Setting Config.Region derives the documented regional host (for
// example https://api-us03.central.sophos.com) when whoami cannot provide
// one.
//
// # Helpers
//
// The package also provides the convenience constructor NewWithCredentials
// that wraps New with the appropriate configuration.
package centralclient
