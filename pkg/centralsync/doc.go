// Package centralsync presents the Sophos Central client as a synchronous,
// context-free surface for callers that do not manage contexts themselves.
//
// # Sessions
//
// A Session owns one worker goroutine for its lifetime. Every bridged call is
// queued to that worker and runs to completion before the caller returns, so
// all client state stays confined to a single execution context and the
// operation order is always open, operations, close.
//
//	session, err := centralsync.Open(&central.Config{
//	  ClientID:     "client-id",
//	  ClientSecret: "client-secret",
//	})
//	if err != nil { log.Fatal(err) }
//	defer session.Close()
//
//	endpoints, err := session.Get("/endpoint/v1/endpoints", nil)
//	if err != nil { log.Fatal(err) }
//	_ = endpoints
//
// Results and errors pass through unchanged: a *central.RateLimitError raised
// by the underlying client surfaces as the same typed error from the bridge.
//
// # Lifecycle
//
// Open builds the client (including data-region discovery) on the worker and
// fails the session if construction fails. Close drains any queued calls,
// stops the worker, and releases idle connections; it is idempotent and runs
// its release steps even after failed operations. Calls before Open or after
// Close return ErrSessionClosed.
//
// # Concurrency
//
// A Session may be shared across goroutines, in which case the worker
// serializes their calls, but ordering between concurrent callers is
// unspecified. The intended shape is one session per synchronous caller.
// Callers that manage contexts should use centralclient directly instead.
package centralsync
