// Package app wires the TIN consolidation service: configuration, logging,
// OpenTelemetry, the consolidation service and the chi router.
//
// # Routes
//
//	POST /api/consolidate   rate limited, bounded by server.operation_timeout
//	GET  /api/health
//	GET  /api/version
//	GET  /metrics           Prometheus exposition from the OTel meter provider
//
// # Usage
//
//	a, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return a.Run()
//
// Run blocks until SIGINT or SIGTERM and then shuts the server down within
// server.shutdown_timeout. Errors are returned to the caller; the package
// never calls os.Exit.
package app
