// Package http implements the HTTP handlers of the TIN consolidation service.
// Handlers stay thin: they decode and validate the request, call the
// consolidation service and render either a JSON response or an RFC 7807
// problem through errors.ErrorHandler.
//
// # Endpoints
//
//	POST /api/consolidate   run the pipeline for {source_folder, flag_file, output_dir}
//	GET  /api/health        liveness plus whether a run is in progress
//	GET  /api/version       build information
//
// Only one run executes at a time. A second POST while a run is active
// gets 409 with type /errors/consolidation/already-running.
package http
