// Package services contains the consolidation entry point shared by the CLI
// and the HTTP transport.
//
// ConsolidationService.Consolidate validates the chosen paths, runs the
// pipeline stages from internal/dataprocessing in sequence and hands the
// result to internal/exporter. Runs are serialized: a call made while
// another run is in progress fails with errors.ErrOperationRunning.
// Each stage gets a span and a duration measurement.
package services
