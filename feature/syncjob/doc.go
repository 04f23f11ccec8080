// Package syncjob exposes the sync job runner over HTTP.
//
// It lets hosts that cannot link the engine directly (desktop integrations,
// scripts) start reconciliation runs and poll their progress. Runs execute on
// a background goroutine; the HTTP surface only ever reads progress fields
// and the final result.
//
// # Components
//
//   - Service: owns the registry of runners and starts new runs.
//   - Handler: exposes the HTTP endpoints.
//   - Feature: registers the feature with the application loader.
//
// # HTTP Endpoints
//
//   - POST /api/sync : Start a run (optional JSON body with "ids"), returns the run ID.
//   - GET  /api/sync/:id : Poll state, progress, status and, once done, the result.
//   - GET  /api/health : Pre-flight connection test against Hardcover.
package syncjob
