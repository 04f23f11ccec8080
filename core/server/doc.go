// Package server holds configuration for the optional HTTP serve mode.
//
// The serve mode exposes the sync job runner over HTTP so that hosts
// (desktop integrations, scripts) can start runs and poll progress without
// linking the engine directly. Only configuration lives here; the Fiber app
// itself is assembled in cmd/serve.go from the registered features.
package server
