// Package hardcover provides the client for the Hardcover.app GraphQL API.
//
// The client issues authenticated query/mutation requests against the single
// GraphQL endpoint, enforces a minimum spacing between requests (Hardcover
// allows 60 requests per minute) and classifies failures into a small error
// taxonomy so callers can report what went wrong without retrying here.
//
// # Rate Limiting
//
// Every request through one Client instance is spaced at least
// Config.RateLimitDelay seconds after the previous one. The throttle is a
// blocking local delay on a single clock, not a queue; the sync engine issues
// strictly serial calls, so the throttle simply stalls that one worker.
//
// # Error Taxonomy
//
//   - AuthError: missing or rejected credential (HTTP 401/403)
//   - RateLimitError: remote-reported throttling (HTTP 429)
//   - TransportError: network failures and unexpected HTTP statuses
//   - ServiceError: GraphQL-level errors reported in the response body
//   - DataError: a response body that could not be decoded
//
// All four remote kinds are terminal for the one request; no retry happens at
// this layer.
//
// # Degrading Operations
//
// SearchByTitle and SearchByISBN return an empty slice on any failure, and
// CreateBook returns an empty ID when creation does not yield one. A failed
// lookup or creation must never abort a sync batch; failures are logged here
// and counted by the engine.
package hardcover
