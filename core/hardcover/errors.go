package hardcover

import "fmt"

// AuthError indicates a missing or rejected API token.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("HTTP %d: invalid or missing API token", e.Status)
}

// RateLimitError indicates remote-reported throttling, distinct from the
// client's own local throttle.
type RateLimitError struct {
	Status int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("HTTP %d: rate limit exceeded", e.Status)
}

// TransportError indicates a network failure or an unexpected HTTP status.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return fmt.Sprintf("HTTP %d: request failed", e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError indicates a logical error reported by the GraphQL service
// (malformed query, constraint violation).
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("graphql error: %s", e.Message)
}

// DataError indicates a response body that could not be decoded.
type DataError struct {
	Err error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("invalid response: %v", e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}
