package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the client.
var (
	// ErrNotFound means the upstream reported no product for a barcode.
	ErrNotFound = errors.New("product not found")

	// ErrInvalidArgument means the caller passed an unusable argument,
	// such as an empty barcode.
	ErrInvalidArgument = errors.New("invalid argument")
)

// NetworkError wraps a transport-level failure (DNS, connection, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError means the catalog service answered with a non-success status.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("catalog service returned status %d", e.StatusCode)
}

// FormatError means the response body was not parseable as the expected shape.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unparseable catalog response: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
