package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveDocument is returned when a correction or field extraction
	// arrives before any document has been processed.
	ErrNoActiveDocument = errors.New("no invoice currently loaded, process an invoice first")

	// ErrIndexing marks a vector index failure during initial indexing. It is
	// fatal to starting that document's session.
	ErrIndexing = errors.New("failed to index document")

	// ErrVendorStore marks a vendor persistence failure. The in-memory vendor
	// remains usable for the rest of the process but is not durable.
	ErrVendorStore = errors.New("vendor store persistence failed")
)

// MalformedResponseError is returned when the oracle's output contains no
// balanced JSON object or the object does not decode. Raw preserves the
// original response for diagnostics.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed oracle response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SchemaViolationError is returned when a payload parses as JSON but does not
// match the invoice schema (unknown keys, wrong types).
type SchemaViolationError struct {
	Raw string
	Err error
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("payload violates invoice schema: %v", e.Err)
}

func (e *SchemaViolationError) Unwrap() error { return e.Err }
