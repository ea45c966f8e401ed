package collection

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by every access layer built on this package.
var (
	// ErrNotFound reports that no record matched the requested id or filter.
	ErrNotFound = errors.New("collection: record not found")
	// ErrInvalidArgument reports a malformed caller-supplied argument such as
	// a negative page size or an unrecognized filter value.
	ErrInvalidArgument = errors.New("collection: invalid argument")
	// ErrConflict is reserved for a storage-level uniqueness constraint on
	// auto-generated ledger entries. Nothing raises it yet.
	ErrConflict = errors.New("collection: conflict")
)

// NotFoundError wraps ErrNotFound with the id that missed.
func NotFoundError(id string) error {
	return fmt.Errorf("%w, id %s", ErrNotFound, id)
}

// InvalidArgumentError wraps ErrInvalidArgument with a detail message.
func InvalidArgumentError(detail string) error {
	return fmt.Errorf("%w, %s", ErrInvalidArgument, detail)
}
