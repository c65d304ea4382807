// Package storeerr defines the sentinel error values shared across the
// store's layers. Callers use errors.Is against these sentinels; every
// layer wraps them with fmt.Errorf("%w: ...") to add context rather than
// constructing ad hoc error strings, following the wrapping discipline
// nanostore itself uses throughout its store and where-clause evaluator.
package storeerr

import "errors"

var (
	// ErrInvalidDocument marks a document with a key that contains "." or
	// starts with "$".
	ErrInvalidDocument = errors.New("invalid document")

	// ErrUniqueViolation marks an insert or update that would duplicate a
	// unique-indexed key.
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrInconsistentProjection marks a projection mixing inclusion and
	// exclusion (other than an explicit _id: 0 alongside 1-style fields).
	ErrInconsistentProjection = errors.New("inconsistent projection")

	// ErrInvalidUpdate marks a replacement with a differing _id, an
	// unknown modifier, or a modifier operand incompatible with the
	// current field value.
	ErrInvalidUpdate = errors.New("invalid update")

	// ErrMissingField marks ensureIndex called without a field name.
	ErrMissingField = errors.New("missing field name")

	// ErrPersistenceFailure wraps an error surfaced verbatim from the
	// persistence collaborator.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrNotFound marks a lookup that finds nothing to act on. No
	// operation in this module returns it: FindOne reports no match as a
	// nil document with a nil error.
	ErrNotFound = errors.New("not found")
)
