// internal/util/errors.go
package util

import "errors"

// Failure kinds used across the whole system. The gateway classifies remote
// failures into these, the session store and HTTP handlers branch on them,
// and the pure packages (aggregator, ledger) only ever raise ErrValidation
// or ErrConflict.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("conflicting resource state")
	ErrValidation = errors.New("invalid input provided")
	ErrNetwork    = errors.New("network failure")
)

// IsError reports whether err matches the given sentinel.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
