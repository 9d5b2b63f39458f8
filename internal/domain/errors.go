package domain

import "errors"

// Error kinds surfaced to callers. Wrap with fmt.Errorf("%w: ...") to
// attach the offending entity or line; match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrTotalMismatch     = errors.New("total amount does not match sum of product prices")
	ErrForbidden         = errors.New("access denied")
	ErrInvalidTransition = errors.New("invalid status transition")
)
