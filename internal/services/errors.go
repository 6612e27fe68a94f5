package services

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrConflict        = errors.New("listing state does not allow this change")
	ErrForbidden       = errors.New("not allowed for this user")
	ErrValidation      = errors.New("validation failed")
)

// ErrAuthRequired is returned when an operation needs a verified session
// and none was supplied.
var ErrAuthRequired = errors.New("authentication required")
