package domain

import "errors"

var (
	// ErrNotFound reports an absent booking, property or profile.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidStatus reports a status value outside the four legal ones.
	ErrInvalidStatus = errors.New("invalid status. Must be one of: pending, confirmed, cancelled, completed")

	// ErrMissingActor reports a list call without an actor id.
	ErrMissingActor = errors.New("actor id is required")

	// ErrInvalidRole reports a viewer role other than client or owner.
	ErrInvalidRole = errors.New("invalid role")

	// ErrValidation reports a malformed booking submission.
	ErrValidation = errors.New("validation failed")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
