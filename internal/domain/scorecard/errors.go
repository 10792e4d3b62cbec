package scorecard

import "errors"

var (
	ErrNotFound             = errors.New("scorecard record not found")
	ErrPerspectiveInUse     = errors.New("perspective is referenced by weight assignments")
	ErrUnknownPerspective   = errors.New("perspective could not be resolved")
	ErrImmutablePerspective = errors.New("perspective type is immutable once referenced")
	ErrInvalidStatus        = errors.New("invalid status value")
)
