package requests

import "errors"

// Errors returned by the request lifecycle. Callers match them with errors.Is.
var (
	ErrValidation      = errors.New("invalid input")
	ErrInvalidRange    = errors.New("end date must not be before start date")
	ErrInvalidDuration = errors.New("overtime duration must be positive")
	ErrInvalidStatus   = errors.New("status is not a decision outcome for this request")
	ErrForbidden       = errors.New("not enough privileges")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyDecided  = errors.New("request has already been decided")
)
