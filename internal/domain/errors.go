package domain

import "errors"

// Error kinds surfaced by every store and service. Handlers map these to
// HTTP status codes with errors.Is; messages carry the detail.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
	ErrChargeFailed      = errors.New("charge failed")
)
