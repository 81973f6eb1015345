package delivery

import "errors"

var (
	ErrInvalidProvider   = errors.New("invalid delivery provider")
	ErrInvalidMethod     = errors.New("invalid delivery method")
	ErrTrackingNotFound  = errors.New("tracking number not found")
	ErrPickupCodeFailure = errors.New("failed to generate pickup code")
)
