package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrEmailTaken         = errors.New("email already registered")
	ErrGatewayUnavailable = errors.New("generation provider unavailable")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrGenerationTimeout  = errors.New("generation timed out")
)
