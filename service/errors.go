package service

import (
	"errors"

	"chatiip-backend/storage"
)

// Sentinel errors callers map to responses. Details are attached by
// wrapping, e.g. fmt.Errorf("%w: title is required", ErrValidation)
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrPayloadTooLarge    = storage.ErrPayloadTooLarge
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)
