package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidTarget = errors.New("invalid or unsafe URL")

	// Relay transport failures. Every specific cause also matches ErrRelayFailed.
	ErrRelayFailed      = errors.New("proxy request failed")
	ErrRequestTimeout   = errors.New("request timeout")
	ErrResponseTooLarge = errors.New("response body exceeds size limit")
	ErrUnsafeRedirect   = errors.New("redirect to unsafe URL")

	// Auth-related errors. Each one also matches ErrUnauthorized.
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenInvalid = fmt.Errorf("%w: token is invalid", ErrUnauthorized)
	ErrTokenExpired = fmt.Errorf("%w: token has expired", ErrUnauthorized)
)
