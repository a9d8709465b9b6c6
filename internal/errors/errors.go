package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session gateway
var (
	// Session errors
	ErrInvalidProfile = errors.New("invalid profile")

	// Identity provider errors
	ErrUnauthorized = errors.New("token rejected by identity provider")
	ErrUnavailable  = errors.New("identity provider unavailable")

	// Handshake errors
	ErrInvalidState   = errors.New("invalid state")
	ErrStateExpired   = errors.New("state expired")
	ErrMissingCode    = errors.New("missing authorization code")
	ErrExchangeFailed = errors.New("token exchange failed")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
