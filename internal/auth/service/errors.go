package service

import (
	"errors"
	"fmt"
)

// Rejections a grant or an authentication attempt can end in. Each maps onto
// one OAuth2 error code at the HTTP boundary.
var (
	ErrInvalidClient        = errors.New("invalid_client")
	ErrInvalidGrant         = errors.New("invalid_grant")
	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrUnauthenticated      = errors.New("unauthenticated")

	// ErrTransient marks a storage failure. Callers may retry; nothing is
	// known about whether the operation took effect.
	ErrTransient = errors.New("temporarily_unavailable")
)

var (
	ErrNotFound       = errors.New("not found")
	ErrAccountExists  = errors.New("account already exists")
	ErrClientExists   = errors.New("client already exists")
	ErrSessionChanged = errors.New("session changed concurrently")
	ErrForbidden      = errors.New("forbidden")
)

// transient wraps an unexpected store error so errors.Is(err, ErrTransient)
// holds while the cause stays inspectable.
func transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// outcome labels err for metrics and span status.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTransient):
		return "transient"
	case errors.Is(err, ErrInvalidClient):
		return "invalid_client"
	case errors.Is(err, ErrInvalidGrant):
		return "invalid_grant"
	case errors.Is(err, ErrUnsupportedGrantType):
		return "unsupported_grant_type"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}
