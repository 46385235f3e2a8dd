package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without
// leaking infrastructure details.
var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized covers identity not found and inactive accounts alike,
	// so callers cannot enumerate which identifiers exist.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	// ErrInvalidCode is the single answer for absent, expired and mismatched
	// OTP codes.
	ErrInvalidCode = errors.New("invalid or expired code")
	// ErrCredentialInvalid means Helena rejected the account's stored token
	// (401 upstream). Externally it still maps to 401 like ErrUnauthorized,
	// but the two stay distinguishable internally.
	ErrCredentialInvalid = errors.New("helena credential invalid")
	// ErrUpstreamNotFound means Helena has no identity for the account (404).
	ErrUpstreamNotFound = errors.New("identity not found on helena")
	// ErrUpstream is any other non-2xx or malformed response from Helena.
	ErrUpstream = errors.New("helena error")
	// ErrUpstreamUnavailable is a network-level failure: no response at all.
	ErrUpstreamUnavailable = errors.New("helena unreachable")
	// ErrInvalidToken is the only token verification failure callers see,
	// regardless of whether the signature, expiry or shape was at fault.
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrTooManyAttempts = errors.New("too many attempts")
)

// LockedError carries the remaining lockout wait, in whole minutes rounded up.
type LockedError struct {
	MinutesLeft int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("too many attempts, try again in %d minute(s)", e.MinutesLeft)
}

// Unwrap lets errors.Is(err, ErrTooManyAttempts) match.
func (e *LockedError) Unwrap() error { return ErrTooManyAttempts }
