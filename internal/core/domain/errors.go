package domain

import "errors"

// Sentinel errors for the gateway. Messages that reach the client are fixed
// by the frontend contract; everything else is redacted at the API boundary.
var (
	ErrUnknownAction      = errors.New("unknown action")
	ErrUserExists         = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrInvalidToken       = errors.New("Invalid token")
	ErrTokenExpired       = errors.New("Token expired")
	ErrUserNotFound       = errors.New("User not found")
	ErrInvalidObjectID    = errors.New("invalid document id")
	ErrTooManyAttempts    = errors.New("Too many login attempts")
)
