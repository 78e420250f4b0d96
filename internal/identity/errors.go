package identity

import "errors"

// Credential errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrInvalidRole        = errors.New("Invalid role")
	ErrPasswordTooLong    = errors.New("Password is too long")
	ErrStorage            = errors.New("identity storage failure")
)

// Token errors. Verification classifies every rejected token as exactly one of these.
var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenRevoked   = errors.New("token has been revoked")
)
