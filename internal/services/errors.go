package services

import "errors"

// Errors returned by the services. Handlers map them to HTTP status codes
// with errors.Is; anything else is an internal error.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrUserExists         = errors.New("User already exists with this email or username")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrTokenMissing       = errors.New("Access token required")
	ErrTokenInvalid       = errors.New("Invalid or expired token")
)
