package service

import "errors"

// Domain errors returned by services. Handlers map them to HTTP statuses;
// anything not listed here (and not a *validation.Error) is an internal error.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateUser       = errors.New("user exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrPasswordMismatch    = errors.New("confirmed password does not match")
	ErrOldPasswordMismatch = errors.New("old password does not match")
)
