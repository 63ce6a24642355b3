package services

import "errors"

var (
	ErrUnauthorized = errors.New("invalid credentials")
	ErrInvalidOtp   = errors.New("invalid or expired code")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrMailerFailed = errors.New("could not send code")
	ErrInternal     = errors.New("internal error")
)
