package domain

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrParse        = errors.New("not a valid number")
	ErrOutOfRange   = errors.New("out of range")
)
