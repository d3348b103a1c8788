package errors

import "errors"

var (
	ErrInvalidAccount    = errors.New("invalid voter account")
	ErrNotAuthorized     = errors.New("caller is not authorized to register voters")
	ErrAlreadyRegistered = errors.New("voter already registered")
)
