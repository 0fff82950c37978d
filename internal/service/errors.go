package service

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrLoginFailed  = errors.New("login link could not be used")
)
