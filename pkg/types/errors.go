package types

import "errors"

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrExpertExists    = errors.New("expert profile already exists")
)
