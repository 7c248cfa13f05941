package services

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique value is already taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation is returned for input the store would accept but the
	// domain does not.
	ErrValidation = errors.New("validation failed")
)
