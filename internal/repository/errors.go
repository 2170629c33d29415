package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyDeclared is returned when a daily status already exists for
	// the (user, date) pair. The original record is left untouched.
	ErrAlreadyDeclared = errors.New("daily status already declared")
)
