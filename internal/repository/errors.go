package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyClosed is returned when closing a session that already has a stop time
	ErrAlreadyClosed = errors.New("session already closed")

	// ErrActiveExists is returned when inserting a second open session for a user
	ErrActiveExists = errors.New("user already has an open session")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
