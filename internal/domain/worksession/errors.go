package worksession

import "errors"

var (
	// ErrAlreadyActive indicates the user already has an open session.
	ErrAlreadyActive = errors.New("session already active")
	// ErrNoActiveSession indicates the user has nothing to stop.
	ErrNoActiveSession = errors.New("no active session")
	// ErrInvalidInput indicates invalid session input.
	ErrInvalidInput = errors.New("invalid session input")
)
