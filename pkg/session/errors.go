package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSession indicates a nil session or one without an id
	ErrInvalidSession = errors.New("session.invalid")

	// ErrSessionNotFound indicates no session was found
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrInvalidConfig indicates the manager settings are unusable
	ErrInvalidConfig = errors.New("session.invalid_config")

	// ErrPoolExhausted indicates the pool could not be refilled within the acquire timeout
	ErrPoolExhausted = errors.New("session.pool_exhausted")

	// ErrPoolClosed indicates the pool was closed while a caller was waiting
	ErrPoolClosed = errors.New("session.pool_closed")

	// ErrCorruptSession indicates a persisted session file could not be read or decoded
	ErrCorruptSession = errors.New("session.corrupt")

	// ErrDirectoryBootstrap indicates the save directory could not be prepared
	ErrDirectoryBootstrap = errors.New("session.directory_bootstrap_failed")

	// ErrPersistFailed indicates at least one session failed during a persistence pass
	ErrPersistFailed = errors.New("session.persist_failed")

	// ErrNoStorage indicates no file storage is configured
	ErrNoStorage = errors.New("session.no_storage")

	errSessionExpired = errors.New("session.expired")
)

// Persistence operations reported by PersistError.
const (
	OpWrite  = "write"
	OpDelete = "delete"
)

// PersistError reports a failure for a single session id during a
// persistence pass. The pass itself carries on with the next id.
type PersistError struct {
	ID  string
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("session %s: %s: %v", e.ID, e.Op, e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersistFailed, e.Err}
}
