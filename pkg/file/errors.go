package file

import "errors"

var (
	ErrInvalidPath = errors.New("invalid path") // Prevents path traversal attacks

	// File system errors
	ErrFileNotFound      = errors.New("file not found")
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrNotDirectory      = errors.New("path is not a directory")

	// I/O operation errors - wrapped with context for debugging
	ErrFailedToReadFile        = errors.New("failed to read file")
	ErrFailedToWriteFile       = errors.New("failed to write file")
	ErrFailedToDeleteFile      = errors.New("failed to delete file")
	ErrFailedToCreateDirectory = errors.New("failed to create directory")
	ErrFailedToReadDirectory   = errors.New("failed to read directory")
	ErrFailedToStatPath        = errors.New("failed to stat path")
	ErrFailedToGetAbsolutePath = errors.New("failed to get absolute path")

	// Directory bootstrap errors
	ErrFailedToSetUmask    = errors.New("failed to set umask")
	ErrFailedToChangeOwner = errors.New("failed to change owner")
	ErrUnknownUser         = errors.New("unknown user")
	ErrUnknownGroup        = errors.New("unknown group")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)
