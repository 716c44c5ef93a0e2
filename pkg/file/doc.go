// Package file provides flat, name-addressed file storage on the local
// filesystem, used to keep one file per persisted record.
//
// # Architecture
//
// The Storage interface covers the handful of operations a background
// persistence loop needs:
//   - Write replaces a file atomically (temp file + rename)
//   - Read returns the full contents of a file
//   - Delete removes a file
//   - Exists checks for a file
//   - List enumerates files sharing a name prefix
//
// LocalStorage implements it on top of one directory. Names are plain file
// names; separators and dot names are rejected with ErrInvalidPath so that
// client-supplied identifiers can never escape the directory.
//
// Prepare bootstraps the directory before first use: it installs the
// configured umask, creates the directory if it is missing and hands the tree
// to the configured user and group. Ownership handling is a no-op on
// platforms that do not support it.
//
// # Usage
//
//	import "github.com/dmitrymomot/sessionkit/pkg/file"
//
//	storage, err := file.NewLocalStorage("/var/lib/app/sessions")
//	if err != nil {
//		return err
//	}
//	if err := storage.Prepare(file.DirOptions{Umask: "0002", Group: "www-data"}); err != nil {
//		return err // fatal: the process must not start without a writable directory
//	}
//
//	_ = storage.Write(ctx, "sess_abc", payload)
//	entries, _ := storage.List(ctx, "sess_")
//
// # Error Handling
//
// I/O failures are wrapped around package sentinels and can be matched with
// errors.Is: ErrFileNotFound, ErrFailedToReadFile, ErrFailedToWriteFile,
// ErrFailedToDeleteFile, ErrFailedToCreateDirectory, ErrFailedToSetUmask,
// ErrFailedToChangeOwner, ErrUnknownUser, ErrUnknownGroup, ErrInvalidPath.
package file
