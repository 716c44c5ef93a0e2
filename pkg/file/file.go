package file

import (
	"context"
	"time"
)

// Entry describes a regular file found in a storage directory.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Storage is a flat, name-addressed file store.
type Storage interface {
	// Write replaces the named file with data. Readers never observe a partial write.
	Write(ctx context.Context, name string, data []byte) error
	// Read returns the full contents of the named file.
	Read(ctx context.Context, name string) ([]byte, error)
	// Delete removes the named file.
	Delete(ctx context.Context, name string) error
	// Exists reports whether the named file exists.
	Exists(ctx context.Context, name string) bool
	// List returns regular files whose names start with prefix.
	List(ctx context.Context, prefix string) ([]Entry, error)
}
