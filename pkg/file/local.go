package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage on a single flat directory of the local filesystem.
// Names are plain file names; anything that would escape baseDir is rejected.
// Safe for concurrent use: writes go through a temp file and an atomic rename.
type LocalStorage struct {
	baseDir string      // Absolute path - all files stored within this directory
	perm    os.FileMode // Permissions applied to written files
}

// LocalOption defines a function that configures LocalStorage.
type LocalOption func(*LocalStorage)

// WithFileMode sets the permissions of written files (default 0600).
func WithFileMode(perm os.FileMode) LocalOption {
	return func(s *LocalStorage) {
		if perm != 0 {
			s.perm = perm
		}
	}
}

// NewLocalStorage creates a storage rooted at baseDir.
// The directory is not created here; call Prepare before the first write so
// that umask and ownership are applied to it.
func NewLocalStorage(baseDir string, opts ...LocalOption) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	// Must resolve to absolute path for security - prevents relative path confusion
	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve base directory: %v", ErrFailedToGetAbsolutePath, err)
	}

	s := &LocalStorage{
		baseDir: absBaseDir,
		perm:    0o600,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Dir returns the absolute storage directory.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// Write stores data under name.
// Data lands in a hidden temp file first and is renamed over the target, so a
// crash mid-write never leaves a truncated file under the final name.
func (s *LocalStorage) Write(ctx context.Context, name string, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	absPath, err := s.resolvePath(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.baseDir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	tmpPath := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrFailedToWriteFile, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(s.perm); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}

	if err := os.Rename(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}

	return nil
}

// Read returns the contents of the named file.
func (s *LocalStorage) Read(ctx context.Context, name string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	absPath, err := s.resolvePath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}

	return data, nil
}

// Delete removes a single file.
func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	absPath, err := s.resolvePath(name)
	if err != nil {
		return err
	}

	if err := os.Remove(absPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return fmt.Errorf("%w: %v", ErrFailedToDeleteFile, err)
	}

	return nil
}

// Exists checks if the named file exists.
// Returns false for invalid names or on context cancellation.
func (s *LocalStorage) Exists(ctx context.Context, name string) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	absPath, err := s.resolvePath(name)
	if err != nil {
		return false
	}

	info, err := os.Stat(absPath)
	return err == nil && info.Mode().IsRegular()
}

// List returns regular files whose names start with prefix.
// Hidden temp files left by interrupted writes are never listed unless the
// prefix itself starts with a dot.
func (s *LocalStorage) List(ctx context.Context, prefix string) ([]Entry, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	info, err := os.Stat(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, s.baseDir)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, s.baseDir)
	}

	dirEntries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToReadDirectory, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		// Allow cancellation during large directory listings
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !dirEntry.Type().IsRegular() || !strings.HasPrefix(dirEntry.Name(), prefix) {
			continue
		}

		info, err := dirEntry.Info()
		if err != nil {
			continue // Removed between ReadDir and Info
		}

		entries = append(entries, Entry{
			Name:    dirEntry.Name(),
			Path:    filepath.Join(s.baseDir, dirEntry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return entries, nil
}

// resolvePath validates a plain file name and resolves it inside baseDir.
// Session ids arrive from clients, so separators and dot names are refused
// outright instead of being cleaned.
func (s *LocalStorage) resolvePath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}

	absPath := filepath.Join(s.baseDir, name)

	// Security check: ensure path stays within baseDir (prevents ../ attacks)
	if filepath.Dir(absPath) != s.baseDir {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}

	return absPath, nil
}
