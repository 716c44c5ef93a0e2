package file_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/file"
)

func TestLocalStorage_Prepare(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "sessions")
		storage, err := file.NewLocalStorage(dir)
		require.NoError(t, err)

		require.NoError(t, storage.Prepare(file.DirOptions{}))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("existing directory is kept", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sess_keep"), []byte("x"), 0o600))
		storage, err := file.NewLocalStorage(dir)
		require.NoError(t, err)

		require.NoError(t, storage.Prepare(file.DirOptions{}))

		_, err = os.Stat(filepath.Join(dir, "sess_keep"))
		assert.NoError(t, err)
	})

	t.Run("path is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plain")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		storage, err := file.NewLocalStorage(path)
		require.NoError(t, err)

		assert.ErrorIs(t, storage.Prepare(file.DirOptions{}), file.ErrNotDirectory)
	})

	t.Run("applies umask", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("umask is not supported on windows")
		}
		dir := filepath.Join(t.TempDir(), "masked")
		storage, err := file.NewLocalStorage(dir)
		require.NoError(t, err)

		require.NoError(t, storage.Prepare(file.DirOptions{Umask: "0022"}))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	})

	t.Run("invalid umask", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("umask is not supported on windows")
		}
		storage, err := file.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		assert.ErrorIs(t, storage.Prepare(file.DirOptions{Umask: "0999"}), file.ErrInvalidConfig)
	})

	t.Run("unknown user", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("ownership is not supported on windows")
		}
		storage, err := file.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		err = storage.Prepare(file.DirOptions{User: "no-such-user-sessionkit"})
		assert.ErrorIs(t, err, file.ErrUnknownUser)
	})

	t.Run("unknown group", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("ownership is not supported on windows")
		}
		storage, err := file.NewLocalStorage(t.TempDir())
		require.NoError(t, err)

		err = storage.Prepare(file.DirOptions{Group: "no-such-group-sessionkit"})
		assert.ErrorIs(t, err, file.ErrUnknownGroup)
	})

	t.Run("chown to current owner", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("ownership is not supported on windows")
		}
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sess_a"), []byte("x"), 0o600))
		storage, err := file.NewLocalStorage(dir)
		require.NoError(t, err)

		err = storage.Prepare(file.DirOptions{
			User:  strconv.Itoa(os.Getuid()),
			Group: strconv.Itoa(os.Getgid()),
		})
		assert.NoError(t, err)
	})
}
