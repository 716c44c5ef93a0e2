//go:build unix

package file

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const ownershipSupported = true

// setUmask installs mask and reads it back to confirm the kernel accepted it.
func setUmask(mask int) error {
	unix.Umask(mask)
	if current := unix.Umask(mask); current != mask {
		return fmt.Errorf("%w: want %#o, found %#o", ErrFailedToSetUmask, mask, current)
	}
	return nil
}

// chownTree applies uid/gid to root and everything below it.
func chownTree(root string, uid, gid int) error {
	err := filepath.WalkDir(root, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return os.Lchown(path, uid, gid)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToChangeOwner, err)
	}
	return nil
}
