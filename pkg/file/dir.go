package file

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
)

// DirOptions controls how Prepare bootstraps the storage directory.
type DirOptions struct {
	// Umask is an octal string (e.g. "0002") installed before the directory
	// is created. Empty leaves the process umask untouched.
	Umask string
	// User and Group name (or numeric id) the owner applied to the directory
	// tree. Empty leaves ownership unchanged.
	User  string
	Group string
}

// Prepare makes sure the storage directory exists and carries the requested
// ownership. The umask is process-wide and stays installed after Prepare
// returns. Umask and ownership are ignored on platforms without them.
func (s *LocalStorage) Prepare(opts DirOptions) error {
	if opts.Umask != "" && ownershipSupported {
		mask, err := strconv.ParseUint(opts.Umask, 8, 32)
		if err != nil {
			return fmt.Errorf("%w: umask %q: %v", ErrInvalidConfig, opts.Umask, err)
		}
		if err := setUmask(int(mask)); err != nil {
			return err
		}
	}

	info, err := os.Stat(s.baseDir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%w: %s", ErrNotDirectory, s.baseDir)
	case err != nil && !os.IsNotExist(err):
		return fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	case err != nil:
		if err := os.MkdirAll(s.baseDir, 0o777); err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
		}
	}

	if !ownershipSupported || (opts.User == "" && opts.Group == "") {
		return nil
	}

	uid, gid, err := lookupOwner(opts.User, opts.Group)
	if err != nil {
		return err
	}

	return chownTree(s.baseDir, uid, gid)
}

// lookupOwner resolves user and group names to numeric ids; -1 means unchanged.
func lookupOwner(userName, groupName string) (uid, gid int, err error) {
	uid, gid = -1, -1

	if userName != "" {
		if uid, err = strconv.Atoi(userName); err != nil {
			u, lookupErr := user.Lookup(userName)
			if lookupErr != nil {
				return -1, -1, fmt.Errorf("%w: %s", ErrUnknownUser, userName)
			}
			if uid, err = strconv.Atoi(u.Uid); err != nil {
				return -1, -1, fmt.Errorf("%w: %s", ErrUnknownUser, userName)
			}
		}
	}

	if groupName != "" {
		if gid, err = strconv.Atoi(groupName); err != nil {
			g, lookupErr := user.LookupGroup(groupName)
			if lookupErr != nil {
				return -1, -1, fmt.Errorf("%w: %s", ErrUnknownGroup, groupName)
			}
			if gid, err = strconv.Atoi(g.Gid); err != nil {
				return -1, -1, fmt.Errorf("%w: %s", ErrUnknownGroup, groupName)
			}
		}
	}

	return uid, gid, nil
}
