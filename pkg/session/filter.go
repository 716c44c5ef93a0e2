package session

import (
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/file"
)

// FileFilter decides whether a persisted session file is reloaded at startup.
type FileFilter func(e file.Entry, now time.Time) bool

// InactivityFilter skips files not modified within timeout: their sessions
// would be collected right after being reloaded. A zero timeout keeps every file.
func InactivityFilter(timeout time.Duration) FileFilter {
	return func(e file.Entry, now time.Time) bool {
		return timeout <= 0 || now.Sub(e.ModTime) <= timeout
	}
}
