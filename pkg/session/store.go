package session

// Entry is a point-in-time view of one store slot.
type Entry struct {
	ID       string
	Session  *Session
	Checksum Checksum
	// Tracked is false when no checksum is recorded for the id.
	Tracked bool
}

// Store keeps live sessions and, for each of them, the checksum recorded at
// its last successful write. Every compound operation updates both mappings
// under one critical section.
type Store interface {
	// Has reports whether a session is stored under id
	Has(id string) bool

	// Get returns the session stored under id
	Get(id string) (*Session, bool)

	// Checksum returns the recorded checksum for id
	Checksum(id string) (Checksum, bool)

	// Set stores the session and its checksum, replacing any previous entry
	Set(id string, s *Session, sum Checksum)

	// SetChecksum records sum for id if id still maps to s
	SetChecksum(id string, s *Session, sum Checksum) bool

	// Remove drops id from both mappings
	Remove(id string)

	// RemoveIf drops id from both mappings if it still maps to s and cond,
	// evaluated under the store lock, holds. A nil cond always holds.
	RemoveIf(id string, s *Session, cond func(*Session) bool) bool

	// Entries returns a snapshot of all slots
	Entries() []Entry

	// Len returns the number of stored sessions
	Len() int
}
