package session

import "sync"

// MemoryStore implements Store with two maps guarded by a single RWMutex.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	checksums map[string]Checksum
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*Session),
		checksums: make(map[string]Checksum),
	}
}

func (m *MemoryStore) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.sessions[id]
	return ok
}

func (m *MemoryStore) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	return s, ok
}

func (m *MemoryStore) Checksum(id string) (Checksum, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sum, ok := m.checksums[id]
	return sum, ok
}

func (m *MemoryStore) Set(id string, s *Session, sum Checksum) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checksums[id] = sum
	m.sessions[id] = s
}

func (m *MemoryStore) SetChecksum(id string, s *Session, sum Checksum) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessions[id] != s {
		return false
	}
	m.checksums[id] = sum
	return true
}

func (m *MemoryStore) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	delete(m.checksums, id)
}

func (m *MemoryStore) RemoveIf(id string, s *Session, cond func(*Session) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.sessions[id]; !ok || cur != s {
		return false
	}
	if cond != nil && !cond(s) {
		return false
	}
	delete(m.sessions, id)
	delete(m.checksums, id)
	return true
}

// Entries copies the slots out so callers can scan without holding the lock.
func (m *MemoryStore) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]Entry, 0, len(m.sessions))
	for id, s := range m.sessions {
		sum, tracked := m.checksums[id]
		entries = append(entries, Entry{ID: id, Session: s, Checksum: sum, Tracked: tracked})
	}
	return entries
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
