package session

import (
	"encoding/json"
	"maps"
	"sync"
	"time"
)

// Session is one user session: cookie delivery attributes plus a data bag.
// Request handlers and the background persistence loop share instances, so
// every accessor takes the session's own lock.
//
// A session whose id has been cleared by Destroy is logically gone. It stays
// in the store only until the persistence loop removes its file.
type Session struct {
	mu sync.RWMutex

	id           string
	name         string
	lifetime     time.Time
	maximumAge   time.Duration
	domain       string
	path         string
	secure       bool
	httpOnly     bool
	lastActivity time.Time
	data         map[string]any

	destroyReason string
}

// Record is a plain copy of a session's state, used for checksums and
// marshalling.
type Record struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Lifetime     time.Time      `json:"lifetime"`
	MaximumAge   time.Duration  `json:"maximumAge"`
	Domain       string         `json:"domain"`
	Path         string         `json:"path"`
	Secure       bool           `json:"secure"`
	HTTPOnly     bool           `json:"httpOnly"`
	LastActivity time.Time      `json:"lastActivity"`
	Data         map[string]any `json:"data"`
}

// NewSession creates a standalone session outside any pool.
func NewSession(id, name string) *Session {
	return &Session{
		id:           id,
		name:         name,
		lastActivity: time.Now(),
		data:         make(map[string]any),
	}
}

func newBlankSession() *Session {
	return &Session{data: make(map[string]any)}
}

// init populates a blank pooled session.
func (s *Session) init(id, name string, c cookie, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = id
	s.name = name
	s.lifetime = c.lifetime
	s.maximumAge = c.maximumAge
	s.domain = c.domain
	s.path = c.path
	s.secure = c.secure
	s.httpOnly = c.httpOnly
	s.lastActivity = now
	s.destroyReason = ""
	clear(s.data)
}

// ID returns the session id, or "" once the session was destroyed.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Lifetime returns the absolute expiry instant; zero means none.
func (s *Session) Lifetime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lifetime
}

func (s *Session) MaximumAge() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maximumAge
}

func (s *Session) Domain() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domain
}

func (s *Session) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

func (s *Session) Secure() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secure
}

func (s *Session) HTTPOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.httpOnly
}

// LastActivity returns the instant of the last successful resume.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

func (s *Session) SetLifetime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lifetime = t
}

func (s *Session) SetMaximumAge(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maximumAge = d
}

func (s *Session) SetDomain(domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain = domain
}

func (s *Session) SetPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
}

func (s *Session) SetSecure(secure bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secure = secure
}

func (s *Session) SetHTTPOnly(httpOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.httpOnly = httpOnly
}

// Get retrieves a value from session data
func (s *Session) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string value from session data
func (s *Session) GetString(key string) (string, bool) {
	val, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetInt retrieves an int value from session data.
// Numbers restored from a JSON file come back as json.Number and are accepted too.
func (s *Session) GetInt(key string) (int, bool) {
	val, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// GetBool retrieves a bool value from session data
func (s *Session) GetBool(key string) (bool, bool) {
	val, ok := s.Get(key)
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}

// Set stores a value in session data
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]any)
	}
	s.data[key] = value
}

// Delete removes a value from session data
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Clear removes all data from the session
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.data)
}

// Data returns a shallow copy of the session data.
func (s *Session) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.data)
}

// CanBeResumed reports whether the session is live and not past its absolute lifetime.
func (s *Session) CanBeResumed(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.id == "" {
		return false
	}
	return s.lifetime.IsZero() || now.Before(s.lifetime)
}

// Resume records activity at now.
func (s *Session) Resume(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = now
}

// Destroy clears the session id. The persistence loop notices the change and
// removes the session's file. Destroying twice keeps the first reason.
func (s *Session) Destroy(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		return
	}
	s.id = ""
	s.destroyReason = reason
}

// IsDestroyed reports whether Destroy has been called.
func (s *Session) IsDestroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id == ""
}

// DestroyReason returns the reason passed to Destroy.
func (s *Session) DestroyReason() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyReason
}

// Snapshot copies the session state under a single read lock, so the
// checksum and the marshalled bytes derived from it always agree.
func (s *Session) Snapshot() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Record{
		ID:           s.id,
		Name:         s.name,
		Lifetime:     s.lifetime,
		MaximumAge:   s.maximumAge,
		Domain:       s.domain,
		Path:         s.path,
		Secure:       s.secure,
		HTTPOnly:     s.httpOnly,
		LastActivity: s.lastActivity,
		Data:         maps.Clone(s.data),
	}
}

// Restore overwrites the session state with r.
func (s *Session) Restore(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = r.ID
	s.name = r.Name
	s.lifetime = r.Lifetime
	s.maximumAge = r.MaximumAge
	s.domain = r.Domain
	s.path = r.Path
	s.secure = r.Secure
	s.httpOnly = r.HTTPOnly
	s.lastActivity = r.LastActivity
	s.destroyReason = ""
	s.data = maps.Clone(r.Data)
	if s.data == nil {
		s.data = make(map[string]any)
	}
}

// Checksum digests the session's persistence-relevant state.
func (s *Session) Checksum() Checksum {
	return s.Snapshot().Checksum()
}
