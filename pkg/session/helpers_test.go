package session_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/file"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

var errDiskFull = errors.New("no space left on device")

// memStorage is an in-memory file.Storage that counts operations and can be
// told to fail writes for specific names.
type memStorage struct {
	mu        sync.Mutex
	files     map[string][]byte
	modTimes  map[string]time.Time
	writes    int
	deletes   int
	failWrite map[string]error
}

func newMemStorage() *memStorage {
	return &memStorage{
		files:     make(map[string][]byte),
		modTimes:  make(map[string]time.Time),
		failWrite: make(map[string]error),
	}
}

func (s *memStorage) Write(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failWrite[name]; ok {
		return err
	}
	s.files[name] = append([]byte(nil), data...)
	s.modTimes[name] = time.Now()
	s.writes++
	return nil
}

func (s *memStorage) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", file.ErrFileNotFound, name)
	}
	return append([]byte(nil), data...), nil
}

func (s *memStorage) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[name]; !ok {
		return fmt.Errorf("%w: %s", file.ErrFileNotFound, name)
	}
	delete(s.files, name)
	delete(s.modTimes, name)
	s.deletes++
	return nil
}

func (s *memStorage) Exists(_ context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[name]
	return ok
}

func (s *memStorage) List(_ context.Context, prefix string) ([]file.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]file.Entry, 0, len(s.files))
	for name, data := range s.files {
		if strings.HasPrefix(name, prefix) {
			entries = append(entries, file.Entry{Name: name, Path: name, Size: int64(len(data)), ModTime: s.modTimes[name]})
		}
	}
	return entries, nil
}

func (s *memStorage) put(name string, data []byte, modTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
	s.modTimes[name] = modTime
}

func (s *memStorage) file(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

func (s *memStorage) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for name := range maps.Keys(s.files) {
		names = append(names, name)
	}
	return names
}

func (s *memStorage) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *memStorage) failWrites(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failWrite, name)
		return
	}
	s.failWrite[name] = err
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig(t *testing.T) session.Config {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.SavePath = t.TempDir()
	cfg.InactivityTimeout = time.Minute
	cfg.GCProbability = 1
	cfg.ServiceInterval = 10 * time.Millisecond
	return cfg
}

type testEnv struct {
	manager *session.Manager
	store   *session.MemoryStore
	storage *memStorage
	clock   *fakeClock
}

func setupManager(t *testing.T, cfg session.Config, opts ...session.Option) *testEnv {
	t.Helper()

	env := &testEnv{
		store:   session.NewMemoryStore(),
		storage: newMemStorage(),
		clock:   newFakeClock(),
	}

	base := []session.Option{
		session.WithConfig(cfg),
		session.WithStore(env.store),
		session.WithStorage(env.storage),
		session.WithClock(env.clock.Now),
	}

	manager, err := session.New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	env.manager = manager
	return env
}

func decode(t *testing.T, data []byte) session.Record {
	t.Helper()
	rec, err := session.JSONMarshaller{}.Unmarshal(data)
	require.NoError(t, err)
	return rec
}

// racingStore runs beforeRemove once, right before the next RemoveIf, to
// interleave a request with a pass deterministically.
type racingStore struct {
	*session.MemoryStore
	beforeRemove func()
}

func (r *racingStore) RemoveIf(id string, s *session.Session, cond func(*session.Session) bool) bool {
	if hook := r.beforeRemove; hook != nil {
		r.beforeRemove = nil
		hook()
	}
	return r.MemoryStore.RemoveIf(id, s, cond)
}
