package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/file"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// Manager is the request-facing side of the session store. Create, Attach and
// Find never touch the filesystem; Service and Run drive garbage collection
// and persistence in the background.
type Manager struct {
	config      Config
	store       Store
	storage     file.Storage
	marshaller  Marshaller
	filter      FileFilter
	pool        *Pool
	poolFactory func() *Session
	persister   *Persister
	logger      *slog.Logger
	metrics     *Metrics
	now         func() time.Time
	random      func() float64
}

// New creates a new session manager with the given options
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		config: DefaultConfig(),
		logger: slog.Default(),
		now:    time.Now,
		random: rand.Float64,
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.storage == nil {
		storage, err := file.NewLocalStorage(m.config.SavePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		m.storage = storage
	}
	if m.filter == nil {
		m.filter = InactivityFilter(m.config.InactivityTimeout)
	}
	if m.metrics == nil {
		m.metrics = NewMetrics(nil)
	}
	base := m.logger
	m.logger = base.With(logger.Component("session.manager"))

	m.pool = NewPool(m.config.PoolSize,
		WithAcquireTimeout(m.config.AcquireTimeout),
		WithFactory(m.poolFactory),
	)

	persister, err := NewPersister(PersisterConfig{
		Store:             m.store,
		Pool:              m.pool,
		Storage:           m.storage,
		Marshaller:        m.marshaller,
		Filter:            m.filter,
		Prefix:            m.config.FilePrefix,
		InactivityTimeout: m.config.InactivityTimeout,
		Dir: file.DirOptions{
			Umask: m.config.DirUmask,
			User:  m.config.DirUser,
			Group: m.config.DirGroup,
		},
		Logger:  base,
		Metrics: m.metrics,
		Clock:   m.now,
	})
	if err != nil {
		m.pool.Close()
		return nil, err
	}
	m.persister = persister

	return m, nil
}

// Persister returns the persistence engine driven by Service.
func (m *Manager) Persister() *Persister {
	return m.persister
}

// Initialize prepares the save directory and reloads persisted sessions.
// Call it once before serving requests; an error is fatal.
func (m *Manager) Initialize(ctx context.Context) error {
	return m.persister.Initialize(ctx)
}

// Create initializes a pooled session with the configured cookie defaults,
// overridden by opts, and attaches it. An empty id gets a generated one and
// an empty name the configured cookie name. Create only fails when the pool
// cannot deliver within the acquire timeout or ctx ends first.
func (m *Manager) Create(ctx context.Context, id, name string, opts ...CookieOption) (*Session, error) {
	if id == "" {
		id = GenerateID()
	}
	if name == "" {
		name = m.config.CookieName
	}

	now := m.now()
	c := cookie{
		maximumAge: m.config.MaximumAge,
		domain:     m.config.CookieDomain,
		path:       m.config.CookiePath,
		secure:     m.config.CookieSecure,
		httpOnly:   m.config.CookieHTTPOnly,
	}
	if m.config.CookieLifetime > 0 {
		c.lifetime = now.Add(m.config.CookieLifetime)
	}
	for _, opt := range opts {
		opt(&c)
	}

	s, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	s.init(id, name, c, now)

	if err := m.Attach(s); err != nil {
		return nil, err
	}

	return s, nil
}

// Attach stores s under its id together with its current checksum,
// replacing any previous entry. Both land in the store in one step.
func (m *Manager) Attach(s *Session) error {
	if s == nil {
		return ErrInvalidSession
	}

	rec := s.Snapshot()
	if rec.ID == "" {
		return ErrInvalidSession
	}

	m.store.Set(rec.ID, s, rec.Checksum())
	return nil
}

// Find returns the live session for id and records the activity. It returns
// false when the id is unknown or the session cannot be resumed; the caller
// is expected to create a new session then.
func (m *Manager) Find(id string) (*Session, bool) {
	s, ok := m.store.Get(id)
	if !ok {
		return nil, false
	}

	now := m.now()
	if !s.CanBeResumed(now) {
		return nil, false
	}

	s.Resume(now)

	// Eviction re-checks activity under the store lock, so a session still
	// held after Resume stays in memory.
	if cur, ok := m.store.Get(id); !ok || cur != s {
		return nil, false
	}
	return s, true
}

// Len returns the number of sessions held in memory.
func (m *Manager) Len() int {
	return m.store.Len()
}

// CollectGarbage destroys sessions idle for longer than the inactivity
// timeout and removes their files. Each call runs with the configured
// probability so that busy ticks do not all pay for a full scan. It returns
// the number of sessions removed.
func (m *Manager) CollectGarbage(ctx context.Context) int {
	probability := m.config.GCProbability
	if probability <= 0 || m.random() >= probability {
		return 0
	}

	timeout := m.config.InactivityTimeout
	if timeout == 0 {
		return 0
	}

	now := m.now()
	removed := 0

	for _, e := range m.store.Entries() {
		idle := now.Sub(e.Session.LastActivity())
		if idle <= timeout {
			continue
		}

		stillIdle := func(s *Session) bool { return now.Sub(s.LastActivity()) > timeout }
		if !m.store.RemoveIf(e.ID, e.Session, stillIdle) {
			continue // resumed, replaced or removed concurrently
		}

		if !e.Session.IsDestroyed() {
			e.Session.Destroy(fmt.Sprintf(
				"session %s was inactive for %s, more than the configured timeout of %s",
				e.ID, idle.Truncate(time.Second), timeout,
			))
		}

		if err := m.persister.RemoveSessionFile(ctx, e.ID); err != nil {
			m.logger.ErrorContext(ctx, "failed to remove session file",
				logger.SessionID(e.ID),
				logger.Error(err),
			)
		}

		m.logger.DebugContext(ctx, "session collected",
			logger.SessionID(e.ID),
			logger.Duration(idle),
		)
		removed++
	}

	if removed > 0 {
		m.metrics.Collected.Add(float64(removed))
	}

	return removed
}

// Service runs garbage collection followed by a persistence pass.
// The returned error joins the per-session failures of the pass.
func (m *Manager) Service(ctx context.Context) error {
	m.CollectGarbage(ctx)
	_, err := m.persister.Persist(ctx)
	return err
}

// Run calls Service every ServiceInterval until ctx is done, then runs one
// last persistence pass. Passes are never interrupted: cancellation is only
// observed between them.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.config.ServiceInterval)
	defer ticker.Stop()

	passCtx := context.WithoutCancel(ctx)

	m.logger.InfoContext(ctx, "session service started",
		logger.Duration(m.config.ServiceInterval),
	)

	for {
		select {
		case <-ctx.Done():
			_, _ = m.persister.Persist(passCtx)
			m.logger.InfoContext(passCtx, "session service stopped")
			return nil
		case <-ticker.C:
			// Per-session failures are logged by the persister and retried next pass
			_ = m.Service(passCtx)
		}
	}
}

// Close stops the pool replenisher. Callers blocked in Create return ErrPoolClosed.
func (m *Manager) Close() error {
	m.pool.Close()
	return nil
}
