package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/file"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithStore sets a custom session store
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithStorage replaces the local directory storage derived from Config.SavePath
func WithStorage(storage file.Storage) Option {
	return func(m *Manager) {
		m.storage = storage
	}
}

// WithMarshaller sets the session file format (default JSON)
func WithMarshaller(marshaller Marshaller) Option {
	return func(m *Manager) {
		m.marshaller = marshaller
	}
}

// WithFileFilter sets which files are reloaded at startup
// (default: files modified within the inactivity timeout)
func WithFileFilter(filter FileFilter) Option {
	return func(m *Manager) {
		m.filter = filter
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics sets the collectors updated by the manager
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRandom replaces the uniform [0,1) source used to gate garbage collection
func WithRandom(random func() float64) Option {
	return func(m *Manager) {
		if random != nil {
			m.random = random
		}
	}
}

// WithPoolFactory replaces the constructor used to fill the session pool
func WithPoolFactory(factory func() *Session) Option {
	return func(m *Manager) {
		m.poolFactory = factory
	}
}

// cookie carries the delivery attributes applied by Create.
type cookie struct {
	lifetime   time.Time
	maximumAge time.Duration
	domain     string
	path       string
	secure     bool
	httpOnly   bool
}

// CookieOption overrides one configured cookie default in Create.
type CookieOption func(*cookie)

// WithLifetime sets the absolute expiry instant
func WithLifetime(t time.Time) CookieOption {
	return func(c *cookie) { c.lifetime = t }
}

func WithMaximumAge(d time.Duration) CookieOption {
	return func(c *cookie) { c.maximumAge = d }
}

func WithDomain(domain string) CookieOption {
	return func(c *cookie) { c.domain = domain }
}

func WithPath(path string) CookieOption {
	return func(c *cookie) { c.path = path }
}

func WithSecure(secure bool) CookieOption {
	return func(c *cookie) { c.secure = secure }
}

func WithHTTPOnly(httpOnly bool) CookieOption {
	return func(c *cookie) { c.httpOnly = httpOnly }
}
