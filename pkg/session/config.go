package session

import (
	"fmt"
	"time"
)

// Config holds the session settings
type Config struct {
	// SavePath is the directory session files are written to
	SavePath string `env:"SESSION_SAVE_PATH" envDefault:"/tmp/sessions"`

	// FilePrefix is prepended to the session id to form the file name
	FilePrefix string `env:"SESSION_FILE_PREFIX" envDefault:"sess_"`

	// InactivityTimeout after which idle sessions are collected or evicted (0 disables)
	InactivityTimeout time.Duration `env:"SESSION_INACTIVITY_TIMEOUT" envDefault:"1440s"`

	// GCProbability is the chance in [0,1] that a service tick runs garbage collection
	GCProbability float64 `env:"SESSION_GC_PROBABILITY" envDefault:"0.1"`

	CookieName     string        `env:"SESSION_COOKIE_NAME" envDefault:"sessid"`
	CookieLifetime time.Duration `env:"SESSION_COOKIE_LIFETIME" envDefault:"0s"`
	MaximumAge     time.Duration `env:"SESSION_MAXIMUM_AGE" envDefault:"0s"`
	CookieDomain   string        `env:"SESSION_COOKIE_DOMAIN"`
	CookiePath     string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	CookieSecure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool          `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`

	// PoolSize is the number of blank sessions created per pool refill
	PoolSize int `env:"SESSION_POOL_SIZE" envDefault:"10"`

	// AcquireTimeout bounds how long Create waits for a pool refill (0 waits indefinitely)
	AcquireTimeout time.Duration `env:"SESSION_ACQUIRE_TIMEOUT" envDefault:"0s"`

	// ServiceInterval is the delay between background service passes
	ServiceInterval time.Duration `env:"SESSION_SERVICE_INTERVAL" envDefault:"5s"`

	// Ownership of the save directory; empty values leave it unchanged
	DirUmask string `env:"SESSION_DIR_UMASK"`
	DirUser  string `env:"SESSION_DIR_USER"`
	DirGroup string `env:"SESSION_DIR_GROUP"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		SavePath:          "/tmp/sessions",
		FilePrefix:        "sess_",
		InactivityTimeout: 1440 * time.Second,
		GCProbability:     0.1,
		CookieName:        "sessid",
		CookiePath:        "/",
		CookieHTTPOnly:    true,
		PoolSize:          DefaultPoolSize,
		ServiceInterval:   5 * time.Second,
	}
}

// Validate reports settings the manager cannot run with.
func (c Config) Validate() error {
	switch {
	case c.SavePath == "":
		return fmt.Errorf("%w: empty save path", ErrInvalidConfig)
	case c.FilePrefix == "":
		return fmt.Errorf("%w: empty file prefix", ErrInvalidConfig)
	case c.GCProbability < 0 || c.GCProbability > 1:
		return fmt.Errorf("%w: gc probability %v outside [0,1]", ErrInvalidConfig, c.GCProbability)
	case c.PoolSize < 1:
		return fmt.Errorf("%w: pool size %d", ErrInvalidConfig, c.PoolSize)
	case c.ServiceInterval <= 0:
		return fmt.Errorf("%w: service interval %s", ErrInvalidConfig, c.ServiceInterval)
	case c.InactivityTimeout < 0, c.CookieLifetime < 0, c.MaximumAge < 0, c.AcquireTimeout < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	return nil
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	configOpts := []Option{
		WithConfig(cfg),
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...)
}
