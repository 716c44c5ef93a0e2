package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/config"
)

type storeConfig struct {
	Path     string        `env:"SESSIONKIT_TEST_PATH" envDefault:"/tmp/sessions"`
	Pool     int           `env:"SESSIONKIT_TEST_POOL" envDefault:"10"`
	Prefix   string        `env:"SESSIONKIT_TEST_PREFIX" envDefault:"sess_"`
	Secure   bool          `env:"SESSIONKIT_TEST_SECURE"`
	Interval time.Duration `env:"SESSIONKIT_TEST_INTERVAL" envDefault:"5s"`
}

type requiredConfig struct {
	Name string `env:"SESSIONKIT_TEST_REQUIRED,required"`
}

func unsetTestEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SESSIONKIT_TEST_PATH",
		"SESSIONKIT_TEST_POOL",
		"SESSIONKIT_TEST_PREFIX",
		"SESSIONKIT_TEST_SECURE",
		"SESSIONKIT_TEST_INTERVAL",
		"SESSIONKIT_TEST_REQUIRED",
	} {
		// Register restore of the original value, then clear it
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	config.Reset()
	t.Cleanup(config.Reset)
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		unsetTestEnv(t)

		var cfg storeConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "/tmp/sessions", cfg.Path)
		assert.Equal(t, 10, cfg.Pool)
		assert.Equal(t, 5*time.Second, cfg.Interval)
		assert.False(t, cfg.Secure)
	})

	t.Run("from environment", func(t *testing.T) {
		unsetTestEnv(t)
		t.Setenv("SESSIONKIT_TEST_PATH", "/srv/sessions")
		t.Setenv("SESSIONKIT_TEST_INTERVAL", "1m")

		var cfg storeConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "/srv/sessions", cfg.Path)
		assert.Equal(t, time.Minute, cfg.Interval)
	})

	t.Run("cached per type", func(t *testing.T) {
		unsetTestEnv(t)
		t.Setenv("SESSIONKIT_TEST_POOL", "20")

		var first storeConfig
		require.NoError(t, config.Load(&first))

		t.Setenv("SESSIONKIT_TEST_POOL", "40")

		var second storeConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, 20, second.Pool)

		config.Reset()

		var third storeConfig
		require.NoError(t, config.Load(&third))
		assert.Equal(t, 40, third.Pool)
	})

	t.Run("missing required", func(t *testing.T) {
		unsetTestEnv(t)

		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)

		t.Setenv("SESSIONKIT_TEST_REQUIRED", "sessiond")
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "sessiond", cfg.Name)
	})

	t.Run("invalid value", func(t *testing.T) {
		unsetTestEnv(t)
		t.Setenv("SESSIONKIT_TEST_POOL", "many")

		var cfg storeConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *storeConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	unsetTestEnv(t)

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})

	assert.NotPanics(t, func() {
		var cfg storeConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("later files override earlier ones", func(t *testing.T) {
		unsetTestEnv(t)

		require.NoError(t, config.LoadEnv("testdata/base.env", "testdata/override.env"))

		var cfg storeConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "/var/lib/sessions", cfg.Path)
		assert.Equal(t, 32, cfg.Pool)
		assert.Equal(t, "sess_", cfg.Prefix)
		assert.True(t, cfg.Secure)
	})

	t.Run("environment wins over files", func(t *testing.T) {
		unsetTestEnv(t)
		t.Setenv("SESSIONKIT_TEST_POOL", "64")

		require.NoError(t, config.LoadEnv("testdata/base.env"))

		var cfg storeConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 64, cfg.Pool)
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.LoadEnv("testdata/missing.env")
		assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
	})

	t.Run("no files", func(t *testing.T) {
		assert.NoError(t, config.LoadEnv())
	})
}
