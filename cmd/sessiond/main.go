// Command sessiond runs the file-backed session store as a standalone
// process: it reloads persisted sessions, drives the persistence cadence and
// serves health, readiness and metrics on the admin address.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/httpserver"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

type appConfig struct {
	Env      string   `env:"APP_ENV" envDefault:"development"`
	Name     string   `env:"APP_NAME" envDefault:"sessiond"`
	EnvFiles []string `env:"ENV_FILES" envSeparator:","`

	LogLevel      string `env:"LOG_LEVEL"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`
}

var errNotReady = errors.New("sessions are still being reloaded")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("sessiond stopped", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app, sessCfg, adminCfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(app)
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	manager, err := session.NewFromConfig(sessCfg,
		session.WithLogger(log),
		session.WithMetrics(session.NewMetrics(reg)),
	)
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}
	defer manager.Close()

	var ready atomic.Bool
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Gatherer: reg,
		Ready: []httpserver.Probe{func(context.Context) error {
			if !ready.Load() {
				return errNotReady
			}
			return nil
		}},
		Stats: func() any {
			return map[string]any{
				"live":      manager.Len(),
				"save_path": sessCfg.SavePath,
			}
		},
		Logger: log,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	srv := httpserver.NewFromConfig(adminCfg, httpserver.WithLogger(log))
	g.Go(func() error {
		return srv.Run(gctx, router)
	})

	if err := manager.Initialize(gctx); err != nil {
		cancel()
		_ = g.Wait()
		return fmt.Errorf("reload sessions from %s: %w", sessCfg.SavePath, err)
	}
	ready.Store(true)

	g.Go(func() error {
		return manager.Run(gctx)
	})

	log.InfoContext(ctx, "sessiond started",
		slog.String("save_path", sessCfg.SavePath),
		logger.Count(manager.Len()),
	)

	return g.Wait()
}

// loadConfig parses the process settings. Files listed in ENV_FILES are
// applied before the session and admin settings are read.
func loadConfig() (appConfig, session.Config, httpserver.Config, error) {
	var (
		app      appConfig
		sessCfg  session.Config
		adminCfg httpserver.Config
	)

	if err := config.Load(&app); err != nil {
		return app, sessCfg, adminCfg, err
	}
	if len(app.EnvFiles) > 0 {
		if err := config.LoadEnv(app.EnvFiles...); err != nil {
			return app, sessCfg, adminCfg, err
		}
		config.Reset()
		if err := config.Load(&app); err != nil {
			return app, sessCfg, adminCfg, err
		}
	}

	if err := config.Load(&sessCfg); err != nil {
		return app, sessCfg, adminCfg, err
	}
	if err := sessCfg.Validate(); err != nil {
		return app, sessCfg, adminCfg, err
	}
	if err := config.Load(&adminCfg); err != nil {
		return app, sessCfg, adminCfg, err
	}

	return app, sessCfg, adminCfg, nil
}

func newLogger(app appConfig) (*slog.Logger, error) {
	opts := []logger.Option{
		logger.WithFileOutput(logger.FileOutput{
			Filename:   app.LogFile,
			MaxSizeMB:  app.LogMaxSizeMB,
			MaxBackups: app.LogMaxBackups,
			MaxAgeDays: app.LogMaxAgeDays,
		}),
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	}

	if app.LogLevel != "" {
		level, err := logger.ParseLevel(app.LogLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, logger.WithLevel(level))
	}

	return logger.New(opts...), nil
}
