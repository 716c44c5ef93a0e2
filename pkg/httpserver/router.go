package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// Probe reports whether a dependency is ready to serve.
type Probe func(ctx context.Context) error

// RouterConfig selects the endpoints mounted by NewRouter.
type RouterConfig struct {
	// Gatherer backs GET /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
	// Ready probes back GET /readyz.
	Ready []Probe
	// Stats backs GET /stats with a JSON document; nil leaves the route out.
	Stats  func() any
	Logger *slog.Logger
}

// NewRouter builds the admin handler. Every request carries a chi request id
// under middleware.RequestIDKey:
//
//	GET /healthz  liveness, always ALIVE
//	GET /readyz   READY once every probe passes
//	GET /metrics  Prometheus exposition
//	GET /stats    JSON snapshot from RouterConfig.Stats
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", HealthCheckHandler(log))
	r.Get("/readyz", HealthCheckHandler(log, cfg.Ready...))

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	if cfg.Stats != nil {
		r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(cfg.Stats()); err != nil {
				log.ErrorContext(r.Context(), "failed to encode stats", logger.Error(err))
			}
		})
	}

	return r
}

// HealthCheckHandler answers liveness probes with ALIVE when no probes are
// given. With probes it answers READY when all pass and 503 NOT_READY
// otherwise.
func HealthCheckHandler(log *slog.Logger, probes ...Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(probes) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				log.WarnContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
