// Package httpserver runs the admin HTTP endpoint of a process: health and
// readiness probes, Prometheus metrics and a JSON stats document, routed
// with chi.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	handler := httpserver.NewRouter(httpserver.RouterConfig{
//	    Gatherer: registry,
//	    Ready:    []httpserver.Probe{ready},
//	    Stats:    func() any { return map[string]int{"live": manager.Len()} },
//	})
//	err := srv.Run(ctx, handler) // returns after ctx is done and shutdown completes
package httpserver
