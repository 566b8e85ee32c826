// Package prom provides a wrapper around the prometheus registry with an
// HTTP handler and zap-compatible error logging.
package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Registry embeds a prometheus registry and adds a couple of helpers.
type Registry struct {
	*prometheus.Registry
	logger *zap.Logger
}

// NewRegistry returns a new registry, pre-registered with the Go runtime
// and process collectors.
func NewRegistry(logger *zap.Logger) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		Registry: reg,
		logger:   logger,
	}
}

// HTTPHandler returns an http.Handler for the registry.
func (r *Registry) HTTPHandler() http.Handler {
	opts := promhttp.HandlerOpts{
		ErrorLog: promLogger{logger: r.logger},
	}
	return promhttp.HandlerFor(r.Registry, opts)
}

// promLogger satisfies the promhttp.Logger interface with a zap logger.
type promLogger struct {
	logger *zap.Logger
}

// Println implements promhttp.Logger.
func (pl promLogger) Println(v ...interface{}) {
	pl.logger.Sugar().Info(v...)
}
