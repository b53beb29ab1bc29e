// Copyright (C) 2017 ScyllaDB

// Package restapi exposes harness health and soak progress over HTTP.
package restapi

import (
	"fmt"
	"net/http"

	"github.com/arnaudpue/kudu/pkg"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scylladb/go-log"
)

func init() {
	render.Respond = responder
}

// New returns an http.Handler implementing the v1 REST API.
func New(services Services, logger log.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		traceID,
		requestLogger(logger),
		render.SetContentType(render.ContentTypeJSON),
	)

	r.Get("/ping", heartbeat)
	r.Get("/version", showVersion)

	r.Mount("/api/v1", newSoakHandler(services.Soak))

	// NotFound registered last due to https://github.com/go-chi/chi/issues/297
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.Context(), "Request path not found", "path", r.URL.Path)
		render.Respond(w, r, &httpError{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("find endpoint for path %s", r.URL.Path),
			TraceID:    log.TraceID(r.Context()),
		})
	})

	return r
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func showVersion(w http.ResponseWriter, r *http.Request) {
	render.Respond(w, r, map[string]string{"version": pkg.Version()})
}

// NewPrometheus returns an http.Handler exposing Prometheus metrics on
// '/metrics'.
func NewPrometheus() http.Handler {
	r := chi.NewRouter()
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	return r
}
