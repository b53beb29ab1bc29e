// Copyright (C) 2017 ScyllaDB

package restapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/scylladb/go-log"
)

// traceID tags the request context so that every log entry made while
// serving the request carries the same trace ID.
func traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(log.WithTraceID(r.Context())))
	})
}

// requestLogger emits a single log line per served request.
func requestLogger(logger log.Logger) func(next http.Handler) http.Handler {
	return middleware.RequestLogger(requestLogFormatter{logger: logger})
}

// setRequestError attaches err to the request log entry so the log line
// explains the error response sent to the client.
func setRequestError(r *http.Request, err error) {
	if e, _ := middleware.GetLogEntry(r).(*requestLogEntry); e != nil {
		e.err = err
	}
}

type requestLogFormatter struct {
	logger log.Logger
}

func (f requestLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{r: r, logger: f.logger}
}

type requestLogEntry struct {
	r      *http.Request
	logger log.Logger
	err    error
}

func (e *requestLogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	fields := []interface{}{
		"from", e.r.RemoteAddr,
		"status", status,
		"bytes", bytes,
		"duration", elapsed.Round(time.Millisecond),
	}
	if e.err != nil {
		fields = append(fields, "error", e.err)
	}
	e.logger.Info(e.r.Context(), e.r.Method+" "+e.r.URL.RequestURI(), fields...)
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error(e.r.Context(), "Panic while serving request", "panic", v, "stack", string(stack))
}
