// Copyright (C) 2017 ScyllaDB

package restapi

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
)

// httpError is a wrapper holding an error, HTTP status code and a user-facing
// message.
type httpError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	TraceID    string `json:"trace_id"`
}

func (e *httpError) Error() string {
	return e.Message
}

// responder is installed as the package wide render.Respond function. Errors
// render as an httpError envelope, everything else takes the default path.
func responder(w http.ResponseWriter, r *http.Request, v interface{}) {
	err, ok := v.(error)
	if !ok {
		render.DefaultResponder(w, r, v)
		return
	}

	herr, _ := v.(*httpError)
	if herr == nil {
		herr = &httpError{
			StatusCode: http.StatusInternalServerError,
			Message:    errors.Wrap(err, "internal error, see logs").Error(),
			TraceID:    log.TraceID(r.Context()),
		}
	}

	setRequestError(r, err)
	render.Status(r, herr.StatusCode)
	render.DefaultResponder(w, r, herr)
}
