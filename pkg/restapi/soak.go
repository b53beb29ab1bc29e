// Copyright (C) 2017 ScyllaDB

package restapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type soakHandler struct {
	service SoakService
}

func newSoakHandler(svc SoakService) *chi.Mux {
	m := chi.NewMux()
	h := &soakHandler{service: svc}
	m.Get("/status", h.getStatus)
	return m
}

func (h *soakHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	render.Respond(w, r, h.service.Status())
}
