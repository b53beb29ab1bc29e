// Copyright (C) 2017 ScyllaDB

package restapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arnaudpue/kudu/pkg/restapi"
	"github.com/arnaudpue/kudu/pkg/service/soak"
	"github.com/google/go-cmp/cmp"
	"github.com/scylladb/go-log"
)

type fakeSoakService struct {
	status soak.Status
}

func (s fakeSoakService) Status() soak.Status {
	return s.status
}

func assertJsonBody(t testing.TB, w *httptest.ResponseRecorder, expected interface{}) {
	t.Helper()

	b, err := json.Marshal(expected)
	if err != nil {
		t.Fatal(err)
	}

	actual := strings.TrimSpace(w.Body.String())

	if diff := cmp.Diff(actual, string(b)); diff != "" {
		t.Fatal(diff)
	}
}

func newTestHandler(svc restapi.SoakService) http.Handler {
	return restapi.New(restapi.Services{Soak: svc}, log.NewDevelopment())
}

func TestPing(t *testing.T) {
	h := newTestHandler(fakeSoakService{})
	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatal(w.Code)
	}
}

func TestVersion(t *testing.T) {
	h := newTestHandler(fakeSoakService{})
	r := httptest.NewRequest(http.MethodGet, "/version", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatal(w.Code)
	}
	assertJsonBody(t, w, map[string]string{"version": "Snapshot"})
}

func TestSoakStatus(t *testing.T) {
	status := soak.Status{
		Running:    true,
		Cycles:     3,
		Runs:       12,
		Passed:     10,
		Mismatched: 1,
		Failed:     1,
		LastCycle:  time.Date(2023, 11, 17, 10, 0, 0, 0, time.UTC),
		NextCycle:  time.Date(2023, 11, 17, 11, 0, 0, 0, time.UTC),
	}
	h := newTestHandler(fakeSoakService{status: status})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatal(w.Code)
	}
	assertJsonBody(t, w, status)
}

func TestNotFound(t *testing.T) {
	h := newTestHandler(fakeSoakService{})
	r := httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatal(w.Code)
	}
	if !strings.Contains(w.Body.String(), "/api/v1/nothing") {
		t.Errorf("body does not name the path, got %s", w.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	h := restapi.NewPrometheus()
	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatal(w.Code)
	}

	if w.Body.Len() < 100 {
		t.Error("invalid body")
	}
}
