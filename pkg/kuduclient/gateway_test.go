// Copyright (C) 2017 ScyllaDB

package kuduclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/arnaudpue/kudu/pkg/kuduclient"
	"github.com/arnaudpue/kudu/pkg/kuduclient/kuduclienttest"
	"github.com/arnaudpue/kudu/pkg/testutils"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"go.uber.org/atomic"
)

// gatewayHandler serves the gateway wire API over an in-memory cluster. It
// mirrors what a real gateway deployment responds so the client is tested
// against reference table semantics.
func gatewayHandler(t *testing.T, cluster *kuduclienttest.Cluster) http.Handler {
	t.Helper()
	client := kuduclienttest.NewClient(cluster)

	writeErr := func(w http.ResponseWriter, err error) {
		code := http.StatusBadRequest
		if errors.Is(err, kuduclient.ErrNotFound) {
			code = http.StatusNotFound
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"message": err.Error()}) // nolint: errcheck
	}
	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Error("encode response:", err)
		}
	}
	tableName := func(r *http.Request) string {
		name := chi.URLParam(r, "name")
		if u, err := url.PathUnescape(name); err == nil {
			name = u
		}
		return name
	}

	m := chi.NewMux()
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Kudu-Masters") == "" {
				t.Error("request without Kudu-Masters header")
			}
			next.ServeHTTP(w, r)
		})
	})

	m.Route("/api/v1", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			v, err := client.ClusterVersion(r.Context())
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, map[string]string{"version": v})
		})
		r.Post("/tables", func(w http.ResponseWriter, r *http.Request) {
			var info kuduclient.TableInfo
			if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
				writeErr(w, err)
				return
			}
			if err := client.CreateTable(r.Context(), info); err != nil {
				writeErr(w, err)
				return
			}
			w.WriteHeader(http.StatusCreated)
		})
		r.Get("/tables/{name}", func(w http.ResponseWriter, r *http.Request) {
			info, err := client.OpenTable(r.Context(), tableName(r))
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, info)
		})
		r.Delete("/tables/{name}", func(w http.ResponseWriter, r *http.Request) {
			if err := client.DeleteTable(r.Context(), tableName(r)); err != nil {
				writeErr(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/tables/{name}/count", func(w http.ResponseWriter, r *http.Request) {
			n, err := client.ScanRowCount(r.Context(), tableName(r))
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, map[string]int64{"rows": n})
		})
		r.Get("/tables/{name}/rows", func(w http.ResponseWriter, r *http.Request) {
			rows, err := client.ScanRows(r.Context(), tableName(r))
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, map[string][]kudu.Row{"rows": rows})
		})
		r.Post("/tables/{name}/rows", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Operations []struct {
					Type string   `json:"type"`
					Row  kudu.Row `json:"row"`
				} `json:"operations"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeErr(w, err)
				return
			}
			session, err := client.NewSession(r.Context(), tableName(r))
			if err != nil {
				writeErr(w, err)
				return
			}
			for _, o := range req.Operations {
				var op kuduclient.Operation
				switch o.Type {
				case "insert":
					op = kuduclient.NewInsert(o.Row)
				case "upsert":
					op = kuduclient.NewUpsert(o.Row)
				default:
					session.Close()
					writeErr(w, errors.Errorf("unrecognised operation type %q", o.Type))
					return
				}
				if err := session.Apply(r.Context(), op); err != nil {
					session.Close()
					writeErr(w, err)
					return
				}
			}
			if err := session.Close(); err != nil {
				writeErr(w, err)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
	})

	return m
}

func newGatewayClient(t *testing.T, cluster *kuduclienttest.Cluster) *kuduclient.GatewayClient {
	t.Helper()

	srv := httptest.NewServer(gatewayHandler(t, cluster))
	t.Cleanup(srv.Close)

	c, err := kuduclient.NewGatewayClient(srv.URL, []string{"192.168.100.11:7051"}, 5*time.Second, log.NewDevelopment())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func testTableInfo(name string) kuduclient.TableInfo {
	return kuduclient.TableInfo{
		Name: name,
		Schema: kudu.Schema{Columns: []kudu.ColumnSchema{
			{Name: "key", Type: kudu.TypeInt64, Key: true, Encoding: kudu.BitShuffleEncoding},
			{Name: "val", Type: kudu.TypeString, Nullable: true, Encoding: kudu.DictEncoding},
		}},
		Partition: kudu.PartitionSchema{
			Hash: []kudu.HashPartition{{Columns: []string{"key"}, Buckets: 2, Seed: 7}},
		},
		NumReplicas: 1,
	}
}

func TestGatewayClientTableRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newGatewayClient(t, kuduclienttest.NewCluster())

	info := testTableInfo("gateway-roundtrip")
	if err := client.CreateTable(ctx, info); err != nil {
		t.Fatal(err)
	}

	if ok, err := client.TableExists(ctx, info.Name); err != nil || !ok {
		t.Fatalf("TableExists() = %v, %v, expected true", ok, err)
	}
	if ok, err := client.TableExists(ctx, "missing"); err != nil || ok {
		t.Fatalf("TableExists() = %v, %v, expected false", ok, err)
	}

	got, err := client.OpenTable(ctx, info.Name)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(info, got, testutils.ValueComparer()); diff != "" {
		t.Fatalf("OpenTable() diff:\n%s", diff)
	}

	rows := make([]kudu.Row, 0, 10)
	for i := 0; i < 10; i++ {
		r := kudu.NewRow(2)
		r.Set(0, kudu.NewInt64(int64(i)))
		if i%2 == 0 {
			r.Set(1, kudu.NewString("val"))
		} else {
			r.SetNull(1)
		}
		rows = append(rows, r)
	}
	session, err := client.NewSession(ctx, info.Name)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if err := session.Apply(ctx, kuduclient.NewInsert(r)); err != nil {
			t.Fatal(err)
		}
	}
	if err := session.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if err := session.Close(); err != nil {
		t.Fatal(err)
	}

	n, err := client.ScanRowCount(ctx, info.Name)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(rows)) {
		t.Fatalf("ScanRowCount() = %d, expected %d", n, len(rows))
	}

	scanned, err := client.ScanRows(ctx, info.Name)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rows, scanned, testutils.ValueComparer()); diff != "" {
		t.Fatalf("ScanRows() diff:\n%s", diff)
	}

	if err := client.DeleteTable(ctx, info.Name); err != nil {
		t.Fatal(err)
	}
	if _, err := client.OpenTable(ctx, info.Name); !errors.Is(err, kuduclient.ErrNotFound) {
		t.Fatalf("OpenTable() error %v, expected ErrNotFound", err)
	}
}

func TestGatewayClientSpecialTableName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newGatewayClient(t, kuduclienttest.NewCluster())

	name := "tấble with spaces ☃"
	if err := client.CreateTable(ctx, testTableInfo(name)); err != nil {
		t.Fatal(err)
	}
	if ok, err := client.TableExists(ctx, name); err != nil || !ok {
		t.Fatalf("TableExists() = %v, %v, expected true", ok, err)
	}

	session, err := client.NewSession(ctx, name)
	if err != nil {
		t.Fatal(err)
	}
	r := kudu.NewRow(2)
	r.Set(0, kudu.NewInt64(1))
	r.Set(1, kudu.NewString("☃"))
	if err := session.Apply(ctx, kuduclient.NewInsert(r)); err != nil {
		t.Fatal(err)
	}
	if err := session.Close(); err != nil {
		t.Fatal(err)
	}

	if n, err := client.ScanRowCount(ctx, name); err != nil || n != 1 {
		t.Fatalf("ScanRowCount() = %d, %v, expected 1", n, err)
	}
	if err := client.DeleteTable(ctx, name); err != nil {
		t.Fatal(err)
	}
}

func TestGatewayClientSessionBatching(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cluster := kuduclienttest.NewCluster()

	var writes atomic.Int64
	h := gatewayHandler(t, cluster)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/rows") {
			writes.Inc()
		}
		h.ServeHTTP(w, r)
	}))
	defer srv.Close()

	client, err := kuduclient.NewGatewayClient(srv.URL, []string{"192.168.100.11:7051"}, 5*time.Second, log.NewDevelopment())
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	info := testTableInfo("gateway-batching")
	if err := client.CreateTable(ctx, info); err != nil {
		t.Fatal(err)
	}
	session, err := client.NewSession(ctx, info.Name)
	if err != nil {
		t.Fatal(err)
	}

	const rows = 2500
	for i := 0; i < rows; i++ {
		r := kudu.NewRow(2)
		r.Set(0, kudu.NewInt64(int64(i)))
		r.SetNull(1)
		if err := session.Apply(ctx, kuduclient.NewInsert(r)); err != nil {
			t.Fatal(err)
		}
	}
	if err := session.Close(); err != nil {
		t.Fatal(err)
	}

	if n, err := client.ScanRowCount(ctx, info.Name); err != nil || n != rows {
		t.Fatalf("ScanRowCount() = %d, %v, expected %d", n, err, rows)
	}
	// Full buffers go out on Apply, Close ships the remainder.
	if writes.Load() != 3 {
		t.Fatalf("%d write requests, expected 3", writes.Load())
	}
}

func TestGatewayClientClusterVersion(t *testing.T) {
	t.Parallel()

	client := newGatewayClient(t, kuduclienttest.NewCluster(kuduclienttest.ClusterVersion("1.12.0")))

	v, err := client.ClusterVersion(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != "1.12.0" {
		t.Fatalf("ClusterVersion() = %s, expected 1.12.0", v)
	}
}

func TestGatewayClientErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newGatewayClient(t, kuduclienttest.NewCluster())

	if err := client.CreateTable(ctx, testTableInfo("dup")); err != nil {
		t.Fatal(err)
	}
	err := client.CreateTable(ctx, testTableInfo("dup"))
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("CreateTable() error %v, expected already exists", err)
	}
	if errors.Is(err, kuduclient.ErrNotFound) {
		t.Errorf("CreateTable() error %v, unexpected ErrNotFound", err)
	}

	if _, err := client.NewSession(ctx, "missing"); !errors.Is(err, kuduclient.ErrNotFound) {
		t.Errorf("NewSession() error %v, expected ErrNotFound", err)
	}
	if err := client.DeleteTable(ctx, "missing"); !errors.Is(err, kuduclient.ErrNotFound) {
		t.Errorf("DeleteTable() error %v, expected ErrNotFound", err)
	}
	if _, err := client.ScanRowCount(ctx, "missing"); !errors.Is(err, kuduclient.ErrNotFound) {
		t.Errorf("ScanRowCount() error %v, expected ErrNotFound", err)
	}
}

func TestNewGatewayClientValidation(t *testing.T) {
	t.Parallel()

	logger := log.NewDevelopment()
	masters := []string{"192.168.100.11:7051"}

	if _, err := kuduclient.NewGatewayClient("://host", masters, time.Second, logger); err == nil {
		t.Error("expected url parse error")
	}
	if _, err := kuduclient.NewGatewayClient("ftp://host", masters, time.Second, logger); err == nil || !strings.Contains(err.Error(), "scheme") {
		t.Errorf("error %v, expected scheme error", err)
	}
	if _, err := kuduclient.NewGatewayClient("http://host", nil, time.Second, logger); err == nil || !strings.Contains(err.Error(), "no masters") {
		t.Errorf("error %v, expected no masters", err)
	}
}

func TestGatewayProvider(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(gatewayHandler(t, kuduclienttest.NewCluster()))
	defer srv.Close()

	config := kuduclient.TestConfig("192.168.100.11:7051")
	config.Gateway = srv.URL

	provider := kuduclient.GatewayProvider(config, log.NewDevelopment())
	client, err := provider(context.Background(), config.Masters)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	v, err := client.ClusterVersion(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != kuduclienttest.DefaultVersion {
		t.Fatalf("ClusterVersion() = %s, expected %s", v, kuduclienttest.DefaultVersion)
	}
}
