// Copyright (C) 2017 ScyllaDB

package kuduclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arnaudpue/kudu/pkg/kudu"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
)

// gatewayBatchSize caps the number of operations shipped in a single write
// request.
const gatewayBatchSize = 1000

// GatewayProvider returns a ProviderFunc connecting through the client
// gateway named in config. The harness does not speak the cluster RPC
// protocol, a gateway deployed next to the cluster wraps the native client
// library and executes operations on its behalf.
func GatewayProvider(config Config, logger log.Logger) ProviderFunc {
	return func(_ context.Context, masters []string) (Client, error) {
		return NewGatewayClient(config.Gateway, masters, config.Timeout, logger)
	}
}

// GatewayClient implements Client over the gateway HTTP API. Every request
// names the master addresses so a single gateway can front any number of
// clusters.
type GatewayClient struct {
	base    string
	masters string
	client  *http.Client
	logger  log.Logger
}

var _ Client = (*GatewayClient)(nil)

// NewGatewayClient returns a GatewayClient for the cluster given by masters
// reachable through the gateway at the given URL.
func NewGatewayClient(gateway string, masters []string, timeout time.Duration, logger log.Logger) (*GatewayClient, error) {
	u, err := url.Parse(gateway)
	if err != nil {
		return nil, errors.Wrap(err, "parse gateway url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("unsupported gateway url scheme %q", u.Scheme)
	}
	if len(masters) == 0 {
		return nil, errors.New("no masters")
	}

	return &GatewayClient{
		base:    strings.TrimSuffix(u.String(), "/") + "/api/v1",
		masters: strings.Join(masters, ","),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// CreateTable implements Client.
func (c *GatewayClient) CreateTable(ctx context.Context, info TableInfo) error {
	body, err := jsoniter.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "marshal table info")
	}
	return c.do(ctx, http.MethodPost, "/tables", bytes.NewReader(body), nil)
}

// DeleteTable implements Client.
func (c *GatewayClient) DeleteTable(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, tablePath(name), nil, nil)
}

// TableExists implements Client.
func (c *GatewayClient) TableExists(ctx context.Context, name string) (bool, error) {
	err := c.do(ctx, http.MethodGet, tablePath(name), nil, nil)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// OpenTable implements Client.
func (c *GatewayClient) OpenTable(ctx context.Context, name string) (TableInfo, error) {
	var info TableInfo
	if err := c.do(ctx, http.MethodGet, tablePath(name), nil, &info); err != nil {
		return TableInfo{}, err
	}
	return info, nil
}

// NewSession implements Client. The session is client side, operations are
// buffered and shipped to the gateway in batches on Flush.
func (c *GatewayClient) NewSession(ctx context.Context, table string) (Session, error) {
	exists, err := c.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Wrap(ErrNotFound, table)
	}
	return &gatewaySession{client: c, table: table}, nil
}

// ScanRowCount implements Client.
func (c *GatewayClient) ScanRowCount(ctx context.Context, table string) (int64, error) {
	var v struct {
		Rows int64 `json:"rows"`
	}
	if err := c.do(ctx, http.MethodGet, tablePath(table)+"/count", nil, &v); err != nil {
		return 0, err
	}
	return v.Rows, nil
}

// ScanRows implements Client.
func (c *GatewayClient) ScanRows(ctx context.Context, table string) ([]kudu.Row, error) {
	var v struct {
		Rows []kudu.Row `json:"rows"`
	}
	if err := c.do(ctx, http.MethodGet, tablePath(table)+"/rows", nil, &v); err != nil {
		return nil, err
	}
	return v.Rows, nil
}

// ClusterVersion implements Client.
func (c *GatewayClient) ClusterVersion(ctx context.Context) (string, error) {
	var v struct {
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/version", nil, &v); err != nil {
		return "", err
	}
	return v.Version, nil
}

// Close implements Client.
func (c *GatewayClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *GatewayClient) do(ctx context.Context, method, path string, body io.Reader, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Kudu-Masters", c.masters)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.logger.Debug(ctx, "Gateway request", "method", method, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return makeGatewayError(resp)
	}
	if v != nil {
		if err := jsoniter.NewDecoder(resp.Body).Decode(v); err != nil {
			return errors.Wrap(err, "decode response")
		}
	}
	return nil
}

func tablePath(name string) string {
	return "/tables/" + url.PathEscape(name)
}

func makeGatewayError(resp *http.Response) error {
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return errors.Errorf("gateway: status %d", resp.StatusCode)
	}
	var v struct {
		Message string `json:"message"`
	}
	if err := jsoniter.Unmarshal(b, &v); err != nil || v.Message == "" {
		v.Message = string(bytes.TrimSpace(b))
	}
	if v.Message == "" {
		v.Message = http.StatusText(resp.StatusCode)
	}
	return errors.Errorf("gateway: %s (status %d)", v.Message, resp.StatusCode)
}

// gatewaySession buffers operations and ships them as write batches. Writes
// are visible to scans once Flush returns.
type gatewaySession struct {
	client *GatewayClient
	table  string
	buf    []writeOp
}

type writeOp struct {
	Type string   `json:"type"`
	Row  kudu.Row `json:"row"`
}

type writeRequest struct {
	Operations []writeOp `json:"operations"`
}

// Apply implements Session. A full buffer is flushed in place.
func (s *gatewaySession) Apply(ctx context.Context, op Operation) error {
	s.buf = append(s.buf, writeOp{Type: op.Type.String(), Row: op.Row})
	if len(s.buf) >= gatewayBatchSize {
		return s.Flush(ctx)
	}
	return nil
}

// Flush implements Session.
func (s *gatewaySession) Flush(ctx context.Context) error {
	if len(s.buf) == 0 {
		return nil
	}
	body, err := jsoniter.Marshal(writeRequest{Operations: s.buf})
	if err != nil {
		return errors.Wrap(err, "marshal operations")
	}
	if err := s.client.do(ctx, http.MethodPost, tablePath(s.table)+"/rows", bytes.NewReader(body), nil); err != nil {
		return err
	}
	s.buf = s.buf[:0]
	return nil
}

// Close implements Session.
func (s *gatewaySession) Close() error {
	return s.Flush(context.Background())
}
