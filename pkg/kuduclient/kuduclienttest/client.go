// Copyright (C) 2017 ScyllaDB

package kuduclienttest

import (
	"context"

	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/arnaudpue/kudu/pkg/kuduclient"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// Client implements kuduclient.Client against an in-memory Cluster.
type Client struct {
	cluster *Cluster
	closed  atomic.Bool
}

var _ kuduclient.Client = (*Client)(nil)

// NewClient returns a Client connected to the given cluster.
func NewClient(cluster *Cluster) *Client {
	return &Client{cluster: cluster}
}

// Provider returns a kuduclient.ProviderFunc handing out clients of the
// given cluster regardless of the requested masters.
func Provider(cluster *Cluster) kuduclient.ProviderFunc {
	return func(_ context.Context, _ []string) (kuduclient.Client, error) {
		return NewClient(cluster), nil
	}
}

func (c *Client) check(ctx context.Context) error {
	if c.closed.Load() {
		return errors.New("client closed")
	}
	return ctx.Err()
}

// CreateTable implements kuduclient.Client.
func (c *Client) CreateTable(ctx context.Context, info kuduclient.TableInfo) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	return c.cluster.createTable(info)
}

// DeleteTable implements kuduclient.Client.
func (c *Client) DeleteTable(ctx context.Context, name string) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	return c.cluster.deleteTable(name)
}

// TableExists implements kuduclient.Client.
func (c *Client) TableExists(ctx context.Context, name string) (bool, error) {
	if err := c.check(ctx); err != nil {
		return false, err
	}
	return c.cluster.tableExists(name), nil
}

// OpenTable implements kuduclient.Client.
func (c *Client) OpenTable(ctx context.Context, name string) (kuduclient.TableInfo, error) {
	if err := c.check(ctx); err != nil {
		return kuduclient.TableInfo{}, err
	}
	return c.cluster.openTable(name)
}

// NewSession implements kuduclient.Client.
func (c *Client) NewSession(ctx context.Context, table string) (kuduclient.Session, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	if !c.cluster.tableExists(table) {
		return nil, errors.Wrap(kuduclient.ErrNotFound, table)
	}
	return newSession(c.cluster, table), nil
}

// ScanRowCount implements kuduclient.Client.
func (c *Client) ScanRowCount(ctx context.Context, table string) (int64, error) {
	if err := c.check(ctx); err != nil {
		return 0, err
	}
	return c.cluster.rowCount(table)
}

// ScanRows implements kuduclient.Client.
func (c *Client) ScanRows(ctx context.Context, table string) ([]kudu.Row, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	return c.cluster.scanRows(table)
}

// ClusterVersion implements kuduclient.Client.
func (c *Client) ClusterVersion(ctx context.Context) (string, error) {
	if err := c.check(ctx); err != nil {
		return "", err
	}
	return c.cluster.version, nil
}

// Close implements kuduclient.Client.
func (c *Client) Close() error {
	c.closed.Store(true)
	return nil
}
