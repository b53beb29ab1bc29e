// Copyright (C) 2017 ScyllaDB

// Package kuduclienttest provides a deterministic in-memory cluster and a
// kuduclient.Client implementation backed by it. It gives service and
// pipeline tests real table semantics, schema and partition validation,
// stored defaults, hash bucketing, without a running cluster.
package kuduclienttest

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/arnaudpue/kudu/pkg/kuduclient"
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// DefaultVersion is the version a new Cluster reports.
const DefaultVersion = "1.17.0"

// Cluster is an in-memory stand-in for a cluster. It stores fully
// materialized rows keyed by their encoded primary key and keeps enough
// partition accounting to answer tablet distribution queries.
//
// All methods are safe for concurrent use.
type Cluster struct {
	version string
	nodes   int

	mu     sync.RWMutex
	tables map[string]*table
}

type table struct {
	info    kuduclient.TableInfo
	tablets int
	rows    map[string]kudu.Row
}

// ClusterOption allows to modify a Cluster before it is used.
type ClusterOption func(*Cluster)

// ClusterVersion makes the cluster report the given version.
func ClusterVersion(v string) ClusterOption {
	return func(c *Cluster) {
		c.version = v
	}
}

// ClusterNodes sets the number of live tablet servers, it caps the accepted
// replication factor.
func ClusterNodes(n int) ClusterOption {
	return func(c *Cluster) {
		c.nodes = n
	}
}

// NewCluster returns an empty cluster with three live tablet servers.
func NewCluster(opts ...ClusterOption) *Cluster {
	c := &Cluster{
		version: DefaultVersion,
		nodes:   3,
		tables:  make(map[string]*table),
	}
	for i := range opts {
		opts[i](c)
	}
	return c
}

// Tables returns names of all tables, sorted.
func (c *Cluster) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TabletCount returns the number of tablets backing a table, zero if the
// table does not exist.
func (c *Cluster) TabletCount(name string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[name]
	if !ok {
		return 0
	}
	return t.tablets
}

// RowDistribution returns per tablet row counts of a table. Tablets are
// indexed by hash buckets in rule order followed by the range interval.
func (c *Cluster) RowDistribution(name string) ([]int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[name]
	if !ok {
		return nil, errors.Wrap(kuduclient.ErrNotFound, name)
	}

	dist := make([]int, t.tablets)
	for _, row := range t.rows {
		i, err := tabletIndex(t.info.Schema, t.info.Partition, row)
		if err != nil {
			return nil, err
		}
		dist[i]++
	}
	return dist, nil
}

func (c *Cluster) createTable(info kuduclient.TableInfo) error {
	if info.Name == "" {
		return errors.New("missing table name")
	}
	if err := info.Schema.Validate(); err != nil {
		return errors.Wrapf(err, "table %s: schema", info.Name)
	}
	if err := info.Partition.Validate(info.Schema); err != nil {
		return errors.Wrapf(err, "table %s: partition", info.Name)
	}
	if info.NumReplicas <= 0 {
		info.NumReplicas = 1
	}
	if info.NumReplicas > c.nodes {
		return errors.Errorf("table %s: %d replicas requested, %d tablet servers are alive", info.Name, info.NumReplicas, c.nodes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tables[info.Name]; ok {
		return errors.Errorf("table %s already exists", info.Name)
	}
	c.tables[info.Name] = &table{
		info:    info,
		tablets: tabletCount(info.Partition),
		rows:    make(map[string]kudu.Row),
	}
	return nil
}

func (c *Cluster) deleteTable(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tables[name]; !ok {
		return errors.Wrap(kuduclient.ErrNotFound, name)
	}
	delete(c.tables, name)
	return nil
}

func (c *Cluster) tableExists(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.tables[name]
	return ok
}

func (c *Cluster) openTable(name string) (kuduclient.TableInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[name]
	if !ok {
		return kuduclient.TableInfo{}, errors.Wrap(kuduclient.ErrNotFound, name)
	}
	return t.info, nil
}

func (c *Cluster) apply(tableName string, op kuduclient.Operation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tables[tableName]
	if !ok {
		return errors.Wrap(kuduclient.ErrNotFound, tableName)
	}
	if err := op.Row.Validate(t.info.Schema); err != nil {
		return errors.Wrapf(err, "table %s", tableName)
	}
	row, err := materialize(t.info.Schema, op.Row)
	if err != nil {
		return errors.Wrapf(err, "table %s", tableName)
	}
	key, err := encodeKey(t.info.Schema, row)
	if err != nil {
		return errors.Wrapf(err, "table %s", tableName)
	}

	switch op.Type {
	case kuduclient.OpInsert:
		if _, ok := t.rows[key]; ok {
			return errors.Errorf("table %s: key already present", tableName)
		}
	case kuduclient.OpUpsert:
	default:
		return errors.Errorf("table %s: unrecognised operation type %d", tableName, op.Type)
	}
	t.rows[key] = row
	return nil
}

func (c *Cluster) rowCount(name string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[name]
	if !ok {
		return 0, errors.Wrap(kuduclient.ErrNotFound, name)
	}
	return int64(len(t.rows)), nil
}

func (c *Cluster) scanRows(name string) ([]kudu.Row, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[name]
	if !ok {
		return nil, errors.Wrap(kuduclient.ErrNotFound, name)
	}

	keys := make([]string, 0, len(t.rows))
	for k := range t.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]kudu.Row, len(keys))
	for i, k := range keys {
		rows[i] = t.rows[k]
	}
	return rows, nil
}

// materialize resolves the cells of a validated incoming row the way the
// server does on write, stored defaults fill unset cells and unset nullable
// cells become nulls. The input row is not modified.
func materialize(s kudu.Schema, in kudu.Row) (kudu.Row, error) {
	out := kudu.NewRow(s.Len())
	for i := range s.Columns {
		col := s.Column(i)
		cell := in.Cells[i]
		switch cell.State {
		case kudu.CellSet:
			if col.Type == kudu.TypeDecimal {
				if col.Attributes == nil || cell.Value.Attrs() != *col.Attributes {
					return kudu.Row{}, errors.Errorf("column %q: decimal attributes do not match the column", col.Name)
				}
			}
			out.Set(i, cell.Value)
		case kudu.CellNull:
			out.SetNull(i)
		case kudu.CellUnset:
			switch {
			case col.Default != nil:
				out.Set(i, *col.Default)
			case col.Nullable:
				out.SetNull(i)
			default:
				return kudu.Row{}, errors.Errorf("column %q: no value and no default", col.Name)
			}
		}
	}
	return out, nil
}

func tabletCount(p kudu.PartitionSchema) int {
	n := 1
	for _, h := range p.Hash {
		n *= h.Buckets
	}
	if p.Range.IsSet() {
		n *= len(p.Range.Splits) + 1
	}
	return n
}

// tabletIndex locates the tablet a materialized row belongs to.
func tabletIndex(s kudu.Schema, p kudu.PartitionSchema, row kudu.Row) (int, error) {
	idx := 0
	for _, h := range p.Hash {
		b, err := hashBucket(s, h, row)
		if err != nil {
			return 0, err
		}
		idx = idx*h.Buckets + b
	}
	if p.Range.IsSet() {
		idx = idx*(len(p.Range.Splits)+1) + rangeInterval(s, p.Range, row)
	}
	return idx, nil
}

// hashBucket computes the bucket of a row under a single hash rule. The hash
// is salted with the rule seed so that a different seed gives a different
// row placement.
func hashBucket(s kudu.Schema, h kudu.HashPartition, row kudu.Row) (int, error) {
	d := xxhash.New()

	var seed [4]byte
	binary.LittleEndian.PutUint32(seed[:], h.Seed)
	d.Write(seed[:])

	for _, name := range h.Columns {
		i := s.ColumnIndex(name)
		if i < 0 {
			return 0, errors.Errorf("hash column %q not in schema", name)
		}
		cell := row.Cells[i]
		if cell.State != kudu.CellSet {
			return 0, errors.Errorf("hash column %q not set", name)
		}
		d.Write(appendCell(nil, cell.Value))
	}

	return int(d.Sum64() % uint64(h.Buckets)), nil
}

// rangeInterval returns the index of the interval holding the row's range
// key, split values separate the intervals.
func rangeInterval(s kudu.Schema, r kudu.RangePartition, row kudu.Row) int {
	i := s.ColumnIndex(r.Columns[0])
	v, _ := row.Value(i)

	n := 0
	for _, split := range r.Splits {
		if split.Int() <= v.Int() {
			n++
		}
	}
	return n
}
