// Copyright (C) 2017 ScyllaDB

// Package kuduclient defines how the verification harness talks to a Kudu
// cluster. The harness itself never embeds the storage engine, it drives a
// cluster through the Client interface so that tests can substitute a
// deterministic in-memory implementation.
package kuduclient

import (
	"context"

	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when an operation refers to a table that does not
// exist.
var ErrNotFound = errors.New("table not found")

// TableInfo describes a table as the cluster sees it. It is used both when
// creating a table and as the result of opening one.
type TableInfo struct {
	Name        string               `json:"name"`
	Schema      kudu.Schema          `json:"schema"`
	Partition   kudu.PartitionSchema `json:"partition"`
	NumReplicas int                  `json:"num_replicas"`
}

// OperationType specifies the kind of a row mutation applied by a Session.
type OperationType int8

// OperationType enumeration.
const (
	OpInsert OperationType = iota
	OpUpsert
)

func (o OperationType) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpsert:
		return "upsert"
	}
	return "unknown"
}

// Operation is a single row mutation.
type Operation struct {
	Type OperationType
	Row  kudu.Row
}

// NewInsert returns an insert operation for the given row.
func NewInsert(row kudu.Row) Operation {
	return Operation{Type: OpInsert, Row: row}
}

// NewUpsert returns an upsert operation for the given row.
func NewUpsert(row kudu.Row) Operation {
	return Operation{Type: OpUpsert, Row: row}
}

// Client provides means to manipulate tables and data on a cluster.
//
// All operations honour the context, implementations should give up as soon
// as it's cancelled.
type Client interface {
	// CreateTable creates a new table from the given description.
	CreateTable(ctx context.Context, info TableInfo) error
	// DeleteTable drops a table with all its data.
	DeleteTable(ctx context.Context, name string) error
	// TableExists tells if a table with the given name exists.
	TableExists(ctx context.Context, name string) (bool, error)
	// OpenTable returns the description of an existing table.
	OpenTable(ctx context.Context, name string) (TableInfo, error)
	// NewSession opens a write session to the given table. The session may
	// buffer operations, they are not guaranteed to be visible to scans
	// until Flush returns.
	NewSession(ctx context.Context, table string) (Session, error)
	// ScanRowCount returns the number of rows in a table.
	ScanRowCount(ctx context.Context, table string) (int64, error)
	// ScanRows returns all rows of a table in primary key order. Every cell
	// of a returned row is materialized, either set or null.
	ScanRows(ctx context.Context, table string) ([]kudu.Row, error)
	// ClusterVersion returns the version string reported by the cluster.
	ClusterVersion(ctx context.Context) (string, error)
	// Close releases resources associated with the client.
	Close() error
}

// Session applies row operations to a single table.
type Session interface {
	// Apply enqueues an operation. It may be written in the background,
	// errors surface at the latest on Flush.
	Apply(ctx context.Context, op Operation) error
	// Flush blocks until all applied operations are durable.
	Flush(ctx context.Context) error
	// Close flushes outstanding operations and releases the session.
	Close() error
}
