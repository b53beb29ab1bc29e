// Copyright (C) 2017 ScyllaDB

package testutils

import (
	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/google/go-cmp/cmp"
)

// ValueComparer creates a cmp.Comparer for comparing kudu.Value's.
// Values compare with their per kind semantics, binary values element wise.
func ValueComparer() cmp.Option {
	return cmp.Comparer(func(a, b kudu.Value) bool { return a.Equal(b) })
}

// SchemaDiff formats the difference between two schemas, empty string means
// equal.
func SchemaDiff(a, b kudu.Schema) string {
	return cmp.Diff(a, b, ValueComparer())
}

// PartitionSchemaDiff formats the difference between two partition schemas,
// empty string means equal.
func PartitionSchemaDiff(a, b kudu.PartitionSchema) string {
	return cmp.Diff(a, b, ValueComparer())
}
