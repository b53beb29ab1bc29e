// Copyright (C) 2017 ScyllaDB

// Package verify decides structural equality of table schemas, columns and
// partitioning. It is the correctness oracle for backup round trips, a
// mismatch it reports is a fidelity failure, never an error.
package verify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arnaudpue/kudu/pkg/kudu"
)

// Mismatch describes the first difference found by a comparison, it carries
// enough detail to diagnose a failed round trip from logs alone. A nil
// Mismatch means the compared values are equal.
type Mismatch struct {
	// Ordinal of the differing column or rule, -1 for differences not tied
	// to a position.
	Ordinal int
	Field   string
	A, B    string
}

func (m Mismatch) String() string {
	if m.Ordinal < 0 {
		return fmt.Sprintf("%s: %s != %s", m.Field, m.A, m.B)
	}
	return fmt.Sprintf("%s at %d: %s != %s", m.Field, m.Ordinal, m.A, m.B)
}

// SchemasEqual reports whether two schemas are structurally equal. Column
// order is significant, a reordered copy is not equal.
func SchemasEqual(a, b kudu.Schema) bool {
	return CompareSchemas(a, b) == nil
}

// CompareSchemas returns the first difference between two schemas, nil when
// they are equal.
func CompareSchemas(a, b kudu.Schema) *Mismatch {
	if a.Len() != b.Len() {
		return &Mismatch{Ordinal: -1, Field: "column count", A: strconv.Itoa(a.Len()), B: strconv.Itoa(b.Len())}
	}
	for i := range a.Columns {
		if m := compareColumns(a.Columns[i], b.Columns[i]); m != nil {
			m.Ordinal = i
			return m
		}
	}
	return nil
}

// ColumnsEqual reports whether two column descriptors are equal. All fields
// compare by value, default values compare with their per kind semantics so
// two binary defaults with equal content but distinct identity are equal.
func ColumnsEqual(a, b kudu.ColumnSchema) bool {
	return compareColumns(a, b) == nil
}

func compareColumns(a, b kudu.ColumnSchema) *Mismatch {
	switch {
	case a.Name != b.Name:
		return &Mismatch{Field: "column name", A: a.Name, B: b.Name}
	case a.Type != b.Type:
		return &Mismatch{Field: "column type", A: a.Type.String(), B: b.Type.String()}
	case a.Key != b.Key:
		return &Mismatch{Field: "column key flag", A: strconv.FormatBool(a.Key), B: strconv.FormatBool(b.Key)}
	case a.Nullable != b.Nullable:
		return &Mismatch{Field: "column nullability", A: strconv.FormatBool(a.Nullable), B: strconv.FormatBool(b.Nullable)}
	case a.Compression != b.Compression:
		return &Mismatch{Field: "column compression", A: a.Compression.String(), B: b.Compression.String()}
	case a.BlockSize != b.BlockSize:
		return &Mismatch{Field: "column block size", A: strconv.Itoa(int(a.BlockSize)), B: strconv.Itoa(int(b.BlockSize))}
	case a.Encoding != b.Encoding:
		return &Mismatch{Field: "column encoding", A: a.Encoding.String(), B: b.Encoding.String()}
	}
	if !defaultsEqual(a.Default, b.Default) {
		return &Mismatch{Field: "column default", A: renderValue(a.Default), B: renderValue(b.Default)}
	}
	if !attrsEqual(a.Attributes, b.Attributes) {
		return &Mismatch{Field: "column type attributes", A: renderAttrs(a.Attributes), B: renderAttrs(b.Attributes)}
	}
	return nil
}

// PartitionSchemasEqual reports whether two partition schemas are equal.
// Hash rules compare by ordinal position with their column lists, bucket
// counts and seeds. Range rules compare by column list, split points are
// not part of equivalence. Two empty column lists mean no range
// partitioning on either side and are equal.
func PartitionSchemasEqual(a, b kudu.PartitionSchema) bool {
	return ComparePartitionSchemas(a, b) == nil
}

// ComparePartitionSchemas returns the first difference between two
// partition schemas, nil when they are equal.
func ComparePartitionSchemas(a, b kudu.PartitionSchema) *Mismatch {
	if len(a.Hash) != len(b.Hash) {
		return &Mismatch{Ordinal: -1, Field: "hash rule count", A: strconv.Itoa(len(a.Hash)), B: strconv.Itoa(len(b.Hash))}
	}
	for i := range a.Hash {
		x, y := a.Hash[i], b.Hash[i]
		switch {
		case !columnListsEqual(x.Columns, y.Columns):
			return &Mismatch{Ordinal: i, Field: "hash rule columns", A: renderColumns(x.Columns), B: renderColumns(y.Columns)}
		case x.Buckets != y.Buckets:
			return &Mismatch{Ordinal: i, Field: "hash rule buckets", A: strconv.Itoa(x.Buckets), B: strconv.Itoa(y.Buckets)}
		case x.Seed != y.Seed:
			return &Mismatch{Ordinal: i, Field: "hash rule seed", A: strconv.FormatUint(uint64(x.Seed), 10), B: strconv.FormatUint(uint64(y.Seed), 10)}
		}
	}
	if !columnListsEqual(a.Range.Columns, b.Range.Columns) {
		return &Mismatch{Ordinal: -1, Field: "range rule columns", A: renderColumns(a.Range.Columns), B: renderColumns(b.Range.Columns)}
	}
	return nil
}

func defaultsEqual(a, b *kudu.Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func attrsEqual(a, b *kudu.TypeAttributes) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func columnListsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func renderValue(v *kudu.Value) string {
	if v == nil {
		return "<none>"
	}
	return v.String()
}

func renderAttrs(a *kudu.TypeAttributes) string {
	if a == nil {
		return "<none>"
	}
	return fmt.Sprintf("(%d, %d)", a.Precision, a.Scale)
}

func renderColumns(c []string) string {
	if len(c) == 0 {
		return "<none>"
	}
	return strings.Join(c, ", ")
}
