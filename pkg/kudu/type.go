// Copyright (C) 2017 ScyllaDB

// Package kudu provides the table model of a Kudu style columnar store as
// seen by the backup fidelity harness: logical column types, column and
// table schemas, partitioning rules and typed cell values.
//
// The model mirrors what the cluster reports when a table is read back, it
// carries no engine state of its own.
package kudu

import (
	"github.com/pkg/errors"
)

// Type is a closed enumeration of logical column types.
type Type int8

// Type enumeration.
const (
	TypeInt8 Type = iota
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUnixtimeMicros
	TypeBool
	TypeFloat
	TypeDouble
	TypeDecimal
	TypeString
	TypeBinary
)

// Types lists all logical types.
var Types = []Type{
	TypeInt8,
	TypeInt16,
	TypeInt32,
	TypeInt64,
	TypeUnixtimeMicros,
	TypeBool,
	TypeFloat,
	TypeDouble,
	TypeDecimal,
	TypeString,
	TypeBinary,
}

// OrderableTypes lists types that can serve as primary key and partitioning
// columns. Bool and the floating point types cannot define a sort order in
// the storage engine.
var OrderableTypes = []Type{
	TypeInt8,
	TypeInt16,
	TypeInt32,
	TypeInt64,
	TypeUnixtimeMicros,
	TypeDecimal,
	TypeString,
	TypeBinary,
}

func (t Type) String() string {
	switch t {
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeUnixtimeMicros:
		return "unixtime_micros"
	case TypeBool:
		return "bool"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeDecimal:
		return "decimal"
	case TypeString:
		return "string"
	case TypeBinary:
		return "binary"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	for _, v := range Types {
		if v.String() == string(text) {
			*t = v
			return nil
		}
	}
	return errors.Errorf("unrecognised type %q", text)
}

// Orderable reports whether columns of this type can be part of the primary
// key and referenced by partitioning rules.
func (t Type) Orderable() bool {
	switch t {
	case TypeBool, TypeFloat, TypeDouble:
		return false
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeUnixtimeMicros,
		TypeDecimal, TypeString, TypeBinary:
		return true
	}
	return false
}

// MaxPrecision is the highest decimal precision the storage engine accepts.
const MaxPrecision = 38

// TypeAttributes carries per column metadata of parameterised types,
// precision and scale for decimals.
type TypeAttributes struct {
	Precision int `json:"precision"`
	Scale     int `json:"scale"`
}

// Validate checks that attributes describe a storable decimal.
func (a TypeAttributes) Validate() error {
	if a.Precision < 1 || a.Precision > MaxPrecision {
		return errors.Errorf("precision %d out of range [1,%d]", a.Precision, MaxPrecision)
	}
	if a.Scale < 0 || a.Scale >= a.Precision {
		return errors.Errorf("scale %d out of range [0,%d)", a.Scale, a.Precision)
	}
	return nil
}

// DesiredBlockSizes are the block size hints the generator draws from, zero
// means the server side default.
var DesiredBlockSizes = []int32{0, 4096, 524288, 1048576}
