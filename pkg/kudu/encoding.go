// Copyright (C) 2017 ScyllaDB

package kudu

import (
	"github.com/pkg/errors"
)

// Encoding is the on disk value representation scheme of a column, it is
// orthogonal to compression.
type Encoding int8

// Encoding enumeration.
const (
	AutoEncoding Encoding = iota
	PlainEncoding
	PrefixEncoding
	RunLengthEncoding
	DictEncoding
	BitShuffleEncoding
)

func (e Encoding) String() string {
	switch e {
	case AutoEncoding:
		return "auto"
	case PlainEncoding:
		return "plain"
	case PrefixEncoding:
		return "prefix"
	case RunLengthEncoding:
		return "rle"
	case DictEncoding:
		return "dict"
	case BitShuffleEncoding:
		return "bitshuffle"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (e Encoding) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Encoding) UnmarshalText(text []byte) error {
	for _, v := range []Encoding{AutoEncoding, PlainEncoding, PrefixEncoding, RunLengthEncoding, DictEncoding, BitShuffleEncoding} {
		if v.String() == string(text) {
			*e = v
			return nil
		}
	}
	return errors.Errorf("unrecognised encoding %q", text)
}

// ValidEncodings returns the encodings the storage engine accepts for
// columns of the given type. An unknown type is a programming error and is
// reported as such.
func ValidEncodings(t Type) ([]Encoding, error) {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeUnixtimeMicros:
		return []Encoding{AutoEncoding, PlainEncoding, BitShuffleEncoding, RunLengthEncoding}, nil
	case TypeFloat, TypeDouble, TypeDecimal:
		return []Encoding{AutoEncoding, PlainEncoding, BitShuffleEncoding}, nil
	case TypeString, TypeBinary:
		return []Encoding{AutoEncoding, PlainEncoding, PrefixEncoding, DictEncoding}, nil
	case TypeBool:
		return []Encoding{AutoEncoding, PlainEncoding, RunLengthEncoding}, nil
	}
	return nil, errors.Errorf("invalid type %s", t)
}

// ValidEncoding reports whether e may be used with columns of type t.
func ValidEncoding(t Type, e Encoding) bool {
	valid, err := ValidEncodings(t)
	if err != nil {
		return false
	}
	for _, v := range valid {
		if v == e {
			return true
		}
	}
	return false
}

// Compression is the per column block compression algorithm.
type Compression int8

// Compression enumeration.
const (
	DefaultCompression Compression = iota
	NoCompression
	SnappyCompression
	LZ4Compression
	ZlibCompression
)

// Compressions lists all compression algorithms.
var Compressions = []Compression{
	DefaultCompression,
	NoCompression,
	SnappyCompression,
	LZ4Compression,
	ZlibCompression,
}

func (c Compression) String() string {
	switch c {
	case DefaultCompression:
		return "default"
	case NoCompression:
		return "none"
	case SnappyCompression:
		return "snappy"
	case LZ4Compression:
		return "lz4"
	case ZlibCompression:
		return "zlib"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c Compression) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Compression) UnmarshalText(text []byte) error {
	for _, v := range Compressions {
		if v.String() == string(text) {
			*c = v
			return nil
		}
	}
	return errors.Errorf("unrecognised compression %q", text)
}
