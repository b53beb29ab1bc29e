// Copyright (C) 2017 ScyllaDB

package kuduclienttest

import (
	"encoding/binary"
	"math/big"

	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/pkg/errors"
)

// decimalBias shifts a 128 bit unscaled value into the non-negative range so
// that it can be rendered as unsigned bytes.
var decimalBias = new(big.Int).Lsh(big.NewInt(1), 127)

// encodeKey renders the primary key cells of a materialized row as a byte
// string whose lexicographic order matches primary key order. The scheme
// follows the server's composite key encoding, integers are written
// big-endian with the sign bit flipped and variable length values are zero
// escaped and zero terminated.
func encodeKey(s kudu.Schema, row kudu.Row) (string, error) {
	var b []byte
	for i := range s.Columns {
		col := s.Column(i)
		if !col.Key {
			break
		}
		cell := row.Cells[i]
		if cell.State != kudu.CellSet {
			return "", errors.Errorf("column %q: key cell not set", col.Name)
		}
		b = appendCell(b, cell.Value)
	}
	return string(b), nil
}

// appendCell appends the order preserving encoding of a single value.
func appendCell(b []byte, v kudu.Value) []byte {
	switch v.Kind() {
	case kudu.TypeString:
		return appendEscaped(b, []byte(v.Text()))
	case kudu.TypeBinary:
		return appendEscaped(b, v.Bytes())
	case kudu.TypeDecimal:
		u := new(big.Int).Add(v.Unscaled(), decimalBias)
		var buf [16]byte
		u.FillBytes(buf[:])
		return append(b, buf[:]...)
	default:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(v.Int())^(1<<63))
		return append(b, buf[:]...)
	}
}

// appendEscaped writes variable length bytes with 0x00 escaped as 0x00 0x01
// and a 0x00 0x00 terminator, like the server does for composite keys.
func appendEscaped(b, v []byte) []byte {
	for _, c := range v {
		if c == 0x00 {
			b = append(b, 0x00, 0x01)
		} else {
			b = append(b, c)
		}
	}
	return append(b, 0x00, 0x00)
}
