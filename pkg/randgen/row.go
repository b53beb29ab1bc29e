// Copyright (C) 2017 ScyllaDB

package randgen

import (
	"encoding/binary"
	"math/big"

	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/pkg/errors"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Rows returns n random rows consistent with schema s. A nullable column is
// set to null with probability 1/10, a non key column with a default is left
// unset with probability 1/10, otherwise the cell gets a random typed value.
func (g *Generator) Rows(s kudu.Schema, n int) ([]kudu.Row, error) {
	rows := make([]kudu.Row, 0, n)
	for i := 0; i < n; i++ {
		r, err := g.row(s)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (g *Generator) row(s kudu.Schema) (kudu.Row, error) {
	r := kudu.NewRow(s.Len())
	for i := range s.Columns {
		c := s.Column(i)

		if c.Nullable && g.rng.Intn(10) == 0 {
			r.SetNull(i)
			continue
		}
		if c.Default != nil && !c.Key && g.rng.Intn(10) == 0 {
			// Leave unset, the stored default applies.
			continue
		}

		v, err := g.Value(c.Type, c.Attributes)
		if err != nil {
			return kudu.Row{}, errors.Wrapf(err, "column %s", c.Name)
		}
		r.Set(i, v)
	}
	return r, nil
}

// Value returns a random value of type t drawn from the type's natural
// domain. For decimal types attrs bounds the unscaled value to the column
// precision.
func (g *Generator) Value(t kudu.Type, attrs *kudu.TypeAttributes) (kudu.Value, error) {
	switch t {
	case kudu.TypeBool:
		return kudu.NewBool(g.rng.Intn(2) == 0), nil
	case kudu.TypeInt8:
		return kudu.NewInt8(int8(g.rng.Uint64())), nil
	case kudu.TypeInt16:
		return kudu.NewInt16(int16(g.rng.Uint64())), nil
	case kudu.TypeInt32:
		return kudu.NewInt32(int32(g.rng.Uint64())), nil
	case kudu.TypeInt64:
		return kudu.NewInt64(int64(g.rng.Uint64())), nil
	case kudu.TypeUnixtimeMicros:
		return kudu.NewUnixtimeMicros(int64(g.rng.Uint64())), nil
	case kudu.TypeFloat:
		return kudu.NewFloat(g.rng.Float32()), nil
	case kudu.TypeDouble:
		return kudu.NewDouble(g.rng.Float64()), nil
	case kudu.TypeDecimal:
		if attrs == nil {
			return kudu.Value{}, errors.Wrap(ErrInvalidType, "decimal without attributes")
		}
		return kudu.NewDecimal(g.unscaled(attrs.Precision), *attrs), nil
	case kudu.TypeString:
		return kudu.NewString(g.text()), nil
	case kudu.TypeBinary:
		return kudu.NewBinary(g.blob()), nil
	default:
		return kudu.Value{}, errors.Wrapf(ErrInvalidType, "type %d", int8(t))
	}
}

// unscaled returns a random integer with at most precision decimal digits,
// either sign.
func (g *Generator) unscaled(precision int) *big.Int {
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], g.rng.Uint64())
	binary.BigEndian.PutUint64(buf[8:], g.rng.Uint64())

	v := new(big.Int).SetBytes(buf[:])
	v.Mod(v, bound)
	if g.rng.Intn(2) == 0 {
		v.Neg(v)
	}
	return v
}

func (g *Generator) text() string {
	buf := make([]byte, g.rng.Intn(maxValueLen))
	for i := range buf {
		buf[i] = alphabet[g.rng.Intn(len(alphabet))]
	}
	return string(buf)
}

func (g *Generator) blob() []byte {
	buf := make([]byte, g.rng.Intn(maxValueLen))
	for i := range buf {
		buf[i] = byte(g.rng.Uint32())
	}
	return buf
}
