// Copyright (C) 2017 ScyllaDB

package kudu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/pkg/errors"
)

// Value is a tagged union of the runtime representations a cell or a column
// default can take. The tag is the logical Type of the value, decimals are
// held as an unscaled integer plus type attributes.
//
// Values compare with Equal, generic == must not be used as the binary kind
// is backed by a byte slice.
type Value struct {
	typ      Type
	b        bool
	i        int64
	f32      float32
	f64      float64
	s        string
	raw      []byte
	unscaled *big.Int
	attrs    TypeAttributes
}

// NewBool returns a bool Value.
func NewBool(v bool) Value {
	return Value{typ: TypeBool, b: v}
}

// NewInt8 returns an int8 Value.
func NewInt8(v int8) Value {
	return Value{typ: TypeInt8, i: int64(v)}
}

// NewInt16 returns an int16 Value.
func NewInt16(v int16) Value {
	return Value{typ: TypeInt16, i: int64(v)}
}

// NewInt32 returns an int32 Value.
func NewInt32(v int32) Value {
	return Value{typ: TypeInt32, i: int64(v)}
}

// NewInt64 returns an int64 Value.
func NewInt64(v int64) Value {
	return Value{typ: TypeInt64, i: v}
}

// NewUnixtimeMicros returns a timestamp Value from microseconds since epoch.
func NewUnixtimeMicros(micros int64) Value {
	return Value{typ: TypeUnixtimeMicros, i: micros}
}

// NewFloat returns a single precision float Value.
func NewFloat(v float32) Value {
	return Value{typ: TypeFloat, f32: v}
}

// NewDouble returns a double precision float Value.
func NewDouble(v float64) Value {
	return Value{typ: TypeDouble, f64: v}
}

// NewDecimal returns a decimal Value from an unscaled integer and type
// attributes, ex. unscaled 1234567 with scale 2 reads 12345.67.
func NewDecimal(unscaled *big.Int, attrs TypeAttributes) Value {
	return Value{typ: TypeDecimal, unscaled: new(big.Int).Set(unscaled), attrs: attrs}
}

// NewString returns a string Value.
func NewString(v string) Value {
	return Value{typ: TypeString, s: v}
}

// NewBinary returns a binary Value, the slice is not copied.
func NewBinary(v []byte) Value {
	return Value{typ: TypeBinary, raw: v}
}

// Kind returns the logical type tag of the value.
func (v Value) Kind() Type {
	return v.typ
}

// Bool returns the bool representation, valid for TypeBool only.
func (v Value) Bool() bool {
	return v.b
}

// Int returns the integer representation, valid for the integer widths and
// TypeUnixtimeMicros.
func (v Value) Int() int64 {
	return v.i
}

// Float32 returns the single precision representation, valid for TypeFloat.
func (v Value) Float32() float32 {
	return v.f32
}

// Float64 returns the double precision representation, valid for TypeDouble.
func (v Value) Float64() float64 {
	return v.f64
}

// Unscaled returns the unscaled decimal integer, valid for TypeDecimal.
func (v Value) Unscaled() *big.Int {
	return v.unscaled
}

// Attrs returns the decimal type attributes, valid for TypeDecimal.
func (v Value) Attrs() TypeAttributes {
	return v.attrs
}

// Text returns the string representation, valid for TypeString.
func (v Value) Text() string {
	return v.s
}

// Bytes returns the raw byte representation, valid for TypeBinary.
func (v Value) Bytes() []byte {
	return v.raw
}

// Equal compares two values with per kind semantics. Binary values always
// compare element wise, two slices with equal content but distinct identity
// are equal. Values of different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeBool:
		return v.b == o.b
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeUnixtimeMicros:
		return v.i == o.i
	case TypeFloat:
		return v.f32 == o.f32
	case TypeDouble:
		return v.f64 == o.f64
	case TypeDecimal:
		return v.attrs == o.attrs && v.unscaled.Cmp(o.unscaled) == 0
	case TypeString:
		return v.s == o.s
	case TypeBinary:
		return bytes.Equal(v.raw, o.raw)
	}
	return false
}

func (v Value) String() string {
	switch v.typ {
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeUnixtimeMicros:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(float64(v.f32), 'g', -1, 32)
	case TypeDouble:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case TypeDecimal:
		return formatDecimal(v.unscaled, v.attrs.Scale)
	case TypeString:
		return strconv.Quote(v.s)
	case TypeBinary:
		return fmt.Sprintf("0x%x", v.raw)
	}
	return "<invalid>"
}

func formatDecimal(unscaled *big.Int, scale int) string {
	s := unscaled.String()
	if scale == 0 {
		return s
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for len(s) <= scale {
		s = "0" + s
	}
	s = s[:len(s)-scale] + "." + s[len(s)-scale:]
	if neg {
		s = "-" + s
	}
	return s
}

// jsonValue is the wire form of Value used in staging artifacts.
type jsonValue struct {
	Type     Type            `json:"type"`
	Bool     *bool           `json:"bool,omitempty"`
	Int      *int64          `json:"int,omitempty"`
	Float    *float32        `json:"float,omitempty"`
	Double   *float64        `json:"double,omitempty"`
	Unscaled *big.Int        `json:"unscaled,omitempty"`
	Attrs    *TypeAttributes `json:"attrs,omitempty"`
	Str      *string         `json:"string,omitempty"`
	Raw      []byte          `json:"binary,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	j := jsonValue{Type: v.typ}
	switch v.typ {
	case TypeBool:
		j.Bool = &v.b
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeUnixtimeMicros:
		j.Int = &v.i
	case TypeFloat:
		j.Float = &v.f32
	case TypeDouble:
		j.Double = &v.f64
	case TypeDecimal:
		j.Unscaled = v.unscaled
		j.Attrs = &v.attrs
	case TypeString:
		j.Str = &v.s
	case TypeBinary:
		j.Raw = v.raw
		if j.Raw == nil {
			j.Raw = []byte{}
		}
	default:
		return nil, errors.Errorf("invalid type %s", v.typ)
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var j jsonValue
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	switch j.Type {
	case TypeBool:
		if j.Bool == nil {
			return errors.New("missing bool payload")
		}
		*v = NewBool(*j.Bool)
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeUnixtimeMicros:
		if j.Int == nil {
			return errors.New("missing int payload")
		}
		*v = Value{typ: j.Type, i: *j.Int}
	case TypeFloat:
		if j.Float == nil {
			return errors.New("missing float payload")
		}
		*v = NewFloat(*j.Float)
	case TypeDouble:
		if j.Double == nil {
			return errors.New("missing double payload")
		}
		*v = NewDouble(*j.Double)
	case TypeDecimal:
		if j.Unscaled == nil || j.Attrs == nil {
			return errors.New("missing decimal payload")
		}
		*v = NewDecimal(j.Unscaled, *j.Attrs)
	case TypeString:
		if j.Str == nil {
			return errors.New("missing string payload")
		}
		*v = NewString(*j.Str)
	case TypeBinary:
		*v = NewBinary(j.Raw)
	default:
		return errors.Errorf("invalid type %s", j.Type)
	}
	return nil
}
