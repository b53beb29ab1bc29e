// Copyright (C) 2017 ScyllaDB

package kudu

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// CellState tells how a row cell was populated.
type CellState int8

// CellState enumeration.
const (
	// CellUnset means no value was written, on insert the stored column
	// default applies.
	CellUnset CellState = iota
	// CellSet means an explicit value was written.
	CellSet
	// CellNull means an explicit null was written.
	CellNull
)

func (s CellState) String() string {
	switch s {
	case CellUnset:
		return "unset"
	case CellSet:
		return "set"
	case CellNull:
		return "null"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s CellState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CellState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unset":
		*s = CellUnset
	case "set":
		*s = CellSet
	case "null":
		*s = CellNull
	default:
		return errors.Errorf("unrecognised cell state %q", text)
	}
	return nil
}

// Cell is one positional value of a row.
type Cell struct {
	State CellState
	Value Value
}

type jsonCell struct {
	State CellState `json:"state"`
	Value *Value    `json:"value,omitempty"`
}

// MarshalJSON implements json.Marshaler, the value is present on the wire
// only for set cells.
func (c Cell) MarshalJSON() ([]byte, error) {
	j := jsonCell{State: c.State}
	if c.State == CellSet {
		j.Value = &c.Value
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var j jsonCell
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	c.State = j.State
	c.Value = Value{}
	if j.State == CellSet {
		if j.Value == nil {
			return errors.New("missing cell value")
		}
		c.Value = *j.Value
	}
	return nil
}

// Row holds one cell per schema column, by ordinal position.
type Row struct {
	Cells []Cell `json:"cells"`
}

// NewRow returns a row of n unset cells.
func NewRow(n int) Row {
	return Row{Cells: make([]Cell, n)}
}

// Set writes value v at position i.
func (r Row) Set(i int, v Value) {
	r.Cells[i] = Cell{State: CellSet, Value: v}
}

// SetNull writes an explicit null at position i.
func (r Row) SetNull(i int) {
	r.Cells[i] = Cell{State: CellNull}
}

// Value returns the value at position i and whether one is set.
func (r Row) Value(i int) (Value, bool) {
	c := r.Cells[i]
	return c.Value, c.State == CellSet
}

// Len returns the number of cells.
func (r Row) Len() int {
	return len(r.Cells)
}

// Validate checks the row against schema s, cell count and per cell type,
// nullability and default use.
func (r Row) Validate(s Schema) error {
	if len(r.Cells) != s.Len() {
		return errors.Errorf("row has %d cells, schema has %d columns", len(r.Cells), s.Len())
	}
	for i, cell := range r.Cells {
		col := s.Column(i)
		switch cell.State {
		case CellSet:
			if cell.Value.Kind() != col.Type {
				return errors.Errorf("column %q: value of kind %s, want %s", col.Name, cell.Value.Kind(), col.Type)
			}
		case CellNull:
			if !col.Nullable {
				return errors.Errorf("column %q: null written to non nullable column", col.Name)
			}
		case CellUnset:
			if col.Key {
				return errors.Errorf("column %q: key column left unset", col.Name)
			}
			if col.Default == nil && !col.Nullable {
				return errors.Errorf("column %q: no value and no default", col.Name)
			}
		default:
			return errors.Errorf("column %q: unrecognised cell state %d", col.Name, cell.State)
		}
	}
	return nil
}
