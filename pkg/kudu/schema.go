// Copyright (C) 2017 ScyllaDB

package kudu

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ColumnSchema describes a single column, name, logical type, key and
// nullability flags, storage options and the optional server side default.
type ColumnSchema struct {
	Name        string          `json:"name"`
	Type        Type            `json:"type"`
	Key         bool            `json:"key"`
	Nullable    bool            `json:"nullable"`
	Compression Compression     `json:"compression"`
	BlockSize   int32           `json:"block_size"`
	Encoding    Encoding        `json:"encoding"`
	Default     *Value          `json:"default,omitempty"`
	Attributes  *TypeAttributes `json:"attributes,omitempty"`
}

// Validate checks the column against the storage engine's structural
// constraints.
func (c ColumnSchema) Validate() error {
	var err error

	if c.Name == "" {
		err = multierr.Append(err, errors.New("missing name"))
	}
	if !ValidEncoding(c.Type, c.Encoding) {
		err = multierr.Append(err, errors.Errorf("encoding %s not valid for type %s", c.Encoding, c.Type))
	}
	if c.Key {
		if c.Nullable {
			err = multierr.Append(err, errors.New("key column cannot be nullable"))
		}
		if c.Default != nil {
			err = multierr.Append(err, errors.New("key column cannot have a default"))
		}
		if !c.Type.Orderable() {
			err = multierr.Append(err, errors.Errorf("type %s cannot be a key", c.Type))
		}
	}
	if c.Type == TypeDecimal {
		if c.Attributes == nil {
			err = multierr.Append(err, errors.New("decimal column requires type attributes"))
		} else if aerr := c.Attributes.Validate(); aerr != nil {
			err = multierr.Append(err, aerr)
		}
	} else if c.Attributes != nil {
		err = multierr.Append(err, errors.Errorf("type %s does not take attributes", c.Type))
	}
	if c.Default != nil {
		if c.Default.Kind() != c.Type {
			err = multierr.Append(err, errors.Errorf("default of kind %s on %s column", c.Default.Kind(), c.Type))
		} else if c.Type == TypeDecimal && c.Attributes != nil && c.Default.Attrs() != *c.Attributes {
			err = multierr.Append(err, errors.New("default attributes differ from column attributes"))
		}
	}

	return errors.Wrapf(err, "column %q", c.Name)
}

// Schema is an ordered sequence of columns, order defines the row layout
// and takes part in equivalence. Primary key columns form a prefix of the
// column list.
type Schema struct {
	Columns []ColumnSchema `json:"columns"`
}

// Len returns the number of columns.
func (s Schema) Len() int {
	return len(s.Columns)
}

// Column returns the column at ordinal position i.
func (s Schema) Column(i int) ColumnSchema {
	return s.Columns[i]
}

// ColumnIndex returns the ordinal position of the named column or -1.
func (s Schema) ColumnIndex(name string) int {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return i
		}
	}
	return -1
}

// KeyColumns returns the key columns in schema order.
func (s Schema) KeyColumns() []ColumnSchema {
	var keys []ColumnSchema
	for _, c := range s.Columns {
		if c.Key {
			keys = append(keys, c)
		}
	}
	return keys
}

// Validate checks schema level invariants and every column.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return errors.New("schema has no columns")
	}

	var err error
	names := make(map[string]struct{}, len(s.Columns))
	keys := 0
	for i, c := range s.Columns {
		if _, ok := names[c.Name]; ok {
			err = multierr.Append(err, errors.Errorf("duplicate column %q", c.Name))
		}
		names[c.Name] = struct{}{}
		if c.Key {
			keys++
			if i > 0 && !s.Columns[i-1].Key {
				err = multierr.Append(err, errors.Errorf("key column %q after a non key column", c.Name))
			}
		}
		err = multierr.Append(err, c.Validate())
	}
	if keys == 0 {
		err = multierr.Append(err, errors.New("schema has no key columns"))
	}

	return err
}
