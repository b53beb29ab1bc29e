// Copyright (C) 2017 ScyllaDB

package kudu

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// MaxHashLevels caps the number of hash partition levels on a table.
const MaxHashLevels = 3

// HashPartition buckets rows by hashing the listed key columns modulo
// Buckets, Seed varies the hash family.
type HashPartition struct {
	Columns []string `json:"columns"`
	Buckets int      `json:"buckets"`
	Seed    uint32   `json:"seed"`
}

// RangePartition splits the key space into contiguous intervals at the
// given split values. Empty Columns means the table is not range
// partitioned.
type RangePartition struct {
	Columns []string `json:"columns,omitempty"`
	Splits  []Value  `json:"splits,omitempty"`
}

// IsSet reports whether range partitioning is configured.
func (r RangePartition) IsSet() bool {
	return len(r.Columns) > 0
}

// PartitionSchema describes how a table's rows map to tablets.
type PartitionSchema struct {
	Hash  []HashPartition `json:"hash,omitempty"`
	Range RangePartition  `json:"range,omitempty"`
}

// Validate checks the partitioning against schema s, every referenced
// column must be a key column.
func (p PartitionSchema) Validate(s Schema) error {
	var err error

	if len(p.Hash) > MaxHashLevels {
		err = multierr.Append(err, errors.Errorf("%d hash levels exceed the maximum of %d", len(p.Hash), MaxHashLevels))
	}
	for i, h := range p.Hash {
		if len(h.Columns) == 0 {
			err = multierr.Append(err, errors.Errorf("hash level %d has no columns", i))
		}
		if h.Buckets < 2 {
			err = multierr.Append(err, errors.Errorf("hash level %d has %d buckets, need at least 2", i, h.Buckets))
		}
		for _, name := range h.Columns {
			err = multierr.Append(err, checkKeyColumn(s, name))
		}
	}

	if p.Range.IsSet() {
		for _, name := range p.Range.Columns {
			err = multierr.Append(err, checkKeyColumn(s, name))
			if i := s.ColumnIndex(name); i >= 0 && s.Column(i).Type != TypeInt64 {
				err = multierr.Append(err, errors.Errorf("range column %q is %s, need int64", name, s.Column(i).Type))
			}
		}
		for i := 0; i < len(p.Range.Splits); i++ {
			for j := i + 1; j < len(p.Range.Splits); j++ {
				if p.Range.Splits[i].Equal(p.Range.Splits[j]) {
					err = multierr.Append(err, errors.Errorf("duplicate split value %s", p.Range.Splits[i]))
				}
			}
		}
	} else if len(p.Range.Splits) > 0 {
		err = multierr.Append(err, errors.New("split values without range columns"))
	}

	return err
}

func checkKeyColumn(s Schema, name string) error {
	i := s.ColumnIndex(name)
	if i < 0 {
		return errors.Errorf("partition column %q not in schema", name)
	}
	if !s.Column(i).Key {
		return errors.Errorf("partition column %q is not a key column", name)
	}
	return nil
}
