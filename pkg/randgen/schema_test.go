// Copyright (C) 2017 ScyllaDB

package randgen

import (
	"testing"

	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/arnaudpue/kudu/pkg/testutils"
)

func TestSchemaIsValid(t *testing.T) {
	t.Parallel()

	for seed := uint64(0); seed < 200; seed++ {
		g := New(seed)
		s, p, err := g.Schema()
		if err != nil {
			t.Fatalf("seed %d: %s", seed, err)
		}
		if err := s.Validate(); err != nil {
			t.Errorf("seed %d: invalid schema: %s", seed, err)
		}
		if err := p.Validate(s); err != nil {
			t.Errorf("seed %d: invalid partitioning: %s", seed, err)
		}
	}
}

func TestSchemaKeyColumns(t *testing.T) {
	t.Parallel()

	for seed := uint64(0); seed < 50; seed++ {
		s, _, err := New(seed).Schema()
		if err != nil {
			t.Fatalf("seed %d: %s", seed, err)
		}

		sawNonKey := false
		for _, c := range s.Columns {
			if !c.Key {
				sawNonKey = true
				continue
			}
			if sawNonKey {
				t.Errorf("seed %d: key column %s after non key column", seed, c.Name)
			}
			if !c.Type.Orderable() {
				t.Errorf("seed %d: key column %s of type %s", seed, c.Name, c.Type)
			}
			if c.Nullable {
				t.Errorf("seed %d: nullable key column %s", seed, c.Name)
			}
			if c.Default != nil {
				t.Errorf("seed %d: key column %s with default", seed, c.Name)
			}
		}
	}
}

func TestSchemaEncodingInValidSet(t *testing.T) {
	t.Parallel()

	for seed := uint64(0); seed < 50; seed++ {
		s, _, err := New(seed).Schema()
		if err != nil {
			t.Fatalf("seed %d: %s", seed, err)
		}
		for _, c := range s.Columns {
			if !kudu.ValidEncoding(c.Type, c.Encoding) {
				t.Errorf("seed %d: column %s type %s encoding %s", seed, c.Name, c.Type, c.Encoding)
			}
		}
	}
}

func TestSchemaRangeSplitsDistinct(t *testing.T) {
	t.Parallel()

	sawSplits := false
	for seed := uint64(0); seed < 200; seed++ {
		_, p, err := New(seed).Schema()
		if err != nil {
			t.Fatalf("seed %d: %s", seed, err)
		}
		if len(p.Range.Splits) > 1 {
			sawSplits = true
		}
		for i := range p.Range.Splits {
			for j := i + 1; j < len(p.Range.Splits); j++ {
				if p.Range.Splits[i].Equal(p.Range.Splits[j]) {
					t.Errorf("seed %d: duplicate splits %s", seed, p.Range.Splits[i])
				}
			}
		}
	}
	if !sawSplits {
		t.Error("no seed produced range splits")
	}
}

func TestSchemaDeterministicForSeed(t *testing.T) {
	t.Parallel()

	s1, p1, err := New(42).Schema()
	if err != nil {
		t.Fatal(err)
	}
	s2, p2, err := New(42).Schema()
	if err != nil {
		t.Fatal(err)
	}

	if diff := testutils.SchemaDiff(s1, s2); diff != "" {
		t.Error(diff)
	}
	if diff := testutils.PartitionSchemaDiff(p1, p2); diff != "" {
		t.Error(diff)
	}
}

func TestSchemaDecimalAttributes(t *testing.T) {
	t.Parallel()

	sawDecimal := false
	for seed := uint64(0); seed < 200; seed++ {
		s, _, err := New(seed).Schema()
		if err != nil {
			t.Fatalf("seed %d: %s", seed, err)
		}
		for _, c := range s.Columns {
			if c.Type != kudu.TypeDecimal {
				if c.Attributes != nil {
					t.Errorf("seed %d: column %s of type %s with attributes", seed, c.Name, c.Type)
				}
				continue
			}
			sawDecimal = true
			if c.Attributes == nil {
				t.Fatalf("seed %d: decimal column %s without attributes", seed, c.Name)
			}
			if err := c.Attributes.Validate(); err != nil {
				t.Errorf("seed %d: column %s: %s", seed, c.Name, err)
			}
		}
	}
	if !sawDecimal {
		t.Error("no seed produced a decimal column")
	}
}
