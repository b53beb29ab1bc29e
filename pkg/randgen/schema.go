// Copyright (C) 2017 ScyllaDB

package randgen

import (
	"fmt"

	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/pkg/errors"
)

// Schema returns a random valid table schema together with a partitioning
// that references only its key columns. Key columns lead the column list.
func (g *Generator) Schema() (kudu.Schema, kudu.PartitionSchema, error) {
	nrCols := 1 + g.rng.Intn(maxColumns)
	nrKeys := 1 + g.rng.Intn(nrCols)

	s := kudu.Schema{
		Columns: make([]kudu.ColumnSchema, 0, nrCols),
	}
	for i := 0; i < nrCols; i++ {
		c, err := g.column(fmt.Sprintf("c%d", i), i < nrKeys)
		if err != nil {
			return kudu.Schema{}, kudu.PartitionSchema{}, err
		}
		s.Columns = append(s.Columns, c)
	}

	return s, g.partitioning(s, nrKeys), nil
}

func (g *Generator) column(name string, key bool) (kudu.ColumnSchema, error) {
	c := kudu.ColumnSchema{
		Name: name,
		Key:  key,
	}

	// Key columns order rows, their types must be orderable.
	if key {
		c.Type = kudu.OrderableTypes[g.rng.Intn(len(kudu.OrderableTypes))]
	} else {
		c.Type = kudu.Types[g.rng.Intn(len(kudu.Types))]
		c.Nullable = g.rng.Intn(2) == 0
	}

	if c.Type == kudu.TypeDecimal {
		precision := 1 + g.rng.Intn(kudu.MaxPrecision)
		c.Attributes = &kudu.TypeAttributes{
			Precision: precision,
			Scale:     g.rng.Intn(precision),
		}
	}

	c.Compression = kudu.Compressions[g.rng.Intn(len(kudu.Compressions))]
	c.BlockSize = kudu.DesiredBlockSizes[g.rng.Intn(len(kudu.DesiredBlockSizes))]

	enc, err := kudu.ValidEncodings(c.Type)
	if err != nil {
		return kudu.ColumnSchema{}, errors.Wrapf(err, "column %s", name)
	}
	c.Encoding = enc[g.rng.Intn(len(enc))]

	if !key && g.rng.Intn(2) == 0 {
		v, err := g.Value(c.Type, c.Attributes)
		if err != nil {
			return kudu.ColumnSchema{}, errors.Wrapf(err, "column %s default", name)
		}
		c.Default = &v
	}

	return c, nil
}

func (g *Generator) partitioning(s kudu.Schema, nrKeys int) kudu.PartitionSchema {
	var p kudu.PartitionSchema

	levels := g.rng.Intn(min(nrKeys, kudu.MaxHashLevels))
	for l := 0; l < levels; l++ {
		p.Hash = append(p.Hash, kudu.HashPartition{
			Columns: []string{s.Columns[l].Name},
			Buckets: minHashBuckets + g.rng.Intn(maxHashBuckets-minHashBuckets+1),
			Seed:    g.rng.Uint32(),
		})
	}

	var candidates []string
	for i := 0; i < nrKeys; i++ {
		if s.Columns[i].Type == kudu.TypeInt64 {
			candidates = append(candidates, s.Columns[i].Name)
		}
	}
	if len(candidates) > 0 && g.rng.Intn(2) == 0 {
		p.Range = kudu.RangePartition{
			Columns: []string{candidates[g.rng.Intn(len(candidates))]},
			Splits:  g.splits(g.rng.Intn(maxRangeSplits + 1)),
		}
	}

	return p
}

// splits returns n distinct int64 split points, duplicate draws are
// rejected and redrawn.
func (g *Generator) splits(n int) []kudu.Value {
	if n == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, n)
	out := make([]kudu.Value, 0, n)
	for len(out) < n {
		v := int64(g.rng.Uint64())
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, kudu.NewInt64(v))
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
