// Copyright (C) 2017 ScyllaDB

package roundtrip

import (
	"fmt"
	"math/big"

	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/arnaudpue/kudu/pkg/randgen"
	"github.com/arnaudpue/kudu/pkg/util/timeutc"
	"github.com/pkg/errors"
)

// DefaultRowCount is the number of rows a scenario loads when it does not
// name its own.
const DefaultRowCount = 100

// Workload is one materialized table to round trip: schema, partitioning and
// the rows to load before backup.
type Workload struct {
	// NamePrefix starts the table name, the service appends a unique id so
	// runs never collide.
	NamePrefix string
	// Seed reproduces generated workloads, zero for fixture workloads.
	Seed      uint64
	Schema    kudu.Schema
	Partition kudu.PartitionSchema
	Rows      []kudu.Row
}

// Scenario produces the workload of a round trip run.
type Scenario interface {
	// Name labels runs in reports, logs and metrics.
	Name() string
	// Workload materializes the table to verify. A workload is consumed by
	// a single run, implementations may randomize between calls.
	Workload() (Workload, error)
}

// RandomScenario round trips a randomly generated table. A zero Seed draws a
// fresh seed per workload, the drawn seed is recorded in the report so any
// failed run can be replayed.
type RandomScenario struct {
	Seed     uint64 `yaml:"seed"`
	RowCount int    `yaml:"row_count"`
}

func (s RandomScenario) Name() string { return "random" }

func (s RandomScenario) Workload() (Workload, error) {
	seed := s.Seed
	if seed == 0 {
		seed = uint64(timeutc.Now().UnixNano())
	}
	g := randgen.New(seed)

	schema, partition, err := g.Schema()
	if err != nil {
		return Workload{}, errors.Wrap(err, "generate schema")
	}
	n := s.RowCount
	if n <= 0 {
		n = DefaultRowCount
	}
	rows, err := g.Rows(schema, n)
	if err != nil {
		return Workload{}, errors.Wrap(err, "generate rows")
	}

	return Workload{
		NamePrefix: s.Name(),
		Seed:       seed,
		Schema:     schema,
		Partition:  partition,
		Rows:       rows,
	}, nil
}

// SimpleScenario round trips a fixed two column table, an Int64 key hashed
// into 4 buckets and a nullable String value column with no default. Every
// tenth row leaves the value null.
type SimpleScenario struct{}

func (s SimpleScenario) Name() string { return "simple" }

func (s SimpleScenario) Workload() (Workload, error) {
	schema := kudu.Schema{Columns: []kudu.ColumnSchema{
		{Name: "key", Type: kudu.TypeInt64, Key: true, Encoding: kudu.BitShuffleEncoding},
		{Name: "val", Type: kudu.TypeString, Nullable: true, Encoding: kudu.DictEncoding},
	}}
	partition := kudu.PartitionSchema{
		Hash: []kudu.HashPartition{{Columns: []string{"key"}, Buckets: 4, Seed: 7}},
	}

	rows := make([]kudu.Row, 0, DefaultRowCount)
	for i := 0; i < DefaultRowCount; i++ {
		r := kudu.NewRow(schema.Len())
		r.Set(0, kudu.NewInt64(int64(i)))
		if i%10 == 0 {
			r.SetNull(1)
		} else {
			r.Set(1, kudu.NewString(fmt.Sprintf("val-%d", i)))
		}
		rows = append(rows, r)
	}

	return Workload{
		NamePrefix: s.Name(),
		Schema:     schema,
		Partition:  partition,
		Rows:       rows,
	}, nil
}

// DecimalScenario round trips decimal type attributes and a decimal column
// default, 12345.67 as DECIMAL(9, 2). Odd rows leave the price unset so the
// default makes it into stored data as well as into the schema.
type DecimalScenario struct{}

func (s DecimalScenario) Name() string { return "decimal" }

func (s DecimalScenario) Workload() (Workload, error) {
	attrs := kudu.TypeAttributes{Precision: 9, Scale: 2}
	def := kudu.NewDecimal(big.NewInt(1234567), attrs)

	schema := kudu.Schema{Columns: []kudu.ColumnSchema{
		{Name: "id", Type: kudu.TypeInt64, Key: true, Encoding: kudu.BitShuffleEncoding},
		{Name: "price", Type: kudu.TypeDecimal, Attributes: &attrs, Default: &def, Encoding: kudu.PlainEncoding},
	}}
	partition := kudu.PartitionSchema{
		Hash: []kudu.HashPartition{{Columns: []string{"id"}, Buckets: 2, Seed: 0}},
	}

	rows := make([]kudu.Row, 0, 50)
	for i := 0; i < 50; i++ {
		r := kudu.NewRow(schema.Len())
		r.Set(0, kudu.NewInt64(int64(i)))
		if i%2 == 0 {
			r.Set(1, kudu.NewDecimal(big.NewInt(int64(100*i)), attrs))
		}
		rows = append(rows, r)
	}

	return Workload{
		NamePrefix: s.Name(),
		Schema:     schema,
		Partition:  partition,
		Rows:       rows,
	}, nil
}

// SpecialCharsScenario reuses the simple workload under a table name with
// spaces and non ascii characters, covering name handling across the whole
// pipeline.
type SpecialCharsScenario struct{}

func (s SpecialCharsScenario) Name() string { return "specialchars" }

func (s SpecialCharsScenario) Workload() (Workload, error) {
	w, err := SimpleScenario{}.Workload()
	if err != nil {
		return Workload{}, err
	}
	w.NamePrefix = "tấble with spaces ☃"
	return w, nil
}
