// Copyright (C) 2017 ScyllaDB

// Package randgen produces random but internally consistent table schemas,
// partitioning and schema consistent row batches.
//
// All randomness is drawn from an explicit source seeded once per run so
// that any produced schema or row batch can be reproduced from its seed.
package randgen

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// Generation bounds.
const (
	maxColumns     = 50
	maxValueLen    = 100
	maxRangeSplits = 7
	minHashBuckets = 2
	maxHashBuckets = 9
)

// ErrInvalidType signals that generation reached a logical type outside the
// supported universe. It indicates a generator bug, callers must fail and
// never skip it.
var ErrInvalidType = errors.New("invalid type")

// Generator produces random schemas, partitioning and rows.
// It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator seeded with seed.
func New(seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
	}
}
