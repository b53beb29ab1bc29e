// Copyright (C) 2017 ScyllaDB

package kuduclienttest

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
