// Copyright (C) 2017 ScyllaDB

package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Dump renders collectors in the text exposition format.
func Dump(t *testing.T, c ...prometheus.Collector) string {
	t.Helper()

	reg := prometheus.NewPedanticRegistry()
	for i := range c {
		if err := reg.Register(c[i]); err != nil {
			t.Fatalf("registering collector failed: %s", err)
		}
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gathering metrics failed: %s", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			t.Fatalf("encoding gathered metrics failed: %s", err)
		}
	}

	return buf.String()
}
