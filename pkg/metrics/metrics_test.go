// Copyright (C) 2017 ScyllaDB

package metrics

import (
	"testing"

	"github.com/arnaudpue/kudu/pkg/testutils"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
)

func TestSetGaugeVecMatching(t *testing.T) {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "test",
		Name:      "test",
		Help:      "test.",
	}, []string{"scenario"})

	g.WithLabelValues("s0").Set(1)
	g.WithLabelValues("s1").Set(1)
	g.WithLabelValues("s2").Set(1)
	setGaugeVecMatching(g, unspecifiedValue, LabelMatcher("scenario", "s0"))

	text := Dump(t, g)

	testutils.SaveGoldenTextFileIfNeeded(t, text)
	golden := testutils.LoadGoldenTextFile(t)
	if diff := cmp.Diff(text, golden); diff != "" {
		t.Error(diff)
	}
}
