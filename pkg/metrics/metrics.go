// Copyright (C) 2017 ScyllaDB

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// unspecifiedValue marks metric instances that no longer describe a live run.
const unspecifiedValue = float64(-1)

func gaugeVecCreator(subsystem string) func(help, name string, labels ...string) *prometheus.GaugeVec {
	return func(help, name string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "kudu_verify",
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}
}

// LabelMatcher returns a matcher checking only single label.
func LabelMatcher(name, value string) func(m *dto.Metric) bool {
	return func(m *dto.Metric) bool {
		for _, l := range m.GetLabel() {
			if l.GetName() == name && l.GetValue() == value {
				return true
			}
		}
		return false
	}
}

// setGaugeVecMatching sets metric instances with matching labels to the
// given value.
func setGaugeVecMatching(c *prometheus.GaugeVec, value float64, matcher func(*dto.Metric) bool) {
	var (
		data   dto.Metric
		labels []prometheus.Labels
	)

	for m := range collect(c) {
		if err := m.Write(&data); err != nil {
			continue
		}
		if matcher(&data) {
			labels = append(labels, makeLabels(data.Label))
		}
	}

	for _, l := range labels {
		m, err := c.GetMetricWith(l)
		if err != nil {
			panic(err)
		}
		m.Set(value)
	}
}

func collect(c prometheus.Collector) chan prometheus.Metric {
	ch := make(chan prometheus.Metric)
	go func() {
		c.Collect(ch)
		close(ch)
	}()
	return ch
}

func makeLabels(pairs []*dto.LabelPair) prometheus.Labels {
	labels := make(prometheus.Labels)

	for _, kv := range pairs {
		if kv != nil {
			labels[kv.GetName()] = kv.GetValue()
		}
	}

	return labels
}
