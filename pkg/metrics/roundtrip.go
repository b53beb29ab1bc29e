// Copyright (C) 2017 ScyllaDB

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RoundTripMetrics describe backup and restore fidelity runs. Labels carry
// the scenario name only, never generated table names, so cardinality stays
// bounded over long soak sessions.
type RoundTripMetrics struct {
	runIndicator *prometheus.GaugeVec
	runsTotal    *prometheus.GaugeVec
	tablesTotal  *prometheus.GaugeVec
	rowsTotal    *prometheus.GaugeVec
	checksFailed *prometheus.GaugeVec
	stepDuration *prometheus.GaugeVec
}

func NewRoundTripMetrics() RoundTripMetrics {
	g := gaugeVecCreator("roundtrip")

	return RoundTripMetrics{
		runIndicator: g("If a round trip run is in progress the value is 1 otherwise it's 0.",
			"run_indicator", "scenario"),
		runsTotal: g("Total number of round trip runs parametrized by status.",
			"runs_total", "scenario", "status"),
		tablesTotal: g("Number of tables handled by the last run.",
			"tables_total", "scenario"),
		rowsTotal: g("Number of rows loaded by the last run.",
			"rows_total", "scenario"),
		checksFailed: g("Number of failed fidelity checks in the last run.",
			"checks_failed", "scenario", "check"),
		stepDuration: g("Duration of a round trip step in seconds.",
			"step_duration_seconds", "scenario", "step"),
	}
}

func (m RoundTripMetrics) all() []prometheus.Collector {
	return []prometheus.Collector{
		m.runIndicator,
		m.runsTotal,
		m.tablesTotal,
		m.rowsTotal,
		m.checksFailed,
		m.stepDuration,
	}
}

// MustRegister shall be called to make the metrics visible by prometheus client.
func (m RoundTripMetrics) MustRegister() RoundTripMetrics {
	prometheus.MustRegister(m.all()...)
	return m
}

// ResetScenarioMetrics resets all metrics labeled with the scenario.
func (m RoundTripMetrics) ResetScenarioMetrics(scenario string) {
	for _, c := range m.all() {
		setGaugeVecMatching(c.(*prometheus.GaugeVec), unspecifiedValue, LabelMatcher("scenario", scenario))
	}
}

// BeginRun updates "run_indicator".
func (m RoundTripMetrics) BeginRun(scenario string) {
	m.runIndicator.WithLabelValues(scenario).Inc()
}

// EndRun updates "run_indicator" and "runs_total".
func (m RoundTripMetrics) EndRun(scenario, status string) {
	m.runIndicator.WithLabelValues(scenario).Dec()
	m.runsTotal.WithLabelValues(scenario, status).Inc()
}

// SetTables updates "tables_total".
func (m RoundTripMetrics) SetTables(scenario string, tables int) {
	m.tablesTotal.WithLabelValues(scenario).Set(float64(tables))
}

// SetRows updates "rows_total".
func (m RoundTripMetrics) SetRows(scenario string, rows int64) {
	m.rowsTotal.WithLabelValues(scenario).Set(float64(rows))
}

// SetChecksFailed updates "checks_failed" for a single fidelity check.
func (m RoundTripMetrics) SetChecksFailed(scenario, check string, failed int) {
	m.checksFailed.WithLabelValues(scenario, check).Set(float64(failed))
}

// SetStepDuration updates "step_duration_seconds" for a single run step.
func (m RoundTripMetrics) SetStepDuration(scenario, step string, d time.Duration) {
	m.stepDuration.WithLabelValues(scenario, step).Set(d.Seconds())
}
