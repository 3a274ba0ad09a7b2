// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package metrics counts oracle queries and reduction outcomes in a
// Prometheus registry that can be exported as a node_exporter textfile.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/staranto/evsetctl/internal/elist"
	"github.com/staranto/evsetctl/internal/evset"
)

// Query modes used as the mode label.
const (
	ModeRatio    = "ratio"
	ModeAverage  = "average"
	ModeConflict = "conflict"
)

type Metrics struct {
	reg *prometheus.Registry

	queries    *prometheus.CounterVec
	reductions *prometheus.CounterVec
	setSize    prometheus.Histogram
	duration   *prometheus.HistogramVec
}

// New returns metrics registered in a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "evsetctl_oracle_queries_total",
			Help: "Oracle queries by decision mode and answer",
		}, []string{"mode", "result"}),
		reductions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "evsetctl_reductions_total",
			Help: "Reductions by strategy and final status",
		}, []string{"strategy", "status"}),
		setSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "evsetctl_final_set_size",
			Help:    "Size of the active set when a reduction ends",
			Buckets: []float64{4, 8, 12, 16, 24, 32, 64, 128, 512},
		}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evsetctl_reduction_duration_seconds",
			Help:    "Wall time of a reduction",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"strategy"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// ObserveResult records the outcome of one reduction.
func (m *Metrics) ObserveResult(res evset.Result, elapsed time.Duration) {
	m.reductions.WithLabelValues(string(res.Strategy), res.Status.String()).Inc()
	m.setSize.Observe(float64(res.Active.Len()))
	m.duration.WithLabelValues(string(res.Strategy)).Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// InstrumentOracle wraps o so every answer is counted.
func (m *Metrics) InstrumentOracle(o evset.Oracle) evset.Oracle {
	return &instrumented{next: o, queries: m.queries}
}

type instrumented struct {
	next    evset.Oracle
	queries *prometheus.CounterVec
}

func (i *instrumented) count(mode string, ok bool) bool {
	i.queries.WithLabelValues(mode, strconv.FormatBool(ok)).Inc()
	return ok
}

func (i *instrumented) EvictsVictim(set elist.View, victim elist.Addr, rounds, threshold int, ratio float64, traverse int) bool {
	return i.count(ModeRatio, i.next.EvictsVictim(set, victim, rounds, threshold, ratio, traverse))
}

func (i *instrumented) EvictsVictimAvg(set elist.View, victim elist.Addr, rounds, threshold, traverse int) bool {
	return i.count(ModeAverage, i.next.EvictsVictimAvg(set, victim, rounds, threshold, traverse))
}

func (i *instrumented) SelfConflicts(set elist.View, rounds, threshold, cacheWay, traverse int) bool {
	return i.count(ModeConflict, i.next.SelfConflicts(set, rounds, threshold, cacheWay, traverse))
}
