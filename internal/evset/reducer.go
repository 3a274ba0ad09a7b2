// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package evset

import (
	"fmt"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/evsetctl/internal/elist"
)

// Strategy names a reduction algorithm.
type Strategy string

const (
	StrategyNaive      Strategy = "naive"
	StrategyOptimistic Strategy = "optimistic"
	StrategyGroupTest  Strategy = "gt"
	StrategyGroupAny   Strategy = "gt-any"
	StrategyBinary     Strategy = "binary"
)

// Strategies lists every strategy in a stable order.
var Strategies = []Strategy{
	StrategyNaive,
	StrategyOptimistic,
	StrategyGroupTest,
	StrategyGroupAny,
	StrategyBinary,
}

// ParseStrategy resolves a strategy name, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	want := Strategy(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Strategies {
		if st == want {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q, must be one of %v", s, Strategies)
}

// Targeted reports whether the strategy needs a victim address.
func (s Strategy) Targeted() bool { return s != StrategyGroupAny }

// Reducer runs reduction strategies against an Oracle. A Reducer is not safe
// for concurrent use; Oracle calls are issued strictly one at a time.
type Reducer struct {
	cfg      Config
	oracle   Oracle
	shuffler Shuffler
	log      log.Interface

	queries    int
	iterations int
	backtracks int
}

// Option customizes a Reducer.
type Option func(*Reducer)

// WithShuffler replaces the process-wide random source.
func WithShuffler(s Shuffler) Option {
	return func(r *Reducer) { r.shuffler = s }
}

// WithLogger routes diagnostics to l instead of the apex default logger.
func WithLogger(l log.Interface) Option {
	return func(r *Reducer) { r.log = l }
}

// New returns a Reducer for cfg that consults o.
func New(cfg Config, o Oracle, opts ...Option) *Reducer {
	r := &Reducer{
		cfg:      cfg,
		oracle:   o,
		shuffler: globalShuffler{},
		log:      log.Log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the configuration the reducer was built with.
func (r *Reducer) Config() Config { return r.cfg }

// Run dispatches to the named strategy. The victim is ignored by gt-any.
func (r *Reducer) Run(s Strategy, active, discard *elist.List, victim elist.Addr) (Result, error) {
	switch s {
	case StrategyNaive:
		return r.Naive(active, discard, victim), nil
	case StrategyOptimistic:
		return r.Optimistic(active, discard, victim), nil
	case StrategyGroupTest:
		return r.GroupTest(active, discard, victim), nil
	case StrategyGroupAny:
		return r.GroupTestAny(active, discard), nil
	case StrategyBinary:
		return r.Binary(active, discard, victim), nil
	}
	return Result{}, fmt.Errorf("unknown strategy %q", s)
}

// begin resets the per-run counters and checks that the run can be sized.
// It returns a non-nil Result when the run must end immediately.
func (r *Reducer) begin(s Strategy, active, discard *elist.List) (*elist.List, *Result) {
	r.queries, r.iterations, r.backtracks = 0, 0, 0
	if discard == nil {
		discard = elist.New()
	}
	if active == nil || r.cfg.CacheWay < 1 {
		r.log.WithFields(log.Fields{
			"strategy":  s,
			"cache_way": r.cfg.CacheWay,
		}).Error("cannot size working structures")
		if active == nil {
			active = elist.New()
		}
		res := r.finish(s, StatusResourceExhaustion, active, discard)
		return discard, &res
	}
	return discard, nil
}

func (r *Reducer) finish(s Strategy, st Status, active, discard *elist.List) Result {
	res := Result{
		Strategy:   s,
		Status:     st,
		Active:     active,
		Discard:    discard,
		Queries:    r.queries,
		Iterations: r.iterations,
		Backtracks: r.backtracks,
	}
	entry := r.log.WithFields(log.Fields{
		"strategy":   s,
		"status":     st,
		"eset":       active.Len(),
		"removed":    discard.Len(),
		"queries":    r.queries,
		"backtracks": r.backtracks,
	})
	if st == StatusSuccess {
		entry.Info("eviction set found")
	} else {
		entry.Warn("reduction failed")
	}
	return res
}

// progress reports advisory diagnostics. Verbose runs log at Info.
func (r *Reducer) progress(msg string, fields log.Fields) {
	entry := r.log.WithFields(fields)
	if r.cfg.Verbose() {
		entry.Info(msg)
		return
	}
	entry.Debug(msg)
}
