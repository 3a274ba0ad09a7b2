// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package evset

import (
	"github.com/staranto/evsetctl/internal/elist"
)

// Oracle decides, from timing measurements, whether accessing a set evicts a
// victim or conflicts with itself. Answers are probabilistic: the same input
// may yield different results, so callers never reuse an answer after the set
// changes. Implementations must not retain or mutate the view.
type Oracle interface {
	// EvictsVictim runs rounds trials and reports whether at least ratio of
	// them observed an eviction.
	EvictsVictim(set elist.View, victim elist.Addr, rounds, threshold int, ratio float64, traverse int) bool
	// EvictsVictimAvg runs rounds trials and reports whether the averaged
	// timing crosses threshold.
	EvictsVictimAvg(set elist.View, victim elist.Addr, rounds, threshold, traverse int) bool
	// SelfConflicts reports whether the set evicts one of its own lines.
	SelfConflicts(set elist.View, rounds, threshold, cacheWay, traverse int) bool
}

// OracleFunc adapts a single predicate to all three Oracle decisions. It is
// mostly useful for tests and simulations where timing is not modeled.
type OracleFunc func(set elist.View) bool

func (f OracleFunc) EvictsVictim(set elist.View, _ elist.Addr, _, _ int, _ float64, _ int) bool {
	return f(set)
}

func (f OracleFunc) EvictsVictimAvg(set elist.View, _ elist.Addr, _, _, _ int) bool {
	return f(set)
}

func (f OracleFunc) SelfConflicts(set elist.View, _, _, _, _ int) bool {
	return f(set)
}

// evicts asks the Oracle using the decision mode selected by the ratio.
func (r *Reducer) evicts(set elist.View, victim elist.Addr) bool {
	r.queries++
	c := r.cfg
	if c.Ratio > 0.0 {
		return r.oracle.EvictsVictim(set, victim, c.Rounds, c.Threshold, c.Ratio, c.Traverse)
	}
	return r.oracle.EvictsVictimAvg(set, victim, c.Rounds, c.Threshold, c.Traverse)
}

func (r *Reducer) selfConflicts(set elist.View) bool {
	r.queries++
	c := r.cfg
	return r.oracle.SelfConflicts(set, c.Rounds, c.Threshold, c.CacheWay, c.Traverse)
}
