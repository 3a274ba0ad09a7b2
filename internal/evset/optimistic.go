// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package evset

import (
	"github.com/apex/log"

	"github.com/staranto/evsetctl/internal/elist"
)

// Optimistic makes a single pass over active, testing each element once. An
// element whose removal keeps the eviction is discarded for good; one whose
// removal breaks it is necessary. The pass ends as soon as cache_way
// necessary elements are known, and those become the eviction set.
func (r *Reducer) Optimistic(active, discard *elist.List, victim elist.Addr) Result {
	discard, early := r.begin(StrategyOptimistic, active, discard)
	if early != nil {
		return *early
	}

	cw := r.cfg.CacheWay
	necessary := elist.New()

	// Necessity is only meaningful relative to a set that evicts.
	if !r.evicts(active.View(), victim) {
		discard.Concat(active)
		return r.finish(StrategyOptimistic, StatusInsufficientNecessary, active, discard)
	}

	for necessary.Len() < cw && active.Len() > 0 {
		r.iterations++
		candidate := active.PopFront()

		// The untested remainder plus everything already known necessary.
		if r.evicts(elist.Join(active.View(), necessary.View()), victim) {
			discard.PushFront(candidate)
		} else {
			necessary.PushBack(candidate)
		}

		if r.iterations%300 == 1 {
			r.progress("reducing", log.Fields{
				"eset":      active.Len() + necessary.Len(),
				"necessary": necessary.Len(),
				"removed":   discard.Len(),
			})
		}
	}

	r.progress("reduction stopped", log.Fields{
		"eset":      active.Len() + necessary.Len(),
		"necessary": necessary.Len(),
		"removed":   discard.Len(),
	})

	// Whatever was never tested joins the discard set.
	discard.Concat(active)

	found := necessary.Len()
	var res Result
	switch {
	case found < cw:
		discard.Concat(necessary)
		res = r.finish(StrategyOptimistic, StatusInsufficientNecessary, necessary, discard)
	case !r.evicts(necessary.View(), victim):
		res = r.finish(StrategyOptimistic, StatusUnconfirmed, necessary, discard)
	default:
		res = r.finish(StrategyOptimistic, StatusSuccess, necessary, discard)
	}
	res.Necessary = found
	return res
}
