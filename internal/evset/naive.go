// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package evset

import (
	"github.com/apex/log"

	"github.com/staranto/evsetctl/internal/elist"
)

// Naive shrinks active one element at a time: the head is discarded whenever
// the set still evicts, and the last discard is put back at the tail when it
// no longer does. Two failures in a row count as a stuck point; without
// backtracking the run stops there.
func (r *Reducer) Naive(active, discard *elist.List, victim elist.Addr) Result {
	discard, early := r.begin(StrategyNaive, active, discard)
	if early != nil {
		return *early
	}

	cw := r.cfg.CacheWay
	stop := StatusStuck
	failed := false
	retries := 0

	for active.Len() > cw {
		r.iterations++
		if r.evicts(active.View(), victim) {
			discard.PushFront(active.PopFront())
			failed = false
		} else if discard.Len() == 0 {
			break
		} else {
			// The last discarded element belongs to the eviction set.
			active.PushBack(discard.PopFront())
			r.backtracks++
			retries++
			if retries > r.cfg.maxBacktracks() {
				stop = StatusRetryBudgetExhausted
				break
			}
			if failed {
				if !r.cfg.Backtracking() {
					break
				}
				r.progress("backtrack one step", log.Fields{"retries": retries})
			}
			failed = true
		}

		if r.iterations%300 == 1 {
			r.progress("reducing", log.Fields{
				"eset":    active.Len(),
				"removed": discard.Len(),
				"total":   active.Len() + discard.Len(),
			})
		}
	}

	r.progress("reduction stopped", log.Fields{
		"eset":    active.Len(),
		"removed": discard.Len(),
		"total":   active.Len() + discard.Len(),
	})

	confirmed := r.evicts(active.View(), victim)
	switch {
	case active.Len() > cw:
		return r.finish(StrategyNaive, stop, active, discard)
	case !confirmed:
		return r.finish(StrategyNaive, StatusUnconfirmed, active, discard)
	}
	return r.finish(StrategyNaive, StatusSuccess, active, discard)
}
