// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package evset

import (
	"math"

	"github.com/apex/log"

	"github.com/staranto/evsetctl/internal/elist"
)

// Binary confirms one necessary element per round by searching for the
// shortest evicting prefix of active. The last element of that prefix is
// necessary and is moved to the front, so after cache_way rounds the front
// of the list is the eviction set.
func (r *Reducer) Binary(active, discard *elist.List, victim elist.Addr) Result {
	discard, early := r.begin(StrategyBinary, active, discard)
	if early != nil {
		return *early
	}

	cw := r.cfg.CacheWay
	olen := active.Len()

	inconsistent := func(pivot int) Result {
		r.log.WithFields(log.Fields{
			"pivot":     pivot,
			"cache_way": cw,
			"size":      olen,
		}).Error("search bound leaves fewer than cache_way elements")
		discard.Concat(active)
		return r.finish(StrategyBinary, StatusInconsistentBound, active, discard)
	}

	if olen < cw {
		return inconsistent(0)
	}

	if olen > cw {
		span := float64(olen - cw + 1)
		for count := 0; count < cw; count++ {
			x, step := 1.0, 1.0
			laste, lastn, pivot := float64(olen), 0.0, 0.0

			for math.Abs(lastn-laste) > 1 && x < float64(olen) {
				r.iterations++
				step *= 2
				pivot = math.Ceil(x * span / step)

				// Probe the prefix of cw-1+pivot elements; the suffix is put back.
				probe := active.Slice(cw-1+int(pivot), olen-1)
				ok := r.evicts(active.View(), victim)
				r.progress("probe", log.Fields{
					"elem":  count,
					"eset":  active.Len(),
					"res":   probe.Len(),
					"total": active.Len() + probe.Len(),
					"hit":   ok,
				})
				active.Concat(probe)

				if ok {
					laste = pivot
					x = 2*x - 1
				} else {
					lastn = pivot
					x = 2*x + 1
				}
			}

			if int(pivot)+cw > olen {
				return inconsistent(int(pivot))
			}
			idx := cw - 2 + int(laste)
			if idx < 0 || idx >= active.Len() {
				return inconsistent(int(pivot))
			}
			active.PushFront(active.Take(idx))
		}
		discard.Concat(active.Slice(cw, active.Len()-1))
	}

	if !r.evicts(active.View(), victim) {
		return r.finish(StrategyBinary, StatusUnconfirmed, active, discard)
	}
	return r.finish(StrategyBinary, StatusSuccess, active, discard)
}
