// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package evset

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Shuffler permutes n items in place through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

var (
	rngMu sync.Mutex
	rng   = newRand(uint64(time.Now().UnixNano()))
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Seed reseeds the process-wide source used by reducers that were not given
// their own Shuffler.
func Seed(seed uint64) {
	rngMu.Lock()
	defer rngMu.Unlock()
	rng = newRand(seed)
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rngMu.Lock()
	defer rngMu.Unlock()
	rng.Shuffle(n, swap)
}

// permutation returns a uniformly shuffled sequence of 0..n-1.
func (r *Reducer) permutation(n int) []int {
	idxs := make([]int, n)
	for i := range idxs {
		idxs[i] = i
	}
	r.shuffler.Shuffle(n, func(i, j int) {
		idxs[i], idxs[j] = idxs[j], idxs[i]
	})
	return idxs
}
