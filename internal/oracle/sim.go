// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package oracle

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/staranto/evsetctl/internal/elist"
)

// Model defaults roughly follow a desktop last-level cache slice.
const (
	DefaultLineSize    = 64
	DefaultSets        = 64
	DefaultWays        = 8
	DefaultHitLatency  = 40
	DefaultMissLatency = 250
	DefaultJitter      = 40
)

// Traverse modes understood by the model.
const (
	TraverseSingle = iota
	TraverseDouble
	TraverseZigZag
)

// Model describes the simulated cache.
type Model struct {
	LineSize    int
	Sets        int
	Ways        int
	HitLatency  int
	MissLatency int
	Jitter      int
	// Noise is the probability that a single trial reports the wrong
	// outcome.
	Noise float64
}

// DefaultModel returns a noise-free model with the package defaults.
func DefaultModel() Model {
	return Model{
		LineSize:    DefaultLineSize,
		Sets:        DefaultSets,
		Ways:        DefaultWays,
		HitLatency:  DefaultHitLatency,
		MissLatency: DefaultMissLatency,
		Jitter:      DefaultJitter,
	}
}

// Validate reports every invalid field at once.
func (m Model) Validate() error {
	var errs []error
	if m.LineSize < 1 {
		errs = append(errs, fmt.Errorf("line size must be positive, got %d", m.LineSize))
	}
	if m.Sets < 1 {
		errs = append(errs, fmt.Errorf("sets must be positive, got %d", m.Sets))
	}
	if m.Ways < 1 {
		errs = append(errs, fmt.Errorf("ways must be positive, got %d", m.Ways))
	}
	if m.MissLatency <= m.HitLatency {
		errs = append(errs, fmt.Errorf("miss latency %d must exceed hit latency %d", m.MissLatency, m.HitLatency))
	}
	if m.Jitter < 0 {
		errs = append(errs, fmt.Errorf("jitter must not be negative, got %d", m.Jitter))
	}
	if m.Noise < 0 || m.Noise >= 0.5 {
		errs = append(errs, fmt.Errorf("noise must be in [0, 0.5), got %g", m.Noise))
	}
	return errors.Join(errs...)
}

// Sim is a simulated cache. It is safe for concurrent use.
type Sim struct {
	model Model

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSim returns a simulator for m whose trial randomness is derived from
// seed.
func NewSim(m Model, seed uint64) (*Sim, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Sim{
		model: m,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Model returns the simulated cache geometry.
func (s *Sim) Model() Model {
	return s.model
}

// SetIndex is the cache set addr maps to.
func (s *Sim) SetIndex(addr elist.Addr) int {
	return int((uint64(addr) / uint64(s.model.LineSize)) % uint64(s.model.Sets))
}

// Congruent counts the lines of set that share the victim's cache set.
// Duplicated lines count once.
func (s *Sim) Congruent(set elist.View, victim elist.Addr) int {
	target := s.SetIndex(victim)
	line := uint64(victim) / uint64(s.model.LineSize)
	seen := make(map[uint64]bool, set.Len())
	for i := 0; i < set.Len(); i++ {
		a := set.At(i)
		l := uint64(a) / uint64(s.model.LineSize)
		if l == line || seen[l] || s.SetIndex(a) != target {
			continue
		}
		seen[l] = true
	}
	return len(seen)
}

// Evicts is the noise-free ground truth for a victim query.
func (s *Sim) Evicts(set elist.View, victim elist.Addr) bool {
	return s.Congruent(set, victim) >= s.model.Ways
}

// Conflicts is the noise-free ground truth for a self-conflict query: some
// cache set receives more than ways distinct lines.
func (s *Sim) Conflicts(set elist.View, ways int) bool {
	bins := make(map[int]map[uint64]bool)
	for i := 0; i < set.Len(); i++ {
		a := set.At(i)
		idx := s.SetIndex(a)
		if bins[idx] == nil {
			bins[idx] = make(map[uint64]bool)
		}
		bins[idx][uint64(a)/uint64(s.model.LineSize)] = true
		if len(bins[idx]) > ways {
			return true
		}
	}
	return false
}

// trial returns one simulated reload latency.
func (s *Sim) trial(evicted bool, traverse int) int {
	flip := s.rng.Float64() < s.model.Noise
	if traverse != TraverseSingle {
		// A second pass only leaves a wrong outcome if it misbehaves too.
		flip = flip && s.rng.Float64() < s.model.Noise
	}
	if flip {
		evicted = !evicted
	}
	lat := s.model.HitLatency
	if evicted {
		lat = s.model.MissLatency
	}
	if s.model.Jitter > 0 {
		lat += s.rng.IntN(s.model.Jitter)
	}
	return lat
}

// latencies runs rounds trials against the given truth.
func (s *Sim) latencies(truth bool, rounds, traverse int) []int {
	if rounds < 1 {
		rounds = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, rounds)
	for i := range out {
		out[i] = s.trial(truth, traverse)
	}
	return out
}

// EvictsVictim decides by voting: the set evicts when the share of trials
// slower than threshold reaches ratio.
func (s *Sim) EvictsVictim(set elist.View, victim elist.Addr, rounds, threshold int, ratio float64, traverse int) bool {
	lat := s.latencies(s.Evicts(set, victim), rounds, traverse)
	return slowShare(lat, threshold) >= ratio
}

// EvictsVictimAvg decides by comparing the mean latency against threshold.
func (s *Sim) EvictsVictimAvg(set elist.View, victim elist.Addr, rounds, threshold, traverse int) bool {
	lat := s.latencies(s.Evicts(set, victim), rounds, traverse)
	return mean(lat) > float64(threshold)
}

// SelfConflicts decides by comparing the mean latency of a re-walk of the
// set against threshold. Conflicts are judged against the model's
// associativity, the same geometry Evicts uses; cacheWay is only the
// caller's guess and does not change the simulated hardware.
func (s *Sim) SelfConflicts(set elist.View, rounds, threshold, _, traverse int) bool {
	lat := s.latencies(s.Conflicts(set, s.model.Ways), rounds, traverse)
	return mean(lat) > float64(threshold)
}

func slowShare(lat []int, threshold int) float64 {
	slow := 0
	for _, l := range lat {
		if l > threshold {
			slow++
		}
	}
	return float64(slow) / float64(len(lat))
}

func mean(lat []int) float64 {
	sum := 0
	for _, l := range lat {
		sum += l
	}
	return float64(sum) / float64(len(lat))
}
