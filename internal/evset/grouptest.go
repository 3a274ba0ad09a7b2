// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package evset

import (
	"github.com/apex/log"

	"github.com/staranto/evsetctl/internal/elist"
)

// GroupTest reduces active by removing whole chunks: the set is split into
// cache_way+1 chunks and the first chunk, in random order, whose removal
// keeps the eviction is dropped. When no chunk can go, the previous level's
// chunk is restored and the search resumes from there.
func (r *Reducer) GroupTest(active, discard *elist.List, victim elist.Addr) Result {
	discard, early := r.begin(StrategyGroupTest, active, discard)
	if early != nil {
		return *early
	}
	g := &groupTester{
		r:        r,
		strategy: StrategyGroupTest,
		width:    r.cfg.CacheWay + 1,
		target:   r.cfg.CacheWay,
		test: func(v elist.View) bool {
			return r.evicts(v, victim)
		},
		retest: true,
		active: active,
	}
	return g.run(discard)
}

// GroupTestAny is GroupTest without a victim: the set is reduced to
// cache_way+1 lines that conflict among themselves.
func (r *Reducer) GroupTestAny(active, discard *elist.List) Result {
	discard, early := r.begin(StrategyGroupAny, active, discard)
	if early != nil {
		return *early
	}
	g := &groupTester{
		r:        r,
		strategy: StrategyGroupAny,
		width:    r.cfg.CacheWay + 2,
		target:   r.cfg.CacheWay + 1,
		test:     r.selfConflicts,
		active:   active,
	}
	return g.run(discard)
}

type gtState int

const (
	stateReducing gtState = iota
	stateBacktrackOneLevel
	stateStuck
	stateDone
)

func (s gtState) String() string {
	switch s {
	case stateReducing:
		return "reducing"
	case stateBacktrackOneLevel:
		return "backtrack"
	case stateStuck:
		return "stuck"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// backtrackStack keeps the chunk removed at each level so a wrong removal can
// be undone.
type backtrackStack struct {
	slots   []*elist.List
	removed int
}

func (b *backtrackStack) push(c *elist.List) {
	b.slots = append(b.slots, c)
	b.removed += c.Len()
}

func (b *backtrackStack) pop() *elist.List {
	n := len(b.slots)
	if n == 0 {
		return nil
	}
	c := b.slots[n-1]
	b.slots[n-1] = nil
	b.slots = b.slots[:n-1]
	b.removed -= c.Len()
	return c
}

func (b *backtrackStack) level() int { return len(b.slots) }

// flush moves every recorded chunk into dst.
func (b *backtrackStack) flush(dst *elist.List) {
	for _, c := range b.slots {
		dst.Concat(c)
	}
	b.slots = nil
	b.removed = 0
}

// groupTester is the state machine shared by both group-testing variants.
type groupTester struct {
	r        *Reducer
	strategy Strategy
	width    int
	target   int
	test     func(elist.View) bool
	// retest re-checks the restored set after each backtrack step.
	retest bool

	active  *elist.List
	stack   backtrackStack
	retries int
	// reason is the failure status recorded when entering stateStuck.
	reason Status
}

func (g *groupTester) run(discard *elist.List) Result {
	state := stateReducing
	for state != stateStuck && state != stateDone {
		switch state {
		case stateReducing:
			state = g.reduce()
		case stateBacktrackOneLevel:
			state = g.backtrack()
		}
	}

	g.stack.flush(discard)

	confirmed := g.test(g.active.View())
	switch {
	case g.active.Len() > g.target:
		return g.r.finish(g.strategy, g.reason, g.active, discard)
	case !confirmed:
		return g.r.finish(g.strategy, StatusUnconfirmed, g.active, discard)
	}
	return g.r.finish(g.strategy, StatusSuccess, g.active, discard)
}

// reduce tries to drop one chunk at the current level.
func (g *groupTester) reduce() gtState {
	if g.active.Len() <= g.target {
		return stateDone
	}

	p := g.active.Split(g.width)
	order := g.r.permutation(g.width)

	for _, idx := range order {
		g.r.iterations++
		if !g.test(p.ViewWithout(idx)) {
			continue
		}
		chunk := p.Take(idx)
		g.active = p.Merge()
		g.stack.push(chunk)
		g.r.progress("successful reduction iteration", log.Fields{
			"level":   g.stack.level() - 1,
			"eset":    g.active.Len(),
			"removed": g.stack.removed,
			"total":   g.active.Len() + g.stack.removed,
		})
		return stateReducing
	}

	// Nothing removable: the last attempted chunk goes back at the tail.
	last := p.Take(order[len(order)-1])
	g.active = p.Merge()
	g.active.Concat(last)

	if g.stack.level() == 0 {
		g.reason = StatusStuck
		return stateStuck
	}
	return stateBacktrackOneLevel
}

// backtrack restores the chunk removed at the previous level.
func (g *groupTester) backtrack() gtState {
	g.active.Concat(g.stack.pop())
	g.r.backtracks++

	if g.retest && !g.test(g.active.View()) {
		g.r.log.WithField("level", g.stack.level()).
			Warn("the original larger set is not actually an eviction set")
		g.reason = StatusStuck
		return stateStuck
	}

	if !g.r.cfg.Backtracking() {
		g.reason = StatusStuck
		return stateStuck
	}
	if g.retries >= g.r.cfg.maxBacktracks() {
		g.reason = StatusRetryBudgetExhausted
		return stateStuck
	}
	g.retries++

	g.r.progress("reduction failed, backtracking", log.Fields{
		"level":   g.stack.level(),
		"retries": g.retries,
		"max":     g.r.cfg.maxBacktracks(),
	})
	return stateReducing
}
