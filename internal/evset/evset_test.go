// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package evset

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/evsetctl/internal/elist"
)

const victim elist.Addr = 0xdead000

// pool builds n synthetic elements with addresses 0..n-1 and remembers them
// so the partition invariant can be checked after the run.
func pool(n int) (*elist.List, []*elist.Elem) {
	l := elist.New()
	elems := make([]*elist.Elem, n)
	for i := range elems {
		elems[i] = &elist.Elem{Addr: elist.Addr(i)}
		l.PushBack(elems[i])
	}
	return l, elems
}

func quietLogger() log.Interface {
	return &log.Logger{Handler: discard.Default, Level: log.DebugLevel}
}

func newReducer(cfg Config, o Oracle, seed uint64) *Reducer {
	return New(cfg, o,
		WithShuffler(rand.New(rand.NewPCG(seed, seed))),
		WithLogger(quietLogger()))
}

func testConfig() Config {
	return Config{CacheWay: 4, Rounds: 1, Ratio: -1, Flags: FlagBacktracking}
}

// sizeAtLeast evicts iff the set holds at least n lines.
func sizeAtLeast(n int) OracleFunc {
	return func(v elist.View) bool { return v.Len() >= n }
}

// containsAll evicts iff every address in want is present.
func containsAll(want ...elist.Addr) OracleFunc {
	return func(v elist.View) bool {
		seen := make(map[elist.Addr]bool, v.Len())
		for i := 0; i < v.Len(); i++ {
			seen[v.At(i)] = true
		}
		for _, a := range want {
			if !seen[a] {
				return false
			}
		}
		return true
	}
}

func always(b bool) OracleFunc {
	return func(elist.View) bool { return b }
}

// counting wraps a predicate and flips the answer of call number flip
// (1-based). A zero flip never flips.
type counting struct {
	fn    OracleFunc
	calls int
	flip  int
}

func (c *counting) answer(v elist.View) bool {
	c.calls++
	ok := c.fn(v)
	if c.calls == c.flip {
		return !ok
	}
	return ok
}

func (c *counting) EvictsVictim(v elist.View, _ elist.Addr, _, _ int, _ float64, _ int) bool {
	return c.answer(v)
}

func (c *counting) EvictsVictimAvg(v elist.View, _ elist.Addr, _, _, _ int) bool {
	return c.answer(v)
}

func (c *counting) SelfConflicts(v elist.View, _, _, _, _ int) bool {
	return c.answer(v)
}

func assertPartition(t *testing.T, elems []*elist.Elem, res Result) {
	t.Helper()
	require.NotNil(t, res.Active)
	require.NotNil(t, res.Discard)
	assert.Equal(t, len(elems), res.Active.Len()+res.Discard.Len(), "pool size changed")
	for _, e := range elems {
		in := 0
		if res.Active.Contains(e) {
			in++
		}
		if res.Discard.Contains(e) {
			in++
		}
		assert.Equal(t, 1, in, "element %v held %d times", e.Addr, in)
	}
}

func sortedAddrs(l *elist.List) []elist.Addr {
	out := l.Addrs()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies {
		got, err := ParseStrategy(string(s))
		assert.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseStrategy(" GT-Any ")
	assert.NoError(t, err)
	assert.Equal(t, StrategyGroupAny, got)

	_, err = ParseStrategy("bogus")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := Config{CacheWay: 0, Rounds: 0, Ratio: 2}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache_way")
	assert.Contains(t, err.Error(), "rounds")
	assert.Contains(t, err.Error(), "ratio")
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "none", Flags(0).String())
	assert.Equal(t, "backtracking|verbose", (FlagBacktracking | FlagVerbose).String())
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, Result{Status: StatusSuccess}.Err())
	err := Result{Strategy: StrategyBinary, Status: StatusInconsistentBound}.Err()
	assert.ErrorIs(t, err, ErrInconsistentBound)
	assert.Contains(t, err.Error(), "binary")
	assert.Equal(t, "retry-budget-exhausted", StatusRetryBudgetExhausted.String())
}

func TestRunDispatch(t *testing.T) {
	for _, s := range Strategies {
		t.Run(string(s), func(t *testing.T) {
			active, elems := pool(12)
			target := 4
			if s == StrategyGroupAny {
				target = 5
			}
			r := newReducer(testConfig(), sizeAtLeast(target), 1)
			res, err := r.Run(s, active, nil, victim)
			require.NoError(t, err)
			assert.Equal(t, s, res.Strategy)
			assertPartition(t, elems, res)
		})
	}

	r := newReducer(testConfig(), always(true), 1)
	_, err := r.Run("nope", elist.New(), nil, victim)
	assert.Error(t, err)
}

func TestResourceExhaustion(t *testing.T) {
	cfg := testConfig()
	cfg.CacheWay = 0
	for _, s := range Strategies {
		active, elems := pool(8)
		res, err := newReducer(cfg, always(true), 1).Run(s, active, nil, victim)
		require.NoError(t, err)
		assert.Equal(t, StatusResourceExhaustion, res.Status, string(s))
		assert.ErrorIs(t, res.Err(), ErrResourceExhaustion)
		assert.Equal(t, 0, res.Queries)
		assertPartition(t, elems, res)
	}

	res := newReducer(testConfig(), always(true), 1).Naive(nil, nil, victim)
	assert.Equal(t, StatusResourceExhaustion, res.Status)
}

func TestConfirmationFlipReportsUnconfirmed(t *testing.T) {
	tests := []struct {
		strategy Strategy
		oracle   OracleFunc
	}{
		{strategy: StrategyNaive, oracle: sizeAtLeast(4)},
		{strategy: StrategyOptimistic, oracle: containsAll(3, 8, 12, 19)},
		{strategy: StrategyGroupTest, oracle: containsAll(3, 8, 12, 19)},
		{strategy: StrategyGroupAny, oracle: containsAll(1, 3, 8, 12, 19)},
		{strategy: StrategyBinary, oracle: containsAll(3, 8, 12, 19)},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			honest := &counting{fn: tt.oracle}
			active, _ := pool(20)
			res, err := newReducer(testConfig(), honest, 7).Run(tt.strategy, active, nil, victim)
			require.NoError(t, err)
			require.Equal(t, StatusSuccess, res.Status)
			require.Equal(t, honest.calls, res.Queries)

			// Same seed, same pool: only the final confirmation differs.
			flipped := &counting{fn: tt.oracle, flip: res.Queries}
			active, elems := pool(20)
			res, err = newReducer(testConfig(), flipped, 7).Run(tt.strategy, active, nil, victim)
			require.NoError(t, err)
			assert.Equal(t, StatusUnconfirmed, res.Status)
			assert.ErrorIs(t, res.Err(), ErrUnconfirmed)
			assertPartition(t, elems, res)
		})
	}
}
