// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/evsetctl/internal/elist"
	"github.com/staranto/evsetctl/internal/evset"
)

func TestInstrumentOracle(t *testing.T) {
	m := New()
	o := m.InstrumentOracle(evset.OracleFunc(func(v elist.View) bool { return v.Len() >= 2 }))

	small := elist.FromAddrs(1).View()
	big := elist.FromAddrs(1, 2).View()

	assert.False(t, o.EvictsVictim(small, 0, 1, 100, 0.5, 0))
	assert.True(t, o.EvictsVictim(big, 0, 1, 100, 0.5, 0))
	assert.True(t, o.EvictsVictimAvg(big, 0, 1, 100, 0))
	assert.True(t, o.SelfConflicts(big, 1, 100, 1, 0))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues(ModeRatio, "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues(ModeRatio, "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues(ModeAverage, "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues(ModeConflict, "true")))
}

func TestObserveResultAndTextfile(t *testing.T) {
	m := New()
	m.ObserveResult(evset.Result{
		Strategy: evset.StrategyGroupTest,
		Status:   evset.StatusSuccess,
		Active:   elist.FromAddrs(1, 2, 3, 4),
		Discard:  elist.New(),
	}, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reductions.WithLabelValues("gt", "success")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.setSize))

	path := filepath.Join(t.TempDir(), "evsetctl.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `evsetctl_reductions_total{status="success",strategy="gt"} 1`)
	assert.Contains(t, string(data), "evsetctl_final_set_size_sum 4")

	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
