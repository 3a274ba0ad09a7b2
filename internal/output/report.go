// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/staranto/evsetctl/internal/evset"
)

// Report is the serialized outcome of one reduction.
type Report struct {
	Strategy    string   `json:"strategy" yaml:"strategy"`
	Status      string   `json:"status" yaml:"status"`
	Source      string   `json:"source,omitempty" yaml:"source,omitempty"`
	Victim      string   `json:"victim,omitempty" yaml:"victim,omitempty"`
	CacheWay    int      `json:"cache_way" yaml:"cache_way"`
	Flags       string   `json:"flags" yaml:"flags"`
	PoolSize    int      `json:"pool_size" yaml:"pool_size"`
	EvictionSet []string `json:"eviction_set" yaml:"eviction_set"`
	Discarded   int      `json:"discarded" yaml:"discarded"`
	Necessary   int      `json:"necessary,omitempty" yaml:"necessary,omitempty"`
	Queries     int      `json:"queries" yaml:"queries"`
	Iterations  int      `json:"iterations" yaml:"iterations"`
	Backtracks  int      `json:"backtracks" yaml:"backtracks"`
	Seed        uint64   `json:"seed" yaml:"seed"`
	Elapsed     string   `json:"elapsed" yaml:"elapsed"`
}

// NewReport summarizes res. Source and victim describe the pool the run
// started from.
func NewReport(res evset.Result, cfg evset.Config, source string, victim fmt.Stringer, seed uint64, elapsed time.Duration) Report {
	r := Report{
		Strategy:   string(res.Strategy),
		Status:     res.Status.String(),
		Source:     source,
		CacheWay:   cfg.CacheWay,
		Flags:      cfg.Flags.String(),
		Discarded:  res.Discard.Len(),
		Necessary:  res.Necessary,
		Queries:    res.Queries,
		Iterations: res.Iterations,
		Backtracks: res.Backtracks,
		Seed:       seed,
		Elapsed:    elapsed.Round(time.Microsecond).String(),
	}
	if res.Strategy.Targeted() && victim != nil {
		r.Victim = victim.String()
	}
	r.EvictionSet = make([]string, 0, res.Active.Len())
	for _, a := range res.Active.Addrs() {
		r.EvictionSet = append(r.EvictionSet, a.String())
	}
	r.PoolSize = res.Active.Len() + r.Discarded
	return r
}

// OK reports whether the reduction succeeded.
func (r Report) OK() bool {
	return r.Status == evset.StatusSuccess.String()
}

// SaveReports writes reports to path as an indented JSON array.
func SaveReports(path string, reports []Report) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil { //nolint:mnd
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}
