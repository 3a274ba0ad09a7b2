// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package evset

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxBacktracks is the hard bound on backtracking retries per run.
const DefaultMaxBacktracks = 1000000

// Flags are the behavior switches of a run.
type Flags uint

const (
	// FlagBacktracking allows bounded backtracking when a reduction gets stuck.
	FlagBacktracking Flags = 1 << iota
	// FlagVerbose raises progress reporting from Debug to Info. It has no
	// effect on control flow.
	FlagVerbose
)

func (f Flags) String() string {
	var parts []string
	if f&FlagBacktracking != 0 {
		parts = append(parts, "backtracking")
	}
	if f&FlagVerbose != 0 {
		parts = append(parts, "verbose")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Config holds the tunables of a reduction run. It is passed by value and
// never mutated by a strategy.
type Config struct {
	// CacheWay is the associativity, i.e. the target eviction set size.
	CacheWay int
	// Rounds is the number of Oracle trials per decision.
	Rounds int
	// Threshold is the per-trial timing boundary, passed through to the Oracle.
	Threshold int
	// Ratio is the fraction of trials that must agree. Zero selects the
	// averaging decision.
	Ratio float64
	// Traverse is the access-pattern mode, passed through to the Oracle.
	Traverse int
	Flags    Flags
	// MaxBacktracks overrides DefaultMaxBacktracks when positive.
	MaxBacktracks int
}

// DefaultConfig mirrors the usual L1d setup.
func DefaultConfig() Config {
	return Config{
		CacheWay:  8,
		Rounds:    10,
		Threshold: 100,
		Ratio:     -1,
		Flags:     FlagBacktracking,
	}
}

// Backtracking reports whether FlagBacktracking is set.
func (c Config) Backtracking() bool { return c.Flags&FlagBacktracking != 0 }

// Verbose reports whether FlagVerbose is set.
func (c Config) Verbose() bool { return c.Flags&FlagVerbose != 0 }

func (c Config) maxBacktracks() int {
	if c.MaxBacktracks > 0 {
		return c.MaxBacktracks
	}
	return DefaultMaxBacktracks
}

// Validate checks the tunables that every strategy depends on.
func (c Config) Validate() error {
	var errs []error
	if c.CacheWay < 1 {
		errs = append(errs, fmt.Errorf("cache_way must be positive, got %d", c.CacheWay))
	}
	if c.Rounds < 1 {
		errs = append(errs, fmt.Errorf("rounds must be positive, got %d", c.Rounds))
	}
	if c.Ratio > 1 {
		errs = append(errs, fmt.Errorf("ratio must not exceed 1, got %g", c.Ratio))
	}
	return errors.Join(errs...)
}
