// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/urfave/cli/v3"

	"github.com/staranto/evsetctl/internal/evset"
)

// Tunables builds the reducer configuration from the tunable flags of cmd.
// Flags that were never defined on cmd keep their defaults.
func Tunables(cmd *cli.Command) (evset.Config, error) {
	cfg := evset.DefaultConfig()

	has := func(name string) bool {
		for _, f := range cmd.Flags {
			for _, n := range f.Names() {
				if n == name {
					return true
				}
			}
		}
		return false
	}

	if has("cache-way") {
		cfg.CacheWay = cmd.Int("cache-way")
	}
	if has("rounds") {
		cfg.Rounds = cmd.Int("rounds")
	}
	if has("threshold") {
		cfg.Threshold = cmd.Int("threshold")
	}
	if has("ratio") {
		cfg.Ratio = cmd.Float("ratio")
	}
	if has("traverse") {
		cfg.Traverse = cmd.Int("traverse")
	}
	if has("max-backtracks") {
		cfg.MaxBacktracks = cmd.Int("max-backtracks")
	}

	cfg.Flags = 0
	if !has("backtracking") || cmd.Bool("backtracking") {
		cfg.Flags |= evset.FlagBacktracking
	}
	if has("verbose") && cmd.Bool("verbose") {
		cfg.Flags |= evset.FlagVerbose
	}

	return cfg, cfg.Validate()
}
