// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/evsetctl/internal/config"
	"github.com/staranto/evsetctl/internal/evset"
	"github.com/staranto/evsetctl/internal/oracle"
)

func init() {
	cfg, _ = config.Load("")
}

var cfg config.Type

func newExamplesFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "examples",
		Usage:       "show usage examples",
		HideDefault: true,
	}
}

func newTLDRFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// configKey maps a flag name to its config file key, e.g. cache-way to
// cache_way.
func configKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// sources builds the value chain for a flag: environment variables first,
// then the namespaced and top level config keys.
func sources(ns, name string, envs ...string) cli.ValueSourceChain {
	var chain []cli.ValueSource
	for _, e := range envs {
		chain = append(chain, cli.EnvVar(e))
	}
	key := configKey(name)
	if ns != "" {
		chain = append(chain, yaml.YAML(ns+"."+key, altsrc.StringSourcer(cfg.Source)))
	}
	chain = append(chain, yaml.YAML(key, altsrc.StringSourcer(cfg.Source)))
	return cli.NewValueSourceChain(chain...)
}

// NewGlobalFlags returns the output flags shared by every command.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: sources(params[0], "color"),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: sources(params[0], "output", "EVSETCTL_OUTPUT"),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: sources(params[0], "titles"),
			Value:   false,
		},
	}

	return
}

// NewTunableFlags returns the flags read by config.Tunables.
func NewTunableFlags(ns string) []cli.Flag {
	def := evset.DefaultConfig()
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "cache-way",
			Aliases: []string{"w"},
			Usage:   "associativity of the target cache; the eviction set size",
			Sources: sources(ns, "cache-way", "EVSETCTL_CACHE_WAY"),
			Value:   def.CacheWay,
			Validator: func(v int) error {
				return FlagValidators(v, PositiveValidator)
			},
		},
		&cli.IntFlag{
			Name:    "rounds",
			Aliases: []string{"r"},
			Usage:   "timing trials per oracle query",
			Sources: sources(ns, "rounds", "EVSETCTL_ROUNDS"),
			Value:   def.Rounds,
			Validator: func(v int) error {
				return FlagValidators(v, PositiveValidator)
			},
		},
		&cli.IntFlag{
			Name:    "threshold",
			Usage:   "latency above which an access counts as a miss",
			Sources: sources(ns, "threshold", "EVSETCTL_THRESHOLD"),
			Value:   def.Threshold,
		},
		&cli.FloatFlag{
			Name:    "ratio",
			Usage:   "share of slow trials needed to decide eviction; <= 0 averages latencies instead",
			Sources: sources(ns, "ratio", "EVSETCTL_RATIO"),
			Value:   def.Ratio,
		},
		&cli.IntFlag{
			Name:    "traverse",
			Usage:   "traversal mode: 0 single, 1 double, 2 zig-zag",
			Sources: sources(ns, "traverse"),
			Value:   def.Traverse,
			Validator: func(v int) error {
				return FlagValidators(v, TraverseValidator)
			},
		},
		&cli.IntFlag{
			Name:    "max-backtracks",
			Usage:   "bound on backtracking retries",
			Sources: sources(ns, "max-backtracks"),
			Value:   evset.DefaultMaxBacktracks,
			Validator: func(v int) error {
				return FlagValidators(v, PositiveValidator)
			},
		},
		&cli.BoolWithInverseFlag{
			Name:    "backtracking",
			Usage:   "allow bounded backtracking when a reduction gets stuck",
			Sources: sources(ns, "backtracking"),
			Value:   def.Backtracking(),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "log reduction progress",
			Sources: sources(ns, "verbose"),
		},
	}
}

// NewSimFlags describes the simulated cache answering oracle queries.
func NewSimFlags(ns string) []cli.Flag {
	def := oracle.DefaultModel()
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "line-size",
			Usage:   "simulated cache line size in bytes",
			Sources: sources(ns, "line-size"),
			Value:   def.LineSize,
			Validator: func(v int) error {
				return FlagValidators(v, PositiveValidator)
			},
		},
		&cli.IntFlag{
			Name:    "sets",
			Usage:   "simulated cache sets",
			Sources: sources(ns, "sets"),
			Value:   def.Sets,
			Validator: func(v int) error {
				return FlagValidators(v, PositiveValidator)
			},
		},
		&cli.IntFlag{
			Name:  "ways",
			Usage: "simulated associativity (defaults to --cache-way)",
		},
		&cli.FloatFlag{
			Name:    "noise",
			Usage:   "probability that a single timing trial is wrong",
			Sources: sources(ns, "noise", "EVSETCTL_NOISE"),
			Value:   def.Noise,
		},
	}
}

// pathHas reports whether target is an executable on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
