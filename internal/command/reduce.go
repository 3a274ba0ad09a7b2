// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	awsx "github.com/staranto/evsetctl/internal/aws"
	"github.com/staranto/evsetctl/internal/config"
	"github.com/staranto/evsetctl/internal/elist"
	"github.com/staranto/evsetctl/internal/evset"
	"github.com/staranto/evsetctl/internal/filters"
	mylog "github.com/staranto/evsetctl/internal/log"
	"github.com/staranto/evsetctl/internal/meta"
	"github.com/staranto/evsetctl/internal/metrics"
	"github.com/staranto/evsetctl/internal/oracle"
	"github.com/staranto/evsetctl/internal/output"
	"github.com/staranto/evsetctl/internal/pool"
)

var reduceExamples = [][2]string{
	{"evsetctl reduce", "reduce a synthetic pool with group testing"},
	{"evsetctl reduce --strategy all --titles", "compare every strategy on the same pool"},
	{"evsetctl reduce --pool pool.json --cache-way 12", "reduce a saved pool for a 12-way cache"},
	{"evsetctl reduce --pool s3://bucket/l3.json?versionId=v1", "reduce a pool stored in S3"},
	{"evsetctl reduce --noise 0.05 --rounds 21 --ratio 0.5", "vote over noisy timing trials"},
	{"evsetctl reduce -o json --save run.json", "save the report for a later compare"},
	{"evsetctl reduce -s all --filter 'status!=success'", "show only the strategies that failed"},
}

func ReduceCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "reduce") || ShortCircuitExamples(cmd, reduceExamples) {
		return nil
	}

	strategies, err := parseStrategies(cmd.StringSlice("strategy"))
	if err != nil {
		return err
	}

	filterSpec := cmd.String("filter")
	if _, err := filters.BuildFilters(filterSpec); err != nil {
		return err
	}

	tun, err := config.Tunables(cmd)
	if err != nil {
		return fmt.Errorf("invalid tunables: %w", err)
	}
	if tun.Verbose() {
		mylog.Raise(log.InfoLevel)
	}

	seed := cmd.Uint64("seed")
	if !cmd.IsSet("seed") {
		seed = uint64(time.Now().UnixNano())
	}
	evset.Seed(seed)

	p, err := buildPool(ctx, cmd, seed)
	if err != nil {
		return err
	}

	sim, err := buildSim(cmd, tun, seed)
	if err != nil {
		return err
	}

	mx := metrics.New()
	o := mx.InstrumentOracle(sim)

	log.WithFields(log.Fields{
		"source":     p.Source,
		"candidates": p.Len(),
		"victim":     p.Victim,
		"seed":       seed,
		"flags":      tun.Flags,
	}).Debug("starting reduction")

	reports := make([]output.Report, 0, len(strategies))
	var failures []error
	for _, s := range strategies {
		r := evset.New(tun, o)
		start := time.Now()
		res, err := r.Run(s, p.List(), nil, p.Victim)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		mx.ObserveResult(res, elapsed)
		reports = append(reports, output.NewReport(res, tun, p.Source, p.Victim, seed, elapsed))
		if err := res.Err(); err != nil {
			failures = append(failures, err)
		}
	}

	shown, err := filters.Apply(reports, filterSpec)
	if err != nil {
		return err
	}
	if err := output.Spit(shown, OutputOptions(cmd), writer(cmd)); err != nil {
		return err
	}

	if path := cmd.String("save"); path != "" {
		if err := output.SaveReports(path, reports); err != nil {
			return err
		}
	}
	if path := cmd.String("metrics-file"); path != "" {
		if err := mx.WriteTextfile(path); err != nil {
			return err
		}
	}

	return errors.Join(failures...)
}

// parseStrategies resolves strategy names, expanding "all" and dropping
// repeats.
func parseStrategies(names []string) ([]evset.Strategy, error) {
	var out []evset.Strategy
	seen := make(map[evset.Strategy]bool)
	add := func(s evset.Strategy) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), "all") {
			for _, s := range evset.Strategies {
				add(s)
			}
			continue
		}
		s, err := evset.ParseStrategy(n)
		if err != nil {
			return nil, err
		}
		add(s)
	}

	if len(out) == 0 {
		return []evset.Strategy{evset.StrategyGroupTest}, nil
	}
	return out, nil
}

func buildPool(ctx context.Context, cmd *cli.Command, seed uint64) (*pool.Pool, error) {
	if src := cmd.String("pool"); src != "" {
		var awsOpts []awsx.Option
		if profile := cmd.String("aws-profile"); profile != "" {
			awsOpts = append(awsOpts, awsx.WithProfile(profile))
		}
		if region := cmd.String("aws-region"); region != "" {
			awsOpts = append(awsOpts, awsx.WithRegion(region))
		}
		return pool.NewLoader(pool.WithAWSOptions(awsOpts...)).Load(ctx, src)
	}

	base, err := strconv.ParseUint(cmd.String("base"), 0, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid --base %q: %w", cmd.String("base"), err)
	}
	stride := cmd.Int("stride")
	if stride < 1 {
		return nil, fmt.Errorf("invalid --stride %d: must be positive", stride)
	}
	rng := rand.New(rand.NewPCG(seed, ^seed))
	return pool.Synthesize(cmd.Int("synthetic"), elist.Addr(base), uint64(stride), rng)
}

func buildSim(cmd *cli.Command, tun evset.Config, seed uint64) (*oracle.Sim, error) {
	model := oracle.DefaultModel()
	model.LineSize = cmd.Int("line-size")
	model.Sets = cmd.Int("sets")
	model.Ways = tun.CacheWay
	if cmd.IsSet("ways") {
		model.Ways = cmd.Int("ways")
	}
	model.Noise = cmd.Float("noise")

	sim, err := oracle.NewSim(model, seed)
	if err != nil {
		return nil, fmt.Errorf("invalid cache model: %w", err)
	}
	return sim, nil
}

func ReduceCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "strategy",
			Aliases: []string{"s"},
			Usage:   fmt.Sprintf("reduction strategies to run: %v or all", evset.Strategies),
			Sources: sources("reduce", "strategy", "EVSETCTL_STRATEGY"),
			Value:   []string{string(evset.StrategyGroupTest)},
			Validator: func(v []string) error {
				return FlagValidators(v, StrategyValidator)
			},
		},
		&cli.StringFlag{
			Name:    "pool",
			Aliases: []string{"p"},
			Usage:   "candidate pool document, a path or s3://bucket/key",
			Sources: cli.NewValueSourceChain(cli.EnvVar("EVSETCTL_POOL")),
			Validator: func(v string) error {
				return FlagValidators(v, JammedFlagValidator)
			},
		},
		&cli.IntFlag{
			Name:    "synthetic",
			Aliases: []string{"n"},
			Usage:   "size of the synthetic pool used when --pool is not given",
			Sources: sources("reduce", "synthetic"),
			Value:   4096,
			Validator: func(v int) error {
				return FlagValidators(v, PositiveValidator)
			},
		},
		&cli.StringFlag{
			Name:    "base",
			Usage:   "victim address of the synthetic pool",
			Sources: sources("reduce", "base"),
			Value:   "0x100000",
		},
		&cli.IntFlag{
			Name:    "stride",
			Usage:   "distance in bytes between synthetic candidates",
			Sources: sources("reduce", "stride"),
			Value:   oracle.DefaultLineSize,
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "seed for shuffling and the simulated cache (default: time based)",
		},
		&cli.StringFlag{
			Name:  "save",
			Usage: "write the JSON report to this file",
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "show only reports matching key<op>value expressions, e.g. status!=success",
			Sources: sources("reduce", "filter", "EVSETCTL_FILTER"),
		},
		&cli.StringFlag{
			Name:    "metrics-file",
			Usage:   "write Prometheus metrics in textfile format",
			Sources: sources("reduce", "metrics-file", "EVSETCTL_METRICS_FILE"),
		},
		&cli.StringFlag{
			Name:    "aws-profile",
			Usage:   "AWS shared config profile for s3:// pools",
			Sources: cli.NewValueSourceChain(cli.EnvVar("AWS_PROFILE")),
		},
		&cli.StringFlag{
			Name:    "aws-region",
			Usage:   "AWS region for s3:// pools",
			Sources: sources("reduce", "aws-region", "AWS_REGION"),
		},
	}
	flags = append(flags, NewTunableFlags("reduce")...)
	flags = append(flags, NewSimFlags("reduce")...)

	b := &CommandBuilder{
		Name:  "reduce",
		Usage: "reduce a candidate pool to a minimal eviction set",
		UsageText: `evsetctl reduce [--strategy S]... [--pool SRC | --synthetic N] [options]

Reduces the pool against a simulated cache and reports the eviction set
found by each strategy.`,
		Flags:  flags,
		Action: ReduceCommandAction,
		Meta:   meta,
	}
	return b.Build()
}
