// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"

	"github.com/staranto/evsetctl/internal/cacheutil"
	"github.com/staranto/evsetctl/internal/command"
	"github.com/staranto/evsetctl/internal/config"
	mylog "github.com/staranto/evsetctl/internal/log"
	"github.com/staranto/evsetctl/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = command.ExpandArgSets(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	prepareCache(os.Stderr)

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// prepareCache pre-creates the cache directory when caching is enabled and
// drops stale downloads. Failures are reported on w but are not fatal.
func prepareCache(w io.Writer) {
	if _, _, err := cacheutil.EnsureBaseDir(); err != nil {
		fmt.Fprintln(w, err)
	}
	if hours, _ := config.GetInt("cache.clean", 0); hours > 0 {
		if err := cacheutil.Purge(hours); err != nil {
			log.WithError(err).Warn("cache purge failed")
		}
	}
}
