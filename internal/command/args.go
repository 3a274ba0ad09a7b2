// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"strings"

	"github.com/apex/log"

	"github.com/staranto/evsetctl/internal/config"
)

// ExpandArgSets splices named argument sets from the config file into args.
// An @name argument after the subcommand selects sets.<subcommand>.<name>;
// without one, sets.<subcommand>.defaults is used. Each entry of a set is
// split on whitespace and inserted where the @name was, or right after the
// subcommand, so explicit flags later on the command line still win.
func ExpandArgSets(args []string) []string {
	if len(args) < 2 || strings.HasPrefix(args[1], "-") {
		return args
	}

	for _, a := range args {
		if a == "--help" || a == "-h" {
			return args
		}
	}

	set := "defaults"
	before, after := []string(nil), args[2:]
	for i, a := range args[2:] {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			before, after = args[2:2+i], args[3+i:]
			break
		}
	}

	out := make([]string, 0, len(args))
	out = append(out, args[:2]...)
	out = append(out, before...)
	setArgs, _ := config.GetStringSlice("sets." + args[1] + "." + set)
	for _, arg := range setArgs {
		out = append(out, strings.Fields(arg)...)
	}
	out = append(out, after...)

	log.Debugf("set=%s, args=%v", set, out)
	return out
}
