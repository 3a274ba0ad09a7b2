// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/staranto/evsetctl/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args        []string
	Config      config.Type
	Context     context.Context
	StartingDir string
}

// Subcommand is the command word following the binary, if any.
func (m Meta) Subcommand() string {
	if len(m.Args) > 1 {
		return m.Args[1]
	}
	return ""
}
