// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sample = "# evsetctl reduce\n\n" +
	"## Short description\n\n" +
	"Reduce a candidate pool\nto a minimal eviction set.\n\n" +
	"Second paragraph is ignored.\n\n" +
	"## Quick examples\n\n" +
	"```sh\n" +
	"# Reduce a synthetic pool\n" +
	"evsetctl reduce   --synthetic 2048\n" +
	"\n" +
	"# Headers inside fences are comments\n" +
	"evsetctl reduce -s gt,binary\n" +
	"evsetctl reduce --help\n" +
	"```\n"

func TestParseDoc(t *testing.T) {
	d := parseDoc(sample)

	assert.Equal(t, "evsetctl reduce", d.Title)
	assert.Equal(t, "Reduce a candidate pool to a minimal eviction set.", d.Short)
	assert.Equal(t, []example{
		{Desc: "Reduce a synthetic pool", Cmd: "evsetctl reduce --synthetic 2048"},
		{Desc: "Headers inside fences are comments", Cmd: "evsetctl reduce -s gt,binary"},
		{Desc: "Example", Cmd: "evsetctl reduce --help"},
	}, d.Examples)
}

func TestParseDocFallbacks(t *testing.T) {
	d := parseDoc("# evsetctl compare\n\nNothing else.\n")
	assert.Equal(t, "evsetctl compare.", d.Short)
	assert.Empty(t, d.Examples)
}

func TestBuildTLDR(t *testing.T) {
	tests := []struct {
		name string
		doc  doc
		want string
	}{
		{
			name: "examples",
			doc: doc{Short: "Reduce pools.", Examples: []example{
				{Desc: "Default run", Cmd: "evsetctl reduce"},
				{Desc: "Binary", Cmd: "evsetctl reduce -s binary"},
			}},
			want: "# evsetctl-reduce\n\n> Reduce pools.\n" +
				"> More information: https://github.com/staranto/evsetctl.\n\n" +
				"- Default run:\n\n`evsetctl reduce`\n\n" +
				"- Binary:\n\n`evsetctl reduce -s binary`\n",
		},
		{
			name: "fallback",
			doc:  doc{},
			want: "# evsetctl-reduce\n\n> evsetctl reduce\n" +
				"> More information: https://github.com/staranto/evsetctl.\n\n" +
				"- Show help for the command:\n\n`evsetctl reduce --help`\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildTLDR("reduce", tt.doc))
		})
	}
}
