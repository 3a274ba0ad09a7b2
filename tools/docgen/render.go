// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"regexp"
	"strings"
)

// doc is the part of a command page the TLDR needs.
type doc struct {
	Title    string
	Short    string
	Examples []example
}

type example struct {
	Desc string
	Cmd  string
}

var headerRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// sections splits markdown into header -> body, keyed by lower-cased header
// text. Lines inside fenced blocks are never treated as headers.
func sections(md string) (title string, out map[string][]string) {
	out = map[string][]string{}
	current := ""
	fenced := false
	for _, ln := range strings.Split(md, "\n") {
		ln = strings.TrimRight(ln, "\r")
		if strings.HasPrefix(strings.TrimSpace(ln), "```") {
			fenced = !fenced
		}
		if !fenced {
			if m := headerRe.FindStringSubmatch(ln); m != nil {
				if m[1] == "#" && title == "" {
					title = strings.TrimSpace(m[2])
				}
				current = strings.ToLower(strings.TrimSpace(m[2]))
				continue
			}
		}
		out[current] = append(out[current], ln)
	}
	return title, out
}

func parseDoc(md string) doc {
	title, secs := sections(md)
	d := doc{Title: title}

	// First paragraph of the short description.
	var words []string
	for _, ln := range secs["short description"] {
		if strings.TrimSpace(ln) == "" {
			if len(words) > 0 {
				break
			}
			continue
		}
		words = append(words, strings.TrimSpace(ln))
	}
	d.Short = strings.Join(words, " ")
	if d.Short == "" && title != "" {
		d.Short = title + "."
	}

	d.Examples = parseExamples(secs["quick examples"])
	return d
}

// parseExamples reads the first fenced block: "# description" comment lines
// each followed by one command line.
func parseExamples(lines []string) []example {
	var (
		exs    []example
		desc   string
		inside bool
	)
	for _, ln := range lines {
		s := strings.TrimSpace(ln)
		if strings.HasPrefix(s, "```") {
			if inside {
				break
			}
			inside = true
			continue
		}
		if !inside || s == "" {
			continue
		}
		if strings.HasPrefix(s, "#") {
			desc = strings.TrimSpace(strings.TrimPrefix(s, "#"))
			continue
		}
		if desc == "" {
			desc = "Example"
		}
		exs = append(exs, example{Desc: desc, Cmd: strings.Join(strings.Fields(s), " ")})
		desc = ""
	}
	return exs
}

func buildTLDR(cmd string, d doc) string {
	var b strings.Builder
	b.WriteString("# " + pageName(cmd) + "\n\n")
	switch {
	case d.Short != "":
		b.WriteString("> " + d.Short + "\n")
	default:
		b.WriteString("> " + binName + " " + cmd + "\n")
	}
	b.WriteString("> More information: " + repoURL + ".\n\n")

	exs := d.Examples
	if len(exs) == 0 {
		exs = []example{{Desc: "Show help for the command", Cmd: binName + " " + cmd + " --help"}}
	}

	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + ex.Desc + ":\n\n")
		b.WriteString("`" + ex.Cmd + "`\n")
	}
	return b.String()
}
