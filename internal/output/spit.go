// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/staranto/evsetctl/internal/config"
)

// Formats lists the accepted --output values.
var Formats = []string{"text", "json", "yaml", "raw"}

// Options controls how reports are rendered.
type Options struct {
	Format string
	Color  bool
	Titles bool
}

// DefaultColor enables color when stdout is a terminal.
func DefaultColor() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Spit renders reports to w in the requested format.
func Spit(reports []Report, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	switch opts.Format {
	case "raw":
		// If raw, one compact document per line and go home. This is the form
		// meant for piping into jq.
		enc := json.NewEncoder(w)
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
	case "json":
		jsonOutput, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(jsonOutput))
		return err
	case "yaml":
		yamlOutput, err := yaml.Marshal(reports)
		if err != nil {
			return err
		}
		_, err = w.Write(yamlOutput)
		return err
	case "", "text":
		// The table summarizes every run; the addresses are too wide for it, so
		// the sets follow as plain lines.
		TableWriter(reports, opts, w)
		SetWriter(reports, w)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
	return nil
}

// columns are the report fields shown in the table, in order.
var columns = []struct {
	title string
	value func(Report) interface{}
}{
	{"strategy", func(r Report) interface{} { return r.Strategy }},
	{"status", func(r Report) interface{} { return r.Status }},
	{"size", func(r Report) interface{} { return strconv.Itoa(len(r.EvictionSet)) }},
	{"pool", func(r Report) interface{} { return humanize.Comma(int64(r.PoolSize)) }},
	{"discarded", func(r Report) interface{} { return humanize.Comma(int64(r.Discarded)) }},
	{"queries", func(r Report) interface{} { return humanize.Comma(int64(r.Queries)) }},
	{"backtracks", func(r Report) interface{} { return r.Backtracks }},
	{"elapsed", func(r Report) interface{} { return r.Elapsed }},
}

// TableWriter renders one row per report honoring color, titles and
// padding options.
func TableWriter(reports []Report, opts Options, w io.Writer) {
	// Nothing to render, so go home early. An empty table would still print
	// the header row.
	if len(reports) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	// Color is opt-in. The colors themselves come from the config file under
	// colors.title, colors.even and colors.odd.
	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 1)
	log.Debugf("padding: %v", pad)

	// Build rows for the lipgloss table renderer. Zero values render as "-" so
	// columns stay aligned.
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		row := make([]string, 0, len(columns))
		for _, c := range columns {
			row = append(row, InterfaceToString(c.value(r), "-"))
		}
		rows = append(rows, row)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			// Padding goes between columns only, never before the first one.
			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		headers := make([]string, 0, len(columns))
		for _, c := range columns {
			headers = append(headers, c.title)
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// SetWriter lists the eviction set of every report, one report per line.
func SetWriter(reports []Report, w io.Writer) {
	for _, r := range reports {
		// Failed runs usually have nothing worth listing.
		if len(r.EvictionSet) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", r.Strategy, strings.Join(r.EvictionSet, " "))
	}
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		// Our current use cases have no use for an actual float, so we're just
		// going to return an integer.
		return fmt.Sprintf("%.0f", value)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}

// DumpExamples renders a table of example command usages.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}
	// Build rows for the lipgloss table renderer used elsewhere in the project.
	var rows [][]string
	for _, ex := range examples {
		rows = append(rows, []string{ex[0], ex[1]})
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		// Set headers and disable the header border for a cleaner look.
		Headers("Command", "Description").
		BorderHeader(false).
		Rows(rows...)

	fmt.Fprintln(w, t)
}
