// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/staranto/evsetctl/internal/meta"
)

var compareExamples = [][2]string{
	{"evsetctl compare before.json after.json", "show what changed between two saved reports"},
	{"evsetctl compare --ignore seed,elapsed a.json b.json", "ignore run specific fields"},
}

// ErrReportsDiffer is returned when --exit-code is set and the reports differ.
var ErrReportsDiffer = errors.New("reports differ")

func CompareCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "compare") || ShortCircuitExamples(cmd, compareExamples) {
		return nil
	}

	args := cmd.Args().Slice()
	if len(args) != 2 {
		return fmt.Errorf("compare needs exactly two report files, got %d", len(args))
	}

	ignore := cmd.StringSlice("ignore")
	left, err := loadReportDoc(args[0], ignore)
	if err != nil {
		return err
	}
	right, err := loadReportDoc(args[1], ignore)
	if err != nil {
		return err
	}

	differ, text, err := diffReports(left, right, OutputOptions(cmd).Color)
	if err != nil {
		return err
	}

	w := writer(cmd)
	if !differ {
		fmt.Fprintln(w, "reports are identical")
		return nil
	}
	fmt.Fprint(w, text)

	if cmd.Bool("exit-code") {
		return ErrReportsDiffer
	}
	return nil
}

// loadReportDoc reads a saved report file and strips the ignored top level
// keys from every report in it.
func loadReportDoc(path string, ignore []string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var reports []map[string]interface{}
	if err := json.Unmarshal(raw, &reports); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	for _, r := range reports {
		for _, k := range ignore {
			delete(r, k)
		}
	}

	// Wrap in an object; the differ compares objects at the top level.
	return json.Marshal(map[string]interface{}{"reports": reports})
}

// diffReports returns whether the two documents differ and, if so, an
// annotated rendering of the left document.
func diffReports(left, right []byte, color bool) (bool, string, error) {
	d, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return false, "", fmt.Errorf("failed to compare reports: %w", err)
	}
	if !d.Modified() {
		return false, "", nil
	}

	var leftJSON map[string]interface{}
	if err := json.Unmarshal(left, &leftJSON); err != nil {
		return false, "", err
	}

	f := formatter.NewAsciiFormatter(leftJSON, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	text, err := f.Format(d)
	if err != nil {
		return false, "", fmt.Errorf("failed to format diff: %w", err)
	}
	return true, text, nil
}

func CompareCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	b := &CommandBuilder{
		Name:      "compare",
		Usage:     "diff two saved reduction reports",
		UsageText: "evsetctl compare [options] LEFT.json RIGHT.json",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "ignore",
				Usage:   "report fields left out of the comparison",
				Sources: sources("compare", "ignore"),
				Value:   []string{"elapsed"},
			},
			&cli.BoolFlag{
				Name:  "exit-code",
				Usage: "fail when the reports differ",
			},
		},
		Action: CompareCommandAction,
		Meta:   meta,
	}
	return b.Build()
}
