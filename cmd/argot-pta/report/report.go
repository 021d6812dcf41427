// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report implements the report and snapshot tools. The report tool writes statistics about the result of
// the pointer analysis in markdown or HTML. The snapshot tool saves the result in a compressed file, or compares
// it to a saved one.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/awslabs/ar-go-pta/analysis/render"
	"github.com/awslabs/ar-go-pta/analysis/report"
	"github.com/awslabs/ar-go-pta/cmd/argot-pta/tools"
	"github.com/awslabs/ar-go-pta/internal/formatutil"
)

// Usage of the report tool
const Usage = `Write a report on the result of the pointer analysis.
Usage:
  argot-pta report [options] <program file>
The markdown report is written in report.md in the reports-dir of the config, or on the standard output if
the config has none.
Examples:
  % argot-pta report -config config.yaml -html report.html program.yaml
`

// SnapshotUsage is the usage of the snapshot tool
const SnapshotUsage = `Save the result of the pointer analysis, or compare it with a saved result.
Usage:
  argot-pta snapshot [options] <program file>
Examples:
  % argot-pta snapshot -config config.yaml -o before.snap program.yaml
  % argot-pta snapshot -config config.yaml -compare before.snap program.yaml
`

// Flags represents the parsed report sub-command flags.
type Flags struct {
	tools.CommonFlags
	out     string
	htmlOut string
	title   string
	top     int
}

// NewFlags returns the parsed report sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("report")
	out := flags.FlagSet.String("o", "", "output file for the markdown report")
	htmlOut := flags.FlagSet.String("html", "", "output file for the HTML report (no output if not specified)")
	title := flags.FlagSet.String("title", "", "title of the report")
	top := flags.FlagSet.Int("top", 10, "length of the rankings of the report")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, out: *out, htmlOut: *htmlOut, title: *title, top: *top}, nil
}

// Run runs the report tool with flags.
func Run(flags Flags) error {
	a, err := tools.Analyze(flags.CommonFlags)
	if err != nil {
		return err
	}
	opts := report.Options{Title: flags.title, Top: flags.top}
	if a.Partial {
		opts.Title = strings.TrimSpace(opts.Title + " (partial)")
	}
	var md bytes.Buffer
	if err := report.WriteMarkdown(&md, a.Result, opts); err != nil {
		return err
	}

	out := flags.out
	if out == "" && a.Config.ReportsDir != "" {
		dir := a.Config.ReportsDir
		if !filepath.IsAbs(dir) && flags.ConfigPath != "" {
			dir = a.Config.RelPath(dir)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create reports directory: %w", err)
		}
		out = filepath.Join(dir, "report.md")
	}
	if out == "" {
		if _, err := md.WriteTo(os.Stdout); err != nil {
			return err
		}
	} else {
		a.Logger.Infof(formatutil.Faint("Writing report in %s")+"\n", out)
		if err := os.WriteFile(out, md.Bytes(), 0o644); err != nil {
			return fmt.Errorf("could not write report: %w", err)
		}
	}

	if flags.htmlOut != "" {
		a.Logger.Infof(formatutil.Faint("Writing HTML report in %s")+"\n", flags.htmlOut)
		title := opts.Title
		if title == "" {
			title = filepath.Base(flags.FlagSet.Arg(0))
		}
		return render.ToFile(flags.htmlOut, func(w io.Writer) error {
			return report.WriteHTML(w, title, md.Bytes())
		})
	}
	return nil
}

// SnapshotFlags represents the parsed snapshot sub-command flags.
type SnapshotFlags struct {
	tools.CommonFlags
	out     string
	compare string
}

// NewSnapshotFlags returns the parsed snapshot sub-command flags from args.
func NewSnapshotFlags(args []string) (SnapshotFlags, error) {
	flags := tools.NewUnparsedCommonFlags("snapshot")
	out := flags.FlagSet.String("o", "", "output file for the snapshot")
	compare := flags.FlagSet.String("compare", "", "snapshot file to compare the result with")
	tools.SetUsage(flags.FlagSet, SnapshotUsage)
	common, err := flags.Parse(args)
	if err != nil {
		return SnapshotFlags{}, err
	}
	if *out == "" && *compare == "" {
		return SnapshotFlags{}, fmt.Errorf("snapshot requires -o or -compare")
	}
	return SnapshotFlags{CommonFlags: common, out: *out, compare: *compare}, nil
}

// RunSnapshot runs the snapshot tool with flags. Differences with the compared snapshot are printed on w and
// reported as an error.
func RunSnapshot(flags SnapshotFlags, w io.Writer) error {
	a, err := tools.Analyze(flags.CommonFlags)
	if err != nil {
		return err
	}
	cur := report.NewSnapshot(a.Result)

	if flags.out != "" {
		a.Logger.Infof(formatutil.Faint("Writing snapshot in %s")+"\n", flags.out)
		if err := render.ToFile(flags.out, cur.Write); err != nil {
			return fmt.Errorf("could not write snapshot: %w", err)
		}
	}

	if flags.compare != "" {
		f, err := os.Open(flags.compare)
		if err != nil {
			return fmt.Errorf("could not open snapshot: %w", err)
		}
		defer f.Close()
		old, err := report.ReadSnapshot(f)
		if err != nil {
			return err
		}
		if diff := report.Diff(old, cur); diff != "" {
			fmt.Fprintf(w, "%s\n%s", formatutil.Red("Results differ from "+flags.compare+" (-old +new):"), diff)
			return fmt.Errorf("results differ from snapshot %s", flags.compare)
		}
		fmt.Fprintln(w, formatutil.Green("Results match "+flags.compare))
	}
	return nil
}
