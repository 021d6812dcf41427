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

// Package render implements the render tool, which writes graphviz representations of the call graph and the heap
// graph computed by the pointer analysis.
// -cgout Given a path for a .dot file, writes the call graph in that file.
// -heapout Given a path for a .dot file, writes the heap graph in that file.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-go-pta/analysis/render"
	"github.com/awslabs/ar-go-pta/cmd/argot-pta/tools"
	"github.com/awslabs/ar-go-pta/internal/formatutil"
)

// Usage of the render tool
const Usage = `Render the call graph or the heap graph computed by the pointer analysis.
Usage:
  argot-pta render [options] <program file>
Examples:
Render the call graph of the methods of the classes of package app
  % argot-pta render -config config.yaml -cgout callgraph.dot -prefix app. program.yaml
Render the heap graph
  % argot-pta render -config config.yaml -heapout heap.dot program.yaml
`

// Flags represents the parsed render sub-command flags.
type Flags struct {
	tools.CommonFlags
	cgOut    string
	heapOut  string
	prefix   string
	hideRoot bool
}

// NewFlags returns the parsed render sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("render")
	cgOut := flags.FlagSet.String("cgout", "", "output file for call graph (no output if not specified)")
	heapOut := flags.FlagSet.String("heapout", "", "output file for heap graph (no output if not specified)")
	prefix := flags.FlagSet.String("prefix", "", "render only the nodes of classes starting with prefix")
	hideRoot := flags.FlagSet.Bool("hide-root", false, "do not render the synthetic root of the call graph")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}

	return Flags{
		CommonFlags: common,
		cgOut:       *cgOut,
		heapOut:     *heapOut,
		prefix:      *prefix,
		hideRoot:    *hideRoot,
	}, nil
}

// Run runs the render tool with flags. Without output file, the call graph is written on the standard output.
func Run(flags Flags) error {
	a, err := tools.Analyze(flags.CommonFlags)
	if err != nil {
		return err
	}
	opts := render.Options{ClassPrefix: flags.prefix, HideRoot: flags.hideRoot}
	writeCallGraph := func(w io.Writer) error { return render.WriteCallGraph(w, a.Result.CallGraph, opts) }

	if flags.cgOut == "" && flags.heapOut == "" {
		return writeCallGraph(os.Stdout)
	}

	if flags.cgOut != "" {
		fmt.Fprintf(os.Stderr, formatutil.Faint("Writing call graph in "+flags.cgOut+"\n"))
		if err := render.ToFile(flags.cgOut, writeCallGraph); err != nil {
			return fmt.Errorf("could not print callgraph: %v", err)
		}
	}

	if flags.heapOut != "" {
		fmt.Fprintf(os.Stderr, formatutil.Faint("Writing heap graph in "+flags.heapOut+"\n"))
		err := render.ToFile(flags.heapOut, func(w io.Writer) error {
			return render.WriteHeapGraph(w, a.Result.PointerAnalysis)
		})
		if err != nil {
			return fmt.Errorf("could not print heap graph: %v", err)
		}
	}
	return nil
}
