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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-pta/cmd/argot-pta/callgraph"
	"github.com/awslabs/ar-go-pta/cmd/argot-pta/render"
	"github.com/awslabs/ar-go-pta/cmd/argot-pta/report"
	"github.com/awslabs/ar-go-pta/cmd/argot-pta/tools"
)

const usage = `Argot-pta: context-sensitive pointer analysis and call graph construction
Usage:
  argot-pta [tool] [options] <program file>
Tools:
  - callgraph: prints the call graph of the program
  - pointsto: prints the points-to sets of the program
  - render: renders a graphviz representation of the call graph or the heap graph
  - report: writes statistics about the analysis in markdown or HTML
  - snapshot: saves the result of the analysis, or compares it with a saved result
Examples:
  Print the call graph: argot-pta callgraph -config config.yaml program.yaml
  Check that a change does not alter the result: argot-pta snapshot -compare before.snap program.yaml`

//gocyclo:ignore
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(tools.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "callgraph":
		flags, err := callgraph.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := callgraph.Run(flags, os.Stdout); err != nil {
			errExit(err)
		}
	case "pointsto":
		flags, err := callgraph.NewPointsToFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := callgraph.RunPointsTo(flags, os.Stdout); err != nil {
			errExit(err)
		}
	case "render":
		flags, err := render.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := render.Run(flags); err != nil {
			errExit(err)
		}
	case "report":
		flags, err := report.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := report.Run(flags); err != nil {
			errExit(err)
		}
	case "snapshot":
		flags, err := report.NewSnapshotFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := report.RunSnapshot(flags, os.Stdout); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
