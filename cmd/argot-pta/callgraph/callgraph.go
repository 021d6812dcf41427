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

// Package callgraph implements the callgraph and pointsto tools, which print the call graph and the points-to
// sets computed by the pointer analysis.
package callgraph

import (
	"fmt"
	"io"
	"strings"

	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/awslabs/ar-go-pta/cmd/argot-pta/tools"
	"github.com/awslabs/ar-go-pta/internal/formatutil"
	"github.com/awslabs/ar-go-pta/internal/funcutil"
)

// Usage of the callgraph tool
const Usage = `Print the call graph computed by the pointer analysis.
Usage:
  argot-pta callgraph [options] <program file>
Examples:
  % argot-pta callgraph -config config.yaml program.yaml
  % argot-pta callgraph -entry Main.main -method Box. program.yaml
`

// PointsToUsage is the usage of the pointsto tool
const PointsToUsage = `Print the non-empty points-to sets computed by the pointer analysis.
Usage:
  argot-pta pointsto [options] <program file>
Examples:
  % argot-pta pointsto -config config.yaml -filter "n1:" program.yaml
`

// Flags represents the parsed callgraph and pointsto sub-command flags.
type Flags struct {
	tools.CommonFlags
	// filter keeps the nodes whose method starts with it, or the pointer keys containing it
	filter string
}

// NewFlags returns the parsed callgraph sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	return newFlags("callgraph", Usage, "method", "print only the nodes of methods with that prefix", args)
}

// NewPointsToFlags returns the parsed pointsto sub-command flags from args.
func NewPointsToFlags(args []string) (Flags, error) {
	return newFlags("pointsto", PointsToUsage, "filter", "print only the pointer keys containing that string", args)
}

func newFlags(name, usage, filterName, filterDoc string, args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags(name)
	filter := flags.FlagSet.String(filterName, "", filterDoc)
	tools.SetUsage(flags.FlagSet, usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, filter: *filter}, nil
}

// Run runs the callgraph tool with flags, printing on w.
func Run(flags Flags, w io.Writer) error {
	a, err := tools.Analyze(flags.CommonFlags)
	if err != nil {
		return err
	}
	WriteCallGraph(w, a.Result.CallGraph, flags.filter)
	return nil
}

// RunPointsTo runs the pointsto tool with flags, printing on w.
func RunPointsTo(flags Flags, w io.Writer) error {
	a, err := tools.Analyze(flags.CommonFlags)
	if err != nil {
		return err
	}
	WritePointsTo(w, a.Result.PointerAnalysis, flags.filter)
	return nil
}

// WriteCallGraph prints the nodes of cg whose method starts with prefix, and their callees grouped by call site
func WriteCallGraph(w io.Writer, cg *pta.CallGraph, prefix string) {
	entry := map[pta.NodeID]bool{}
	for _, n := range cg.Entrypoints() {
		entry[n.ID] = true
	}
	for _, n := range cg.Nodes() {
		if !strings.HasPrefix(n.Method.Ref().String(), prefix) {
			continue
		}
		marker := ""
		if entry[n.ID] {
			marker = formatutil.Green(" (entrypoint)")
		}
		fmt.Fprintf(w, "%s %s in %s%s\n", formatutil.Faint(fmt.Sprintf("n%d", n.ID)),
			formatutil.Bold(n.Method.Ref()), n.Context, marker)
		for _, e := range cg.OutEdges(n.ID) {
			callee := cg.Node(e.Callee)
			fmt.Fprintf(w, "  %s -> %s %s\n", formatutil.Faint(e.Site), formatutil.Cyan(fmt.Sprintf("n%d", callee.ID)),
				callee.Method.Ref())
		}
	}
}

// WritePointsTo prints the non-empty points-to sets of the pointer keys whose name contains filter
func WritePointsTo(w io.Writer, pa *pta.PointerAnalysis, filter string) {
	for _, pk := range pa.PointerKeys() {
		s := pa.PointsTo(pk)
		if s.IsEmpty() || !strings.Contains(pk.String(), filter) {
			continue
		}
		keys := funcutil.Map(s.Keys(), func(ik pta.InstanceKey) string { return ik.String() })
		fmt.Fprintf(w, "%s -> %s\n", formatutil.Bold(pk), strings.Join(keys, ", "))
	}
}
