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

package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/awslabs/ar-go-pta/internal/funcutil"
	"github.com/awslabs/ar-go-pta/internal/graphutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MaxCycleComponent is the size of the largest recursive component whose elementary cycles are listed. The number
// of cycles grows exponentially with the size of a component.
const MaxCycleComponent = 6

// Options set the length of the lists of a report
type Options struct {
	Title string
	// Top is the length of the rankings
	Top int
}

// WriteMarkdown writes a report of res in markdown to w: the statistics, the methods with the most contexts, the
// largest points-to sets, the recursive components of the call graph and the warnings.
func WriteMarkdown(w io.Writer, res *pta.Result, opts Options) error {
	if opts.Top <= 0 {
		opts.Top = 10
	}
	if opts.Title == "" {
		opts.Title = "Pointer analysis report"
	}
	s := Compute(res)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", opts.Title)

	b.WriteString("| Measure | Value |\n|---|---|\n")
	for _, row := range [][2]any{
		{"Call graph nodes", s.Nodes},
		{"Methods", s.Methods},
		{"Call edges", s.CallEdges},
		{"Entrypoints", s.Entrypoints},
		{"Pointer keys", s.PointerKeys},
		{"Instance keys", s.InstanceKeys},
		{"Total points-to size", s.PointsToSize},
		{"Max contexts per method", s.MaxContexts},
		{"Self-recursive nodes", s.SelfRecursive},
		{"Recursive components", s.Recursive},
		{"Solver steps", s.Steps},
	} {
		fmt.Fprintf(&b, "| %s | %v |\n", row[0], row[1])
	}

	fmt.Fprintf(&b, "\n## Methods with the most contexts\n\n| Method | Contexts |\n|---|---|\n")
	for _, mc := range TopMethods(res.CallGraph, opts.Top) {
		fmt.Fprintf(&b, "| %s | %d |\n", cell(mc.Method.String()), mc.Contexts)
	}

	fmt.Fprintf(&b, "\n## Largest points-to sets\n\n| Pointer | Size |\n|---|---|\n")
	for _, ss := range LargestSets(res.PointerAnalysis, opts.Top) {
		fmt.Fprintf(&b, "| %s | %d |\n", cell(ss.Pointer.String()), ss.Size)
	}

	writeRecursion(&b, res.CallGraph)

	if res.Diagnostics != nil && res.Diagnostics.Len() > 0 {
		fmt.Fprintf(&b, "\n## Warnings\n\n| Kind | Count |\n|---|---|\n")
		for _, kind := range funcutil.SortedKeys(s.Warnings) {
			fmt.Fprintf(&b, "| %s | %d |\n", kind, s.Warnings[kind])
		}
		b.WriteString("\n")
		for _, warning := range res.Diagnostics.Warnings() {
			fmt.Fprintf(&b, "- `%s` %s\n", warning.Kind, warning.Message)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("error while writing report: %w", err)
	}
	return nil
}

func writeRecursion(b *strings.Builder, cg *pta.CallGraph) {
	g := graphutil.NewCallgraphIterator(cg)
	components := graphutil.RecursiveComponents(g)
	if len(components) == 0 {
		return
	}
	nodeString := func(id int64) string { return cg.Node(pta.NodeID(id)).Method.Ref().String() }
	fmt.Fprintf(b, "\n## Recursion\n\n")
	for i, component := range components {
		fmt.Fprintf(b, "%d. %s\n", i+1, strings.Join(funcutil.Map(component, nodeString), ", "))
		if len(component) > MaxCycleComponent {
			continue
		}
		for _, cycle := range graphutil.FindAllElementaryCycles(graphutil.Subgraph(g, component)) {
			fmt.Fprintf(b, "    - %s\n", strings.Join(funcutil.Map(cycle, nodeString), " → "))
		}
	}
}

// cell escapes the pipes of a table cell
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteHTML converts a markdown report to a standalone HTML page
func WriteHTML(w io.Writer, title string, markdown []byte) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert(markdown, &body); err != nil {
		return fmt.Errorf("could not convert report: %w", err)
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n"+
		"</head>\n<body>\n%s</body>\n</html>\n", html.EscapeString(title), body.String())
	if err != nil {
		return fmt.Errorf("error while writing report: %w", err)
	}
	return nil
}
