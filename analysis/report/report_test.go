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
	"context"
	"io"
	"testing"

	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/awslabs/ar-go-pta/analysis/pta/builder"
	"github.com/stretchr/testify/require"
)

const program = `
classes:
  - name: A
  - name: Rec
    methods:
      - name: even
        static: true
        body:
          - "invoke static Rec.odd"
          - "return"
      - name: odd
        static: true
        body:
          - "invoke static Rec.even"
          - "return"
      - name: self
        static: true
        body:
          - "invoke static Rec.self"
          - "return"
  - name: Main
    methods:
      - name: main
        static: true
        body:
          - "v1 = new A"
          - "v2 = new A"
          - "v3 = phi v1 v2"
          - "invoke static Rec.even"
          - "invoke static Rec.self"
          - "invoke static Rec.missing"
          - "return"
`

func analyze(t *testing.T) *pta.Result {
	p, err := ir.ParseProgram([]byte(program))
	require.NoError(t, err)
	cfg := config.NewDefault()
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	b, err := builder.New(p, nil, cfg, logger)
	require.NoError(t, err)
	res, err := b.Build(context.Background(), []builder.Entrypoint{builder.MainEntrypoint("Main", "main")})
	require.NoError(t, err)
	return res
}

func TestCompute(t *testing.T) {
	res := analyze(t)
	s := Compute(res)
	require.Equal(t, 5, s.Nodes)
	require.Equal(t, 5, s.Methods)
	require.Equal(t, 6, s.CallEdges)
	require.Equal(t, 1, s.Entrypoints)
	require.Equal(t, 1, s.MaxContexts)
	require.Equal(t, 1, s.SelfRecursive)
	require.Equal(t, 2, s.Recursive)
	require.Equal(t, 1, s.Warnings[pta.UnresolvedTarget])
	require.Equal(t, res.Steps, s.Steps)

	largest := LargestSets(res.PointerAnalysis, 1)
	require.Len(t, largest, 1)
	require.Equal(t, 2, largest[0].Size)

	top := TopMethods(res.CallGraph, 10)
	require.Len(t, top, 4)
	require.Equal(t, "Main.main", top[0].Method.String())
}

func TestWriteMarkdownAndHTML(t *testing.T) {
	res := analyze(t)
	var md bytes.Buffer
	require.NoError(t, WriteMarkdown(&md, res, Options{Title: "Recursion"}))
	out := md.String()
	require.Contains(t, out, "# Recursion\n")
	require.Contains(t, out, "| Call graph nodes | 5 |")
	require.Contains(t, out, "1. Rec.even, Rec.odd\n")
	require.Contains(t, out, "    - Rec.even → Rec.odd → Rec.even\n")
	require.Contains(t, out, "2. Rec.self\n")
	require.Contains(t, out, "| unresolved-target | 1 |\n")
	require.Contains(t, out, "`unresolved-target`")

	var page bytes.Buffer
	require.NoError(t, WriteHTML(&page, "Recursion <1>", md.Bytes()))
	html := page.String()
	require.Contains(t, html, "<title>Recursion &lt;1&gt;</title>")
	require.Contains(t, html, "<table>")
	require.Contains(t, html, "<h2>Recursion</h2>")
}

func TestSnapshot(t *testing.T) {
	res := analyze(t)
	s := NewSnapshot(res)
	require.Len(t, s.Nodes, 5)
	require.Len(t, s.Edges, 6)
	require.Len(t, s.Warnings, 1)

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))
	read, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	require.Empty(t, Diff(s, read))

	again := NewSnapshot(analyze(t))
	again.Steps++
	require.Empty(t, Diff(s, again))

	again.Warnings = nil
	require.NotEmpty(t, Diff(s, again))

	_, err = ReadSnapshot(bytes.NewReader([]byte("not a snapshot")))
	require.Error(t, err)
}
