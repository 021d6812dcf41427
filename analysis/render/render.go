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

// Package render writes the call graphs and heap graphs computed by the pointer analysis in the GraphViz format.
package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/awslabs/ar-go-pta/internal/graphutil"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// Options select the nodes of a rendered call graph
type Options struct {
	// ClassPrefix keeps only the nodes of the methods of classes starting with the prefix, and the root
	ClassPrefix string
	// HideRoot removes the synthetic root and its edges
	HideRoot bool
}

func (o Options) keeps(cg *pta.CallGraph, n *pta.CGNode) bool {
	if n.ID == cg.Root().ID {
		return !o.HideRoot
	}
	return strings.HasPrefix(string(n.Method.Class), o.ClassPrefix)
}

// WriteCallGraph writes a graphviz representation of the call graph to w. Each node is labelled by its method and
// its context.
func WriteCallGraph(w io.Writer, cg *pta.CallGraph, opts Options) error {
	g := graphutil.NewCallgraphIterator(cg)
	var keep []int64
	for _, id := range g.Keys {
		if opts.keeps(cg, g.IDMap[id].Node) {
			keep = append(keep, id)
		}
	}
	if len(keep) < len(g.Keys) {
		g = graphutil.Subgraph(g, keep)
	}
	b, err := dot.Marshal(g, "callgraph", "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal call graph: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	return nil
}

// heapNode is a pointer key or an instance key in a rendered heap graph
type heapNode struct {
	id       int64
	label    string
	instance bool
}

func (n heapNode) ID() int64 { return n.id }

func (n heapNode) DOTID() string {
	if n.instance {
		return fmt.Sprintf("o%d", n.id)
	}
	return fmt.Sprintf("p%d", n.id)
}

func (n heapNode) Attributes() []encoding.Attribute {
	shape := "ellipse"
	if n.instance {
		shape = "box"
	}
	return []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("%q", n.label)},
		{Key: "shape", Value: shape},
	}
}

// WriteHeapGraph writes a graphviz representation of the heap graph to w: pointer keys (ellipses) point to
// instance keys (boxes), and instance keys own the pointer keys of their fields. Pointer keys with empty points-to
// sets are omitted.
func WriteHeapGraph(w io.Writer, pa *pta.PointerAnalysis) error {
	hg := pa.HeapGraph()
	g := simple.NewDirectedGraph()
	pointers := pa.PointerKeys()
	base := int64(len(pointers))
	pointerNodes := map[pta.PointerKey]heapNode{}
	for i, pk := range pointers {
		n := heapNode{id: int64(i), label: pk.String()}
		pointerNodes[pk] = n
	}
	instanceNode := func(ik pta.InstanceKey) heapNode {
		return heapNode{id: base + int64(pa.InstanceIndex(ik)), label: ik.String(), instance: true}
	}
	addNode := func(n heapNode) {
		if g.Node(n.id) == nil {
			g.AddNode(n)
		}
	}

	for _, e := range hg.Edges() {
		if pa.PointsTo(e.Pointer).IsEmpty() {
			continue
		}
		p, o := pointerNodes[e.Pointer], instanceNode(e.Instance)
		addNode(p)
		addNode(o)
		if e.Field {
			g.SetEdge(simple.Edge{F: o, T: p})
		} else {
			g.SetEdge(simple.Edge{F: p, T: o})
		}
	}

	b, err := dot.Marshal(g, "heap", "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal heap graph: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	return nil
}

// ToFile creates the file filename and writes to it with write
func ToFile(filename string, write func(w io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return fmt.Errorf("error while writing %s: %w", filename, err)
	}
	return w.Flush()
}
