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

package pta

import (
	"fmt"

	"github.com/awslabs/ar-go-pta/analysis/ir"
)

// NodeID is the index of a node in its call graph.
type NodeID int

// CGNode is a method analyzed in a context. There is at most one node per (method, context) pair in a call graph.
type CGNode struct {
	ID      NodeID
	Method  *ir.Method
	Context Context
}

func (n *CGNode) String() string {
	return fmt.Sprintf("%s in %s", n.Method, n.Context)
}

// CallEdge is an edge of the call graph, labelled by the call site in the caller.
type CallEdge struct {
	Caller NodeID
	Site   ir.CallSite
	Callee NodeID
}

type nodeKey struct {
	method *ir.Method
	ctx    Context
}

// CallGraph is a context-sensitive call graph. Nodes are stored in an arena and are never removed; edges are
// deduplicated and kept in insertion order.
type CallGraph struct {
	nodes       []*CGNode
	index       map[nodeKey]NodeID
	byMethod    map[*ir.Method][]NodeID
	out         [][]CallEdge
	in          [][]CallEdge
	edges       map[CallEdge]bool
	root        NodeID
	entrypoints []NodeID
}

// NewCallGraph returns a call graph containing only the root node for the method root, in the Everywhere context.
func NewCallGraph(root *ir.Method) *CallGraph {
	g := &CallGraph{
		index:    map[nodeKey]NodeID{},
		byMethod: map[*ir.Method][]NodeID{},
		edges:    map[CallEdge]bool{},
	}
	n, _ := g.FindOrCreate(root, Everywhere{})
	g.root = n.ID
	return g
}

// FindOrCreate returns the node of method in ctx, creating it if needed. The boolean is true when the node is new.
func (g *CallGraph) FindOrCreate(method *ir.Method, ctx Context) (*CGNode, bool) {
	if ctx == nil {
		ctx = Everywhere{}
	}
	key := nodeKey{method, ctx}
	if id, ok := g.index[key]; ok {
		return g.nodes[id], false
	}
	n := &CGNode{ID: NodeID(len(g.nodes)), Method: method, Context: ctx}
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.index[key] = n.ID
	g.byMethod[method] = append(g.byMethod[method], n.ID)
	return n, true
}

// Lookup returns the node of method in ctx, if there is one
func (g *CallGraph) Lookup(method *ir.Method, ctx Context) (*CGNode, bool) {
	id, ok := g.index[nodeKey{method, ctx}]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// AddEdge adds the edge caller -site-> callee and returns true if the edge is new.
func (g *CallGraph) AddEdge(caller NodeID, site ir.CallSite, callee NodeID) bool {
	e := CallEdge{Caller: caller, Site: site, Callee: callee}
	if g.edges[e] {
		return false
	}
	g.edges[e] = true
	g.out[caller] = append(g.out[caller], e)
	g.in[callee] = append(g.in[callee], e)
	return true
}

// AddEntrypoint marks a node as an entrypoint of the analysis
func (g *CallGraph) AddEntrypoint(id NodeID) {
	for _, e := range g.entrypoints {
		if e == id {
			return
		}
	}
	g.entrypoints = append(g.entrypoints, id)
}

// Root returns the synthetic root node
func (g *CallGraph) Root() *CGNode {
	return g.nodes[g.root]
}

// Entrypoints returns the entrypoint nodes, in the order they were added
func (g *CallGraph) Entrypoints() []*CGNode {
	res := make([]*CGNode, len(g.entrypoints))
	for i, id := range g.entrypoints {
		res[i] = g.nodes[id]
	}
	return res
}

// Node returns the node with that id
func (g *CallGraph) Node(id NodeID) *CGNode {
	return g.nodes[id]
}

// NumNodes returns the number of nodes of the call graph, the root included
func (g *CallGraph) NumNodes() int {
	return len(g.nodes)
}

// Nodes returns all the nodes, ordered by ID
func (g *CallGraph) Nodes() []*CGNode {
	res := make([]*CGNode, len(g.nodes))
	copy(res, g.nodes)
	return res
}

// NodesFor returns the nodes of a method, in creation order
func (g *CallGraph) NodesFor(method *ir.Method) []*CGNode {
	ids := g.byMethod[method]
	res := make([]*CGNode, len(ids))
	for i, id := range ids {
		res[i] = g.nodes[id]
	}
	return res
}

// OutEdges returns the edges leaving a node, in insertion order
func (g *CallGraph) OutEdges(id NodeID) []CallEdge {
	return append([]CallEdge(nil), g.out[id]...)
}

// InEdges returns the edges entering a node, in insertion order
func (g *CallGraph) InEdges(id NodeID) []CallEdge {
	return append([]CallEdge(nil), g.in[id]...)
}

// Succs returns the distinct callees of a node
func (g *CallGraph) Succs(id NodeID) []*CGNode {
	return g.distinct(g.out[id], func(e CallEdge) NodeID { return e.Callee })
}

// Preds returns the distinct callers of a node
func (g *CallGraph) Preds(id NodeID) []*CGNode {
	return g.distinct(g.in[id], func(e CallEdge) NodeID { return e.Caller })
}

func (g *CallGraph) distinct(edges []CallEdge, end func(CallEdge) NodeID) []*CGNode {
	seen := map[NodeID]bool{}
	var res []*CGNode
	for _, e := range edges {
		if id := end(e); !seen[id] {
			seen[id] = true
			res = append(res, g.nodes[id])
		}
	}
	return res
}

// PossibleSites returns the call sites of caller that may invoke callee
func (g *CallGraph) PossibleSites(caller, callee NodeID) []ir.CallSite {
	var res []ir.CallSite
	for _, e := range g.out[caller] {
		if e.Callee == callee {
			res = append(res, e.Site)
		}
	}
	return res
}

// Edges returns every edge, ordered by caller then insertion order
func (g *CallGraph) Edges() []CallEdge {
	res := make([]CallEdge, 0, len(g.edges))
	for _, out := range g.out {
		res = append(res, out...)
	}
	return res
}

// NumEdges returns the number of distinct labelled edges
func (g *CallGraph) NumEdges() int {
	return len(g.edges)
}
