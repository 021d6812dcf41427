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

// Package graphutil adapts the call graphs of the pointer analysis to existing graph libraries, and implements
// graph algorithms on them.
package graphutil

import (
	"fmt"

	"github.com/awslabs/ar-go-pta/analysis/pta"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/iterator"
)

// CGraph is an abstraction over a call graph to work with existing graph libraries. It implements the methods to
// satisfy graph.Iterator of yourbasic/graph and Gonum's graph.Directed. Node ids are the pta.NodeID of the call
// graph nodes, and parallel call edges (same caller and callee, different sites) are merged.
type CGraph struct {
	// The order of the graph
	order int

	// The original call graph the CGraph was constructed from
	Graph *pta.CallGraph

	// IDMap maps from node IDs to CNodes
	IDMap map[int64]CNode

	// Keys are all the node IDs, sorted
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge between IDMap[x] and IDMap[y]
	Edges map[int64]map[int64]bool
}

// NewCallgraphIterator returns a new call graph iterator where node ids correspond to the ID of each call graph node
func NewCallgraphIterator(cg *pta.CallGraph) CGraph {
	n := cg.NumNodes()
	idmap := make(map[int64]CNode, n)
	edges := make(map[int64]map[int64]bool, n)
	keys := make([]int64, 0, n)
	for _, node := range cg.Nodes() {
		id := int64(node.ID)
		keys = append(keys, id)
		idmap[id] = CNode{node}
		edges[id] = map[int64]bool{}
		for _, e := range cg.OutEdges(node.ID) {
			edges[id][int64(e.Callee)] = true
		}
	}

	return CGraph{
		order: n,
		Graph: cg,
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
	}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in the include nodes are kept in the resulting graph.
// The subgraph's order and Graph are the same as in original, meaning that node ids stay consistent
// across subgraphs.
func Subgraph(original CGraph, include []int64) CGraph {
	idmap := make(map[int64]CNode, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	keys := append([]int64(nil), include...)
	slices.Sort(keys)

	for _, i := range include {
		idmap[i] = original.IDMap[i]
	}
	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if _, ok := idmap[e]; ok {
				edges[i][e] = true
			}
		}
	}

	return CGraph{
		order: original.Order(),
		Graph: original.Graph,
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
	}
}

// Order implements the order of the graph.Iterator interface for the CGraph
func (c CGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface for the CGraph. Successors are visited in increasing order.
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if _, ok := c.IDMap[int64(v)]; !ok {
		return false
	}
	for _, w := range c.successors(int64(v)) {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// successors returns the callees of a node, sorted
func (c CGraph) successors(id int64) []int64 {
	res := make([]int64, 0, len(c.Edges[id]))
	for w := range c.Edges[id] {
		res = append(res, w)
	}
	slices.Sort(res)
	return res
}

// predecessors returns the callers of a node, sorted
func (c CGraph) predecessors(id int64) []int64 {
	var res []int64
	for _, x := range c.Keys {
		if c.Edges[x][id] {
			res = append(res, x)
		}
	}
	return res
}

func (c CGraph) nodes(ids []int64) graph.Nodes {
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = c.IDMap[id]
	}
	return iterator.NewOrderedNodes(nodes)
}

// *************** Graph interface implementation **********************

// Node implements the Graph interface. It returns nil if the node is not in the graph.
func (c CGraph) Node(id int64) graph.Node {
	n, ok := c.IDMap[id]
	if !ok {
		return nil
	}
	return n
}

// Nodes returns the set of nodes in the graph, ordered by id
func (c CGraph) Nodes() graph.Nodes {
	return c.nodes(c.Keys)
}

// From returns the set of nodes called by the node with that id
func (c CGraph) From(id int64) graph.Nodes {
	return c.nodes(c.successors(id))
}

// To returns the set of nodes calling the node with that id
func (c CGraph) To(id int64) graph.Nodes {
	return c.nodes(c.predecessors(id))
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (c CGraph) HasEdgeBetween(xid, yid int64) bool {
	return c.Edges[xid][yid] || c.Edges[yid][xid]
}

// HasEdgeFromTo returns a boolean indicating whether the node with id uid calls the node with id vid
func (c CGraph) HasEdgeFromTo(uid, vid int64) bool {
	return c.Edges[uid][vid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c CGraph) Edge(uid, vid int64) graph.Edge {
	if !c.Edges[uid][vid] {
		return nil
	}
	return CEdge{from: c.IDMap[uid], to: c.IDMap[vid], Sites: len(c.Graph.PossibleSites(pta.NodeID(uid),
		pta.NodeID(vid)))}
}

// *************** Nodes implementation **********************

// CNode is a wrapper around a *pta.CGNode that implements the graph.Node interface
type CNode struct {
	Node *pta.CGNode
}

// ID returns the id of the node
func (n CNode) ID() int64 {
	return int64(n.Node.ID)
}

func (n CNode) String() string {
	if n.Node == nil {
		return ""
	}
	return n.Node.String()
}

// DOTID returns the identifier of the node in DOT output
func (n CNode) DOTID() string {
	return fmt.Sprintf("n%d", n.Node.ID)
}

// Attributes returns the DOT attributes of the node
func (n CNode) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("%q", n.Node.Method.Ref().String()+"\n"+n.Node.Context.String())},
	}
	if n.Node.Method.Synthetic {
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "box"})
	}
	return attrs
}

// *************** Edge implementation **********************

// CEdge implements the graph.Edge interface. Sites is the number of call sites of the caller that may invoke
// the callee.
type CEdge struct {
	from  CNode
	to    CNode
	Sites int
}

// From returns the origin of the edge
func (e CEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e CEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e CEdge) ReversedEdge() graph.Edge {
	return CEdge{from: e.to, to: e.from, Sites: e.Sites}
}

// Attributes returns the DOT attributes of the edge: edges merging several call sites are labelled
func (e CEdge) Attributes() []encoding.Attribute {
	if e.Sites <= 1 {
		return nil
	}
	return []encoding.Attribute{{Key: "label", Value: fmt.Sprintf("%q", fmt.Sprintf("%d sites", e.Sites))}}
}
