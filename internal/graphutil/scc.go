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

package graphutil

import (
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/topo"
)

// RecursiveComponents returns the strongly connected components of the graph that contain a cycle: the groups of
// mutually recursive nodes, and the nodes calling themselves.
// Nodes are sorted inside a component, and components are sorted by their first node.
func RecursiveComponents(cg CGraph) [][]int64 {
	var res [][]int64
	for _, component := range graph.StrongComponents(cg) {
		if len(component) == 1 {
			v := int64(component[0])
			if _, ok := cg.IDMap[v]; !ok || !cg.Edges[v][v] {
				continue
			}
		}
		ids := make([]int64, len(component))
		for i, v := range component {
			ids[i] = int64(v)
		}
		slices.Sort(ids)
		res = append(res, ids)
	}
	slices.SortFunc(res, func(a, b []int64) bool { return a[0] < b[0] })
	return res
}

// Reaches returns true if there is a chain of calls from the node with id from to the node with id to
func Reaches(cg CGraph, from, to int64) bool {
	u, v := cg.Node(from), cg.Node(to)
	if u == nil || v == nil {
		return false
	}
	return topo.PathExistsIn(cg, u, v)
}

// CallChain returns a shortest chain of call graph nodes from the root to the node with id to, both included.
// It returns nil if the node is not reachable from the root.
func CallChain(cg CGraph, to pta.NodeID) []*pta.CGNode {
	root := cg.Node(int64(cg.Graph.Root().ID))
	if root == nil || cg.Node(int64(to)) == nil {
		return nil
	}
	nodes, _ := path.DijkstraFrom(root, cg).To(int64(to))
	return nodesOf(nodes)
}

func nodesOf(nodes []gonum.Node) []*pta.CGNode {
	if len(nodes) == 0 {
		return nil
	}
	res := make([]*pta.CGNode, len(nodes))
	for i, n := range nodes {
		res[i] = n.(CNode).Node
	}
	return res
}
