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

// Package report summarizes the results of the pointer analysis: statistics, markdown and HTML reports, and
// compressed snapshots that can be compared across runs.
package report

import (
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/awslabs/ar-go-pta/internal/graphutil"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

// Stats holds general statistics about a result
type Stats struct {
	Nodes        int
	Methods      int
	CallEdges    int
	Entrypoints  int
	PointerKeys  int
	InstanceKeys int
	PointsToSize int
	// MaxContexts is the largest number of nodes of one method
	MaxContexts int
	// SelfRecursive is the number of nodes calling themselves
	SelfRecursive int
	// Recursive is the number of groups of mutually recursive nodes, self-recursive nodes included
	Recursive int
	Steps     int
	Warnings  map[pta.WarningKind]int
}

// Compute returns the statistics of a result
func Compute(res *pta.Result) Stats {
	cg, pa := res.CallGraph, res.PointerAnalysis
	g := graphutil.NewCallgraphIterator(cg)
	contexts := contextsPerMethod(cg)
	s := Stats{
		Nodes:         cg.NumNodes(),
		Methods:       len(contexts),
		CallEdges:     cg.NumEdges(),
		Entrypoints:   len(cg.Entrypoints()),
		PointerKeys:   len(pa.PointerKeys()),
		InstanceKeys:  len(pa.InstanceKeys()),
		PointsToSize:  pa.TotalSize(),
		SelfRecursive: graph.Check(g).Loops,
		Recursive:     len(graphutil.RecursiveComponents(g)),
		Steps:         res.Steps,
		Warnings:      map[pta.WarningKind]int{},
	}
	for _, n := range contexts {
		if n > s.MaxContexts {
			s.MaxContexts = n
		}
	}
	if res.Diagnostics != nil {
		for _, w := range res.Diagnostics.Warnings() {
			s.Warnings[w.Kind]++
		}
	}
	return s
}

func contextsPerMethod(cg *pta.CallGraph) map[*ir.Method]int {
	res := map[*ir.Method]int{}
	for _, n := range cg.Nodes() {
		res[n.Method]++
	}
	return res
}

// MethodContexts is the number of contexts in which a method is analyzed
type MethodContexts struct {
	Method   ir.MethodRef
	Contexts int
}

// TopMethods returns the n methods analyzed in the most contexts, the synthetic root excluded
func TopMethods(cg *pta.CallGraph, n int) []MethodContexts {
	var res []MethodContexts
	for m, k := range contextsPerMethod(cg) {
		if !m.Synthetic {
			res = append(res, MethodContexts{Method: m.Ref(), Contexts: k})
		}
	}
	slices.SortFunc(res, func(a, b MethodContexts) bool {
		if a.Contexts != b.Contexts {
			return a.Contexts > b.Contexts
		}
		return a.Method.String() < b.Method.String()
	})
	if len(res) > n {
		res = res[:n]
	}
	return res
}

// SetSize is the size of the points-to set of a pointer key
type SetSize struct {
	Pointer pta.PointerKey
	Size    int
}

// LargestSets returns the n largest points-to sets
func LargestSets(pa *pta.PointerAnalysis, n int) []SetSize {
	var res []SetSize
	for _, pk := range pa.PointerKeys() {
		if size := pa.PointsTo(pk).Len(); size > 0 {
			res = append(res, SetSize{Pointer: pk, Size: size})
		}
	}
	slices.SortStableFunc(res, func(a, b SetSize) bool { return a.Size > b.Size })
	if len(res) > n {
		res = res[:n]
	}
	return res
}
