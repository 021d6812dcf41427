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
	"strings"
	"sync"

	"github.com/awslabs/ar-go-pta/analysis/cha"
	"golang.org/x/tools/container/intsets"
)

// Result is the outcome of a call graph construction.
type Result struct {
	CallGraph       *CallGraph
	PointerAnalysis *PointerAnalysis
	Diagnostics     *Diagnostics
	// Steps is the number of solver iterations performed
	Steps int
}

// PointerAnalysis is an immutable view of the points-to sets computed by an analysis. It owns copies of the sets:
// nothing the solver does afterwards changes the answers.
type PointerAnalysis struct {
	pointers  *Mapping[PointerKey]
	instances *Mapping[InstanceKey]
	pts       []*intsets.Sparse
	hierarchy cha.Hierarchy

	heapOnce sync.Once
	heap     *HeapGraph
}

// NewPointerAnalysis builds the view from the pointer keys (in variable order), the instance keys (in ordinal order)
// and a function returning the points-to set of the i-th pointer key. The sets are copied.
func NewPointerAnalysis(pointers []PointerKey, instances []InstanceKey, pts func(i int) *intsets.Sparse,
	hierarchy cha.Hierarchy) *PointerAnalysis {
	pa := &PointerAnalysis{
		pointers:  NewMapping[PointerKey](),
		instances: NewMapping[InstanceKey](),
		pts:       make([]*intsets.Sparse, len(pointers)),
		hierarchy: hierarchy,
	}
	for i, pk := range pointers {
		pa.pointers.Add(pk)
		s := &intsets.Sparse{}
		if src := pts(i); src != nil {
			s.Copy(src)
		}
		pa.pts[i] = s
	}
	for _, ik := range instances {
		pa.instances.Add(ik)
	}
	return pa
}

// PointsTo returns the instance keys pk may point to. Filtered locals are answered by filtering the set of their
// local. Unknown pointer keys point to nothing.
func (pa *PointerAnalysis) PointsTo(pk PointerKey) PointsToSet {
	if fk, ok := pk.(FilteredLocalKey); ok {
		return pa.filter(pa.PointsTo(fk.Local()), fk.Filter)
	}
	i := pa.pointers.Index(pk)
	if i < 0 {
		return PointsToSet{pa: pa, set: &intsets.Sparse{}}
	}
	return PointsToSet{pa: pa, set: pa.pts[i]}
}

func (pa *PointerAnalysis) filter(s PointsToSet, f TypeFilter) PointsToSet {
	res := &intsets.Sparse{}
	for _, ord := range s.Ordinals() {
		if pa.accepts(f, pa.instances.Get(ord)) {
			res.Insert(ord)
		}
	}
	return PointsToSet{pa: pa, set: res}
}

func (pa *PointerAnalysis) accepts(f TypeFilter, ik InstanceKey) bool {
	switch f := f.(type) {
	case SubtypeFilter:
		return pa.hierarchy == nil || pa.hierarchy.IsSubtypeOf(ik.ConcreteType(), f.Type)
	case InstanceFilter:
		return ik == f.Key
	}
	return true
}

// PointerKeys returns every pointer key that has a points-to set, in creation order
func (pa *PointerAnalysis) PointerKeys() []PointerKey {
	return pa.pointers.Items()
}

// InstanceKeys returns every instance key, in ordinal order
func (pa *PointerAnalysis) InstanceKeys() []InstanceKey {
	return pa.instances.Items()
}

// InstanceKey returns the instance key with ordinal i
func (pa *PointerAnalysis) InstanceKey(i int) InstanceKey {
	return pa.instances.Get(i)
}

// InstanceIndex returns the ordinal of an instance key, or -1
func (pa *PointerAnalysis) InstanceIndex(ik InstanceKey) int {
	return pa.instances.Index(ik)
}

// TotalSize returns the sum of the sizes of all points-to sets
func (pa *PointerAnalysis) TotalSize() int {
	n := 0
	for _, s := range pa.pts {
		n += s.Len()
	}
	return n
}

// HeapGraph returns the heap graph of the analysis. It is built on first use.
func (pa *PointerAnalysis) HeapGraph() *HeapGraph {
	pa.heapOnce.Do(func() {
		g := &HeapGraph{pa: pa, fields: map[int][]int{}}
		for i, pk := range pa.pointers.items {
			if base, ok := BaseInstance(pk); ok {
				if ord := pa.instances.Index(base); ord >= 0 {
					g.fields[ord] = append(g.fields[ord], i)
				}
			}
		}
		pa.heap = g
	})
	return pa.heap
}

// PointsToSet is a set of instance keys. It must not be modified.
type PointsToSet struct {
	pa  *PointerAnalysis
	set *intsets.Sparse
}

// Len returns the number of instance keys in the set
func (s PointsToSet) Len() int {
	if s.set == nil {
		return 0
	}
	return s.set.Len()
}

// IsEmpty returns true if the set is empty
func (s PointsToSet) IsEmpty() bool {
	return s.Len() == 0
}

// Has returns true if the set contains ik
func (s PointsToSet) Has(ik InstanceKey) bool {
	if s.set == nil {
		return false
	}
	ord := s.pa.instances.Index(ik)
	return ord >= 0 && s.set.Has(ord)
}

// Ordinals returns the ordinals of the keys of the set, in increasing order
func (s PointsToSet) Ordinals() []int {
	if s.set == nil {
		return nil
	}
	return s.set.AppendTo(nil)
}

// Keys returns the instance keys of the set, in ordinal order
func (s PointsToSet) Keys() []InstanceKey {
	ords := s.Ordinals()
	res := make([]InstanceKey, len(ords))
	for i, ord := range ords {
		res[i] = s.pa.instances.Get(ord)
	}
	return res
}

func (s PointsToSet) String() string {
	keys := s.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// HeapGraph is the bipartite graph of pointer keys and instance keys: pointer keys point to instance keys, and
// instance keys own the pointer keys of their fields and contents.
type HeapGraph struct {
	pa     *PointerAnalysis
	fields map[int][]int
}

// HeapEdge is an edge of the heap graph. When Field is false, Pointer points to Instance; otherwise Pointer is a
// field or the contents of Instance.
type HeapEdge struct {
	Pointer  PointerKey
	Instance InstanceKey
	Field    bool
}

// PointsTo returns the successors of a pointer key
func (g *HeapGraph) PointsTo(pk PointerKey) []InstanceKey {
	return g.pa.PointsTo(pk).Keys()
}

// PointersOf returns the field and contents pointer keys of an instance key
func (g *HeapGraph) PointersOf(ik InstanceKey) []PointerKey {
	ord := g.pa.instances.Index(ik)
	if ord < 0 {
		return nil
	}
	var res []PointerKey
	for _, i := range g.fields[ord] {
		res = append(res, g.pa.pointers.Get(i))
	}
	return res
}

// Edges returns every edge of the heap graph: points-to edges by pointer key, followed by the field edges by
// instance key.
func (g *HeapGraph) Edges() []HeapEdge {
	var res []HeapEdge
	for i, pk := range g.pa.pointers.items {
		for _, ord := range g.pa.pts[i].AppendTo(nil) {
			res = append(res, HeapEdge{Pointer: pk, Instance: g.pa.instances.Get(ord)})
		}
	}
	for ord, ik := range g.pa.instances.items {
		for _, i := range g.fields[ord] {
			res = append(res, HeapEdge{Pointer: g.pa.pointers.Get(i), Instance: ik, Field: true})
		}
	}
	return res
}
