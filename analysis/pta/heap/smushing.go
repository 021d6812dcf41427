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

package heap

import (
	"github.com/awslabs/ar-go-pta/analysis/cha"
	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
)

// Smushing bounds the number of keys allocated for some kinds of objects. The kinds are checked in order: strings,
// throwables, primitive holders, arrays, and finally any type (the "many" bound). The first enabled bound whose
// kind matches the allocated type applies:
//   - a bound with a zero limit merges all the sites of the type into one TypeKey,
//   - a bound with a positive limit merges the sites of the type allocated by one node into one SmushedKey, when
//     the node has more than limit sites of that type.
//
// Allocations with no applicable bound are delegated to Inner.
type Smushing struct {
	Inner       pta.InstanceKeyFactory
	Bounds      config.SmushingOptions
	Hierarchy   cha.Hierarchy
	Interpreter pta.ContextInterpreter
	// HeapContextDepth truncates the heap context of smushed keys, as in AllocationSites
	HeapContextDepth int
	// ConstantKeys is set when constants are abstracted by value. Constants are then not counted as sites.
	ConstantKeys bool
}

type kindBound struct {
	matches func(cha.Hierarchy, ir.TypeRef) bool
	bound   config.CardinalityBound
}

func (f Smushing) kinds() []kindBound {
	return []kindBound{
		{func(h cha.Hierarchy, t ir.TypeRef) bool { return h.IsString(t) }, f.Bounds.Strings},
		{func(h cha.Hierarchy, t ir.TypeRef) bool { return h.IsThrowable(t) }, f.Bounds.Throwables},
		{func(h cha.Hierarchy, t ir.TypeRef) bool { return h.IsPrimitiveHolder(t) }, f.Bounds.Primitives},
		{func(h cha.Hierarchy, t ir.TypeRef) bool { return h.IsArray(t) }, f.Bounds.Arrays},
		{func(cha.Hierarchy, ir.TypeRef) bool { return true }, f.Bounds.Many},
	}
}

// boundFor returns the bound that applies to allocations of t
func (f Smushing) boundFor(t ir.TypeRef) (config.CardinalityBound, bool) {
	for _, k := range f.kinds() {
		if k.bound.Enabled && k.matches(f.Hierarchy, t) {
			return k.bound, true
		}
	}
	return config.CardinalityBound{}, false
}

// sitesOfType counts the allocation sites of type t in the instructions of node
func (f Smushing) sitesOfType(node *pta.CGNode, t ir.TypeRef) int {
	if f.Interpreter == nil {
		return 0
	}
	constants := map[int]bool{}
	if f.ConstantKeys {
		for _, instr := range f.Interpreter.Instructions(node) {
			if _, ok := instr.(*ir.Const); ok {
				constants[instr.PC()] = true
			}
		}
	}
	n := 0
	for _, s := range f.Interpreter.NewSites(node) {
		if s.Type == t && !constants[s.PC] {
			n++
		}
	}
	return n
}

func (f Smushing) InstanceKeyForAllocation(node *pta.CGNode, site ir.NewSite) pta.InstanceKey {
	b, ok := f.boundFor(site.Type)
	switch {
	case !ok:
		return f.Inner.InstanceKeyForAllocation(node, site)
	case b.Limit == 0:
		return pta.TypeKey{Type: site.Type}
	case f.sitesOfType(node, site.Type) > b.Limit:
		heapCtx := AllocationSites{HeapContextDepth: f.HeapContextDepth}.heapContext(node)
		return pta.SmushedKey{Method: node.Method.Ref(), Heap: heapCtx, Type: site.Type}
	}
	return f.Inner.InstanceKeyForAllocation(node, site)
}

func (f Smushing) InstanceKeyForMultiNewArray(node *pta.CGNode, site ir.NewSite, dim int) pta.InstanceKey {
	if f.Bounds.Arrays.Enabled && f.Bounds.Arrays.Limit == 0 {
		return pta.TypeKey{Type: innerArrayType(site.Type, dim)}
	}
	return f.Inner.InstanceKeyForMultiNewArray(node, site, dim)
}

func (f Smushing) InstanceKeyForConstant(typ ir.TypeRef, value string) pta.InstanceKey {
	return f.Inner.InstanceKeyForConstant(typ, value)
}

func (f Smushing) InstanceKeyForPointerException(node *pta.CGNode, pc int, typ ir.TypeRef) pta.InstanceKey {
	if f.Bounds.Throwables.Enabled {
		return pta.TypeKey{Type: typ}
	}
	return f.Inner.InstanceKeyForPointerException(node, pc, typ)
}

func (f Smushing) InstanceKeyForMetadataObject(obj any, typ ir.TypeRef) pta.InstanceKey {
	return f.Inner.InstanceKeyForMetadataObject(obj, typ)
}

// Enabled returns true if any bound of the options is enabled
func Enabled(opts config.SmushingOptions) bool {
	return opts.Strings.Enabled || opts.Throwables.Enabled || opts.Primitives.Enabled || opts.Arrays.Enabled ||
		opts.Many.Enabled
}
