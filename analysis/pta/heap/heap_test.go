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
	"testing"

	"github.com/awslabs/ar-go-pta/analysis/cha"
	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/stretchr/testify/require"
)

const program = `
classes:
  - name: IOException
    super: Throwable
  - name: Throwable
  - name: Point
    fields:
      - {name: x, type: int}
  - name: Box
    fields:
      - {name: content}
  - name: Main
    methods:
      - name: main
        static: true
        body:
          - "v1 = new Box"
          - "v2 = new Box"
          - "v3 = new Box"
          - "v4 = const String \"a\""
          - "v5 = const String \"b\""
          - "v6 = new Point"
          - "v7 = new IOException"
          - "v8 = newarray [[Box"
          - "return"
      - name: text
        static: true
        body:
          - "v1 = new String"
          - "v2 = new String"
          - "v3 = const String \"a\""
          - "v4 = const String \"b\""
          - "return"
  - name: Script
    language: js
    methods:
      - name: run
        static: true
        body:
          - "v1 = new Box"
          - "return"
`

// sites is a minimal interpreter answering NewSites from the method bodies
type sites struct{}

func (sites) Understands(*pta.CGNode) bool { return true }
func (sites) Instructions(n *pta.CGNode) []ir.Instruction {
	return n.Method.Body
}
func (sites) NewSites(n *pta.CGNode) []ir.NewSite {
	news, _, _, _ := pta.SummarizeInstructions(n.Method.Ref(), n.Method.Body)
	return news
}
func (sites) FieldsRead(*pta.CGNode) []ir.FieldRef    { return nil }
func (sites) FieldsWritten(*pta.CGNode) []ir.FieldRef { return nil }
func (sites) CallSites(*pta.CGNode) []ir.CallSite     { return nil }

type fixture struct {
	program *ir.Program
	h       *cha.ProgramHierarchy
	main    *pta.CGNode
	script  *pta.CGNode
}

func setup(t *testing.T) fixture {
	p, err := ir.ParseProgram([]byte(program))
	require.NoError(t, err)
	ctx := pta.CallStringContext{Site: ir.CallSite{PC: 1}, Tail: pta.CallStringContext{Site: ir.CallSite{PC: 2},
		Tail: pta.Everywhere{}}}
	return fixture{
		program: p,
		h:       cha.New(p),
		main:    &pta.CGNode{ID: 1, Method: p.Method(ir.MethodRef{Class: "Main", Name: "main"}), Context: ctx},
		script:  &pta.CGNode{ID: 2, Method: p.Method(ir.MethodRef{Class: "Script", Name: "run"}), Context: ctx},
	}
}

func (f fixture) site(pc int, typ ir.TypeRef) ir.NewSite {
	return ir.NewSite{Method: f.main.Method.Ref(), PC: pc, Type: typ}
}

func TestAllocationSites(t *testing.T) {
	f := setup(t)
	full := AllocationSites{HeapContextDepth: -1}
	k := full.InstanceKeyForAllocation(f.main, f.site(0, "Box"))
	require.Equal(t, pta.InstanceKey(pta.AllocationSiteKey{Site: f.site(0, "Box"), Heap: f.main.Context}), k)
	// idempotence
	require.Equal(t, k, full.InstanceKeyForAllocation(f.main, f.site(0, "Box")))
	require.NotEqual(t, k, full.InstanceKeyForAllocation(f.main, f.site(1, "Box")))

	one := AllocationSites{HeapContextDepth: 1}
	k1 := one.InstanceKeyForAllocation(f.main, f.site(0, "Box")).(pta.AllocationSiteKey)
	require.Equal(t, 1, pta.ContextLength(k1.Heap))
	none := AllocationSites{HeapContextDepth: 0}
	require.Equal(t, pta.Everywhere{}, none.InstanceKeyForAllocation(f.main, f.site(0, "Box")).(pta.AllocationSiteKey).Heap)

	require.Nil(t, full.InstanceKeyForConstant("int", "3"))
	require.Equal(t, pta.InstanceKey(pta.ConstantKey{Type: "String", Value: "a"}),
		full.InstanceKeyForConstant("String", "a"))
	require.Equal(t, pta.InstanceKey(pta.ClassObjectKey{Object: "Box", Type: "Class"}),
		full.InstanceKeyForMetadataObject(ir.TypeRef("Box"), "Class"))
	require.Equal(t, pta.InstanceKey(pta.FunctionKey{Method: f.main.Method.Ref(), Type: "Function"}),
		full.InstanceKeyForMetadataObject(f.main.Method, "Function"))
	require.Nil(t, full.InstanceKeyForMetadataObject(42, "Class"))

	multi := full.InstanceKeyForMultiNewArray(f.main, f.site(7, "[[Box"), 1)
	require.Equal(t, ir.TypeRef("[Box"), multi.ConcreteType())
}

func TestClassBased(t *testing.T) {
	f := setup(t)
	cb := ClassBased{}
	require.Equal(t, cb.InstanceKeyForAllocation(f.main, f.site(0, "Box")),
		cb.InstanceKeyForAllocation(f.script, f.site(1, "Box")))
	require.Equal(t, pta.InstanceKey(pta.TypeKey{Type: "[Box"}),
		cb.InstanceKeyForMultiNewArray(f.main, f.site(7, "[[Box"), 1))
	require.Equal(t, pta.InstanceKey(pta.TypeKey{Type: "IOException"}),
		cb.InstanceKeyForPointerException(f.main, 3, "IOException"))
}

func TestSmushing(t *testing.T) {
	f := setup(t)
	inner := AllocationSites{HeapContextDepth: -1}
	sm := Smushing{
		Inner:            inner,
		Hierarchy:        f.h,
		Interpreter:      sites{},
		HeapContextDepth: -1,
		Bounds: config.SmushingOptions{
			Strings:    config.CardinalityBound{Enabled: true},
			Primitives: config.CardinalityBound{Enabled: true},
			Throwables: config.CardinalityBound{Enabled: true},
			Many:       config.CardinalityBound{Enabled: true, Limit: 2},
		},
	}
	// class-based merging of strings
	require.Equal(t, pta.InstanceKey(pta.TypeKey{Type: "String"}), sm.InstanceKeyForAllocation(f.main, f.site(3, "String")))
	require.Equal(t, sm.InstanceKeyForAllocation(f.main, f.site(3, "String")),
		sm.InstanceKeyForAllocation(f.main, f.site(4, "String")))
	require.Equal(t, pta.InstanceKey(pta.TypeKey{Type: "Point"}), sm.InstanceKeyForAllocation(f.main, f.site(5, "Point")))
	require.Equal(t, pta.InstanceKey(pta.TypeKey{Type: "IOException"}),
		sm.InstanceKeyForAllocation(f.main, f.site(6, "IOException")))
	require.Equal(t, pta.InstanceKey(pta.TypeKey{Type: "IOException"}),
		sm.InstanceKeyForPointerException(f.main, 2, "IOException"))

	// main allocates three boxes: more than the limit, merged per node
	box := sm.InstanceKeyForAllocation(f.main, f.site(0, "Box"))
	require.Equal(t, pta.InstanceKey(pta.SmushedKey{Method: f.main.Method.Ref(), Heap: f.main.Context, Type: "Box"}), box)
	require.Equal(t, box, sm.InstanceKeyForAllocation(f.main, f.site(2, "Box")))
	// run allocates a single box, under the limit
	require.IsType(t, pta.AllocationSiteKey{}, sm.InstanceKeyForAllocation(f.script,
		ir.NewSite{Method: f.script.Method.Ref(), PC: 0, Type: "Box"}))

	// constants are left to the inner factory
	require.Equal(t, pta.InstanceKey(pta.ConstantKey{Type: "String", Value: "a"}),
		sm.InstanceKeyForConstant("String", "a"))

	require.False(t, Enabled(config.SmushingOptions{}))
	require.True(t, Enabled(sm.Bounds))
}

func TestSmushingConstantKeys(t *testing.T) {
	f := setup(t)
	text := &pta.CGNode{ID: 3, Method: f.program.Method(ir.MethodRef{Class: "Main", Name: "text"}), Context: f.main.Context}
	at := func(pc int) ir.NewSite { return ir.NewSite{Method: text.Method.Ref(), PC: pc, Type: "String"} }
	sm := Smushing{
		Inner:            AllocationSites{HeapContextDepth: -1},
		Hierarchy:        f.h,
		Interpreter:      sites{},
		HeapContextDepth: -1,
		Bounds:           config.SmushingOptions{Strings: config.CardinalityBound{Enabled: true, Limit: 2}},
	}
	// the two constants count as sites when they are allocated at their site
	require.IsType(t, pta.SmushedKey{}, sm.InstanceKeyForAllocation(text, at(0)))

	// abstracted by value, only the two allocations are sites
	sm.ConstantKeys = true
	k0 := sm.InstanceKeyForAllocation(text, at(0))
	k1 := sm.InstanceKeyForAllocation(text, at(1))
	require.Equal(t, pta.InstanceKey(pta.AllocationSiteKey{Site: at(0), Heap: text.Context}), k0)
	require.Equal(t, pta.InstanceKey(pta.AllocationSiteKey{Site: at(1), Heap: text.Context}), k1)
}

func TestSmushingHeapContext(t *testing.T) {
	f := setup(t)
	sm := Smushing{
		Inner:       AllocationSites{},
		Hierarchy:   f.h,
		Interpreter: sites{},
		Bounds:      config.SmushingOptions{Many: config.CardinalityBound{Enabled: true, Limit: 2}},
	}
	for _, test := range []struct {
		depth int
		want  pta.Context
	}{
		{0, pta.Everywhere{}},
		{1, pta.TruncateContext(f.main.Context, 1)},
		{-1, f.main.Context},
	} {
		sm.HeapContextDepth = test.depth
		sm.Inner = AllocationSites{HeapContextDepth: test.depth}
		k := sm.InstanceKeyForAllocation(f.main, f.site(0, "Box"))
		require.Equal(t, pta.InstanceKey(pta.SmushedKey{Method: f.main.Method.Ref(), Heap: test.want, Type: "Box"}), k)
		// non-smushed keys of the same node agree on the heap context
		inner := sm.InstanceKeyForAllocation(f.main, f.site(5, "Point")).(pta.AllocationSiteKey)
		require.Equal(t, test.want, inner.Heap)
	}
}

func TestFactorySites(t *testing.T) {
	f := setup(t)
	fs := FactorySites{Inner: AllocationSites{HeapContextDepth: -1}}
	call := ir.CallSite{Method: ir.MethodRef{Class: "Main", Name: "main"}, PC: 4}
	node := &pta.CGNode{ID: 3, Method: f.main.Method, Context: pta.FactoryContext{Site: call}}
	require.Equal(t, pta.InstanceKey(pta.FactorySiteKey{Site: call, Type: "Box"}),
		fs.InstanceKeyForAllocation(node, f.site(0, "Box")))
	require.IsType(t, pta.AllocationSiteKey{}, fs.InstanceKeyForAllocation(f.main, f.site(0, "Box")))
}

func TestCrossLanguage(t *testing.T) {
	f := setup(t)
	cl := CrossLanguage{
		ByLanguage: map[ir.Language]pta.InstanceKeyFactory{ir.Java: AllocationSites{HeapContextDepth: -1}},
		Default:    ir.Java,
	}
	k := cl.InstanceKeyForAllocation(f.main, f.site(0, "Box"))
	require.Equal(t, ir.Java, k.(pta.LanguageKey).Language)
	require.IsType(t, pta.AllocationSiteKey{}, pta.Unwrap(k))
	require.Nil(t, cl.InstanceKeyForConstant("int", "1"))

	require.PanicsWithError(t, `configuration error: no instance key factory for language "js"`, func() {
		cl.InstanceKeyForAllocation(f.script, ir.NewSite{Method: f.script.Method.Ref(), Type: "Box"})
	})
}

func TestFromConfig(t *testing.T) {
	f := setup(t)
	cfg := config.NewDefault()
	require.Equal(t, []ir.Language{ir.Java, ir.JavaScript}, Languages(f.program))
	fac := FromConfig(cfg, f.h, sites{})
	require.IsType(t, CrossLanguage{}, fac)

	javaOnly := ir.NewProgram()
	fac = FromConfig(cfg, cha.New(javaOnly), sites{})
	require.IsType(t, FactorySites{}, fac)
	require.IsType(t, AllocationSites{}, fac.(FactorySites).Inner)

	cfg.Smushing.Strings.Enabled = true
	cfg.HeapContextDepth = 1
	cfg.UseConstantSpecificKeys = true
	fac = FromConfig(cfg, cha.New(javaOnly), sites{})
	require.IsType(t, Smushing{}, fac.(FactorySites).Inner)
	sm := fac.(FactorySites).Inner.(Smushing)
	require.Equal(t, 1, sm.HeapContextDepth)
	require.True(t, sm.ConstantKeys)
}
