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

package builder

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/awslabs/ar-go-pta/analysis/pta/heap"
	"github.com/awslabs/ar-go-pta/analysis/pta/solver"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var mainEntry = []Entrypoint{MainEntrypoint("Main", "main")}

func loadProgram(t *testing.T, name string) *ir.Program {
	t.Helper()
	p, err := ir.LoadProgram(filepath.Join("testdata", name))
	require.NoError(t, err)
	return p
}

func quietLogger(cfg *config.Config) *config.LogGroup {
	l := config.NewLogGroup(cfg)
	l.SetAllOutput(io.Discard)
	return l
}

func newBuilder(t *testing.T, p *ir.Program, cfg *config.Config, opts ...Option) *Builder {
	t.Helper()
	if cfg == nil {
		cfg = config.NewDefault()
	}
	b, err := New(p, nil, cfg, quietLogger(cfg), opts...)
	require.NoError(t, err)
	return b
}

func build(t *testing.T, p *ir.Program, cfg *config.Config, entrypoints []Entrypoint) *pta.Result {
	t.Helper()
	res, err := newBuilder(t, p, cfg).Build(context.Background(), entrypoints)
	require.NoError(t, err)
	return res
}

// nodeOf returns the only node of a method
func nodeOf(t *testing.T, res *pta.Result, p *ir.Program, class ir.TypeRef, name string) *pta.CGNode {
	t.Helper()
	m := p.Method(ir.MethodRef{Class: class, Name: name})
	require.NotNil(t, m, "no method %s.%s", class, name)
	nodes := res.CallGraph.NodesFor(m)
	require.Len(t, nodes, 1, "nodes of %s", m)
	return nodes[0]
}

func localOf(res *pta.Result, n *pta.CGNode, v int) pta.PointsToSet {
	return res.PointerAnalysis.PointsTo(pta.LocalKey{Node: n.ID, Value: v})
}

// unwrapped returns the keys of a set without their language tags
func unwrapped(s pta.PointsToSet) []pta.InstanceKey {
	var res []pta.InstanceKey
	for _, k := range s.Keys() {
		res = append(res, pta.Unwrap(k))
	}
	return res
}

func site(class ir.TypeRef, method string, pc int, typ ir.TypeRef) ir.NewSite {
	return ir.NewSite{Method: ir.MethodRef{Class: class, Name: method}, PC: pc, Type: typ}
}

func TestObjectSensitivityDistinguishesReceivers(t *testing.T) {
	p := loadProgram(t, "object_sensitivity.yaml")
	a1 := pta.AllocationSiteKey{Site: site("Main", "main", 0, "A"), Heap: pta.Everywhere{}}
	b1 := pta.AllocationSiteKey{Site: site("Main", "main", 2, "B"), Heap: pta.Everywhere{}}
	field := pta.InstanceFieldKey{Instance: a1, Field: ir.FieldRef{Class: "A", Name: "f"}}
	set := p.Method(ir.MethodRef{Class: "A", Name: "set"})

	res := build(t, p, config.NewDefault(), mainEntry)
	require.Equal(t, 2, res.PointerAnalysis.PointsTo(field).Len())
	require.Len(t, res.CallGraph.NodesFor(set), 1)

	cfg := config.NewDefault()
	cfg.ContextPolicy = config.PolicyObject
	cfg.ObjectSensitivityDepth = 1
	res = build(t, p, cfg, mainEntry)
	pts := res.PointerAnalysis.PointsTo(field)
	require.Equal(t, 1, pts.Len(), "A@s1.f = %s", pts)
	require.True(t, pts.Has(b1))
	require.Len(t, res.CallGraph.NodesFor(set), 2)
	for _, n := range res.CallGraph.NodesFor(set) {
		require.IsType(t, pta.ObjectContext{}, n.Context)
	}
}

func TestObjectSensitivityDepth(t *testing.T) {
	p := loadProgram(t, "object_depth.yaml")
	boxField := ir.FieldRef{Class: "Box", Name: "f"}

	for _, tt := range []struct {
		depth int
		size  int
	}{
		{depth: 2, size: 2},
		{depth: 3, size: 1},
	} {
		t.Run(fmt.Sprintf("depth %d", tt.depth), func(t *testing.T) {
			cfg := config.NewDefault()
			cfg.ContextPolicy = config.PolicyObject
			cfg.ObjectSensitivityDepth = tt.depth
			res := build(t, p, cfg, mainEntry)

			var boxes []pta.InstanceKey
			for _, ik := range res.PointerAnalysis.InstanceKeys() {
				if ak, ok := pta.Unwrap(ik).(pta.AllocationSiteKey); ok && ak.Site.Type == "Box" {
					boxes = append(boxes, ik)
				}
			}
			require.Len(t, boxes, 2)
			for _, box := range boxes {
				pts := res.PointerAnalysis.PointsTo(pta.InstanceFieldKey{Instance: box, Field: boxField})
				require.Equal(t, tt.size, pts.Len(), "%s.f = %s", box, pts)
			}
		})
	}
}

func TestStringConstants(t *testing.T) {
	p := loadProgram(t, "strings.yaml")

	t.Run("allocation sites", func(t *testing.T) {
		res := build(t, p, config.NewDefault(), mainEntry)
		main := nodeOf(t, res, p, "Main", "main")
		require.Equal(t, 2, localOf(res, main, 3).Len())
		require.True(t, localOf(res, main, 4).IsEmpty())
		require.True(t, localOf(res, main, 5).IsEmpty())
	})

	t.Run("smushed", func(t *testing.T) {
		cfg := config.NewDefault()
		cfg.Smushing.Strings = config.CardinalityBound{Enabled: true}
		res := build(t, p, cfg, mainEntry)
		main := nodeOf(t, res, p, "Main", "main")
		require.Equal(t, []pta.InstanceKey{pta.TypeKey{Type: "String"}}, unwrapped(localOf(res, main, 3)))
	})

	t.Run("constant keys", func(t *testing.T) {
		cfg := config.NewDefault()
		cfg.UseConstantSpecificKeys = true
		res := build(t, p, cfg, mainEntry)
		main := nodeOf(t, res, p, "Main", "main")
		require.ElementsMatch(t, []pta.InstanceKey{
			pta.ConstantKey{Type: "String", Value: "a"},
			pta.ConstantKey{Type: "String", Value: "b"},
		}, unwrapped(localOf(res, main, 3)))
	})
}

func TestCallStrings(t *testing.T) {
	p := loadProgram(t, "call_strings.yaml")
	id := p.Method(ir.MethodRef{Class: "Util", Name: "id"})

	res := build(t, p, config.NewDefault(), mainEntry)
	require.Len(t, res.CallGraph.NodesFor(id), 1)
	main := nodeOf(t, res, p, "Main", "main")
	require.Equal(t, 2, localOf(res, main, 3).Len())

	cfg := config.NewDefault()
	cfg.ContextPolicy = config.PolicyCallString
	cfg.K = 1
	res = build(t, p, cfg, mainEntry)
	require.Len(t, res.CallGraph.NodesFor(id), 2)
	main = nodeOf(t, res, p, "Main", "main")
	// the heap context of the objects is the call string of main
	for v, typ := range map[int]ir.TypeRef{3: "A", 4: "B"} {
		keys := localOf(res, main, v).Keys()
		require.Len(t, keys, 1)
		require.Equal(t, typ, keys[0].ConcreteType())
		require.IsType(t, pta.CallStringContext{}, keys[0].(pta.AllocationSiteKey).Heap)
	}

	// every call edge of main has its own site
	for _, callee := range res.CallGraph.Succs(main.ID) {
		require.Len(t, res.CallGraph.PossibleSites(main.ID, callee.ID), 1)
	}
}

// featureEntrypoints are the methods of Main in features.yaml
var featureEntrypoints = []Entrypoint{
	MainEntrypoint("Main", "dispatch"),
	MainEntrypoint("Main", "exceptions"),
	MainEntrypoint("Main", "arrays"),
	MainEntrypoint("Main", "statics"),
	MainEntrypoint("Main", "reflection"),
	MainEntrypoint("Main", "callApply"),
	MainEntrypoint("Main", "properties"),
	MainEntrypoint("Main", "factories"),
	MainEntrypoint("Main", "unresolved"),
}

//gocyclo:ignore
func TestFeatures(t *testing.T) {
	p := loadProgram(t, "features.yaml")
	cfg := config.NewDefault()
	cfg.Reflection = config.ReflectionFull
	cfg.HandleCallApply = true
	res := build(t, p, cfg, featureEntrypoints)
	pa := res.PointerAnalysis

	require.Len(t, res.CallGraph.Entrypoints(), len(featureEntrypoints))
	require.Equal(t, 0, res.Diagnostics.Count(pta.MissingBody))

	t.Run("dispatch", func(t *testing.T) {
		n := nodeOf(t, res, p, "Main", "dispatch")
		require.Equal(t, 2, localOf(res, n, 3).Len())
		nodeOf(t, res, p, "A", "get")
		nodeOf(t, res, p, "B", "get")
		require.Equal(t, []pta.InstanceKey{
			pta.AllocationSiteKey{Site: site("B", "get", 0, "C"), Heap: pta.Everywhere{}},
		}, unwrapped(localOf(res, n, 4)))
		require.Len(t, res.CallGraph.Succs(n.ID), 2)
	})

	t.Run("exceptions", func(t *testing.T) {
		n := nodeOf(t, res, p, "Main", "exceptions")
		ioe := pta.AllocationSiteKey{Site: site("Lib", "fail", 0, "IOException"), Heap: pta.Everywhere{}}
		require.Equal(t, []pta.InstanceKey{ioe}, unwrapped(localOf(res, n, 1)))
		require.ElementsMatch(t, []pta.InstanceKey{
			ioe,
			pta.ExceptionKey{
				Method: ir.MethodRef{Class: "Main", Name: "exceptions"},
				PC:     3,
				Heap:   pta.Everywhere{},
				Type:   "NullPointerException",
			},
		}, unwrapped(pa.PointsTo(pta.ExceptionalReturnKey{Node: n.ID})))
	})

	t.Run("arrays", func(t *testing.T) {
		n := nodeOf(t, res, p, "Main", "arrays")
		arrSite := site("Main", "arrays", 0, "[[A")
		require.Equal(t, []pta.InstanceKey{
			pta.MultiArrayKey{Site: arrSite, Heap: pta.Everywhere{}, Dim: 1},
		}, unwrapped(localOf(res, n, 2)))
		a := pta.AllocationSiteKey{Site: site("Main", "arrays", 2, "A"), Heap: pta.Everywhere{}}
		require.Equal(t, []pta.InstanceKey{a}, unwrapped(localOf(res, n, 4)))
		require.True(t, localOf(res, n, 5).IsEmpty())
		require.Equal(t, []pta.InstanceKey{a}, unwrapped(localOf(res, n, 6)))
	})

	t.Run("statics", func(t *testing.T) {
		n := nodeOf(t, res, p, "Main", "statics")
		require.Equal(t, []pta.InstanceKey{
			pta.AllocationSiteKey{Site: site("Main", "statics", 0, "C"), Heap: pta.Everywhere{}},
		}, unwrapped(localOf(res, n, 2)))
		field := pta.StaticFieldKey{Field: ir.FieldRef{Class: "Holder", Name: "shared"}}
		require.Equal(t, 1, pa.PointsTo(field).Len())
	})

	t.Run("reflection", func(t *testing.T) {
		n := nodeOf(t, res, p, "Main", "reflection")
		keys := localOf(res, n, 2).Keys()
		require.Len(t, keys, 1)
		require.Equal(t, ir.TypeRef("C"), keys[0].ConcreteType())
		ni := nodeOf(t, res, p, "Class", "newInstance")
		require.Equal(t, pta.ClassContext{Type: "C"}, ni.Context)
	})

	t.Run("call apply", func(t *testing.T) {
		n := nodeOf(t, res, p, "Main", "callApply")
		require.Equal(t, []pta.InstanceKey{
			pta.AllocationSiteKey{Site: site("Main", "callApply", 1, "C"), Heap: pta.Everywhere{}},
		}, unwrapped(localOf(res, n, 3)))
		nodeOf(t, res, p, "Lib", "ident")
	})

	t.Run("properties", func(t *testing.T) {
		n := nodeOf(t, res, p, "Main", "properties")
		a := pta.AllocationSiteKey{Site: site("Main", "properties", 1, "A"), Heap: pta.Everywhere{}}
		require.Equal(t, []pta.InstanceKey{a}, unwrapped(localOf(res, n, 3)))
		require.True(t, localOf(res, n, 4).IsEmpty())
		require.Equal(t, []pta.InstanceKey{a}, unwrapped(localOf(res, n, 5)))
	})

	t.Run("factories", func(t *testing.T) {
		n := nodeOf(t, res, p, "Main", "factories")
		first, second := unwrapped(localOf(res, n, 1)), unwrapped(localOf(res, n, 2))
		require.Len(t, first, 1)
		require.Len(t, second, 1)
		fk1, ok := first[0].(pta.FactorySiteKey)
		require.True(t, ok, "%s is not a factory key", first[0])
		fk2, ok := second[0].(pta.FactorySiteKey)
		require.True(t, ok, "%s is not a factory key", second[0])
		require.Equal(t, 0, fk1.Site.PC)
		require.Equal(t, 1, fk2.Site.PC)
		require.Equal(t, ir.TypeRef("A"), fk1.Type)
		require.NotEqual(t, fk1, fk2)
	})

	t.Run("unresolved", func(t *testing.T) {
		require.Equal(t, 2, res.Diagnostics.Count(pta.UnresolvedTarget))
		n := nodeOf(t, res, p, "Main", "unresolved")
		require.Empty(t, res.CallGraph.Succs(n.ID))
	})
}

func TestIntrinsicsDisabled(t *testing.T) {
	p := loadProgram(t, "features.yaml")
	res := build(t, p, config.NewDefault(), []Entrypoint{
		MainEntrypoint("Main", "reflection"),
		MainEntrypoint("Main", "callApply"),
	})
	require.Equal(t, 2, res.Diagnostics.Count(pta.MissingBody))
	require.True(t, localOf(res, nodeOf(t, res, p, "Main", "reflection"), 2).IsEmpty())
	require.True(t, localOf(res, nodeOf(t, res, p, "Main", "callApply"), 3).IsEmpty())
	require.Empty(t, res.CallGraph.NodesFor(p.Method(ir.MethodRef{Class: "Lib", Name: "ident"})))
}

func TestInstanceEntrypoint(t *testing.T) {
	p := loadProgram(t, "features.yaml")
	e := Entrypoint{Method: ir.MethodRef{Class: "A", Name: "self"}, Receiver: "B"}
	res := build(t, p, nil, []Entrypoint{e})
	entries := res.CallGraph.Entrypoints()
	require.Len(t, entries, 1)
	require.Equal(t, ir.MethodRef{Class: "A", Name: "self"}, entries[0].Method.Ref())
	keys := res.PointerAnalysis.PointsTo(pta.ReturnKey{Node: entries[0].ID}).Keys()
	require.Len(t, keys, 1)
	require.Equal(t, ir.TypeRef("B"), keys[0].ConcreteType())
}

func TestEntrypointsFromConfig(t *testing.T) {
	cfg, err := config.LoadFromBytes("entrypoints.yaml", []byte(`
entrypoints:
  - class: Main
    method: main
  - class: A
    method: self
    receiver: B
    args: [C]
`))
	require.NoError(t, err)
	require.Equal(t, []Entrypoint{
		MainEntrypoint("Main", "main"),
		{Method: ir.MethodRef{Class: "A", Name: "self"}, Receiver: "B", Args: []ir.TypeRef{"C"}},
	}, EntrypointsFromConfig(cfg))
}

type noContext struct{}

func (noContext) SelectContext(*pta.CGNode, ir.CallSite, *ir.Method, []pta.InstanceKey) pta.Context {
	return nil
}

func (noContext) RelevantParameters(*pta.CGNode, ir.CallSite) []int { return nil }

// noObjects gives no key to allocations, or only to the inner arrays of multi-dimensional allocations
type noObjects struct {
	heap.AllocationSites
	outer bool
}

func (f noObjects) InstanceKeyForAllocation(n *pta.CGNode, site ir.NewSite) pta.InstanceKey {
	if f.outer {
		return f.AllocationSites.InstanceKeyForAllocation(n, site)
	}
	return nil
}

func (noObjects) InstanceKeyForMultiNewArray(*pta.CGNode, ir.NewSite, int) pta.InstanceKey { return nil }

func TestErrors(t *testing.T) {
	p := loadProgram(t, "features.yaml")
	ctx := context.Background()
	var cfgErr *pta.ConfigError

	t.Run("no entrypoint", func(t *testing.T) {
		_, err := newBuilder(t, p, nil).Build(ctx, nil)
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("unresolved entrypoints", func(t *testing.T) {
		b := newBuilder(t, p, nil)
		_, err := b.Build(ctx, []Entrypoint{MainEntrypoint("Main", "missing"), {}})
		require.ErrorAs(t, err, &cfgErr)
		require.Equal(t, 2, b.Diagnostics().Count(pta.UnresolvedEntrypoint))
	})

	t.Run("invalid configuration", func(t *testing.T) {
		cfg := config.NewDefault()
		cfg.ContextPolicy = config.PolicyCallString
		_, err := New(p, nil, cfg, quietLogger(cfg))
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("missing language factory", func(t *testing.T) {
		b := newBuilder(t, p, nil, WithFactory(heap.CrossLanguage{
			ByLanguage: map[ir.Language]pta.InstanceKeyFactory{ir.Java: heap.AllocationSites{}},
			Default:    ir.Java,
		}))
		_, err := b.Build(ctx, []Entrypoint{MainEntrypoint("Script", "run")})
		require.ErrorAs(t, err, &cfgErr)
		require.ErrorContains(t, err, `"js"`)
	})

	t.Run("no context", func(t *testing.T) {
		b := newBuilder(t, p, nil, WithSelector(noContext{}))
		_, err := b.Build(ctx, []Entrypoint{MainEntrypoint("Main", "statics")})
		var invErr *pta.InvariantError
		require.ErrorAs(t, err, &invErr)
	})

	t.Run("no instance key", func(t *testing.T) {
		b := newBuilder(t, p, nil, WithFactory(noObjects{}))
		_, err := b.Build(ctx, []Entrypoint{MainEntrypoint("Main", "statics")})
		var invErr *pta.InvariantError
		require.ErrorAs(t, err, &invErr)
		require.ErrorContains(t, err, "no instance key for")
	})

	t.Run("no inner array key", func(t *testing.T) {
		b := newBuilder(t, p, nil, WithFactory(noObjects{outer: true}))
		_, err := b.Build(ctx, []Entrypoint{MainEntrypoint("Main", "arrays")})
		var invErr *pta.InvariantError
		require.ErrorAs(t, err, &invErr)
		require.ErrorContains(t, err, "dimension 1")
	})
}

func TestCancel(t *testing.T) {
	p := loadProgram(t, "object_sensitivity.yaml")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := newBuilder(t, p, nil, WithMonitor(func(pr Progress) {
		if pr.Step == 3 {
			cancel()
		}
	}))
	res, err := b.Build(ctx, mainEntry)
	require.Nil(t, res)
	var cancelErr *pta.CancelError
	require.ErrorAs(t, err, &cancelErr)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, solver.ErrCanceled)
	require.Equal(t, 3, cancelErr.Partial.Steps)
	require.NotNil(t, cancelErr.Partial.CallGraph)
}

func TestStepLimit(t *testing.T) {
	p := loadProgram(t, "object_sensitivity.yaml")
	cfg := config.NewDefault()
	cfg.MaxSteps = 2
	_, err := newBuilder(t, p, cfg).Build(context.Background(), mainEntry)
	var cancelErr *pta.CancelError
	require.ErrorAs(t, err, &cancelErr)
	require.ErrorIs(t, err, solver.ErrStepLimit)
	require.Equal(t, 2, cancelErr.Partial.Steps)
}

// Stopping at a step by cancellation or by the step limit leaves the same partial result
func TestCancelMatchesStepLimit(t *testing.T) {
	p := loadProgram(t, "object_sensitivity.yaml")
	stopped := func(res *pta.Result, err error) *pta.Result {
		if err == nil {
			return res
		}
		var cancelErr *pta.CancelError
		require.ErrorAs(t, err, &cancelErr)
		return cancelErr.Partial
	}
	for n := 1; n <= 12; n++ {
		t.Run(fmt.Sprintf("step %d", n), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			canceled := stopped(newBuilder(t, p, nil, WithMonitor(func(pr Progress) {
				if pr.Step == n {
					cancel()
				}
			})).Build(ctx, mainEntry))

			cfg := config.NewDefault()
			cfg.MaxSteps = n
			limited := stopped(newBuilder(t, p, cfg).Build(context.Background(), mainEntry))

			require.Equal(t, limited.Steps, canceled.Steps)
			if diff := cmp.Diff(dump(limited), dump(canceled)); diff != "" {
				t.Errorf("partial results differ (-limit +cancel):\n%s", diff)
			}
			seen := map[string]bool{}
			for _, node := range canceled.CallGraph.Nodes() {
				key := node.Method.Ref().String() + " " + node.Context.String()
				require.False(t, seen[key], "duplicate node %s", key)
				seen[key] = true
			}
		})
	}
}

func TestProgressIsMonotone(t *testing.T) {
	p := loadProgram(t, "features.yaml")
	var seen []Progress
	b := newBuilder(t, p, nil, WithMonitor(func(pr Progress) { seen = append(seen, pr) }))
	res, err := b.Build(context.Background(), featureEntrypoints)
	require.NoError(t, err)
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		prev, cur := seen[i-1], seen[i]
		require.Equal(t, prev.Step+1, cur.Step)
		require.GreaterOrEqual(t, cur.Nodes, prev.Nodes)
		require.GreaterOrEqual(t, cur.CallEdges, prev.CallEdges)
		require.GreaterOrEqual(t, cur.Constraints, prev.Constraints)
		require.GreaterOrEqual(t, cur.PointsToSize, prev.PointsToSize)
	}
	require.Equal(t, res.Steps, seen[len(seen)-1].Step)
}

// dump renders the points-to sets and the call edges of a result
func dump(res *pta.Result) map[string][]string {
	out := map[string][]string{}
	for _, pk := range res.PointerAnalysis.PointerKeys() {
		for _, ik := range res.PointerAnalysis.PointsTo(pk).Keys() {
			out[pk.String()] = append(out[pk.String()], ik.String())
		}
	}
	for _, e := range res.CallGraph.Edges() {
		out["edges"] = append(out["edges"],
			fmt.Sprintf("%s -> %s", res.CallGraph.Node(e.Caller), res.CallGraph.Node(e.Callee)))
	}
	return out
}

func TestDeterminism(t *testing.T) {
	p := loadProgram(t, "features.yaml")
	cfg := config.NewDefault()
	cfg.Reflection = config.ReflectionFull
	cfg.HandleCallApply = true

	b := newBuilder(t, p, cfg)
	first, err := b.Build(context.Background(), featureEntrypoints)
	require.NoError(t, err)
	again, err := b.Build(context.Background(), featureEntrypoints)
	require.NoError(t, err)
	fresh := build(t, p, cfg, featureEntrypoints)

	if diff := cmp.Diff(dump(first), dump(again)); diff != "" {
		t.Errorf("rebuilding changed the result (-first +again):\n%s", diff)
	}
	if diff := cmp.Diff(dump(first), dump(fresh)); diff != "" {
		t.Errorf("a new builder changed the result (-first +fresh):\n%s", diff)
	}
}
