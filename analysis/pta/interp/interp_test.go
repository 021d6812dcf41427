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

package interp

import (
	"testing"

	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/stretchr/testify/require"
)

const program = `
classes:
  - name: A
    fields:
      - name: f
    methods:
      - name: init
        body:
          - "v2 = new B"
          - "putfield v1 A.f v2"
          - "v3 = getfield v1 A.f"
          - "v4 = invoke virtual A.init v1"
          - "return"
      - name: abstractOne
        abstract: true
  - name: B
  - name: Logger
    methods:
      - name: log
        static: true
        params: [Object]
        body:
          - "v2 = new B"
          - "return"
  - name: Class
    methods:
      - name: newInstance
        intrinsic: new-instance
        returns: Object
  - name: Function
    methods:
      - name: apply
        static: true
        intrinsic: call-apply
        params: [Function, Object]
        returns: Object
`

func load(t *testing.T) *ir.Program {
	p, err := ir.ParseProgram([]byte(program))
	require.NoError(t, err)
	return p
}

func nodeOf(p *ir.Program, class ir.TypeRef, name string, ctx pta.Context) *pta.CGNode {
	return &pta.CGNode{ID: 1, Method: p.Method(ir.MethodRef{Class: class, Name: name}), Context: ctx}
}

func TestBodies(t *testing.T) {
	p := load(t)
	d := Delegating{Sources: []Source{Bodies{}}}
	init := nodeOf(p, "A", "init", pta.Everywhere{})
	require.True(t, d.Understands(init))
	require.Len(t, d.Instructions(init), 5)
	require.Equal(t, []ir.NewSite{{Method: init.Method.Ref(), PC: 0, Type: "B"}}, d.NewSites(init))
	require.Equal(t, []ir.FieldRef{{Class: "A", Name: "f"}}, d.FieldsRead(init))
	require.Equal(t, []ir.FieldRef{{Class: "A", Name: "f"}}, d.FieldsWritten(init))
	calls := d.CallSites(init)
	require.Len(t, calls, 1)
	require.Equal(t, ir.CallSite{Method: init.Method.Ref(), PC: 3, Target: init.Method.Ref(), Kind: ir.Virtual},
		calls[0])

	require.False(t, d.Understands(nodeOf(p, "A", "abstractOne", pta.Everywhere{})))
	require.False(t, d.Understands(nodeOf(p, "Class", "newInstance", pta.Everywhere{})))
}

func TestSummariesFromConfig(t *testing.T) {
	p := load(t)
	cfg, err := config.LoadFromBytes("summaries.yaml", []byte(`
no-effect-methods:
  - class: Logger
summaries:
  A.init:
    - "v2 = new A"
    - "return v2"
`))
	require.NoError(t, err)
	s, err := SummariesFromConfig(cfg, p)
	require.NoError(t, err)

	log := nodeOf(p, "Logger", "log", pta.Everywhere{})
	require.True(t, s.Understands(log))
	require.Len(t, s.Instructions(log), 1)

	init := nodeOf(p, "A", "init", pta.Everywhere{})
	d := Delegating{Sources: []Source{s, Bodies{}}}
	require.Equal(t, []ir.NewSite{{Method: init.Method.Ref(), PC: 0, Type: "A"}}, d.NewSites(init))

	cfg.Summaries["A.broken"] = []string{"v2 = frobnicate"}
	_, err = SummariesFromConfig(cfg, p)
	require.ErrorContains(t, err, "A.broken")

	// summaries are parsed in name order, so the first broken one is always reported
	cfg.Summaries["A.also"] = []string{"v2 = frobnicate"}
	for i := 0; i < 5; i++ {
		_, err = SummariesFromConfig(cfg, p)
		require.ErrorContains(t, err, "A.also")
	}
}

func TestReflection(t *testing.T) {
	p := load(t)
	d := Delegating{Sources: []Source{Reflection{}, Bodies{}}}
	n := nodeOf(p, "Class", "newInstance", pta.ClassContext{Type: "B"})
	require.True(t, d.Understands(n))
	instrs := d.Instructions(n)
	require.Equal(t, "v2 = new B", instrs[0].String())
	require.Equal(t, "return v2", instrs[1].String())
	require.Equal(t, 1, instrs[1].PC())
	require.Equal(t, []ir.NewSite{{Method: n.Method.Ref(), PC: 0, Type: "B"}}, d.NewSites(n))

	require.False(t, d.Understands(nodeOf(p, "Class", "newInstance", pta.Everywhere{})))
}

func TestCallApply(t *testing.T) {
	p := load(t)
	n := nodeOf(p, "Function", "apply", pta.Everywhere{})
	require.True(t, CallApply{}.Understands(n))
	instrs := CallApply{}.Instructions(n)
	require.Equal(t, "v3 = invoke dynamic Function.apply v1 v2", instrs[0].String())
	require.Equal(t, "return v3", instrs[1].String())
	require.NoError(t, ir.ValidateMethod(&ir.Method{Name: "apply", Static: true, Params: n.Method.Params,
		Body: instrs}))
}

type counting struct {
	Delegating
	calls int
}

func (c *counting) Instructions(node *pta.CGNode) []ir.Instruction {
	c.calls++
	return c.Delegating.Instructions(node)
}

func TestCached(t *testing.T) {
	p := load(t)
	inner := &counting{Delegating: Delegating{Sources: []Source{Reflection{}}}}
	c := NewCached(inner)
	n := nodeOf(p, "Class", "newInstance", pta.ClassContext{Type: "B"})
	first := c.Instructions(n)
	require.Same(t, first[0], c.Instructions(n)[0])
	require.Equal(t, 1, inner.calls)
	require.Len(t, c.NewSites(n), 1)

	c.Reset()
	c.Instructions(n)
	require.Equal(t, 2, inner.calls)
}

func TestFromConfig(t *testing.T) {
	p := load(t)
	cfg := config.NewDefault()
	cfg.Reflection = config.ReflectionFull
	cfg.HandleCallApply = true
	c, err := FromConfig(cfg, p)
	require.NoError(t, err)
	require.True(t, c.Understands(nodeOf(p, "Class", "newInstance", pta.ClassContext{Type: "B"})))
	require.True(t, c.Understands(nodeOf(p, "Function", "apply", pta.Everywhere{})))

	cfg.Summaries["nodot"] = []string{"return"}
	_, err = FromConfig(cfg, p)
	var cfgErr *pta.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
