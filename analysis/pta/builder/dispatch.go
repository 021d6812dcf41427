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
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/awslabs/ar-go-pta/analysis/pta/solver"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/container/intsets"
)

// call is an invocation of a node whose targets or contexts depend on the values of some arguments.
// positions are the argument indexes inspected (the receiver or function object is 0), and seen[i] holds the
// instance keys already received at positions[i].
type call struct {
	caller *pta.CGNode
	instr  *ir.Invoke
	site   ir.CallSite
	// selected are the positions the context selector inspects, a subset of positions
	selected  []int
	positions []int
	seen      [][]pta.InstanceKey
}

// visitInvoke translates an invocation. Calls that neither dispatch nor have relevant parameters for the context
// selector are connected at once; the others are connected for every new combination of instance keys at the
// inspected positions.
func (b *Builder) visitInvoke(n *pta.CGNode, instr *ir.Invoke) {
	site := instr.Site(n.Method.Ref())
	selected := b.selector.RelevantParameters(n, site)
	positions := append([]int(nil), selected...)
	if site.Kind.Dispatches() && !slices.Contains(positions, 0) {
		positions = append(positions, 0)
	}
	// positions beyond the arguments never receive a key
	inRange := positions[:0]
	for _, p := range positions {
		if p >= 0 && p < len(instr.Args) {
			inRange = append(inRange, p)
		}
	}
	positions = inRange

	if len(positions) == 0 {
		target := b.hierarchy.ResolveMethod(site.Target)
		if target == nil {
			b.warn(pta.UnresolvedTarget, "no method %s at %s", site.Target, site)
			return
		}
		b.connect(&call{caller: n, instr: instr, site: site, selected: selected}, target, nil)
		return
	}

	c := &call{
		caller:    n,
		instr:     instr,
		site:      site,
		selected:  selected,
		positions: positions,
		seen:      make([][]pta.InstanceKey, len(positions)),
	}
	for i, p := range positions {
		i := i
		b.system.AddSideEffect(b.local(n, instr.Args[p]),
			solver.SideEffectFunc(func(_ *solver.System, _ solver.VarID, delta *intsets.Sparse) {
				for _, x := range delta.AppendTo(nil) {
					b.receive(c, i, b.instances.Get(x))
				}
			}))
	}
}

// receive records that ik reached position i of c, and dispatches every new combination containing it
func (b *Builder) receive(c *call, i int, ik pta.InstanceKey) {
	c.seen[i] = append(c.seen[i], ik)
	combo := make([]pta.InstanceKey, len(c.positions))
	combo[i] = ik
	var enumerate func(j int)
	enumerate = func(j int) {
		if j == len(c.positions) {
			b.dispatch(c, append([]pta.InstanceKey(nil), combo...))
			return
		}
		if j == i {
			enumerate(j + 1)
			return
		}
		for _, k := range c.seen[j] {
			combo[j] = k
			enumerate(j + 1)
		}
	}
	enumerate(0)
}

// dispatch resolves the target of c for one combination of instance keys, and connects it
func (b *Builder) dispatch(c *call, combo []pta.InstanceKey) {
	var target *ir.Method
	switch c.site.Kind {
	case ir.Virtual, ir.Interface:
		recv := keyAt(c.positions, combo, 0)
		target = b.hierarchy.ResolveVirtualTarget(c.site.Target.Class, c.site.Target.Name, recv.ConcreteType())
		if target == nil {
			b.warn(pta.UnresolvedTarget, "no method %s for receiver type %s at %s", c.site.Target.Name,
				recv.ConcreteType(), c.site)
			return
		}
	case ir.Dynamic:
		fn := keyAt(c.positions, combo, 0)
		fk, ok := pta.Unwrap(fn).(pta.FunctionKey)
		if !ok {
			b.warn(pta.UnresolvedTarget, "%s is not a function at %s", fn, c.site)
			return
		}
		target = b.hierarchy.ResolveMethod(fk.Method)
		if target == nil {
			b.warn(pta.UnresolvedTarget, "no method %s at %s", fk.Method, c.site)
			return
		}
	default:
		target = b.hierarchy.ResolveMethod(c.site.Target)
		if target == nil {
			b.warn(pta.UnresolvedTarget, "no method %s at %s", c.site.Target, c.site)
			return
		}
	}
	b.connect(c, target, combo)
}

// connect adds the edge from the caller of c to target, in the context selected for the keys of combo, and
// connects the arguments, the result and the exceptions of the call.
func (b *Builder) connect(c *call, target *ir.Method, combo []pta.InstanceKey) {
	receivers := make([]pta.InstanceKey, len(c.selected))
	for i, p := range c.selected {
		receivers[i] = keyAt(c.positions, combo, p)
	}
	ctx := b.selector.SelectContext(c.caller, c.site, target, receivers)
	if ctx == nil {
		panic(pta.InvariantErrorf("no context selected for %s at %s", target, c.site))
	}
	callee, created := b.callgraph.FindOrCreate(target, ctx)
	if created {
		b.logger.Debugf("New node %s\n", callee)
		b.enqueue(callee)
	}
	if b.callgraph.AddEdge(c.caller.ID, c.site, callee.ID) {
		b.logger.Tracef("Edge %s -> %s\n", c.caller, callee)
	}
	if b.isEntrypointCall(c.caller) {
		b.callgraph.AddEntrypoint(callee.ID)
	}

	// the function object of a dynamic call is not a parameter of the function
	first := 0
	if c.site.Kind == ir.Dynamic {
		first = 1
	}
	for p := first; p < len(c.instr.Args); p++ {
		param := p - first + 1
		if param > target.NumParams() {
			break
		}
		formal := b.local(callee, param)
		if ik := keyAt(c.positions, combo, p); ik != nil {
			b.addObject(formal, ik)
		} else {
			b.system.AddAssign(formal, b.local(c.caller, c.instr.Args[p]))
		}
	}
	if c.instr.Result != 0 {
		b.system.AddAssign(b.local(c.caller, c.instr.Result), b.varOf(pta.ReturnKey{Node: callee.ID}))
	}
	exc := b.varOf(pta.ExceptionalReturnKey{Node: callee.ID})
	if c.instr.Exc != 0 {
		b.system.AddAssign(b.local(c.caller, c.instr.Exc), exc)
	} else {
		b.system.AddAssign(b.varOf(pta.ExceptionalReturnKey{Node: c.caller.ID}), exc)
	}
}

// keyAt returns the key of combo at argument position p, or nil if p is not inspected
func keyAt(positions []int, combo []pta.InstanceKey, p int) pta.InstanceKey {
	for i, q := range positions {
		if q == p && i < len(combo) {
			return combo[i]
		}
	}
	return nil
}
