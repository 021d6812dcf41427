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
	"golang.org/x/tools/container/intsets"
)

// visit translates the instructions of a node into constraints
func (b *Builder) visit(n *pta.CGNode) {
	b.logger.Debugf("Visiting %s\n", n)
	if !b.interpreter.Understands(n) {
		b.warn(pta.MissingBody, "no instructions for %s", n.Method)
		return
	}
	for _, instr := range b.interpreter.Instructions(n) {
		b.logger.Tracef("  %s\n", instr)
		for _, t := range instr.Throws() {
			ik := b.factory.InstanceKeyForPointerException(n, instr.PC(), t)
			b.addObject(b.varOf(pta.ExceptionalReturnKey{Node: n.ID}), ik)
		}
		b.visitInstruction(n, instr)
	}
}

//gocyclo:ignore
func (b *Builder) visitInstruction(n *pta.CGNode, instr ir.Instruction) {
	m := n.Method.Ref()
	switch instr := instr.(type) {
	case *ir.New:
		site := ir.NewSite{Method: m, PC: instr.PC(), Type: instr.Type}
		b.addObject(b.local(n, instr.Result), b.allocate(n, site))

	case *ir.NewArray:
		b.visitNewArray(n, instr)

	case *ir.Const:
		if instr.Null || instr.Type.IsPrimitive() {
			return
		}
		var ik pta.InstanceKey
		if b.config.UseConstantSpecificKeys {
			ik = b.factory.InstanceKeyForConstant(instr.Type, instr.Value)
		} else {
			ik = b.allocate(n, ir.NewSite{Method: m, PC: instr.PC(), Type: instr.Type})
		}
		b.addObject(b.local(n, instr.Result), ik)

	case *ir.ClassLit:
		b.addObject(b.local(n, instr.Result), b.factory.InstanceKeyForMetadataObject(instr.Type, b.program.ClassType))

	case *ir.MakeFunc:
		b.addObject(b.local(n, instr.Result), b.factory.InstanceKeyForMetadataObject(instr.Target, b.program.Function))

	case *ir.GetField:
		f := b.resolveField(instr.Field)
		b.onInstances(b.local(n, instr.Ref), &fieldLoad{b: b, dst: b.local(n, instr.Result), field: f})

	case *ir.PutField:
		f := b.resolveField(instr.Field)
		b.onInstances(b.local(n, instr.Ref), &fieldStore{b: b, src: b.local(n, instr.Val), field: f})

	case *ir.GetStatic:
		f := b.resolveField(instr.Field)
		b.system.AddAssign(b.local(n, instr.Result), b.varOf(pta.StaticFieldKey{Field: f}))

	case *ir.PutStatic:
		f := b.resolveField(instr.Field)
		b.system.AddAssign(b.varOf(pta.StaticFieldKey{Field: f}), b.local(n, instr.Val))

	case *ir.ArrayLoad:
		b.onInstances(b.local(n, instr.Array), &arrayLoad{b: b, dst: b.local(n, instr.Result)})

	case *ir.ArrayStore:
		b.onInstances(b.local(n, instr.Array), &arrayStore{b: b, src: b.local(n, instr.Val)})

	case *ir.CheckCast:
		b.system.AddFilteredAssign(b.local(n, instr.Result), b.local(n, instr.Val), b.filterFor(instr.Type))

	case *ir.Phi:
		for _, v := range instr.Vals {
			b.system.AddAssign(b.local(n, instr.Result), b.local(n, v))
		}

	case *ir.Return:
		if instr.Val != 0 {
			b.system.AddAssign(b.varOf(pta.ReturnKey{Node: n.ID}), b.local(n, instr.Val))
		}

	case *ir.Throw:
		b.system.AddAssign(b.varOf(pta.ExceptionalReturnKey{Node: n.ID}), b.local(n, instr.Val))

	case *ir.Invoke:
		b.visitInvoke(n, instr)

	case *ir.Extension:
		b.visitExtension(n, instr)
	}
}

// allocate returns the key of an object allocated at site. Every allocation site must be given an object.
func (b *Builder) allocate(n *pta.CGNode, site ir.NewSite) pta.InstanceKey {
	ik := b.factory.InstanceKeyForAllocation(n, site)
	if ik == nil {
		panic(pta.InvariantErrorf("no instance key for %s", site))
	}
	return ik
}

// visitNewArray allocates the outer array, and for multi-dimensional arrays, the arrays of each inner dimension
// stored in the contents of the enclosing one.
func (b *Builder) visitNewArray(n *pta.CGNode, instr *ir.NewArray) {
	site := ir.NewSite{Method: n.Method.Ref(), PC: instr.PC(), Type: instr.Type}
	outer := b.allocate(n, site)
	b.addObject(b.local(n, instr.Result), outer)
	for dim := 1; dim < instr.Dims; dim++ {
		inner := b.factory.InstanceKeyForMultiNewArray(n, site, dim)
		if inner == nil {
			panic(pta.InvariantErrorf("no instance key for dimension %d of %s", dim, site))
		}
		b.addObject(b.varOf(pta.ArrayContentsKey{Instance: outer}), inner)
		outer = inner
	}
}

// visitExtension translates the property accesses of dynamically-typed sources. Properties are fields named after
// the property, without a class. A read of an unknown property reads the any-property field, and every write also
// writes the any-property field.
func (b *Builder) visitExtension(n *pta.CGNode, instr *ir.Extension) {
	named := ir.FieldRef{Name: instr.Name}
	anyProperty := ir.FieldRef{Name: ir.AnyProperty}
	switch instr.Op {
	case ir.PropertyRead:
		f := anyProperty
		if instr.Name != "" {
			f = named
		}
		b.onInstances(b.local(n, instr.Operands[0]), &fieldLoad{b: b, dst: b.local(n, instr.Result), field: f})
	case ir.PropertyWrite:
		obj, val := b.local(n, instr.Operands[0]), b.local(n, instr.Operands[1])
		if instr.Name != "" {
			b.onInstances(obj, &fieldStore{b: b, src: val, field: named})
		}
		b.onInstances(obj, &fieldStore{b: b, src: val, field: anyProperty})
	}
}

func (b *Builder) resolveField(ref ir.FieldRef) ir.FieldRef {
	f, ok := b.hierarchy.ResolveField(ref)
	if !ok {
		b.warn(pta.UnknownField, "field %s is not declared", ref)
	}
	return f
}

// onInstances attaches an operator applied to every instance key that flows into v
func (b *Builder) onInstances(v solver.VarID, op instanceOp) {
	b.system.AddSideEffect(v, solver.SideEffectFunc(func(_ *solver.System, _ solver.VarID, delta *intsets.Sparse) {
		for _, x := range delta.AppendTo(nil) {
			op.apply(b.instances.Get(x))
		}
	}))
}

type instanceOp interface {
	apply(ik pta.InstanceKey)
}

// fieldLoad is dst = ik.field
type fieldLoad struct {
	b     *Builder
	dst   solver.VarID
	field ir.FieldRef
}

func (op *fieldLoad) apply(ik pta.InstanceKey) {
	op.b.system.AddAssign(op.dst, op.b.varOf(pta.InstanceFieldKey{Instance: ik, Field: op.field}))
}

// fieldStore is ik.field = src
type fieldStore struct {
	b     *Builder
	src   solver.VarID
	field ir.FieldRef
}

func (op *fieldStore) apply(ik pta.InstanceKey) {
	op.b.system.AddAssign(op.b.varOf(pta.InstanceFieldKey{Instance: ik, Field: op.field}), op.src)
}

// arrayLoad is dst = ik[*], for arrays only
type arrayLoad struct {
	b   *Builder
	dst solver.VarID
}

func (op *arrayLoad) apply(ik pta.InstanceKey) {
	if ik.ConcreteType().IsArray() {
		op.b.system.AddAssign(op.dst, op.b.varOf(pta.ArrayContentsKey{Instance: ik}))
	}
}

// arrayStore is ik[*] = src, for arrays only
type arrayStore struct {
	b   *Builder
	src solver.VarID
}

func (op *arrayStore) apply(ik pta.InstanceKey) {
	if ik.ConcreteType().IsArray() {
		op.b.system.AddAssign(op.b.varOf(pta.ArrayContentsKey{Instance: ik}), op.src)
	}
}
