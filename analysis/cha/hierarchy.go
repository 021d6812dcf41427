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

// Package cha answers class hierarchy queries: subtyping, virtual dispatch and field resolution.
package cha

import (
	"github.com/awslabs/ar-go-pta/analysis/ir"
)

// Hierarchy is the class hierarchy consumed by the pointer analysis.
type Hierarchy interface {
	// Program returns the program the hierarchy is built for
	Program() *ir.Program
	// LookupClass returns the class named t, if it is declared
	LookupClass(t ir.TypeRef) (*ir.Class, bool)
	// IsSubtypeOf returns true if sub is sup or a subtype of sup
	IsSubtypeOf(sub, sup ir.TypeRef) bool
	// LeastCommonSupertype returns the most specific class that is a supertype of both a and b
	LeastCommonSupertype(a, b ir.TypeRef) ir.TypeRef
	// ResolveVirtualTarget returns the method invoked by a call to selector declared in declared, on a receiver of
	// type dispatch. It returns nil if dispatch is not a subtype of declared or if no concrete method is found.
	ResolveVirtualTarget(declared ir.TypeRef, selector string, dispatch ir.TypeRef) *ir.Method
	// ResolveMethod returns the method named by ref, looking up super classes, or nil
	ResolveMethod(ref ir.MethodRef) *ir.Method
	// ResolveField returns the reference to the declaration of the field named by ref
	ResolveField(ref ir.FieldRef) (ir.FieldRef, bool)
	// IsArray returns true if t is an array type
	IsArray(t ir.TypeRef) bool
	// IsString returns true if t is the string type or a subtype of it
	IsString(t ir.TypeRef) bool
	// IsThrowable returns true if t is the throwable type or a subtype of it
	IsThrowable(t ir.TypeRef) bool
	// IsPrimitiveHolder returns true if t is a class with at least one field and only primitive fields, or an array
	// of primitives
	IsPrimitiveHolder(t ir.TypeRef) bool
}

type dispatchKey struct {
	declared ir.TypeRef
	selector string
	dispatch ir.TypeRef
}

// ProgramHierarchy implements Hierarchy over the classes of an ir.Program. Dispatch results are memoized.
// It is not safe for concurrent use.
type ProgramHierarchy struct {
	program     *ir.Program
	methodCache map[dispatchKey]*ir.Method
	fieldCache  map[ir.FieldRef]ir.FieldRef
}

// New returns the class hierarchy of program
func New(program *ir.Program) *ProgramHierarchy {
	return &ProgramHierarchy{
		program:     program,
		methodCache: map[dispatchKey]*ir.Method{},
		fieldCache:  map[ir.FieldRef]ir.FieldRef{},
	}
}

// Program returns the program the hierarchy is built for
func (h *ProgramHierarchy) Program() *ir.Program {
	return h.program
}

// LookupClass returns the class named t, if it is declared
func (h *ProgramHierarchy) LookupClass(t ir.TypeRef) (*ir.Class, bool) {
	c := h.program.Class(t)
	return c, c != nil
}

// superclasses returns t followed by its chain of super classes. The chain stops at undeclared classes and at
// cycles.
func (h *ProgramHierarchy) superclasses(t ir.TypeRef) []ir.TypeRef {
	var res []ir.TypeRef
	seen := map[ir.TypeRef]bool{}
	for cur := t; cur != ir.NoType && !seen[cur]; {
		seen[cur] = true
		res = append(res, cur)
		c := h.program.Class(cur)
		if c == nil {
			break
		}
		cur = c.Super
	}
	return res
}

// IsSubtypeOf returns true if sub is sup or a subtype of sup. Arrays are covariant and are subtypes of the root.
func (h *ProgramHierarchy) IsSubtypeOf(sub, sup ir.TypeRef) bool {
	if sub == sup {
		return true
	}
	if sup == h.program.Root && !sub.IsPrimitive() {
		return true
	}
	if sub.IsArray() {
		return sup.IsArray() && !sub.Elem().IsPrimitive() && h.IsSubtypeOf(sub.Elem(), sup.Elem())
	}
	if sub.IsPrimitive() || sup.IsPrimitive() {
		return false
	}
	return h.implements(sub, sup, map[ir.TypeRef]bool{})
}

func (h *ProgramHierarchy) implements(sub, sup ir.TypeRef, visited map[ir.TypeRef]bool) bool {
	if sub == sup {
		return true
	}
	if visited[sub] {
		return false
	}
	visited[sub] = true
	c := h.program.Class(sub)
	if c == nil {
		return false
	}
	if c.Super != ir.NoType && h.implements(c.Super, sup, visited) {
		return true
	}
	for _, i := range c.Interfaces {
		if h.implements(i, sup, visited) {
			return true
		}
	}
	return false
}

// LeastCommonSupertype returns the first super class of b that is also a super class of a. Interfaces are not
// considered; the result is the root when no other class is shared.
func (h *ProgramHierarchy) LeastCommonSupertype(a, b ir.TypeRef) ir.TypeRef {
	if a == b {
		return a
	}
	if a.IsArray() && b.IsArray() {
		ea, eb := a.Elem(), b.Elem()
		if !ea.IsPrimitive() && !eb.IsPrimitive() {
			return ir.ArrayOf(h.LeastCommonSupertype(ea, eb))
		}
		return h.program.Root
	}
	supers := map[ir.TypeRef]bool{}
	for _, t := range h.superclasses(a) {
		supers[t] = true
	}
	for _, t := range h.superclasses(b) {
		if supers[t] {
			return t
		}
	}
	return h.program.Root
}

// ResolveVirtualTarget returns the first concrete method named selector in the super class chain of dispatch.
// Arrays dispatch to the methods of the root class.
func (h *ProgramHierarchy) ResolveVirtualTarget(declared ir.TypeRef, selector string,
	dispatch ir.TypeRef) *ir.Method {
	key := dispatchKey{declared, selector, dispatch}
	if m, ok := h.methodCache[key]; ok {
		return m
	}
	var res *ir.Method
	if h.IsSubtypeOf(dispatch, declared) {
		start := dispatch
		if dispatch.IsArray() {
			start = h.program.Root
		}
		res = h.lookup(start, selector, false)
	}
	h.methodCache[key] = res
	return res
}

// ResolveMethod returns the method named by ref, looking up the super classes of its class.
func (h *ProgramHierarchy) ResolveMethod(ref ir.MethodRef) *ir.Method {
	return h.lookup(ref.Class, ref.Name, true)
}

func (h *ProgramHierarchy) lookup(t ir.TypeRef, selector string, allowAbstract bool) *ir.Method {
	for _, cur := range h.superclasses(t) {
		c := h.program.Class(cur)
		if c == nil {
			return nil
		}
		if m := c.Method(selector); m != nil && (allowAbstract || !m.Abstract) {
			return m
		}
	}
	return nil
}

// ResolveField returns the reference to the class declaring the field named by ref. Fields of undeclared classes
// resolve to themselves.
func (h *ProgramHierarchy) ResolveField(ref ir.FieldRef) (ir.FieldRef, bool) {
	if res, ok := h.fieldCache[ref]; ok {
		return res, true
	}
	if h.program.Class(ref.Class) == nil {
		return ref, false
	}
	for _, cur := range h.superclasses(ref.Class) {
		c := h.program.Class(cur)
		if c == nil {
			break
		}
		if f := c.Field(ref.Name); f != nil {
			h.fieldCache[ref] = f.Ref()
			return f.Ref(), true
		}
	}
	return ref, false
}

// IsArray returns true if t is an array type
func (h *ProgramHierarchy) IsArray(t ir.TypeRef) bool {
	return t.IsArray()
}

// IsString returns true if t is the string type or a subtype of it
func (h *ProgramHierarchy) IsString(t ir.TypeRef) bool {
	return h.program.String != ir.NoType && !t.IsArray() && h.implements(t, h.program.String, map[ir.TypeRef]bool{})
}

// IsThrowable returns true if t is the throwable type or a subtype of it
func (h *ProgramHierarchy) IsThrowable(t ir.TypeRef) bool {
	return h.program.Throwable != ir.NoType && !t.IsArray() &&
		h.implements(t, h.program.Throwable, map[ir.TypeRef]bool{})
}

// IsPrimitiveHolder returns true for arrays of primitives and for classes that declare or inherit fields, all of
// primitive types.
func (h *ProgramHierarchy) IsPrimitiveHolder(t ir.TypeRef) bool {
	if t.IsArray() {
		return t.Elem().IsPrimitive()
	}
	n := 0
	for _, cur := range h.superclasses(t) {
		c := h.program.Class(cur)
		if c == nil {
			return false
		}
		for _, f := range c.Fields() {
			if f.Static {
				continue
			}
			if !f.Type.IsPrimitive() {
				return false
			}
			n++
		}
	}
	return n > 0
}
