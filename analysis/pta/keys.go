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
	"fmt"
	"strconv"

	"github.com/awslabs/ar-go-pta/analysis/ir"
)

// InstanceKey is an abstraction of one or more objects allocated at runtime. Instance keys are values; two keys built
// from equal inputs are == and can be used as map keys.
type InstanceKey interface {
	// ConcreteType is the type of the objects abstracted by the key
	ConcreteType() ir.TypeRef
	String() string
	isInstanceKey()
}

// AllocationSiteKey abstracts the objects allocated at a site, in a heap context derived from the context of the
// allocating node.
type AllocationSiteKey struct {
	Site ir.NewSite
	Heap Context
}

// SmushedKey abstracts all the objects of a type allocated by one node.
type SmushedKey struct {
	Method ir.MethodRef
	Heap   Context
	Type   ir.TypeRef
}

// TypeKey abstracts all the objects of a type.
type TypeKey struct {
	Type ir.TypeRef
}

// ConstantKey abstracts the constants of a type with one value.
type ConstantKey struct {
	Type  ir.TypeRef
	Value string
}

// ClassObjectKey abstracts the class object of Object; Type is the type of class objects.
type ClassObjectKey struct {
	Object ir.TypeRef
	Type   ir.TypeRef
}

// FunctionKey abstracts the function objects of a method.
type FunctionKey struct {
	Method ir.MethodRef
	Type   ir.TypeRef
}

// ExceptionKey abstracts the exceptions raised implicitly by an instruction.
type ExceptionKey struct {
	Method ir.MethodRef
	PC     int
	Heap   Context
	Type   ir.TypeRef
}

// MultiArrayKey abstracts the inner arrays of dimension Dim of a multi-dimensional array allocation.
type MultiArrayKey struct {
	Site ir.NewSite
	Heap Context
	Dim  int
}

// FactorySiteKey abstracts the objects of a type built by a factory invoked at Site.
type FactorySiteKey struct {
	Site ir.CallSite
	Type ir.TypeRef
}

// LanguageKey tags a key with the source language whose factory built it.
type LanguageKey struct {
	Language ir.Language
	Key      InstanceKey
}

func (AllocationSiteKey) isInstanceKey() {}
func (SmushedKey) isInstanceKey()        {}
func (TypeKey) isInstanceKey()           {}
func (ConstantKey) isInstanceKey()       {}
func (ClassObjectKey) isInstanceKey()    {}
func (FunctionKey) isInstanceKey()       {}
func (ExceptionKey) isInstanceKey()      {}
func (MultiArrayKey) isInstanceKey()     {}
func (FactorySiteKey) isInstanceKey()    {}
func (LanguageKey) isInstanceKey()       {}

func (k AllocationSiteKey) ConcreteType() ir.TypeRef { return k.Site.Type }
func (k SmushedKey) ConcreteType() ir.TypeRef        { return k.Type }
func (k TypeKey) ConcreteType() ir.TypeRef           { return k.Type }
func (k ConstantKey) ConcreteType() ir.TypeRef       { return k.Type }
func (k ClassObjectKey) ConcreteType() ir.TypeRef    { return k.Type }
func (k FunctionKey) ConcreteType() ir.TypeRef       { return k.Type }
func (k ExceptionKey) ConcreteType() ir.TypeRef      { return k.Type }
func (k FactorySiteKey) ConcreteType() ir.TypeRef    { return k.Type }
func (k LanguageKey) ConcreteType() ir.TypeRef       { return k.Key.ConcreteType() }

func (k MultiArrayKey) ConcreteType() ir.TypeRef {
	t := k.Site.Type
	for i := 0; i < k.Dim && t.IsArray(); i++ {
		t = t.Elem()
	}
	return t
}

func (k AllocationSiteKey) String() string {
	if IsEverywhere(k.Heap) {
		return k.Site.String()
	}
	return fmt.Sprintf("%s in %s", k.Site, k.Heap)
}

func (k SmushedKey) String() string {
	return fmt.Sprintf("smushed %s in %s %s", k.Type, k.Method, k.Heap)
}

func (k TypeKey) String() string     { return "type " + string(k.Type) }
func (k ConstantKey) String() string { return fmt.Sprintf("const %s %s", k.Type, strconv.Quote(k.Value)) }
func (k ClassObjectKey) String() string {
	return fmt.Sprintf("class object %s", k.Object)
}
func (k FunctionKey) String() string { return "function " + k.Method.String() }

func (k ExceptionKey) String() string {
	return fmt.Sprintf("%s@%d:exception %s", k.Method, k.PC, k.Type)
}

func (k MultiArrayKey) String() string {
	return fmt.Sprintf("%s dim %d", k.Site, k.Dim)
}

func (k FactorySiteKey) String() string {
	return fmt.Sprintf("%s from factory at %s", k.Type, k.Site)
}

func (k LanguageKey) String() string { return fmt.Sprintf("%s:%s", k.Language, k.Key) }

// Unwrap returns the key built by a language-specific factory when k is a LanguageKey, and k otherwise.
func Unwrap(k InstanceKey) InstanceKey {
	for {
		lk, ok := k.(LanguageKey)
		if !ok {
			return k
		}
		k = lk.Key
	}
}

// PointerKey is an abstraction of a storage location holding references to objects. Pointer keys are values.
type PointerKey interface {
	String() string
	isPointerKey()
}

// LocalKey is the value numbered Value in a call graph node.
type LocalKey struct {
	Node  NodeID
	Value int
}

// ReturnKey is the return value of a call graph node.
type ReturnKey struct {
	Node NodeID
}

// ExceptionalReturnKey is the exceptions a call graph node raises to its callers.
type ExceptionalReturnKey struct {
	Node NodeID
}

// StaticFieldKey is a static field.
type StaticFieldKey struct {
	Field ir.FieldRef
}

// InstanceFieldKey is a field of an abstract object.
type InstanceFieldKey struct {
	Instance InstanceKey
	Field    ir.FieldRef
}

// ArrayContentsKey is the elements of an abstract array.
type ArrayContentsKey struct {
	Instance InstanceKey
}

// FilteredLocalKey is a local restricted to the objects accepted by Filter. Its points-to set is the points-to set
// of the local filtered on demand.
type FilteredLocalKey struct {
	Node   NodeID
	Value  int
	Filter TypeFilter
}

// Local returns the unfiltered local
func (k FilteredLocalKey) Local() LocalKey {
	return LocalKey{Node: k.Node, Value: k.Value}
}

func (LocalKey) isPointerKey()             {}
func (ReturnKey) isPointerKey()            {}
func (ExceptionalReturnKey) isPointerKey() {}
func (StaticFieldKey) isPointerKey()       {}
func (InstanceFieldKey) isPointerKey()     {}
func (ArrayContentsKey) isPointerKey()     {}
func (FilteredLocalKey) isPointerKey()     {}

func (k LocalKey) String() string             { return fmt.Sprintf("n%d:v%d", k.Node, k.Value) }
func (k ReturnKey) String() string            { return fmt.Sprintf("n%d:ret", k.Node) }
func (k ExceptionalReturnKey) String() string { return fmt.Sprintf("n%d:exc", k.Node) }
func (k StaticFieldKey) String() string       { return "static " + k.Field.String() }
func (k InstanceFieldKey) String() string     { return fmt.Sprintf("[%s].%s", k.Instance, k.Field.Name) }
func (k ArrayContentsKey) String() string     { return fmt.Sprintf("[%s][*]", k.Instance) }

func (k FilteredLocalKey) String() string {
	return fmt.Sprintf("n%d:v%d|%s", k.Node, k.Value, k.Filter)
}

// IsArrayContents returns true if k is the contents of an array
func IsArrayContents(k PointerKey) bool {
	_, ok := k.(ArrayContentsKey)
	return ok
}

// BaseInstance returns the object whose field or contents k is.
func BaseInstance(k PointerKey) (InstanceKey, bool) {
	switch k := k.(type) {
	case InstanceFieldKey:
		return k.Instance, true
	case ArrayContentsKey:
		return k.Instance, true
	}
	return nil, false
}

// TypeFilter restricts the objects flowing into a pointer key.
type TypeFilter interface {
	String() string
	isTypeFilter()
}

// SubtypeFilter accepts the objects whose type is a subtype of Type.
type SubtypeFilter struct {
	Type ir.TypeRef
}

// InstanceFilter accepts only one object.
type InstanceFilter struct {
	Key InstanceKey
}

func (SubtypeFilter) isTypeFilter()  {}
func (InstanceFilter) isTypeFilter() {}

func (f SubtypeFilter) String() string  { return "<: " + string(f.Type) }
func (f InstanceFilter) String() string { return "== " + f.Key.String() }
