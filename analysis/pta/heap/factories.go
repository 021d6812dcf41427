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

// Package heap implements the heap abstraction policies of the pointer analysis, as instance key factories.
//
// The base factories are [AllocationSites] (one key per allocation site and heap context) and [ClassBased] (one
// key per type). The other factories wrap an inner factory and rewrite some of its answers: [Smushing] merges
// allocation sites by kind, [FactorySites] specializes allocations in factory contexts, and [CrossLanguage]
// dispatches on the language of the allocating method.
package heap

import (
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
)

// AllocationSites abstracts objects by their allocation site. The heap context of a key is the context of the
// allocating node truncated to HeapContextDepth elements; a negative depth keeps the whole context.
type AllocationSites struct {
	HeapContextDepth int
}

func (f AllocationSites) heapContext(node *pta.CGNode) pta.Context {
	if node == nil || node.Context == nil {
		return pta.Everywhere{}
	}
	if f.HeapContextDepth < 0 {
		return node.Context
	}
	return pta.TruncateContext(node.Context, f.HeapContextDepth)
}

func (f AllocationSites) InstanceKeyForAllocation(node *pta.CGNode, site ir.NewSite) pta.InstanceKey {
	return pta.AllocationSiteKey{Site: site, Heap: f.heapContext(node)}
}

func (f AllocationSites) InstanceKeyForMultiNewArray(node *pta.CGNode, site ir.NewSite, dim int) pta.InstanceKey {
	return pta.MultiArrayKey{Site: site, Heap: f.heapContext(node), Dim: dim}
}

func (f AllocationSites) InstanceKeyForConstant(typ ir.TypeRef, value string) pta.InstanceKey {
	if typ.IsPrimitive() {
		return nil
	}
	return pta.ConstantKey{Type: typ, Value: value}
}

func (f AllocationSites) InstanceKeyForPointerException(node *pta.CGNode, pc int, typ ir.TypeRef) pta.InstanceKey {
	return pta.ExceptionKey{Method: node.Method.Ref(), PC: pc, Heap: f.heapContext(node), Type: typ}
}

func (f AllocationSites) InstanceKeyForMetadataObject(obj any, typ ir.TypeRef) pta.InstanceKey {
	return metadataKey(obj, typ)
}

// metadataKey returns the key of a class object (obj is an ir.TypeRef) or of a function object (obj is an
// ir.MethodRef or an *ir.Method).
func metadataKey(obj any, typ ir.TypeRef) pta.InstanceKey {
	switch obj := obj.(type) {
	case ir.TypeRef:
		return pta.ClassObjectKey{Object: obj, Type: typ}
	case ir.MethodRef:
		return pta.FunctionKey{Method: obj, Type: typ}
	case *ir.Method:
		return pta.FunctionKey{Method: obj.Ref(), Type: typ}
	}
	return nil
}

// ClassBased abstracts objects by their type. Metadata objects are still distinguished by the object they
// describe.
type ClassBased struct{}

func (ClassBased) InstanceKeyForAllocation(_ *pta.CGNode, site ir.NewSite) pta.InstanceKey {
	return pta.TypeKey{Type: site.Type}
}

func (ClassBased) InstanceKeyForMultiNewArray(_ *pta.CGNode, site ir.NewSite, dim int) pta.InstanceKey {
	return pta.TypeKey{Type: innerArrayType(site.Type, dim)}
}

func (ClassBased) InstanceKeyForConstant(typ ir.TypeRef, _ string) pta.InstanceKey {
	if typ.IsPrimitive() {
		return nil
	}
	return pta.TypeKey{Type: typ}
}

func (ClassBased) InstanceKeyForPointerException(_ *pta.CGNode, _ int, typ ir.TypeRef) pta.InstanceKey {
	return pta.TypeKey{Type: typ}
}

func (ClassBased) InstanceKeyForMetadataObject(obj any, typ ir.TypeRef) pta.InstanceKey {
	return metadataKey(obj, typ)
}

func innerArrayType(t ir.TypeRef, dim int) ir.TypeRef {
	for i := 0; i < dim && t.IsArray(); i++ {
		t = t.Elem()
	}
	return t
}

// FactorySites specializes the allocations made by nodes analyzed in a factory context: their objects are keyed by
// the call site of the factory and the allocated type.
type FactorySites struct {
	Inner pta.InstanceKeyFactory
}

func (f FactorySites) InstanceKeyForAllocation(node *pta.CGNode, site ir.NewSite) pta.InstanceKey {
	if fc, ok := node.Context.(pta.FactoryContext); ok {
		return pta.FactorySiteKey{Site: fc.Site, Type: site.Type}
	}
	return f.Inner.InstanceKeyForAllocation(node, site)
}

func (f FactorySites) InstanceKeyForMultiNewArray(node *pta.CGNode, site ir.NewSite, dim int) pta.InstanceKey {
	return f.Inner.InstanceKeyForMultiNewArray(node, site, dim)
}

func (f FactorySites) InstanceKeyForConstant(typ ir.TypeRef, value string) pta.InstanceKey {
	return f.Inner.InstanceKeyForConstant(typ, value)
}

func (f FactorySites) InstanceKeyForPointerException(node *pta.CGNode, pc int, typ ir.TypeRef) pta.InstanceKey {
	return f.Inner.InstanceKeyForPointerException(node, pc, typ)
}

func (f FactorySites) InstanceKeyForMetadataObject(obj any, typ ir.TypeRef) pta.InstanceKey {
	return f.Inner.InstanceKeyForMetadataObject(obj, typ)
}

// CrossLanguage dispatches on the language of the allocating method and tags the keys with it. Constants and
// metadata objects, which have no allocating node, use the factory of the Default language. A language without a
// factory is a configuration error, raised as a *pta.ConfigError panic.
type CrossLanguage struct {
	ByLanguage map[ir.Language]pta.InstanceKeyFactory
	Default    ir.Language
}

func (f CrossLanguage) factory(lang ir.Language) (ir.Language, pta.InstanceKeyFactory) {
	if lang == "" {
		lang = f.Default
	}
	inner, ok := f.ByLanguage[lang]
	if !ok {
		panic(pta.ConfigErrorf("no instance key factory for language %q", lang))
	}
	return lang, inner
}

func tag(lang ir.Language, k pta.InstanceKey) pta.InstanceKey {
	if k == nil {
		return nil
	}
	return pta.LanguageKey{Language: lang, Key: k}
}

func (f CrossLanguage) InstanceKeyForAllocation(node *pta.CGNode, site ir.NewSite) pta.InstanceKey {
	lang, inner := f.factory(node.Method.Language)
	return tag(lang, inner.InstanceKeyForAllocation(node, site))
}

func (f CrossLanguage) InstanceKeyForMultiNewArray(node *pta.CGNode, site ir.NewSite, dim int) pta.InstanceKey {
	lang, inner := f.factory(node.Method.Language)
	return tag(lang, inner.InstanceKeyForMultiNewArray(node, site, dim))
}

func (f CrossLanguage) InstanceKeyForConstant(typ ir.TypeRef, value string) pta.InstanceKey {
	lang, inner := f.factory(f.Default)
	return tag(lang, inner.InstanceKeyForConstant(typ, value))
}

func (f CrossLanguage) InstanceKeyForPointerException(node *pta.CGNode, pc int, typ ir.TypeRef) pta.InstanceKey {
	lang, inner := f.factory(node.Method.Language)
	return tag(lang, inner.InstanceKeyForPointerException(node, pc, typ))
}

func (f CrossLanguage) InstanceKeyForMetadataObject(obj any, typ ir.TypeRef) pta.InstanceKey {
	lang, inner := f.factory(f.Default)
	return tag(lang, inner.InstanceKeyForMetadataObject(obj, typ))
}
