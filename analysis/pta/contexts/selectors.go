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

// Package contexts implements the context selection policies of the pointer analysis.
//
// A policy is a small value implementing [pta.ContextSelector]; richer policies are built by wrapping simpler ones
// ([FactoryDispatch], [Container], [Delegating], [Paired]). Every policy returns bounded contexts, which guarantees
// that the number of call graph nodes is finite.
package contexts

import (
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
)

// Insensitive analyzes every method in the Everywhere context.
type Insensitive struct{}

func (Insensitive) SelectContext(*pta.CGNode, ir.CallSite, *ir.Method, []pta.InstanceKey) pta.Context {
	return pta.Everywhere{}
}

func (Insensitive) RelevantParameters(*pta.CGNode, ir.CallSite) []int { return nil }

// Inherit analyzes the callee in the context of its caller.
type Inherit struct{}

func (Inherit) SelectContext(caller *pta.CGNode, _ ir.CallSite, _ *ir.Method, _ []pta.InstanceKey) pta.Context {
	if caller.Context == nil {
		return pta.Everywhere{}
	}
	return caller.Context
}

func (Inherit) RelevantParameters(*pta.CGNode, ir.CallSite) []int { return nil }

// CallString distinguishes callees by the K most recent call sites.
type CallString struct {
	K int
}

func (c CallString) SelectContext(caller *pta.CGNode, site ir.CallSite, _ *ir.Method,
	_ []pta.InstanceKey) pta.Context {
	if c.K <= 0 {
		return pta.Everywhere{}
	}
	return pta.CallStringContext{Site: site, Tail: pta.TruncateContext(callStringOf(caller.Context), c.K-1)}
}

func (c CallString) RelevantParameters(*pta.CGNode, ir.CallSite) []int { return nil }

// callStringOf returns the call string part of a context, or Everywhere
func callStringOf(ctx pta.Context) pta.Context {
	switch ctx := ctx.(type) {
	case pta.CallStringContext:
		return ctx
	case pta.PairContext:
		if cs := callStringOf(ctx.First); !pta.IsEverywhere(cs) {
			return cs
		}
		return callStringOf(ctx.Second)
	}
	return pta.Everywhere{}
}

// OneLevelSite distinguishes the callees that Base analyzes in the Everywhere context by their immediate call
// site. Other contexts chosen by Base are kept.
type OneLevelSite struct {
	Base pta.ContextSelector
}

func (c OneLevelSite) SelectContext(caller *pta.CGNode, site ir.CallSite, callee *ir.Method,
	receivers []pta.InstanceKey) pta.Context {
	ctx := c.Base.SelectContext(caller, site, callee, receivers)
	if ctx == nil || pta.IsEverywhere(ctx) {
		return pta.CallerSiteContext{Site: site}
	}
	return ctx
}

func (c OneLevelSite) RelevantParameters(caller *pta.CGNode, site ir.CallSite) []int {
	return c.Base.RelevantParameters(caller, site)
}

// ObjectSensitive distinguishes instance methods by the allocation sites of their receiver, Depth levels deep: the
// site of the receiver followed by the heap context of the receiver. Static methods are delegated to Base.
type ObjectSensitive struct {
	Depth int
	Base  pta.ContextSelector
}

func (c ObjectSensitive) SelectContext(caller *pta.CGNode, site ir.CallSite, callee *ir.Method,
	receivers []pta.InstanceKey) pta.Context {
	have := c.RelevantParameters(caller, site)
	if callee.Static || !site.Kind.HasReceiver() {
		return c.Base.SelectContext(caller, site, callee,
			project(receivers, have, c.Base.RelevantParameters(caller, site)))
	}
	recv := receiverOf(receivers, have)
	if recv == nil {
		return c.Base.SelectContext(caller, site, callee,
			project(receivers, have, c.Base.RelevantParameters(caller, site)))
	}
	return ReceiverContext(recv, c.Depth)
}

func (c ObjectSensitive) RelevantParameters(caller *pta.CGNode, site ir.CallSite) []int {
	if site.Kind.HasReceiver() {
		return union([]int{0}, c.Base.RelevantParameters(caller, site))
	}
	return c.Base.RelevantParameters(caller, site)
}

// ReceiverContext returns the context of a method invoked on receiver, with at most depth allocation sites.
// Receivers allocated at a site yield an object context; receivers without a heap context of their own (constants,
// class objects, function objects...) are used directly, and other receivers yield the context of their type.
func ReceiverContext(receiver pta.InstanceKey, depth int) pta.Context {
	if depth <= 0 {
		return pta.Everywhere{}
	}
	switch k := pta.Unwrap(receiver).(type) {
	case pta.AllocationSiteKey:
		return pta.TruncateContext(pta.ObjectContext{Site: k.Site, Tail: k.Heap}, depth)
	case pta.MultiArrayKey:
		return pta.TruncateContext(pta.ObjectContext{Site: k.Site, Tail: k.Heap}, depth)
	case pta.ConstantKey, pta.ClassObjectKey, pta.TypeKey, pta.FunctionKey, pta.FactorySiteKey:
		return pta.ReceiverContext{Receiver: k}
	}
	return pta.ClassContext{Type: receiver.ConcreteType()}
}

// receiverOf returns the key at position 0 in receivers, where have lists the positions of receivers
func receiverOf(receivers []pta.InstanceKey, have []int) pta.InstanceKey {
	for i, p := range have {
		if p == 0 && i < len(receivers) {
			return receivers[i]
		}
	}
	return nil
}

// project returns the keys of receivers at the positions want, where have lists the positions of receivers
func project(receivers []pta.InstanceKey, have, want []int) []pta.InstanceKey {
	if len(want) == 0 {
		return nil
	}
	res := make([]pta.InstanceKey, len(want))
	for i, p := range want {
		for j, q := range have {
			if p == q && j < len(receivers) {
				res[i] = receivers[j]
				break
			}
		}
	}
	return res
}

// union returns the elements of a followed by the elements of b that are not in a
func union(a, b []int) []int {
	res := append([]int(nil), a...)
	for _, x := range b {
		found := false
		for _, y := range res {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			res = append(res, x)
		}
	}
	return res
}
