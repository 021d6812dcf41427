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

package contexts

import (
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
)

// FactoryDispatch analyzes factory methods in a context keyed by the exact call site, so that the objects a
// factory allocates are distinguished per call site. A factory called from a factory context is delegated to Base.
type FactoryDispatch struct {
	Base      pta.ContextSelector
	IsFactory func(*ir.Method) bool
}

func (c FactoryDispatch) SelectContext(caller *pta.CGNode, site ir.CallSite, callee *ir.Method,
	receivers []pta.InstanceKey) pta.Context {
	if _, inFactory := caller.Context.(pta.FactoryContext); !inFactory && c.IsFactory(callee) {
		return pta.FactoryContext{Site: site}
	}
	return c.Base.SelectContext(caller, site, callee, receivers)
}

func (c FactoryDispatch) RelevantParameters(caller *pta.CGNode, site ir.CallSite) []int {
	return c.Base.RelevantParameters(caller, site)
}

// Container analyzes the methods of container classes in the context of their receiver, Depth allocation sites
// deep. Other methods are delegated to Base.
type Container struct {
	Base        pta.ContextSelector
	IsContainer func(ir.TypeRef) bool
	Depth       int
}

func (c Container) SelectContext(caller *pta.CGNode, site ir.CallSite, callee *ir.Method,
	receivers []pta.InstanceKey) pta.Context {
	have := c.RelevantParameters(caller, site)
	if !callee.Static && site.Kind.HasReceiver() && c.IsContainer(callee.Class) {
		if recv := receiverOf(receivers, have); recv != nil {
			depth := c.Depth
			if depth <= 0 {
				depth = 1
			}
			return ReceiverContext(recv, depth)
		}
	}
	return c.Base.SelectContext(caller, site, callee, project(receivers, have, c.Base.RelevantParameters(caller, site)))
}

func (c Container) RelevantParameters(caller *pta.CGNode, site ir.CallSite) []int {
	if site.Kind.HasReceiver() {
		return union([]int{0}, c.Base.RelevantParameters(caller, site))
	}
	return c.Base.RelevantParameters(caller, site)
}

// ReflectionDispatch analyzes reflective constructors (methods with the NewInstance intrinsic) in the context of
// the class they instantiate. It has no opinion on other calls.
type ReflectionDispatch struct{}

func (ReflectionDispatch) SelectContext(_ *pta.CGNode, _ ir.CallSite, callee *ir.Method,
	receivers []pta.InstanceKey) pta.Context {
	if callee.Intrinsic != ir.NewInstance || len(receivers) == 0 || receivers[0] == nil {
		return nil
	}
	if k, ok := pta.Unwrap(receivers[0]).(pta.ClassObjectKey); ok {
		return pta.ClassContext{Type: k.Object}
	}
	return nil
}

func (ReflectionDispatch) RelevantParameters(_ *pta.CGNode, site ir.CallSite) []int {
	if site.Kind.HasReceiver() {
		return []int{0}
	}
	return nil
}

// Delegating asks Primary first and Fallback when Primary has no opinion.
type Delegating struct {
	Primary  pta.ContextSelector
	Fallback pta.ContextSelector
}

func (c Delegating) SelectContext(caller *pta.CGNode, site ir.CallSite, callee *ir.Method,
	receivers []pta.InstanceKey) pta.Context {
	have := c.RelevantParameters(caller, site)
	if ctx := c.Primary.SelectContext(caller, site, callee,
		project(receivers, have, c.Primary.RelevantParameters(caller, site))); ctx != nil {
		return ctx
	}
	return c.Fallback.SelectContext(caller, site, callee,
		project(receivers, have, c.Fallback.RelevantParameters(caller, site)))
}

func (c Delegating) RelevantParameters(caller *pta.CGNode, site ir.CallSite) []int {
	return union(c.Primary.RelevantParameters(caller, site), c.Fallback.RelevantParameters(caller, site))
}

// Paired combines the answers of two selectors in a pair context. If either has no opinion, neither does the pair.
type Paired struct {
	First  pta.ContextSelector
	Second pta.ContextSelector
}

func (c Paired) SelectContext(caller *pta.CGNode, site ir.CallSite, callee *ir.Method,
	receivers []pta.InstanceKey) pta.Context {
	have := c.RelevantParameters(caller, site)
	first := c.First.SelectContext(caller, site, callee,
		project(receivers, have, c.First.RelevantParameters(caller, site)))
	second := c.Second.SelectContext(caller, site, callee,
		project(receivers, have, c.Second.RelevantParameters(caller, site)))
	if first == nil || second == nil {
		return nil
	}
	return pta.PairContext{First: first, Second: second}
}

func (c Paired) RelevantParameters(caller *pta.CGNode, site ir.CallSite) []int {
	return union(c.First.RelevantParameters(caller, site), c.Second.RelevantParameters(caller, site))
}
