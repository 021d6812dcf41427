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

	"github.com/awslabs/ar-go-pta/analysis/ir"
)

// Context is an abstraction of the calling environment of a method. Contexts are values: two contexts are equal
// iff they are == as Go interface values, which makes them usable as map keys.
// Lists of contexts always end with Everywhere, never with nil.
type Context interface {
	fmt.Stringer
	isContext()
}

// Everywhere is the context of context-insensitive analysis.
type Everywhere struct{}

// CallStringContext is a list of call sites, most recent first.
type CallStringContext struct {
	Site ir.CallSite
	Tail Context
}

// CallerSiteContext distinguishes a callee by its immediate call site, which names the calling method.
type CallerSiteContext struct {
	Site ir.CallSite
}

// ObjectContext is a list of allocation sites: the site of the receiver, followed by the heap context of the
// receiver.
type ObjectContext struct {
	Site ir.NewSite
	Tail Context
}

// ReceiverContext distinguishes a callee by the identity of a receiver that has no heap context of its own, such as
// a constant or a class object.
type ReceiverContext struct {
	Receiver InstanceKey
}

// PairContext combines the answers of two context policies.
type PairContext struct {
	First  Context
	Second Context
}

// FactoryContext is the context of a factory method, keyed by the exact call site of the factory.
type FactoryContext struct {
	Site ir.CallSite
}

// ClassContext distinguishes a callee by a type, such as the class a reflective constructor instantiates.
type ClassContext struct {
	Type ir.TypeRef
}

func (Everywhere) isContext()        {}
func (CallStringContext) isContext() {}
func (CallerSiteContext) isContext() {}
func (ObjectContext) isContext()     {}
func (ReceiverContext) isContext()   {}
func (PairContext) isContext()       {}
func (FactoryContext) isContext()    {}
func (ClassContext) isContext()      {}

func (Everywhere) String() string { return "Everywhere" }

func (c CallStringContext) String() string {
	if _, ok := c.Tail.(Everywhere); ok || c.Tail == nil {
		return fmt.Sprintf("[%s]", c.Site)
	}
	return fmt.Sprintf("[%s]%s", c.Site, c.Tail)
}

func (c CallerSiteContext) String() string { return fmt.Sprintf("caller(%s)", c.Site) }

func (c ObjectContext) String() string {
	if _, ok := c.Tail.(Everywhere); ok || c.Tail == nil {
		return fmt.Sprintf("<%s>", c.Site)
	}
	return fmt.Sprintf("<%s>%s", c.Site, c.Tail)
}

func (c ReceiverContext) String() string { return fmt.Sprintf("receiver(%s)", c.Receiver) }
func (c PairContext) String() string     { return fmt.Sprintf("(%s, %s)", c.First, c.Second) }
func (c FactoryContext) String() string  { return fmt.Sprintf("factory(%s)", c.Site) }
func (c ClassContext) String() string    { return fmt.Sprintf("class(%s)", c.Type) }

// IsEverywhere returns true if c is the context-insensitive context
func IsEverywhere(c Context) bool {
	_, ok := c.(Everywhere)
	return ok || c == nil
}

// TruncateContext returns the first n elements of a list context (call strings and object contexts). Other contexts
// count as one element. When n <= 0, the result is Everywhere.
func TruncateContext(c Context, n int) Context {
	if n <= 0 || c == nil {
		return Everywhere{}
	}
	switch c := c.(type) {
	case CallStringContext:
		return CallStringContext{Site: c.Site, Tail: TruncateContext(c.Tail, n-1)}
	case ObjectContext:
		return ObjectContext{Site: c.Site, Tail: TruncateContext(c.Tail, n-1)}
	}
	return c
}

// ContextLength returns the number of elements of a context, as counted by TruncateContext.
func ContextLength(c Context) int {
	switch c := c.(type) {
	case nil, Everywhere:
		return 0
	case CallStringContext:
		return 1 + ContextLength(c.Tail)
	case ObjectContext:
		return 1 + ContextLength(c.Tail)
	}
	return 1
}
