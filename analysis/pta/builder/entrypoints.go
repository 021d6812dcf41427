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
	"fmt"

	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
)

// RootMethod is the reference of the synthetic method at the root of every call graph
var RootMethod = ir.MethodRef{Class: "<root>", Name: "fakeRoot"}

// Entrypoint is a method called from the root of the call graph. The root allocates an object of type Receiver
// for the receiver of instance methods (the class of the method when empty), and an object for each argument:
// Args[i] is the type of the object passed as i-th argument, the receiver excluded. Arguments without a type
// receive an object of their declared type when that type is concrete, and null otherwise.
type Entrypoint struct {
	Method   ir.MethodRef
	Receiver ir.TypeRef
	Args     []ir.TypeRef
}

func (e Entrypoint) String() string {
	return e.Method.String()
}

// MainEntrypoint returns the entrypoint for a method without argument types
func MainEntrypoint(class ir.TypeRef, method string) Entrypoint {
	return Entrypoint{Method: ir.MethodRef{Class: class, Name: method}}
}

// EntrypointsFromConfig returns the entrypoints listed in the configuration
func EntrypointsFromConfig(cfg *config.Config) []Entrypoint {
	res := make([]Entrypoint, 0, len(cfg.Entrypoints))
	for _, spec := range cfg.Entrypoints {
		e := Entrypoint{
			Method:   ir.MethodRef{Class: ir.TypeRef(spec.Class), Name: spec.Method},
			Receiver: ir.TypeRef(spec.Receiver),
		}
		for _, a := range spec.Args {
			e.Args = append(e.Args, ir.TypeRef(a))
		}
		res = append(res, e)
	}
	return res
}

// makeRoot returns the synthetic root method calling the entrypoints. Entrypoints that do not resolve to a method
// are reported as warnings, and having none left is a configuration error.
func (b *Builder) makeRoot(entrypoints []Entrypoint) (*ir.Method, error) {
	if len(entrypoints) == 0 {
		return nil, pta.ConfigErrorf("no entrypoint")
	}
	root := &ir.Method{
		Class:     RootMethod.Class,
		Name:      RootMethod.Name,
		Language:  ir.Java,
		Static:    true,
		Return:    ir.Void,
		Synthetic: true,
	}
	var body []ir.Instruction
	next := 1
	fresh := func() int {
		next++
		return next - 1
	}
	resolved := 0
	for _, e := range entrypoints {
		if err := e.validate(); err != nil {
			b.warn(pta.UnresolvedEntrypoint, "%v", err)
			continue
		}
		m := b.hierarchy.ResolveMethod(e.Method)
		if m == nil {
			b.warn(pta.UnresolvedEntrypoint, "no method %s", e.Method)
			continue
		}
		resolved++
		call := &ir.Invoke{Kind: ir.Static, Target: m.Ref()}
		params := m.Params
		if !m.Static {
			call.Kind = ir.Virtual
			recv := e.Receiver
			if recv == ir.NoType {
				recv = m.Class
			}
			v := fresh()
			body = append(body, b.allocation(v, recv))
			call.Args = append(call.Args, v)
			params = params[1:]
		}
		for i, declared := range params {
			t := declared
			if i < len(e.Args) && e.Args[i] != ir.NoType {
				t = e.Args[i]
			}
			v := fresh()
			if b.isConcrete(t) {
				body = append(body, b.allocation(v, t))
			} else {
				body = append(body, &ir.Const{Result: v, Null: true})
			}
			call.Args = append(call.Args, v)
		}
		if m.Return != ir.Void && m.Return != ir.NoType {
			call.Result = fresh()
		}
		body = append(body, call)
	}
	if resolved == 0 {
		return nil, pta.ConfigErrorf("none of the %d entrypoints resolves to a method", len(entrypoints))
	}
	body = append(body, &ir.Return{})
	root.SetBody(body)
	if err := ir.ValidateMethod(root); err != nil {
		return nil, pta.InvariantErrorf("invalid root method: %v", err)
	}
	return root, nil
}

func (b *Builder) allocation(v int, t ir.TypeRef) ir.Instruction {
	if t.IsArray() {
		return &ir.NewArray{Result: v, Type: t, Dims: 1}
	}
	return &ir.New{Result: v, Type: t}
}

// isConcrete returns true if objects of type t can be allocated: arrays, and declared classes that are not
// abstract.
func (b *Builder) isConcrete(t ir.TypeRef) bool {
	if t.IsPrimitive() || t == ir.NoType {
		return false
	}
	if t.IsArray() {
		return true
	}
	c, ok := b.hierarchy.LookupClass(t)
	return ok && !c.Abstract && !c.Interface
}

// isEntrypointCall returns true if caller is the root, whose callees are the entrypoints
func (b *Builder) isEntrypointCall(caller *pta.CGNode) bool {
	return caller.ID == b.callgraph.Root().ID
}

func (e Entrypoint) validate() error {
	if e.Method.Class == ir.NoType || e.Method.Name == "" {
		return fmt.Errorf("entrypoint %q must name a class and a method", e.Method)
	}
	return nil
}
