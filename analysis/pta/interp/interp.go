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

// Package interp implements the context interpreters of the pointer analysis: the policies that supply the
// instructions of a call graph node.
//
// A [Source] supplies instructions for some nodes. Sources are combined by [Delegating], which derives the
// summary queries (allocation sites, call sites, fields) from the instructions, and memoized by [Cached].
package interp

import (
	"fmt"

	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/awslabs/ar-go-pta/internal/funcutil"
)

// Source supplies the instructions of the nodes it understands
type Source interface {
	Understands(node *pta.CGNode) bool
	Instructions(node *pta.CGNode) []ir.Instruction
}

// Bodies supplies the instructions of the method body. Abstract methods, and intrinsics without a body, are not
// understood.
type Bodies struct{}

func (Bodies) Understands(node *pta.CGNode) bool {
	m := node.Method
	return !m.Abstract && (m.Intrinsic == ir.NoIntrinsic || len(m.Body) > 0)
}

func (Bodies) Instructions(node *pta.CGNode) []ir.Instruction {
	return node.Method.Body
}

// Summaries supplies hand-written instructions in place of the body of some methods.
type Summaries struct {
	ByMethod map[ir.MethodRef][]ir.Instruction
}

func (s Summaries) Understands(node *pta.CGNode) bool {
	_, ok := s.ByMethod[node.Method.Ref()]
	return ok
}

func (s Summaries) Instructions(node *pta.CGNode) []ir.Instruction {
	return s.ByMethod[node.Method.Ref()]
}

// SummariesFromConfig parses the summaries section of the configuration, and gives an empty summary to every method
// of the program matching a no-effect identifier.
func SummariesFromConfig(cfg *config.Config, program *ir.Program) (Summaries, error) {
	res := Summaries{ByMethod: map[ir.MethodRef][]ir.Instruction{}}
	for _, m := range program.Methods() {
		if cfg.IsNoEffectMethod(string(m.Language), string(m.Class), m.Name) {
			res.ByMethod[m.Ref()] = ir.Number([]ir.Instruction{&ir.Return{}})
		}
	}
	for _, name := range funcutil.SortedKeys(cfg.Summaries) {
		ref, err := ir.ParseMethodRef(name)
		if err != nil {
			return res, fmt.Errorf("summary %q: %w", name, err)
		}
		body, err := ir.ParseBody(cfg.Summaries[name])
		if err != nil {
			return res, fmt.Errorf("summary %q: %w", name, err)
		}
		res.ByMethod[ref] = body
	}
	return res, nil
}

// Reflection synthesizes the body of reflective constructors (methods with the NewInstance intrinsic) analyzed in
// the context of a class T: the method allocates an object of type T and returns it.
type Reflection struct{}

func (Reflection) Understands(node *pta.CGNode) bool {
	_, ok := node.Context.(pta.ClassContext)
	return ok && node.Method.Intrinsic == ir.NewInstance
}

func (Reflection) Instructions(node *pta.CGNode) []ir.Instruction {
	cc := node.Context.(pta.ClassContext)
	v := node.Method.NumParams() + 1
	return ir.Number([]ir.Instruction{
		&ir.New{Result: v, Type: cc.Type},
		&ir.Return{Val: v},
	})
}

// CallApply synthesizes the body of call/apply intrinsics: the function object in the first parameter is invoked
// with the remaining parameters, and its result is returned.
type CallApply struct{}

func (CallApply) Understands(node *pta.CGNode) bool {
	return node.Method.Intrinsic == ir.CallApply && node.Method.NumParams() > 0
}

func (CallApply) Instructions(node *pta.CGNode) []ir.Instruction {
	m := node.Method
	n := m.NumParams()
	args := make([]int, n)
	for i := range args {
		args[i] = i + 1
	}
	v := n + 1
	return ir.Number([]ir.Instruction{
		&ir.Invoke{Result: v, Kind: ir.Dynamic, Target: m.Ref(), Args: args},
		&ir.Return{Val: v},
	})
}

// Delegating asks its sources in order; the first source that understands a node supplies its instructions.
type Delegating struct {
	Sources []Source
}

func (d Delegating) source(node *pta.CGNode) Source {
	for _, s := range d.Sources {
		if s.Understands(node) {
			return s
		}
	}
	return nil
}

func (d Delegating) Understands(node *pta.CGNode) bool {
	return d.source(node) != nil
}

func (d Delegating) Instructions(node *pta.CGNode) []ir.Instruction {
	if s := d.source(node); s != nil {
		return s.Instructions(node)
	}
	return nil
}

func (d Delegating) NewSites(node *pta.CGNode) []ir.NewSite {
	news, _, _, _ := pta.SummarizeInstructions(node.Method.Ref(), d.Instructions(node))
	return news
}

func (d Delegating) CallSites(node *pta.CGNode) []ir.CallSite {
	_, calls, _, _ := pta.SummarizeInstructions(node.Method.Ref(), d.Instructions(node))
	return calls
}

func (d Delegating) FieldsRead(node *pta.CGNode) []ir.FieldRef {
	_, _, read, _ := pta.SummarizeInstructions(node.Method.Ref(), d.Instructions(node))
	return read
}

func (d Delegating) FieldsWritten(node *pta.CGNode) []ir.FieldRef {
	_, _, _, written := pta.SummarizeInstructions(node.Method.Ref(), d.Instructions(node))
	return written
}

type entry struct {
	understands bool
	instrs      []ir.Instruction
	news        []ir.NewSite
	calls       []ir.CallSite
	read        []ir.FieldRef
	written     []ir.FieldRef
}

// Cached memoizes the answers of Inner per node, so that a node is bound to a single instruction stream for the
// whole analysis. It is not safe for concurrent use.
type Cached struct {
	Inner pta.ContextInterpreter
	memo  map[*pta.CGNode]*entry
}

// NewCached returns an empty cache in front of inner
func NewCached(inner pta.ContextInterpreter) *Cached {
	return &Cached{Inner: inner, memo: map[*pta.CGNode]*entry{}}
}

func (c *Cached) get(node *pta.CGNode) *entry {
	if e, ok := c.memo[node]; ok {
		return e
	}
	e := &entry{understands: c.Inner.Understands(node)}
	if e.understands {
		e.instrs = c.Inner.Instructions(node)
		e.news = c.Inner.NewSites(node)
		e.calls = c.Inner.CallSites(node)
		e.read = c.Inner.FieldsRead(node)
		e.written = c.Inner.FieldsWritten(node)
	}
	c.memo[node] = e
	return e
}

func (c *Cached) Understands(node *pta.CGNode) bool              { return c.get(node).understands }
func (c *Cached) Instructions(node *pta.CGNode) []ir.Instruction { return c.get(node).instrs }
func (c *Cached) NewSites(node *pta.CGNode) []ir.NewSite         { return c.get(node).news }
func (c *Cached) CallSites(node *pta.CGNode) []ir.CallSite       { return c.get(node).calls }
func (c *Cached) FieldsRead(node *pta.CGNode) []ir.FieldRef      { return c.get(node).read }
func (c *Cached) FieldsWritten(node *pta.CGNode) []ir.FieldRef   { return c.get(node).written }

// Reset drops the memoized answers
func (c *Cached) Reset() {
	c.memo = map[*pta.CGNode]*entry{}
}

// FromConfig returns the interpreter described by the configuration: summaries first, then reflection and
// call/apply synthesis when enabled, then method bodies. The answers are cached per node.
func FromConfig(cfg *config.Config, program *ir.Program) (*Cached, error) {
	summaries, err := SummariesFromConfig(cfg, program)
	if err != nil {
		return nil, pta.ConfigErrorf("invalid summaries: %w", err)
	}
	sources := []Source{summaries}
	if cfg.Reflection == config.ReflectionFull {
		sources = append(sources, Reflection{})
	}
	if cfg.HandleCallApply {
		sources = append(sources, CallApply{})
	}
	sources = append(sources, Bodies{})
	return NewCached(Delegating{Sources: sources}), nil
}
