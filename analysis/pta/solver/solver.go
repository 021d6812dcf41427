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

// Package solver implements an inclusion-based constraint system over sets of small integers, solved by a
// worklist with difference propagation. Constraints can be added while the system is being solved; side effect
// operators attached to variables generate new constraints as the sets grow.
package solver

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/tools/container/intsets"
)

var (
	// ErrCanceled is returned by Solve when its context is done
	ErrCanceled = errors.New("solver canceled")
	// ErrStepLimit is returned by Solve when the maximum number of steps is reached
	ErrStepLimit = errors.New("solver step limit reached")
)

// VarID identifies a variable of a System. IDs are dense and allocated in increasing order from 0.
type VarID int

// Filter restricts the elements flowing along a filtered edge. Filters are compared with == to deduplicate edges,
// so they should be pointers or small comparable values.
type Filter interface {
	Accept(elem int) bool
}

// FilterFunc adapts a function to a Filter. A FilterFunc is not comparable and must be wrapped in a pointer
// before being used as a Filter.
type FilterFunc func(elem int) bool

// Accept calls f
func (f *FilterFunc) Accept(elem int) bool { return (*f)(elem) }

// SideEffect is an operator attached to a variable. Apply is called with every set of elements newly added to the
// variable (delta); delta must not be retained or modified. Apply may add variables and constraints.
type SideEffect interface {
	Apply(s *System, v VarID, delta *intsets.Sparse)
}

// SideEffectFunc adapts a function to a SideEffect
type SideEffectFunc func(s *System, v VarID, delta *intsets.Sparse)

// Apply calls f
func (f SideEffectFunc) Apply(s *System, v VarID, delta *intsets.Sparse) { f(s, v, delta) }

// Generator adds constraints to a system between solver steps. Generate returns true if it did any work; the
// solver keeps calling it until it returns false before each step.
type Generator interface {
	Generate() bool
}

// GeneratorFunc adapts a function to a Generator
type GeneratorFunc func() bool

// Generate calls f
func (f GeneratorFunc) Generate() bool { return f() }

// Options parameterize Solve
type Options struct {
	// MaxSteps bounds the number of steps; 0 means no bound
	MaxSteps int
	// Monitor is called after each step with the number of steps so far
	Monitor func(step int)
}

type filteredEdge struct {
	src    VarID
	dst    VarID
	filter Filter
}

type variable struct {
	pts      intsets.Sparse // current points-to set
	prev     intsets.Sparse // part of pts already propagated
	copyTo   intsets.Sparse // successors along assign edges
	filtered []filteredEdge
	effects  []SideEffect
}

type pendingEffect struct {
	v  VarID
	op SideEffect
}

// System is a set of variables and constraints.
//
// Invariant: every variable whose pts differs from prev is in the worklist, and every constraint attached to a
// variable has been applied to its prev set.
type System struct {
	opts     Options
	vars     []*variable
	work     intsets.Sparse
	pending  []pendingEffect
	filtered map[filteredEdge]bool
	edges    int
	steps    int
}

// New returns an empty system
func New(opts Options) *System {
	return &System{opts: opts, filtered: map[filteredEdge]bool{}}
}

// NewVar adds a variable with an empty set
func (s *System) NewVar() VarID {
	s.vars = append(s.vars, &variable{})
	return VarID(len(s.vars) - 1)
}

// NumVars returns the number of variables
func (s *System) NumVars() int {
	return len(s.vars)
}

// NumEdges returns the number of assign and filtered edges
func (s *System) NumEdges() int {
	return s.edges
}

// Steps returns the number of steps performed by Solve so far
func (s *System) Steps() int {
	return s.steps
}

func (s *System) addWork(v VarID) {
	s.work.Insert(int(v))
}

// AddImplicit adds elem to the set of v. It returns true if the set changed.
func (s *System) AddImplicit(v VarID, elem int) bool {
	if s.vars[v].pts.Insert(elem) {
		s.addWork(v)
		return true
	}
	return false
}

// AddAssign adds the constraint dst ⊇ src. It returns true if the edge is new.
func (s *System) AddAssign(dst, src VarID) bool {
	if dst == src {
		return false
	}
	from := s.vars[src]
	if !from.copyTo.Insert(int(dst)) {
		return false
	}
	s.edges++
	// the part of src not yet propagated is delivered when src leaves the worklist
	if s.vars[dst].pts.UnionWith(&from.prev) {
		s.addWork(dst)
	}
	return true
}

// AddFilteredAssign adds the constraint dst ⊇ {x ∈ src | filter accepts x}. It returns true if the edge is new.
func (s *System) AddFilteredAssign(dst, src VarID, filter Filter) bool {
	e := filteredEdge{src: src, dst: dst, filter: filter}
	if s.filtered[e] {
		return false
	}
	s.filtered[e] = true
	s.edges++
	from := s.vars[src]
	from.filtered = append(from.filtered, e)
	if s.unionFiltered(dst, &from.prev, filter) {
		s.addWork(dst)
	}
	return true
}

func (s *System) unionFiltered(dst VarID, elems *intsets.Sparse, filter Filter) bool {
	changed := false
	to := s.vars[dst]
	for _, x := range elems.AppendTo(nil) {
		if filter.Accept(x) && to.pts.Insert(x) {
			changed = true
		}
	}
	return changed
}

// AddSideEffect attaches op to v. The operator is attached before the next step, and is applied once to the
// elements v already propagated at that time.
func (s *System) AddSideEffect(v VarID, op SideEffect) {
	s.pending = append(s.pending, pendingEffect{v, op})
}

// flush attaches the pending side effects and returns true if there were any
func (s *System) flush() bool {
	if len(s.pending) == 0 {
		return false
	}
	for len(s.pending) > 0 {
		p := s.pending[0]
		s.pending = s.pending[1:]
		n := s.vars[p.v]
		n.effects = append(n.effects, p.op)
		if !n.prev.IsEmpty() {
			var old intsets.Sparse
			old.Copy(&n.prev)
			p.op.Apply(s, p.v, &old)
		}
	}
	s.pending = nil
	return true
}

// PointsTo returns the set of v. The set must not be modified.
func (s *System) PointsTo(v VarID) *intsets.Sparse {
	return &s.vars[v].pts
}

// TotalSize returns the sum of the sizes of all the sets
func (s *System) TotalSize() int {
	n := 0
	for _, v := range s.vars {
		n += v.pts.Len()
	}
	return n
}

// Solve runs the worklist until it is empty and gen has nothing to add. It returns an error wrapping ErrCanceled
// and the context error if ctx is done, or ErrStepLimit if the step bound is reached. The system is consistent
// when Solve returns, and Solve can be called again to resume.
func (s *System) Solve(ctx context.Context, gen Generator) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCanceled, err)
		}
		if s.opts.MaxSteps > 0 && s.steps >= s.opts.MaxSteps {
			return fmt.Errorf("%w (%d)", ErrStepLimit, s.opts.MaxSteps)
		}
		for {
			generated := gen != nil && gen.Generate()
			flushed := s.flush()
			if !generated && !flushed {
				break
			}
		}
		var x int
		if !s.work.TakeMin(&x) {
			return nil
		}
		s.steps++
		s.propagate(VarID(x))
		if s.opts.Monitor != nil {
			s.opts.Monitor(s.steps)
		}
	}
}

// propagate pushes the elements of v that have not been propagated yet along its edges and side effects.
func (s *System) propagate(v VarID) {
	n := s.vars[v]
	var delta intsets.Sparse
	delta.Difference(&n.pts, &n.prev)
	if delta.IsEmpty() {
		return
	}
	n.prev.Copy(&n.pts)

	// operators attached while applying are applied through flush
	effects := n.effects
	for _, op := range effects {
		op.Apply(s, v, &delta)
	}
	for _, x := range n.copyTo.AppendTo(nil) {
		if s.vars[x].pts.UnionWith(&delta) {
			s.addWork(VarID(x))
		}
	}
	filtered := n.filtered
	for _, e := range filtered {
		if s.unionFiltered(e.dst, &delta, e.filter) {
			s.addWork(e.dst)
		}
	}
}
