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

// Package builder constructs the call graph and the points-to sets of a program together, on the fly.
//
// The builder starts from a synthetic root method that calls the entrypoints. Each node of the call graph is
// visited once: its instructions are translated into constraints of a [solver.System]. Invocations whose target or
// context depends on the values of some arguments are translated into side effects: every time a new combination
// of abstract objects reaches those arguments, the target is resolved, the callee's context is selected, and the
// callee's node is created (and later visited) if it is new. The construction ends when the solver reaches its
// fixpoint and no node is left to visit.
package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/awslabs/ar-go-pta/analysis/cha"
	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/awslabs/ar-go-pta/analysis/pta/contexts"
	"github.com/awslabs/ar-go-pta/analysis/pta/heap"
	"github.com/awslabs/ar-go-pta/analysis/pta/interp"
	"github.com/awslabs/ar-go-pta/analysis/pta/solver"
	"golang.org/x/tools/container/intsets"
)

// Progress is the state of a construction after a solver step
type Progress struct {
	Step         int
	Nodes        int
	CallEdges    int
	Constraints  int
	PointsToSize int
}

// An Option changes a policy or a setting of the builder
type Option func(*Builder)

// WithSelector replaces the context selector built from the configuration
func WithSelector(s pta.ContextSelector) Option {
	return func(b *Builder) { b.selector = s }
}

// WithFactory replaces the instance key factory built from the configuration
func WithFactory(f pta.InstanceKeyFactory) Option {
	return func(b *Builder) { b.factory = f }
}

// WithInterpreter replaces the context interpreter built from the configuration
func WithInterpreter(i pta.ContextInterpreter) Option {
	return func(b *Builder) { b.interpreter = i }
}

// WithMonitor sets a function called after every solver step. Computing the progress walks every points-to set,
// so monitors slow the analysis down.
func WithMonitor(f func(Progress)) Option {
	return func(b *Builder) { b.monitor = f }
}

// WithSolverOptions replaces the solver options derived from the configuration. The solver's own monitor is
// overwritten when a monitor is set with WithMonitor.
func WithSolverOptions(opts solver.Options) Option {
	return func(b *Builder) { b.solverOptions = opts }
}

// Builder builds call graphs and points-to sets for one program with one set of policies. A builder can run
// several constructions in sequence; each Build starts from scratch. It is not safe for concurrent use.
type Builder struct {
	program   *ir.Program
	hierarchy cha.Hierarchy
	config    *config.Config
	logger    *config.LogGroup

	selector      pta.ContextSelector
	factory       pta.InstanceKeyFactory
	interpreter   pta.ContextInterpreter
	monitor       func(Progress)
	solverOptions solver.Options

	// state of the current construction
	system      *solver.System
	callgraph   *pta.CallGraph
	pointers    *pta.Mapping[pta.PointerKey]
	instances   *pta.Mapping[pta.InstanceKey]
	diagnostics *pta.Diagnostics
	queue       []*pta.CGNode
	visited     map[pta.NodeID]bool
	filters     map[ir.TypeRef]*subtypeFilter
}

// New returns a builder for program. The policies are built from the configuration unless they are replaced by
// options. A nil hierarchy is replaced by the hierarchy of the program, a nil logger by a logger configured by cfg.
// Invalid configurations are reported as *pta.ConfigError.
func New(program *ir.Program, hierarchy cha.Hierarchy, cfg *config.Config, logger *config.LogGroup,
	opts ...Option) (*Builder, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if err := cfg.Validate(); err != nil {
		return nil, pta.ConfigErrorf("invalid configuration: %w", err)
	}
	if hierarchy == nil {
		hierarchy = cha.New(program)
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	b := &Builder{
		program:       program,
		hierarchy:     hierarchy,
		config:        cfg,
		logger:        logger,
		solverOptions: solver.Options{MaxSteps: cfg.MaxSteps},
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.selector == nil {
		sel, err := contexts.FromConfig(cfg, program)
		if err != nil {
			return nil, err
		}
		b.selector = sel
	}
	if b.interpreter == nil {
		i, err := interp.FromConfig(cfg, program)
		if err != nil {
			return nil, err
		}
		b.interpreter = i
	}
	if b.factory == nil {
		b.factory = heap.FromConfig(cfg, hierarchy, b.interpreter)
	}
	return b, nil
}

// Build computes the call graph and the points-to sets of the program, starting from the entrypoints.
//
// The error is a *pta.ConfigError if no entrypoint can be resolved or a policy reports a configuration problem,
// a *pta.InvariantError if a policy returns an answer the analysis cannot use, and a *pta.CancelError carrying the
// partial result if ctx is done or the step bound is reached before the fixpoint.
func (b *Builder) Build(ctx context.Context, entrypoints []Entrypoint) (res *pta.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, recoverError(r)
		}
	}()

	start := time.Now()
	b.reset()
	root, err := b.makeRoot(entrypoints)
	if err != nil {
		return nil, err
	}
	b.callgraph = pta.NewCallGraph(root)
	b.enqueue(b.callgraph.Root())

	opts := b.solverOptions
	if b.monitor != nil {
		opts.Monitor = func(step int) { b.monitor(b.progress(step)) }
	}
	b.system = solver.New(opts)

	solveErr := b.system.Solve(ctx, solver.GeneratorFunc(b.visitQueued))
	res = b.result()
	if solveErr != nil {
		b.logger.Warnf("Pointer analysis stopped after %d steps: %v\n", res.Steps, solveErr)
		return nil, &pta.CancelError{Err: solveErr, Partial: res}
	}
	b.logger.Infof("Pointer analysis terminated (%.2f s): %d nodes, %d call edges, %d steps\n",
		time.Since(start).Seconds(), res.CallGraph.NumNodes(), res.CallGraph.NumEdges(), res.Steps)
	if n := res.Diagnostics.Len(); n > 0 {
		b.logger.Infof("%d warnings\n", n)
	}
	return res, nil
}

// recoverError returns the error carried by a policy panic, or panics again if the panic does not carry one of the
// analysis errors.
func recoverError(r any) error {
	if err, ok := r.(error); ok {
		var cfgErr *pta.ConfigError
		var invErr *pta.InvariantError
		if errors.As(err, &cfgErr) || errors.As(err, &invErr) {
			return err
		}
	}
	panic(r)
}

func (b *Builder) reset() {
	b.pointers = pta.NewMapping[pta.PointerKey]()
	b.instances = pta.NewMapping[pta.InstanceKey]()
	b.diagnostics = pta.NewDiagnostics()
	b.queue = nil
	b.visited = map[pta.NodeID]bool{}
	b.filters = map[ir.TypeRef]*subtypeFilter{}
	if r, ok := b.interpreter.(interface{ Reset() }); ok {
		r.Reset()
	}
}

func (b *Builder) progress(step int) Progress {
	return Progress{
		Step:         step,
		Nodes:        b.callgraph.NumNodes(),
		CallEdges:    b.callgraph.NumEdges(),
		Constraints:  b.system.NumEdges(),
		PointsToSize: b.system.TotalSize(),
	}
}

// result extracts a snapshot of the current state
func (b *Builder) result() *pta.Result {
	pa := pta.NewPointerAnalysis(b.pointers.Items(), b.instances.Items(),
		func(i int) *intsets.Sparse { return b.system.PointsTo(solver.VarID(i)) }, b.hierarchy)
	return &pta.Result{
		CallGraph:       b.callgraph,
		PointerAnalysis: pa,
		Diagnostics:     b.diagnostics,
		Steps:           b.system.Steps(),
	}
}

// enqueue schedules a node for its visit
func (b *Builder) enqueue(n *pta.CGNode) {
	b.queue = append(b.queue, n)
}

// visitQueued visits the nodes waiting in the queue, including the nodes discovered while visiting. It returns
// true if it visited any node.
func (b *Builder) visitQueued() bool {
	visitedAny := false
	for len(b.queue) > 0 {
		n := b.queue[0]
		b.queue = b.queue[1:]
		if b.visited[n.ID] {
			continue
		}
		b.visited[n.ID] = true
		visitedAny = true
		b.visit(n)
	}
	return visitedAny
}

// varOf returns the solver variable of a pointer key. Variables and pointer keys are created together, so the
// ordinal of a pointer key is its variable.
func (b *Builder) varOf(pk pta.PointerKey) solver.VarID {
	i, added := b.pointers.Add(pk)
	if added {
		b.system.NewVar()
	}
	return solver.VarID(i)
}

func (b *Builder) local(n *pta.CGNode, v int) solver.VarID {
	return b.varOf(pta.LocalKey{Node: n.ID, Value: v})
}

// ordinal returns the ordinal of an instance key
func (b *Builder) ordinal(ik pta.InstanceKey) int {
	i, _ := b.instances.Add(ik)
	return i
}

// addObject adds ik to the set of v. A nil key is no object.
func (b *Builder) addObject(v solver.VarID, ik pta.InstanceKey) {
	if ik == nil {
		return
	}
	b.system.AddImplicit(v, b.ordinal(ik))
}

// warn records a warning and logs it the first time it is seen
func (b *Builder) warn(kind pta.WarningKind, format string, args ...any) {
	if b.diagnostics.Warn(kind, format, args...) && !b.config.SilenceWarn {
		if kind == pta.UnresolvedTarget && !b.config.ReportUnresolved {
			b.logger.Debugf("%s: %s\n", kind, fmt.Sprintf(format, args...))
			return
		}
		b.logger.Warnf("%s: %s\n", kind, fmt.Sprintf(format, args...))
	}
}

// Diagnostics returns the warnings of the last construction
func (b *Builder) Diagnostics() *pta.Diagnostics {
	return b.diagnostics
}

// SetLogOutput redirects the output of the builder's logger
func (b *Builder) SetLogOutput(w io.Writer) {
	b.logger.SetAllOutput(w)
}

// subtypeFilter accepts the instance keys whose concrete type is a subtype of typ
type subtypeFilter struct {
	b   *Builder
	typ ir.TypeRef
}

func (f *subtypeFilter) Accept(elem int) bool {
	return f.b.hierarchy.IsSubtypeOf(f.b.instances.Get(elem).ConcreteType(), f.typ)
}

func (b *Builder) filterFor(t ir.TypeRef) *subtypeFilter {
	f, ok := b.filters[t]
	if !ok {
		f = &subtypeFilter{b: b, typ: t}
		b.filters[t] = f
	}
	return f
}
