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
	"github.com/awslabs/ar-go-pta/analysis/ir"
)

// ContextSelector decides the context of a callee at a call site.
// Implementations must be deterministic: the same inputs always yield equal contexts.
type ContextSelector interface {
	// SelectContext returns the context of callee when called from caller at site. receivers holds, for each of the
	// positions returned by RelevantParameters (in the same order), the instance key the caller passes at that
	// position; it is empty when the selector inspects no parameter.
	// A nil result means the selector has no opinion; a delegating selector then asks its fallback.
	SelectContext(caller *CGNode, site ir.CallSite, callee *ir.Method, receivers []InstanceKey) Context

	// RelevantParameters returns the argument positions (0 is the receiver) whose values influence the context
	// chosen at site.
	RelevantParameters(caller *CGNode, site ir.CallSite) []int
}

// InstanceKeyFactory decides the abstract object of an allocation. A nil key means no object is created.
// Implementations must be idempotent: identical inputs yield equal keys.
type InstanceKeyFactory interface {
	InstanceKeyForAllocation(node *CGNode, site ir.NewSite) InstanceKey
	// InstanceKeyForMultiNewArray returns the key of the arrays of dimension dim (dim >= 1) of a multi-dimensional
	// array allocation.
	InstanceKeyForMultiNewArray(node *CGNode, site ir.NewSite, dim int) InstanceKey
	InstanceKeyForConstant(typ ir.TypeRef, value string) InstanceKey
	InstanceKeyForPointerException(node *CGNode, pc int, typ ir.TypeRef) InstanceKey
	// InstanceKeyForMetadataObject returns the key of the metadata object (class object, function object) obj,
	// whose own type is typ.
	InstanceKeyForMetadataObject(obj any, typ ir.TypeRef) InstanceKey
}

// ContextInterpreter supplies the instructions of a node. The answers for a node never change during a run.
type ContextInterpreter interface {
	// Understands returns true if the interpreter can supply the instructions of node
	Understands(node *CGNode) bool
	Instructions(node *CGNode) []ir.Instruction
	NewSites(node *CGNode) []ir.NewSite
	FieldsRead(node *CGNode) []ir.FieldRef
	FieldsWritten(node *CGNode) []ir.FieldRef
	CallSites(node *CGNode) []ir.CallSite
}

// SummarizeInstructions computes the allocation sites, call sites and the fields read and written by instrs in
// method m. Interpreters use it to answer the summary queries from their instruction streams.
func SummarizeInstructions(m ir.MethodRef, instrs []ir.Instruction) (news []ir.NewSite, calls []ir.CallSite,
	read []ir.FieldRef, written []ir.FieldRef) {
	for _, instr := range instrs {
		switch instr := instr.(type) {
		case *ir.New:
			news = append(news, ir.NewSite{Method: m, PC: instr.PC(), Type: instr.Type})
		case *ir.NewArray:
			news = append(news, ir.NewSite{Method: m, PC: instr.PC(), Type: instr.Type})
		case *ir.Const:
			// object constants are listed at their site. They are allocations only when not abstracted by value.
			if !instr.Null && !instr.Type.IsPrimitive() {
				news = append(news, ir.NewSite{Method: m, PC: instr.PC(), Type: instr.Type})
			}
		case *ir.Invoke:
			calls = append(calls, instr.Site(m))
		case *ir.GetField:
			read = append(read, instr.Field)
		case *ir.GetStatic:
			read = append(read, instr.Field)
		case *ir.PutField:
			written = append(written, instr.Field)
		case *ir.PutStatic:
			written = append(written, instr.Field)
		}
	}
	return news, calls, read, written
}
