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

package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Instruction is an instruction of a method body in SSA form. Values are numbered: parameters are 1..n and every
// other value is defined by exactly one instruction. The value number 0 means "no value".
//
// The set of instructions is closed; analyses switch on the concrete type. Source-specific operations are
// represented by an *Extension carrying an ExtOp.
type Instruction interface {
	// PC is the index of the instruction in its method, which identifies allocation and call sites.
	PC() int
	// Def is the value defined by the instruction, 0 if none
	Def() int
	// Uses are the values read by the instruction
	Uses() []int
	// Throws are the types of the exceptions the instruction may raise implicitly
	Throws() []TypeRef
	String() string
	isInstruction()
}

// base holds the position of an instruction and its implicit exceptions.
type base struct {
	Loc        int
	Exceptions []TypeRef
}

func (b *base) PC() int           { return b.Loc }
func (b *base) Throws() []TypeRef { return b.Exceptions }
func (b *base) isInstruction()    {}

func (b *base) setPC(pc int)               { b.Loc = pc }
func (b *base) addThrows(types ...TypeRef) { b.Exceptions = append(b.Exceptions, types...) }

func (b *base) throwsSuffix() string {
	if len(b.Exceptions) == 0 {
		return ""
	}
	s := make([]string, len(b.Exceptions))
	for i, t := range b.Exceptions {
		s[i] = string(t)
	}
	return " throws " + strings.Join(s, ",")
}

// New allocates an object of a class type.
type New struct {
	base
	Result int
	Type   TypeRef
}

// NewArray allocates an array. When Dims > 1, the arrays of the inner dimensions are allocated too.
type NewArray struct {
	base
	Result int
	Type   TypeRef
	Dims   int
}

// Const defines a constant. Null constants never point to an object.
type Const struct {
	base
	Result int
	Type   TypeRef
	Value  string
	Null   bool
}

// ClassLit defines the class object of a type.
type ClassLit struct {
	base
	Result int
	Type   TypeRef
}

// MakeFunc defines a function object for a method.
type MakeFunc struct {
	base
	Result int
	Target MethodRef
}

// GetField reads Field of the object in Ref.
type GetField struct {
	base
	Result int
	Ref    int
	Field  FieldRef
}

// PutField writes Val into Field of the object in Ref.
type PutField struct {
	base
	Ref   int
	Val   int
	Field FieldRef
}

// GetStatic reads a static field.
type GetStatic struct {
	base
	Result int
	Field  FieldRef
}

// PutStatic writes a static field.
type PutStatic struct {
	base
	Val   int
	Field FieldRef
}

// ArrayLoad reads an element of the array in Array.
type ArrayLoad struct {
	base
	Result int
	Array  int
}

// ArrayStore writes Val into an element of the array in Array.
type ArrayStore struct {
	base
	Array int
	Val   int
}

// CheckCast defines Result as Val restricted to the objects of type Type.
type CheckCast struct {
	base
	Result int
	Val    int
	Type   TypeRef
}

// Invoke calls Target. For calls with a receiver, the receiver is Args[0]; for dynamic calls, Args[0] is the
// function object and the remaining arguments are the parameters of the function. Exceptions raised by the callee
// are defined in Exc when it is not 0, otherwise they are propagated to the caller.
type Invoke struct {
	base
	Result int
	Exc    int
	Kind   CallKind
	Target MethodRef
	Args   []int
}

// Site returns the call site of the invocation in method m
func (i *Invoke) Site(m MethodRef) CallSite {
	return CallSite{Method: m, PC: i.Loc, Target: i.Target, Kind: i.Kind}
}

// Return returns Val, or nothing when Val is 0.
type Return struct {
	base
	Val int
}

// Throw raises the exception in Val.
type Throw struct {
	base
	Val int
}

// Phi merges values at a control-flow join.
type Phi struct {
	base
	Result int
	Vals   []int
}

// ExtOp is the operation of a source-specific instruction.
type ExtOp int

const (
	// PropertyRead reads property Name of Operands[0] into Result. An empty name reads any property.
	PropertyRead ExtOp = iota
	// PropertyWrite writes Operands[1] into property Name of Operands[0].
	PropertyWrite
)

func (op ExtOp) String() string {
	switch op {
	case PropertyRead:
		return "propread"
	case PropertyWrite:
		return "propwrite"
	}
	return fmt.Sprintf("ExtOp(%d)", int(op))
}

// Extension is an instruction specific to one source language.
type Extension struct {
	base
	Op       ExtOp
	Result   int
	Operands []int
	Name     string
}

func (i *New) Def() int        { return i.Result }
func (i *NewArray) Def() int   { return i.Result }
func (i *Const) Def() int      { return i.Result }
func (i *ClassLit) Def() int   { return i.Result }
func (i *MakeFunc) Def() int   { return i.Result }
func (i *GetField) Def() int   { return i.Result }
func (i *PutField) Def() int   { return 0 }
func (i *GetStatic) Def() int  { return i.Result }
func (i *PutStatic) Def() int  { return 0 }
func (i *ArrayLoad) Def() int  { return i.Result }
func (i *ArrayStore) Def() int { return 0 }
func (i *CheckCast) Def() int  { return i.Result }
func (i *Invoke) Def() int     { return i.Result }
func (i *Return) Def() int     { return 0 }
func (i *Throw) Def() int      { return 0 }
func (i *Phi) Def() int        { return i.Result }
func (i *Extension) Def() int  { return i.Result }

func (i *New) Uses() []int        { return nil }
func (i *NewArray) Uses() []int   { return nil }
func (i *Const) Uses() []int      { return nil }
func (i *ClassLit) Uses() []int   { return nil }
func (i *MakeFunc) Uses() []int   { return nil }
func (i *GetField) Uses() []int   { return []int{i.Ref} }
func (i *PutField) Uses() []int   { return []int{i.Ref, i.Val} }
func (i *GetStatic) Uses() []int  { return nil }
func (i *PutStatic) Uses() []int  { return []int{i.Val} }
func (i *ArrayLoad) Uses() []int  { return []int{i.Array} }
func (i *ArrayStore) Uses() []int { return []int{i.Array, i.Val} }
func (i *CheckCast) Uses() []int  { return []int{i.Val} }
func (i *Invoke) Uses() []int     { return i.Args }
func (i *Phi) Uses() []int        { return i.Vals }
func (i *Extension) Uses() []int  { return i.Operands }

func (i *Return) Uses() []int {
	if i.Val == 0 {
		return nil
	}
	return []int{i.Val}
}

func (i *Throw) Uses() []int { return []int{i.Val} }

func valName(n int) string { return "v" + strconv.Itoa(n) }

func valNames(ns []int) string {
	s := make([]string, len(ns))
	for i, n := range ns {
		s[i] = valName(n)
	}
	return strings.Join(s, " ")
}

// The String methods print instructions in the syntax accepted by ParseInstruction.

func (i *New) String() string {
	return fmt.Sprintf("%s = new %s%s", valName(i.Result), i.Type, i.throwsSuffix())
}

func (i *NewArray) String() string {
	return fmt.Sprintf("%s = newarray %s%s", valName(i.Result), i.Type, i.throwsSuffix())
}

func (i *Const) String() string {
	if i.Null {
		return fmt.Sprintf("%s = const null", valName(i.Result))
	}
	return fmt.Sprintf("%s = const %s %s", valName(i.Result), i.Type, strconv.Quote(i.Value))
}

func (i *ClassLit) String() string { return fmt.Sprintf("%s = classlit %s", valName(i.Result), i.Type) }
func (i *MakeFunc) String() string { return fmt.Sprintf("%s = func %s", valName(i.Result), i.Target) }

func (i *GetField) String() string {
	return fmt.Sprintf("%s = getfield %s %s%s", valName(i.Result), valName(i.Ref), i.Field, i.throwsSuffix())
}

func (i *PutField) String() string {
	return fmt.Sprintf("putfield %s %s %s%s", valName(i.Ref), i.Field, valName(i.Val), i.throwsSuffix())
}

func (i *GetStatic) String() string { return fmt.Sprintf("%s = getstatic %s", valName(i.Result), i.Field) }
func (i *PutStatic) String() string { return fmt.Sprintf("putstatic %s %s", i.Field, valName(i.Val)) }

func (i *ArrayLoad) String() string {
	return fmt.Sprintf("%s = aload %s%s", valName(i.Result), valName(i.Array), i.throwsSuffix())
}

func (i *ArrayStore) String() string {
	return fmt.Sprintf("astore %s %s%s", valName(i.Array), valName(i.Val), i.throwsSuffix())
}

func (i *CheckCast) String() string {
	return fmt.Sprintf("%s = checkcast %s %s%s", valName(i.Result), i.Type, valName(i.Val), i.throwsSuffix())
}

func (i *Invoke) String() string {
	var b strings.Builder
	if i.Result != 0 {
		b.WriteString(valName(i.Result) + " = ")
	}
	fmt.Fprintf(&b, "invoke %s %s", i.Kind, i.Target)
	if len(i.Args) > 0 {
		b.WriteString(" " + valNames(i.Args))
	}
	if i.Exc != 0 {
		b.WriteString(" catch " + valName(i.Exc))
	}
	b.WriteString(i.throwsSuffix())
	return b.String()
}

func (i *Return) String() string {
	if i.Val == 0 {
		return "return"
	}
	return "return " + valName(i.Val)
}

func (i *Throw) String() string { return "throw " + valName(i.Val) }
func (i *Phi) String() string   { return fmt.Sprintf("%s = phi %s", valName(i.Result), valNames(i.Vals)) }

func (i *Extension) String() string {
	name := i.Name
	if name == "" {
		name = AnyProperty
	}
	switch i.Op {
	case PropertyRead:
		return fmt.Sprintf("%s = propread %s %s", valName(i.Result), valName(i.Operands[0]), name)
	case PropertyWrite:
		return fmt.Sprintf("propwrite %s %s %s", valName(i.Operands[0]), name, valName(i.Operands[1]))
	}
	return fmt.Sprintf("%s = %s %s %s", valName(i.Result), i.Op, valNames(i.Operands), name)
}
