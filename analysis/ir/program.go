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
	"errors"
	"fmt"
)

// Intrinsic marks methods whose behavior is modeled by the analysis itself rather than by their body.
type Intrinsic int

const (
	// NoIntrinsic is the default
	NoIntrinsic Intrinsic = iota
	// NewInstance constructs an object of the class represented by its receiver, a class object.
	NewInstance
	// CallApply invokes the function object in its first parameter with the remaining parameters.
	CallApply
)

var intrinsicNames = map[string]Intrinsic{"": NoIntrinsic, "none": NoIntrinsic, "new-instance": NewInstance,
	"call-apply": CallApply}

// ParseIntrinsic returns the intrinsic named s ("none", "new-instance" or "call-apply")
func ParseIntrinsic(s string) (Intrinsic, bool) {
	i, ok := intrinsicNames[s]
	return i, ok
}

// Field is a field declared by a class.
type Field struct {
	Class  TypeRef
	Name   string
	Type   TypeRef
	Static bool
}

// Ref returns the reference to the field
func (f *Field) Ref() FieldRef {
	return FieldRef{Class: f.Class, Name: f.Name}
}

// Method is a method declared by a class. For instance methods, the receiver is the first parameter and has value
// number 1.
type Method struct {
	Class     TypeRef
	Name      string
	Language  Language
	Static    bool
	Abstract  bool
	Params    []TypeRef
	Return    TypeRef
	Body      []Instruction
	Factory   bool
	Intrinsic Intrinsic
	// Synthetic methods are created by the analysis, such as the root of the call graph.
	Synthetic bool
}

// Ref returns the reference to the method
func (m *Method) Ref() MethodRef {
	return MethodRef{Class: m.Class, Name: m.Name}
}

func (m *Method) String() string {
	return m.Ref().String()
}

// NumParams returns the number of parameters of the method, including the receiver.
func (m *Method) NumParams() int {
	return len(m.Params)
}

// ParamType returns the declared type of the parameter with value number v, or NoType if v is not a parameter.
func (m *Method) ParamType(v int) TypeRef {
	if v < 1 || v > len(m.Params) {
		return NoType
	}
	return m.Params[v-1]
}

// SetBody sets the body of the method, numbering the instructions by their index.
func (m *Method) SetBody(instrs []Instruction) {
	m.Body = Number(instrs)
}

// Number sets the PC of each instruction to its index in instrs, and returns instrs.
func Number(instrs []Instruction) []Instruction {
	for i, instr := range instrs {
		if b, ok := instr.(interface{ setPC(int) }); ok {
			b.setPC(i)
		}
	}
	return instrs
}

// WithThrows adds implicit exception types to an instruction and returns it.
func WithThrows[T Instruction](instr T, types ...TypeRef) T {
	if b, ok := any(instr).(interface{ addThrows(...TypeRef) }); ok {
		b.addThrows(types...)
	}
	return instr
}

// Class is a class or an interface of the program.
type Class struct {
	Name       TypeRef
	Super      TypeRef
	Interfaces []TypeRef
	Abstract   bool
	Interface  bool
	Language   Language

	fields      map[string]*Field
	fieldOrder  []string
	methods     map[string]*Method
	methodOrder []string
}

// NewClass returns a class with no fields and no methods
func NewClass(name TypeRef, super TypeRef) *Class {
	return &Class{
		Name:     name,
		Super:    super,
		Language: Java,
		fields:   map[string]*Field{},
		methods:  map[string]*Method{},
	}
}

// AddField declares f in the class.
func (c *Class) AddField(f *Field) *Class {
	f.Class = c.Name
	if _, ok := c.fields[f.Name]; !ok {
		c.fieldOrder = append(c.fieldOrder, f.Name)
	}
	c.fields[f.Name] = f
	return c
}

// AddMethod declares m in the class. The method inherits the language of the class if it has none.
func (c *Class) AddMethod(m *Method) *Class {
	m.Class = c.Name
	if m.Language == "" {
		m.Language = c.Language
	}
	if _, ok := c.methods[m.Name]; !ok {
		c.methodOrder = append(c.methodOrder, m.Name)
	}
	c.methods[m.Name] = m
	return c
}

// Field returns the field declared in the class with that name, or nil
func (c *Class) Field(name string) *Field {
	return c.fields[name]
}

// Method returns the method declared in the class with that name, or nil
func (c *Class) Method(name string) *Method {
	return c.methods[name]
}

// Fields returns the fields declared in the class, in declaration order
func (c *Class) Fields() []*Field {
	res := make([]*Field, 0, len(c.fieldOrder))
	for _, name := range c.fieldOrder {
		res = append(res, c.fields[name])
	}
	return res
}

// Methods returns the methods declared in the class, in declaration order
func (c *Class) Methods() []*Method {
	res := make([]*Method, 0, len(c.methodOrder))
	for _, name := range c.methodOrder {
		res = append(res, c.methods[name])
	}
	return res
}

// Program is a closed set of classes. The well-known types name the classes the analysis treats specially; they do
// not need to be declared.
type Program struct {
	// Root is the supertype of every class
	Root TypeRef
	// String is the type of string constants
	String TypeRef
	// Throwable is the supertype of exceptions
	Throwable TypeRef
	// ClassType is the type of class objects
	ClassType TypeRef
	// Function is the type of function objects
	Function TypeRef

	classes map[TypeRef]*Class
	order   []TypeRef
}

// NewProgram returns a program containing only the root class "Object".
func NewProgram() *Program {
	p := &Program{
		Root:      "Object",
		String:    "String",
		Throwable: "Throwable",
		ClassType: "Class",
		Function:  "Function",
		classes:   map[TypeRef]*Class{},
	}
	p.AddClass(NewClass(p.Root, NoType))
	return p
}

// AddClass adds c to the program, replacing any class with the same name.
func (p *Program) AddClass(c *Class) *Class {
	if _, ok := p.classes[c.Name]; !ok {
		p.order = append(p.order, c.Name)
	}
	p.classes[c.Name] = c
	return c
}

// Class returns the class with that name, or nil
func (p *Program) Class(name TypeRef) *Class {
	return p.classes[name]
}

// Classes returns all the classes of the program, in the order they have been added.
func (p *Program) Classes() []*Class {
	res := make([]*Class, 0, len(p.order))
	for _, name := range p.order {
		res = append(res, p.classes[name])
	}
	return res
}

// Method returns the method declared with exactly that reference, or nil. This does not look into super classes.
func (p *Program) Method(ref MethodRef) *Method {
	if c := p.classes[ref.Class]; c != nil {
		return c.Method(ref.Name)
	}
	return nil
}

// Methods returns all the methods of the program in a deterministic order.
func (p *Program) Methods() []*Method {
	var res []*Method
	for _, c := range p.Classes() {
		res = append(res, c.Methods()...)
	}
	return res
}

// Validate checks that every method body is in SSA form: each value used is a parameter or is defined by exactly one
// instruction, and definitions do not reuse parameter numbers.
func (p *Program) Validate() error {
	var errs []error
	for _, m := range p.Methods() {
		if err := ValidateMethod(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateMethod checks that the body of m is in SSA form.
func ValidateMethod(m *Method) error {
	defined := map[int]bool{}
	var errs []error
	for _, instr := range m.Body {
		for _, d := range Defs(instr) {
			if d <= m.NumParams() {
				errs = append(errs, fmt.Errorf("%s: %q redefines parameter v%d", m, instr, d))
			}
			if defined[d] {
				errs = append(errs, fmt.Errorf("%s: v%d is defined more than once", m, d))
			}
			defined[d] = true
		}
	}
	for _, instr := range m.Body {
		for _, u := range instr.Uses() {
			if u >= 1 && u <= m.NumParams() || defined[u] {
				continue
			}
			errs = append(errs, fmt.Errorf("%s: %q uses undefined value v%d", m, instr, u))
		}
	}
	return errors.Join(errs...)
}

// Defs returns all the values defined by instr. Invocations also define the exception value they catch.
func Defs(instr Instruction) []int {
	var res []int
	if d := instr.Def(); d != 0 {
		res = append(res, d)
	}
	if call, ok := instr.(*Invoke); ok && call.Exc != 0 {
		res = append(res, call.Exc)
	}
	return res
}
