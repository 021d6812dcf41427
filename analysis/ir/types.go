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
	"strings"
)

// TypeRef is the name of a type. Array types are the element type prefixed with "[".
type TypeRef string

// NoType is the type of values that have none, such as the result of a void method.
const NoType TypeRef = ""

// Void is the return type of methods that do not return a value.
const Void TypeRef = "void"

var primitives = map[TypeRef]bool{
	"int": true, "long": true, "bool": true, "char": true, "byte": true, "short": true, "float": true,
	"double": true, Void: true,
}

// IsArray returns true if t is an array type
func (t TypeRef) IsArray() bool {
	return strings.HasPrefix(string(t), "[")
}

// IsPrimitive returns true if t is a primitive type. Values of primitive types never point to objects.
func (t TypeRef) IsPrimitive() bool {
	return primitives[t]
}

// Elem returns the element type of an array type, or NoType if t is not an array type.
func (t TypeRef) Elem() TypeRef {
	if !t.IsArray() {
		return NoType
	}
	return t[1:]
}

// Dims returns the number of dimensions of an array type.
func (t TypeRef) Dims() int {
	return len(t) - len(strings.TrimLeft(string(t), "["))
}

// Innermost returns the type of the elements of t after removing all array dimensions.
func (t TypeRef) Innermost() TypeRef {
	return TypeRef(strings.TrimLeft(string(t), "["))
}

// ArrayOf returns the type of arrays of t
func ArrayOf(t TypeRef) TypeRef {
	return "[" + t
}

// Language is the tag of the source language of a class or a method.
type Language string

const (
	// Java is the default language of classes.
	Java Language = "java"
	// JavaScript is the language of dynamically-typed sources.
	JavaScript Language = "js"
)

// MethodRef is a reference to a method by the name of its class and its name. Method names are unique in a class.
type MethodRef struct {
	Class TypeRef
	Name  string
}

func (m MethodRef) String() string {
	return string(m.Class) + "." + m.Name
}

// ParseMethodRef parses a "Class.method" string.
func ParseMethodRef(s string) (MethodRef, error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return MethodRef{}, fmt.Errorf("invalid method reference %q, expected Class.method", s)
	}
	return MethodRef{Class: TypeRef(s[:i]), Name: s[i+1:]}, nil
}

// FieldRef is a reference to a field by the name of its class and its name.
type FieldRef struct {
	Class TypeRef
	Name  string
}

func (f FieldRef) String() string {
	return string(f.Class) + "." + f.Name
}

// AnyProperty is the name of the property that stands for every property of a dynamically-typed object whose name
// is not known statically.
const AnyProperty = "*"

// CallKind is the dispatch kind of an invocation.
type CallKind int

const (
	// Static calls have exactly one target and no receiver.
	Static CallKind = iota
	// Special calls have exactly one target and a receiver (constructors, super calls, private methods).
	Special
	// Virtual calls dispatch on the type of the receiver.
	Virtual
	// Interface calls dispatch on the type of the receiver, declared through an interface.
	Interface
	// Dynamic calls invoke a function object given as first argument.
	Dynamic
)

var callKindNames = [...]string{"static", "special", "virtual", "interface", "dynamic"}

func (k CallKind) String() string {
	if int(k) < len(callKindNames) {
		return callKindNames[k]
	}
	return fmt.Sprintf("CallKind(%d)", int(k))
}

// ParseCallKind returns the kind with name s.
func ParseCallKind(s string) (CallKind, bool) {
	for i, name := range callKindNames {
		if name == s {
			return CallKind(i), true
		}
	}
	return 0, false
}

// HasReceiver returns true if the first argument of calls of kind k is a receiver object.
func (k CallKind) HasReceiver() bool {
	return k == Special || k == Virtual || k == Interface
}

// Dispatches returns true if the target of calls of kind k depends on the value of the first argument.
func (k CallKind) Dispatches() bool {
	return k == Virtual || k == Interface || k == Dynamic
}

// CallSite identifies an invocation instruction in a method.
type CallSite struct {
	Method MethodRef
	PC     int
	Target MethodRef
	Kind   CallKind
}

func (c CallSite) String() string {
	return fmt.Sprintf("%s@%d:%s %s", c.Method, c.PC, c.Kind, c.Target)
}

// NewSite identifies an allocation in a method. Constants allocated at their site also have a NewSite.
type NewSite struct {
	Method MethodRef
	PC     int
	Type   TypeRef
}

func (s NewSite) String() string {
	return fmt.Sprintf("%s@%d:new %s", s.Method, s.PC, s.Type)
}
