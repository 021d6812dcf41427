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

// ParseBody parses one instruction per line and numbers the instructions by their index.
func ParseBody(lines []string) ([]Instruction, error) {
	res := make([]Instruction, 0, len(lines))
	for i, line := range lines {
		instr, err := ParseInstruction(line)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		res = append(res, instr)
	}
	return Number(res), nil
}

// MustParseBody is like ParseBody but panics if a line cannot be parsed.
func MustParseBody(lines ...string) []Instruction {
	body, err := ParseBody(lines)
	if err != nil {
		panic(err)
	}
	return body
}

// ParseInstruction parses the textual form of an instruction, which is the form printed by its String method:
//
//	v3 = new A
//	v4 = newarray [[A
//	v5 = const String "hello"
//	v6 = invoke virtual A.set v1 v3 catch v7
//	putfield v1 A.f v2 throws NullPointerException
func ParseInstruction(line string) (Instruction, error) {
	line = strings.TrimSpace(line)
	result := 0
	if lhs, rhs, ok := strings.Cut(line, "="); ok && !strings.Contains(lhs, "\"") {
		r, err := parseValue(strings.TrimSpace(lhs))
		if err != nil {
			return nil, err
		}
		result = r
		line = strings.TrimSpace(rhs)
	}
	op, rest, _ := strings.Cut(line, " ")
	if op == "const" {
		return parseConst(result, strings.TrimSpace(rest))
	}
	fields := strings.Fields(rest)
	var throws []TypeRef
	if n := len(fields); n >= 2 && fields[n-2] == "throws" {
		for _, t := range strings.Split(fields[n-1], ",") {
			throws = append(throws, TypeRef(t))
		}
		fields = fields[:n-2]
	}
	instr, err := parseOp(op, result, fields)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", line, err)
	}
	if len(throws) > 0 {
		instr = WithThrows(instr, throws...)
	}
	return instr, nil
}

//gocyclo:ignore
func parseOp(op string, result int, fields []string) (Instruction, error) {
	needResult := func() error {
		if result == 0 {
			return fmt.Errorf("%s needs a result value", op)
		}
		return nil
	}
	arity := func(n int) error {
		if len(fields) != n {
			return fmt.Errorf("%s expects %d operands, got %d", op, n, len(fields))
		}
		return nil
	}
	var vals []int
	var err error
	switch op {
	case "new", "newarray", "classlit":
		if err = firstErr(needResult(), arity(1)); err != nil {
			return nil, err
		}
		t := TypeRef(fields[0])
		switch op {
		case "new":
			return &New{Result: result, Type: t}, nil
		case "newarray":
			if !t.IsArray() {
				return nil, fmt.Errorf("newarray expects an array type, got %s", t)
			}
			return &NewArray{Result: result, Type: t, Dims: t.Dims()}, nil
		default:
			return &ClassLit{Result: result, Type: t}, nil
		}
	case "func":
		if err = firstErr(needResult(), arity(1)); err != nil {
			return nil, err
		}
		target, err := ParseMethodRef(fields[0])
		if err != nil {
			return nil, err
		}
		return &MakeFunc{Result: result, Target: target}, nil
	case "getfield":
		if err = firstErr(needResult(), arity(2)); err != nil {
			return nil, err
		}
		if vals, err = parseValues(fields[:1]); err != nil {
			return nil, err
		}
		f, err := parseFieldRef(fields[1])
		return &GetField{Result: result, Ref: vals[0], Field: f}, err
	case "putfield":
		if err = arity(3); err != nil {
			return nil, err
		}
		if vals, err = parseValues([]string{fields[0], fields[2]}); err != nil {
			return nil, err
		}
		f, err := parseFieldRef(fields[1])
		return &PutField{Ref: vals[0], Val: vals[1], Field: f}, err
	case "getstatic":
		if err = firstErr(needResult(), arity(1)); err != nil {
			return nil, err
		}
		f, err := parseFieldRef(fields[0])
		return &GetStatic{Result: result, Field: f}, err
	case "putstatic":
		if err = arity(2); err != nil {
			return nil, err
		}
		if vals, err = parseValues(fields[1:]); err != nil {
			return nil, err
		}
		f, err := parseFieldRef(fields[0])
		return &PutStatic{Val: vals[0], Field: f}, err
	case "aload":
		if err = firstErr(needResult(), arity(1)); err != nil {
			return nil, err
		}
		if vals, err = parseValues(fields); err != nil {
			return nil, err
		}
		return &ArrayLoad{Result: result, Array: vals[0]}, nil
	case "astore":
		if err = arity(2); err != nil {
			return nil, err
		}
		if vals, err = parseValues(fields); err != nil {
			return nil, err
		}
		return &ArrayStore{Array: vals[0], Val: vals[1]}, nil
	case "checkcast":
		if err = firstErr(needResult(), arity(2)); err != nil {
			return nil, err
		}
		if vals, err = parseValues(fields[1:]); err != nil {
			return nil, err
		}
		return &CheckCast{Result: result, Val: vals[0], Type: TypeRef(fields[0])}, nil
	case "invoke":
		return parseInvoke(result, fields)
	case "return":
		if len(fields) == 0 {
			return &Return{}, nil
		}
		if vals, err = parseValues(fields); err != nil || len(vals) != 1 {
			return nil, firstErr(err, arity(1))
		}
		return &Return{Val: vals[0]}, nil
	case "throw":
		if err = arity(1); err != nil {
			return nil, err
		}
		if vals, err = parseValues(fields); err != nil {
			return nil, err
		}
		return &Throw{Val: vals[0]}, nil
	case "phi":
		if err = needResult(); err != nil {
			return nil, err
		}
		if vals, err = parseValues(fields); err != nil {
			return nil, err
		}
		return &Phi{Result: result, Vals: vals}, nil
	case "propread":
		if err = firstErr(needResult(), arity(2)); err != nil {
			return nil, err
		}
		if vals, err = parseValues(fields[:1]); err != nil {
			return nil, err
		}
		return &Extension{Op: PropertyRead, Result: result, Operands: vals, Name: propertyName(fields[1])}, nil
	case "propwrite":
		if err = arity(3); err != nil {
			return nil, err
		}
		if vals, err = parseValues([]string{fields[0], fields[2]}); err != nil {
			return nil, err
		}
		return &Extension{Op: PropertyWrite, Operands: vals, Name: propertyName(fields[1])}, nil
	}
	return nil, fmt.Errorf("unknown instruction %q", op)
}

func parseInvoke(result int, fields []string) (Instruction, error) {
	if len(fields) < 2 {
		return nil, fmt.Errorf("invoke expects a kind and a target")
	}
	kind, ok := ParseCallKind(fields[0])
	if !ok {
		return nil, fmt.Errorf("unknown call kind %q", fields[0])
	}
	target, err := ParseMethodRef(fields[1])
	if err != nil {
		return nil, err
	}
	args := fields[2:]
	exc := 0
	if n := len(args); n >= 2 && args[n-2] == "catch" {
		if exc, err = parseValue(args[n-1]); err != nil {
			return nil, err
		}
		args = args[:n-2]
	}
	vals, err := parseValues(args)
	if err != nil {
		return nil, err
	}
	if kind != Static && len(vals) == 0 {
		return nil, fmt.Errorf("%s call to %s needs a receiver or function argument", kind, target)
	}
	return &Invoke{Result: result, Exc: exc, Kind: kind, Target: target, Args: vals}, nil
}

func parseConst(result int, rest string) (Instruction, error) {
	if result == 0 {
		return nil, fmt.Errorf("const needs a result value")
	}
	if rest == "null" {
		return &Const{Result: result, Null: true}, nil
	}
	typ, value, ok := strings.Cut(rest, " ")
	if !ok {
		return nil, fmt.Errorf("const expects a type and a value, got %q", rest)
	}
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "\"") {
		unquoted, err := strconv.Unquote(value)
		if err != nil {
			return nil, fmt.Errorf("invalid string constant %s: %w", value, err)
		}
		value = unquoted
	}
	return &Const{Result: result, Type: TypeRef(typ), Value: value}, nil
}

func parseFieldRef(s string) (FieldRef, error) {
	m, err := ParseMethodRef(s)
	if err != nil {
		return FieldRef{}, fmt.Errorf("invalid field reference %q, expected Class.field", s)
	}
	return FieldRef{Class: m.Class, Name: m.Name}, nil
}

func propertyName(s string) string {
	if s == AnyProperty {
		return ""
	}
	return s
}

func parseValue(s string) (int, error) {
	if !strings.HasPrefix(s, "v") {
		return 0, fmt.Errorf("invalid value %q, expected vN", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid value %q, expected vN with N > 0", s)
	}
	return n, nil
}

func parseValues(fields []string) ([]int, error) {
	res := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := parseValue(f)
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
