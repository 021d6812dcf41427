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
	"os"

	"gopkg.in/yaml.v3"
)

// programSpec is the yaml description of a program
type programSpec struct {
	Root      string      `yaml:"root"`
	String    string      `yaml:"string"`
	Throwable string      `yaml:"throwable"`
	ClassType string      `yaml:"class-type"`
	Function  string      `yaml:"function"`
	Classes   []classSpec `yaml:"classes"`
}

type classSpec struct {
	Name       string       `yaml:"name"`
	Super      string       `yaml:"super"`
	Interfaces []string     `yaml:"interfaces"`
	Abstract   bool         `yaml:"abstract"`
	Interface  bool         `yaml:"interface"`
	Language   string       `yaml:"language"`
	Fields     []fieldSpec  `yaml:"fields"`
	Methods    []methodSpec `yaml:"methods"`
}

type fieldSpec struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static"`
}

type methodSpec struct {
	Name      string   `yaml:"name"`
	Static    bool     `yaml:"static"`
	Abstract  bool     `yaml:"abstract"`
	Params    []string `yaml:"params"`
	Returns   string   `yaml:"returns"`
	Factory   bool     `yaml:"factory"`
	Intrinsic string   `yaml:"intrinsic"`
	Language  string   `yaml:"language"`
	Body      []string `yaml:"body"`
}

// LoadProgram reads a yaml program description from a file. See ParseProgram for the format.
func LoadProgram(filename string) (*Program, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read program file: %w", err)
	}
	return ParseProgram(b)
}

// ParseProgram parses a yaml program description. For example:
//
//	classes:
//	  - name: A
//	    fields:
//	      - name: f
//	        type: Object
//	    methods:
//	      - name: set
//	        params: [A, Object]
//	        body:
//	          - "putfield v1 A.f v2"
//	          - "return"
//
// Classes without a super class extend the root class. Instance methods list the receiver type as first parameter;
// when params is omitted, the receiver type is the class. The program is validated before it is returned.
func ParseProgram(b []byte) (*Program, error) {
	var spec programSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("could not unmarshal program: %w", err)
	}
	p := NewProgram()
	setIfNotEmpty(&p.Root, spec.Root)
	setIfNotEmpty(&p.String, spec.String)
	setIfNotEmpty(&p.Throwable, spec.Throwable)
	setIfNotEmpty(&p.ClassType, spec.ClassType)
	setIfNotEmpty(&p.Function, spec.Function)
	if p.Class(p.Root) == nil {
		p.AddClass(NewClass(p.Root, NoType))
	}

	for _, cs := range spec.Classes {
		c, err := buildClass(p, cs)
		if err != nil {
			return nil, err
		}
		p.AddClass(c)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func buildClass(p *Program, cs classSpec) (*Class, error) {
	if cs.Name == "" {
		return nil, fmt.Errorf("class without a name")
	}
	super := TypeRef(cs.Super)
	if super == NoType && TypeRef(cs.Name) != p.Root {
		super = p.Root
	}
	c := NewClass(TypeRef(cs.Name), super)
	for _, i := range cs.Interfaces {
		c.Interfaces = append(c.Interfaces, TypeRef(i))
	}
	c.Abstract = cs.Abstract || cs.Interface
	c.Interface = cs.Interface
	if cs.Language != "" {
		c.Language = Language(cs.Language)
	}
	for _, fs := range cs.Fields {
		typ := TypeRef(fs.Type)
		if typ == NoType {
			typ = p.Root
		}
		c.AddField(&Field{Name: fs.Name, Type: typ, Static: fs.Static})
	}
	for _, ms := range cs.Methods {
		m, err := buildMethod(c, ms)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", cs.Name, err)
		}
		c.AddMethod(m)
	}
	return c, nil
}

func buildMethod(c *Class, ms methodSpec) (*Method, error) {
	intrinsic, ok := ParseIntrinsic(ms.Intrinsic)
	if !ok {
		return nil, fmt.Errorf("method %s: unknown intrinsic %q", ms.Name, ms.Intrinsic)
	}
	m := &Method{
		Name:      ms.Name,
		Static:    ms.Static,
		Abstract:  ms.Abstract || c.Interface,
		Return:    TypeRef(ms.Returns),
		Factory:   ms.Factory,
		Intrinsic: intrinsic,
		Language:  Language(ms.Language),
	}
	if m.Return == NoType {
		m.Return = Void
	}
	for _, p := range ms.Params {
		m.Params = append(m.Params, TypeRef(p))
	}
	if !m.Static && len(m.Params) == 0 {
		m.Params = []TypeRef{c.Name}
	}
	body, err := ParseBody(ms.Body)
	if err != nil {
		return nil, fmt.Errorf("method %s: %w", ms.Name, err)
	}
	m.Body = body
	return m, nil
}

func setIfNotEmpty(t *TypeRef, s string) {
	if s != "" {
		*t = TypeRef(s)
	}
}
