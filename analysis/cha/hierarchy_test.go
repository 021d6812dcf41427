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

package cha

import (
	"testing"

	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/stretchr/testify/require"
)

const hierarchyProgram = `
classes:
  - name: String
  - name: MyString
    super: String
  - name: Throwable
  - name: IOException
    super: Throwable
  - name: Point
    fields:
      - {name: x, type: int}
      - {name: y, type: int}
  - name: Point3
    super: Point
    fields:
      - {name: z, type: int}
  - name: Box
    fields:
      - {name: content}
  - name: Shape
    abstract: true
    interfaces: [Drawable]
    methods:
      - name: area
        abstract: true
      - name: name
        returns: String
        body: ["v2 = const String \"shape\"", "return v2"]
  - name: Circle
    super: Shape
    methods:
      - name: area
  - name: Square
    super: Shape
    methods:
      - name: area
      - name: name
  - name: Drawable
    interface: true
    methods:
      - name: draw
  - name: Canvas
    interfaces: [Drawable]
    methods:
      - name: draw
`

func loadHierarchy(t *testing.T) *ProgramHierarchy {
	p, err := ir.ParseProgram([]byte(hierarchyProgram))
	require.NoError(t, err)
	return New(p)
}

func TestIsSubtypeOf(t *testing.T) {
	h := loadHierarchy(t)
	tests := []struct {
		sub, sup ir.TypeRef
		want     bool
	}{
		{"Circle", "Shape", true},
		{"Circle", "Object", true},
		{"Circle", "Drawable", true},
		{"Canvas", "Drawable", true},
		{"Shape", "Circle", false},
		{"Circle", "Square", false},
		{"[Circle", "[Shape", true},
		{"[Circle", "Object", true},
		{"[int", "[Object", false},
		{"[int", "Object", true},
		{"int", "Object", false},
		{"int", "int", true},
		{"Undeclared", "Object", true},
		{"Undeclared", "Shape", false},
	}
	for _, test := range tests {
		if got := h.IsSubtypeOf(test.sub, test.sup); got != test.want {
			t.Errorf("IsSubtypeOf(%s, %s) = %v, want %v", test.sub, test.sup, got, test.want)
		}
	}
}

func TestLeastCommonSupertype(t *testing.T) {
	h := loadHierarchy(t)
	require.Equal(t, ir.TypeRef("Shape"), h.LeastCommonSupertype("Circle", "Square"))
	require.Equal(t, ir.TypeRef("Object"), h.LeastCommonSupertype("Circle", "Box"))
	require.Equal(t, ir.TypeRef("Point"), h.LeastCommonSupertype("Point3", "Point"))
	require.Equal(t, ir.TypeRef("[Shape"), h.LeastCommonSupertype("[Circle", "[Square"))
	require.Equal(t, ir.TypeRef("Object"), h.LeastCommonSupertype("[int", "[Circle"))
}

func TestResolveVirtualTarget(t *testing.T) {
	h := loadHierarchy(t)
	m := h.ResolveVirtualTarget("Shape", "area", "Circle")
	require.NotNil(t, m)
	require.Equal(t, ir.MethodRef{Class: "Circle", Name: "area"}, m.Ref())

	m = h.ResolveVirtualTarget("Shape", "name", "Circle")
	require.NotNil(t, m)
	require.Equal(t, ir.TypeRef("Shape"), m.Class)

	m = h.ResolveVirtualTarget("Shape", "name", "Square")
	require.Equal(t, ir.TypeRef("Square"), m.Class)

	m = h.ResolveVirtualTarget("Drawable", "draw", "Canvas")
	require.Equal(t, ir.TypeRef("Canvas"), m.Class)

	require.Nil(t, h.ResolveVirtualTarget("Shape", "area", "Box"), "Box is not a Shape")
	require.Nil(t, h.ResolveVirtualTarget("Shape", "area", "Shape"), "Shape.area is abstract")
	require.Nil(t, h.ResolveVirtualTarget("Object", "area", "[Circle"), "arrays dispatch to the root")

	// memoized answers are stable
	require.Same(t, h.ResolveVirtualTarget("Shape", "area", "Circle"), h.ResolveVirtualTarget("Shape", "area", "Circle"))
}

func TestResolveMethodAndField(t *testing.T) {
	h := loadHierarchy(t)
	m := h.ResolveMethod(ir.MethodRef{Class: "Circle", Name: "name"})
	require.NotNil(t, m)
	require.Equal(t, ir.TypeRef("Shape"), m.Class)
	require.NotNil(t, h.ResolveMethod(ir.MethodRef{Class: "Circle", Name: "area"}))
	require.Nil(t, h.ResolveMethod(ir.MethodRef{Class: "Circle", Name: "perimeter"}))

	f, ok := h.ResolveField(ir.FieldRef{Class: "Point3", Name: "x"})
	require.True(t, ok)
	require.Equal(t, ir.FieldRef{Class: "Point", Name: "x"}, f)
	f, ok = h.ResolveField(ir.FieldRef{Class: "Undeclared", Name: "x"})
	require.False(t, ok)
	require.Equal(t, ir.FieldRef{Class: "Undeclared", Name: "x"}, f)
}

func TestKinds(t *testing.T) {
	h := loadHierarchy(t)
	require.True(t, h.IsString("String"))
	require.True(t, h.IsString("MyString"))
	require.False(t, h.IsString("Box"))
	require.True(t, h.IsThrowable("IOException"))
	require.False(t, h.IsThrowable("Circle"))
	require.True(t, h.IsArray("[Box"))
	require.True(t, h.IsPrimitiveHolder("Point"))
	require.True(t, h.IsPrimitiveHolder("Point3"))
	require.True(t, h.IsPrimitiveHolder("[int"))
	require.False(t, h.IsPrimitiveHolder("Box"))
	require.False(t, h.IsPrimitiveHolder("Circle"), "classes without fields hold nothing")
	c, ok := h.LookupClass("Circle")
	require.True(t, ok)
	require.Equal(t, ir.TypeRef("Shape"), c.Super)
}
