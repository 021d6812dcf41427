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

// Mapping assigns dense ordinals 0, 1, 2... to values, in the order they are added.
// The zero value is not usable; use NewMapping.
type Mapping[T comparable] struct {
	index map[T]int
	items []T
}

// NewMapping returns an empty mapping
func NewMapping[T comparable]() *Mapping[T] {
	return &Mapping[T]{index: map[T]int{}}
}

// Add returns the ordinal of x, adding x to the mapping if it is not present.
// The boolean is true when x was added.
func (m *Mapping[T]) Add(x T) (int, bool) {
	if i, ok := m.index[x]; ok {
		return i, false
	}
	i := len(m.items)
	m.index[x] = i
	m.items = append(m.items, x)
	return i, true
}

// Index returns the ordinal of x, or -1 if x is not in the mapping
func (m *Mapping[T]) Index(x T) int {
	if i, ok := m.index[x]; ok {
		return i
	}
	return -1
}

// Get returns the value with ordinal i. Panics if i is out of range.
func (m *Mapping[T]) Get(i int) T {
	return m.items[i]
}

// Len returns the number of values in the mapping
func (m *Mapping[T]) Len() int {
	return len(m.items)
}

// Items returns a copy of the values in ordinal order
func (m *Mapping[T]) Items() []T {
	res := make([]T, len(m.items))
	copy(res, m.items)
	return res
}

// Clone returns an independent copy of the mapping
func (m *Mapping[T]) Clone() *Mapping[T] {
	res := &Mapping[T]{index: make(map[T]int, len(m.index)), items: m.Items()}
	for k, v := range m.index {
		res.index[k] = v
	}
	return res
}
