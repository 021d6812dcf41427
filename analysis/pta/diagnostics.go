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
	"fmt"
	"sync"
)

// WarningKind classifies the warnings of an analysis
type WarningKind int

const (
	// UnresolvedTarget is a call site for which the hierarchy found no method for some receiver type
	UnresolvedTarget WarningKind = iota
	// UnresolvedEntrypoint is a configured entrypoint that names no method of the program
	UnresolvedEntrypoint
	// MissingBody is a node whose method has no instructions and no summary
	MissingBody
	// UnknownField is a field access whose field the hierarchy cannot resolve
	UnknownField
)

var warningKindNames = [...]string{"unresolved-target", "unresolved-entrypoint", "missing-body", "unknown-field"}

func (k WarningKind) String() string {
	if int(k) < len(warningKindNames) {
		return warningKindNames[k]
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// Warning is a non-fatal problem found during the analysis. Warnings never interrupt the fixpoint.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// Diagnostics collects the warnings of an analysis. Identical warnings are recorded once.
// It is safe for concurrent use.
type Diagnostics struct {
	mu       sync.Mutex
	warnings []Warning
	seen     map[Warning]bool
}

// NewDiagnostics returns an empty collector
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{seen: map[Warning]bool{}}
}

// Warn records a warning and returns true if it had not been recorded before
func (d *Diagnostics) Warn(kind WarningKind, format string, args ...any) bool {
	w := Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[w] {
		return false
	}
	d.seen[w] = true
	d.warnings = append(d.warnings, w)
	return true
}

// Warnings returns the warnings in the order they were recorded
func (d *Diagnostics) Warnings() []Warning {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Warning(nil), d.warnings...)
}

// Count returns the number of warnings of a kind
func (d *Diagnostics) Count(kind WarningKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, w := range d.warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// Len returns the number of warnings
func (d *Diagnostics) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.warnings)
}
