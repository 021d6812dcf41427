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

// Package analysistest loads the programs used in tests and checks the call graphs computed for them against the
// annotations in their comments.
package analysistest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
)

// LoadTest loads the program in the directory dir, looking for a program.yaml and a config.yaml.
func LoadTest(t *testing.T, dir string) (*ir.Program, *config.Config) {
	t.Helper()
	configFile := filepath.Join(dir, "config.yaml")
	config.SetGlobalConfig(configFile)
	program, err := ir.LoadProgram(filepath.Join(dir, "program.yaml"))
	if err != nil {
		t.Fatalf("error loading program: %v", err)
	}
	cfg, err := config.LoadGlobal()
	if err != nil {
		t.Fatalf("error loading global config: %v", err)
	}
	return program, cfg
}

// CallsRegex matches annotations of the form "@Calls(Caller.method -> Callee.method)"
var CallsRegex = regexp.MustCompile(`#.*@Calls\(\s*(\S+)\s*->\s*(\S+)\s*\)`)

// NoCallsRegex matches annotations of the form "@NoCalls(Caller.method -> Callee.method)"
var NoCallsRegex = regexp.MustCompile(`#.*@NoCalls\(\s*(\S+)\s*->\s*(\S+)\s*\)`)

// LPos is a line in a file
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// CallExpectation is an annotated call between two methods. Present is false for @NoCalls annotations.
type CallExpectation struct {
	Pos     LPos
	Caller  string
	Callee  string
	Present bool
}

// GetExpectedCalls reads the @Calls and @NoCalls annotations in the comments of the file
func GetExpectedCalls(filename string) ([]CallExpectation, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var res []CallExpectation
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		pos := LPos{Filename: filename, Line: line}
		if a := CallsRegex.FindStringSubmatch(scanner.Text()); len(a) > 2 {
			res = append(res, CallExpectation{Pos: pos, Caller: a[1], Callee: a[2], Present: true})
		}
		if a := NoCallsRegex.FindStringSubmatch(scanner.Text()); len(a) > 2 {
			res = append(res, CallExpectation{Pos: pos, Caller: a[1], Callee: a[2]})
		}
	}
	return res, scanner.Err()
}

// CheckCalls reports an error for every expectation the call graph contradicts. Calls are compared at the level
// of methods: an annotated call is present if some node of the caller calls some node of the callee.
func CheckCalls(t *testing.T, cg *pta.CallGraph, expected []CallExpectation) {
	t.Helper()
	calls := map[[2]string]bool{}
	for _, e := range cg.Edges() {
		calls[[2]string{cg.Node(e.Caller).Method.String(), cg.Node(e.Callee).Method.String()}] = true
	}
	for _, x := range expected {
		found := calls[[2]string{x.Caller, x.Callee}]
		if x.Present && !found {
			t.Errorf("%s: expected a call from %s to %s", x.Pos, x.Caller, x.Callee)
		} else if !x.Present && found {
			t.Errorf("%s: unexpected call from %s to %s", x.Pos, x.Caller, x.Callee)
		}
	}
}
