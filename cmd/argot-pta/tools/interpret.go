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

package tools

import "regexp"

// Captures errors happening before any analysis starts (program could not load)
var regexCouldNotLoad = regexp.MustCompile("could not load program")

// Captures the kind of error that happen when the program file does not exist
var missingFile = regexp.MustCompile("no such file or directory")

// Captures the kind of error that happen when you put a flag at the end instead of the program file
var flagAfterProgram = regexp.MustCompile("expected one program file, got [2-9]")

// Captures configurations without any usable entrypoint
var missingEntrypoints = regexp.MustCompile("no entrypoint|none of the \\d+ entrypoints")

// Captures context policies whose bound is missing
var missingPolicyBound = regexp.MustCompile("requires (k|object-sensitivity-depth) > 0")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if missingFile.MatchString(errMsg) {
			return "check the path to the program file"
		}
		return "the program file should be a yaml description of the classes of the program"
	}
	if flagAfterProgram.MatchString(errMsg) {
		return "all command line flags should be before the path to the program file"
	}
	if missingEntrypoints.MatchString(errMsg) {
		return "list entrypoints in the config file or give them with -entry Class.method"
	}
	if missingPolicyBound.MatchString(errMsg) {
		return "set k or object-sensitivity-depth in the options of the config file"
	}
	return ""
}
