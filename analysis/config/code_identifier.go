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

package config

import "regexp"

// A CodeIdentifier identifies a code element that should be treated specially by the analysis: a factory method,
// a container class, a method without effect...
// Each field is a regex if it compiles as one, otherwise it is matched literally. An empty field matches anything.
type CodeIdentifier struct {
	Language string `yaml:"language,omitempty"`
	Class    string `yaml:"class,omitempty"`
	Method   string `yaml:"method,omitempty"`
	Field    string `yaml:"field,omitempty"`
	// This will not be part of the yaml config
	computedRegexs *codeIdentifierRegex
}

type codeIdentifierRegex struct {
	languageRegex *regexp.Regexp
	classRegex    *regexp.Regexp
	methodRegex   *regexp.Regexp
	fieldRegex    *regexp.Regexp
}

// CompileRegexes compiles the strings in the code identifier into regexes. It compiles all identifiers into regexes
// or none.
func CompileRegexes(cid CodeIdentifier) CodeIdentifier {
	languageRegex, err := regexp.Compile(anchor(cid.Language))
	if err != nil {
		return cid
	}
	classRegex, err := regexp.Compile(anchor(cid.Class))
	if err != nil {
		return cid
	}
	methodRegex, err := regexp.Compile(anchor(cid.Method))
	if err != nil {
		return cid
	}
	fieldRegex, err := regexp.Compile(anchor(cid.Field))
	if err != nil {
		return cid
	}
	cid.computedRegexs = &codeIdentifierRegex{
		languageRegex,
		classRegex,
		methodRegex,
		fieldRegex,
	}
	return cid
}

// anchor makes a pattern match whole names only, so that "A" does not match "AList"
func anchor(s string) string {
	if s == "" {
		return s
	}
	return "^(?:" + s + ")$"
}

// equalOnNonEmptyFields returns true if each of the receiver's fields are either equal to the corresponding
// argument's field, or the argument's field is empty
func (cid CodeIdentifier) equalOnNonEmptyFields(cidRef CodeIdentifier) bool {
	if cidRef.computedRegexs != nil {
		return (cidRef.Language == "" || cidRef.computedRegexs.languageRegex.MatchString(cid.Language)) &&
			(cidRef.Class == "" || cidRef.computedRegexs.classRegex.MatchString(cid.Class)) &&
			(cidRef.Method == "" || cidRef.computedRegexs.methodRegex.MatchString(cid.Method)) &&
			(cidRef.Field == "" || cidRef.computedRegexs.fieldRegex.MatchString(cid.Field))
	}
	return (cidRef.Language == "" || cid.Language == cidRef.Language) &&
		(cidRef.Class == "" || cid.Class == cidRef.Class) &&
		(cidRef.Method == "" || cid.Method == cidRef.Method) &&
		(cidRef.Field == "" || cid.Field == cidRef.Field)
}

// ExistsCid is true if some identifier in a matches cid.
// O(len(a))
func ExistsCid(a []CodeIdentifier, cid CodeIdentifier) bool {
	for _, x := range a {
		if cid.equalOnNonEmptyFields(x) {
			return true
		}
	}
	return false
}

func compileAll(cids []CodeIdentifier) {
	for i := range cids {
		cids[i] = CompileRegexes(cids[i])
	}
}
