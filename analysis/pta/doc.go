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

/*
Package pta defines the abstract domain of the context-sensitive pointer analysis and the types of its results.

An analysis abstracts the objects of a program by instance keys ([InstanceKey]) and the locations that hold
references by pointer keys ([PointerKey]). Methods are analyzed in contexts ([Context]); a method in a context is a
call graph node ([CGNode]). The points-to set of a pointer key is a set of instance keys.

Three policies decide the precision of an analysis:
  - a [ContextSelector] chooses the context of a callee at a call site,
  - an [InstanceKeyFactory] chooses the instance key of an allocation,
  - a [ContextInterpreter] supplies the instructions of a node.

The implementations live in the subpackages contexts, heap and interp. The builder subpackage runs the analysis
and returns a [Result], holding the [CallGraph], the [PointerAnalysis] and the [Diagnostics] of the run.

All keys and contexts are comparable values: two keys built from equal inputs are equal with ==, and can be
used directly as map keys.
*/
package pta
