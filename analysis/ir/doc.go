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

// Package ir defines the intermediate representation consumed by the pointer analysis: classes, fields, methods and
// method bodies in SSA form, with a closed set of instruction kinds.
//
// Programs are built in memory with [NewProgram], [NewClass] and [Class.AddMethod], or loaded from a yaml
// description with [LoadProgram]. Method bodies can be written in a one-instruction-per-line textual syntax parsed
// by [ParseBody].
package ir
