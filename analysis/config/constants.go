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

// ContextPolicy names the context-sensitivity policy used to pick contexts for call graph nodes.
type ContextPolicy string

const (
	// PolicyInsensitive analyzes each method in a single context.
	PolicyInsensitive ContextPolicy = "insensitive"
	// PolicyCallString distinguishes contexts by the last K call sites.
	PolicyCallString ContextPolicy = "call-string"
	// PolicyObject distinguishes contexts by the allocation sites of the receiver, ObjectSensitivityDepth levels deep.
	PolicyObject ContextPolicy = "object"
	// PolicyOneLevelSite distinguishes contexts by the immediate caller site.
	PolicyOneLevelSite ContextPolicy = "one-level-site"
)

// ReflectionMode controls how reflective object construction is modeled.
type ReflectionMode string

const (
	// ReflectionNone ignores reflective construction.
	ReflectionNone ReflectionMode = "none"
	// ReflectionFull synthesizes allocations for reflective construction from class objects.
	ReflectionFull ReflectionMode = "full"
)

const (
	// DefaultHeapContextDepth means allocation sites keep the full context of the allocating node.
	DefaultHeapContextDepth = -1
	// DefaultSmushManyLimit is the per-node site count used when the "many" bound is enabled without a limit.
	DefaultSmushManyLimit = 25
	// DefaultMaxSteps means the solver runs until the fixpoint is reached.
	DefaultMaxSteps = 0
)
