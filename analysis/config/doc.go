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
Package config provides a simple way to manage configuration files for the pointer analysis.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type. The other fields are defined by the types of the fields of [Config] and nested struct types.
For example, a valid config file is as follows:

	options:
	  log-level: 4
	  context-policy: object
	  object-sensitivity-depth: 2
	smushing:
	  strings:
	    enabled: true
	entrypoints:
	  - class: Main
	    method: main
	factory-methods:
	  - class: "Factory.*"
	    method: "make.*"

# Identifying code elements

The config uses [CodeIdentifier] to identify specific methods and classes. For example, factory methods are
CodeIdentifiers which identify methods in specific classes of specific languages.
An important feature of the code identifiers is that the string specifications are seen as regexes if they can be
compiled to regexes, otherwise they are strings.

# Cardinality bounds

The smushing section sets one [CardinalityBound] per kind of allocation (arrays, primitive holders, strings,
throwables, and "many" for any type). All bounds are disabled by default. An enabled bound with a zero limit merges
every allocation of a type of that kind into one abstract object; a positive limit merges the allocations of a type
inside one call graph node once that node has more than limit allocation sites for the type.
*/
package config
