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

package heap

import (
	"github.com/awslabs/ar-go-pta/analysis/cha"
	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"golang.org/x/exp/slices"
)

// FromConfig returns the instance key factory described by the configuration: allocation sites with the configured
// heap context depth, smushing when a bound is enabled, and factory site specialization. When the program mixes
// languages, the stack is instantiated per language behind a CrossLanguage factory.
func FromConfig(cfg *config.Config, hierarchy cha.Hierarchy, interp pta.ContextInterpreter) pta.InstanceKeyFactory {
	stack := func() pta.InstanceKeyFactory {
		var f pta.InstanceKeyFactory = AllocationSites{HeapContextDepth: cfg.HeapContextDepth}
		if Enabled(cfg.Smushing) {
			f = Smushing{
				Inner:            f,
				Bounds:           cfg.Smushing,
				Hierarchy:        hierarchy,
				Interpreter:      interp,
				HeapContextDepth: cfg.HeapContextDepth,
				ConstantKeys:     cfg.UseConstantSpecificKeys,
			}
		}
		return FactorySites{Inner: f}
	}

	langs := Languages(hierarchy.Program())
	if len(langs) <= 1 {
		return stack()
	}
	byLang := map[ir.Language]pta.InstanceKeyFactory{}
	for _, l := range langs {
		byLang[l] = stack()
	}
	def := ir.Java
	if !slices.Contains(langs, def) {
		def = langs[0]
	}
	return CrossLanguage{ByLanguage: byLang, Default: def}
}

// Languages returns the languages of the classes and methods of a program, sorted
func Languages(p *ir.Program) []ir.Language {
	seen := map[ir.Language]bool{}
	var res []ir.Language
	add := func(l ir.Language) {
		if l != "" && !seen[l] {
			seen[l] = true
			res = append(res, l)
		}
	}
	for _, c := range p.Classes() {
		add(c.Language)
		for _, m := range c.Methods() {
			add(m.Language)
		}
	}
	slices.Sort(res)
	return res
}
