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

package contexts

import (
	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
)

// FromConfig returns the context selector described by the configuration:
//   - the base policy (insensitive, call-string, object or one-level-site),
//   - wrapped by a Container selector when container classes are configured,
//   - wrapped by a FactoryDispatch for methods marked as factories in the program or in the configuration,
//   - preceded by a ReflectionDispatch when reflection is full.
//
// An unknown policy is reported as a *pta.ConfigError.
func FromConfig(cfg *config.Config, program *ir.Program) (pta.ContextSelector, error) {
	var sel pta.ContextSelector
	switch cfg.ContextPolicy {
	case config.PolicyInsensitive, "":
		sel = Insensitive{}
	case config.PolicyCallString:
		sel = CallString{K: cfg.K}
	case config.PolicyObject:
		sel = ObjectSensitive{Depth: cfg.ObjectSensitivityDepth, Base: Inherit{}}
	case config.PolicyOneLevelSite:
		sel = OneLevelSite{Base: Insensitive{}}
	default:
		return nil, pta.ConfigErrorf("no context selector for policy %q", cfg.ContextPolicy)
	}

	if len(cfg.ContainerClasses) > 0 {
		depth := cfg.ObjectSensitivityDepth
		if depth <= 0 {
			depth = 1
		}
		sel = Container{
			Base:  sel,
			Depth: depth,
			IsContainer: func(t ir.TypeRef) bool {
				lang := ir.Java
				if c := program.Class(t); c != nil {
					lang = c.Language
				}
				return cfg.IsContainerClass(string(lang), string(t))
			},
		}
	}

	sel = FactoryDispatch{
		Base: sel,
		IsFactory: func(m *ir.Method) bool {
			return m.Factory || cfg.IsFactoryMethod(string(m.Language), string(m.Class), m.Name)
		},
	}

	if cfg.Reflection == config.ReflectionFull {
		sel = Delegating{Primary: ReflectionDispatch{}, Fallback: sel}
	}
	return sel, nil
}
