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

import (
	"errors"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the pointer analysis, the entrypoints, and the lists of code identifiers that
// select special treatment for some methods and classes.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options

	sourceFile string

	// Smushing sets the cardinality bounds of each kind of allocation
	Smushing SmushingOptions `yaml:"smushing"`

	// Entrypoints lists the methods called from the synthetic root of the call graph
	Entrypoints []EntrypointSpec `yaml:"entrypoints"`

	// FactoryMethods identifies the methods that are always analyzed in a context keyed by their call site
	FactoryMethods []CodeIdentifier `yaml:"factory-methods"`

	// ContainerClasses identifies the classes whose methods are analyzed in the context of their receiver
	ContainerClasses []CodeIdentifier `yaml:"container-classes"`

	// NoEffectMethods identifies the methods replaced by an empty summary
	NoEffectMethods []CodeIdentifier `yaml:"no-effect-methods"`

	// Summaries maps a method name "Class.method" to the instructions that replace its body
	Summaries map[string][]string `yaml:"summaries"`
}

// Options holds the scalar settings of the analysis.
type Options struct {
	// ContextPolicy is one of insensitive, call-string, object or one-level-site
	ContextPolicy ContextPolicy `yaml:"context-policy"`

	// K is the length of call strings for the call-string policy
	K int `yaml:"k"`

	// ObjectSensitivityDepth is the number of receiver allocation sites kept in contexts for the object policy
	ObjectSensitivityDepth int `yaml:"object-sensitivity-depth"`

	// HeapContextDepth is the number of context elements kept in allocation site keys.
	// Default is -1, which keeps the full context of the allocating node.
	HeapContextDepth int `yaml:"heap-context-depth"`

	// HandleCallApply models call/apply-style indirection through function objects
	HandleCallApply bool `yaml:"handle-call-apply"`

	// UseConstantSpecificKeys abstracts constants by their value rather than by their site
	UseConstantSpecificKeys bool `yaml:"use-constant-specific-keys"`

	// Reflection is none or full
	Reflection ReflectionMode `yaml:"reflection"`

	// MaxSteps bounds the number of solver iterations. If MaxSteps <= 0, it is ignored.
	MaxSteps int `yaml:"max-steps"`

	// ReportUnresolved logs every call site with a receiver for which no target could be resolved
	ReportUnresolved bool `yaml:"report-unresolved"`

	// ReportsDir is the directory where reports and snapshots are written
	ReportsDir string `yaml:"reports-dir"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// SmushingOptions holds the cardinality bound of each kind of allocation.
type SmushingOptions struct {
	Arrays     CardinalityBound `yaml:"arrays"`
	Primitives CardinalityBound `yaml:"primitives"`
	Strings    CardinalityBound `yaml:"strings"`
	Throwables CardinalityBound `yaml:"throwables"`
	Many       CardinalityBound `yaml:"many"`
}

// A CardinalityBound merges allocation sites of one kind. With a zero Limit, all sites of a type are merged;
// otherwise the sites of a type inside one node are merged once there are more than Limit of them.
type CardinalityBound struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit"`
}

// EntrypointSpec identifies an entrypoint method and the abstraction of its receiver and arguments.
// An empty Receiver defaults to Class, an empty argument type defaults to the declared parameter type.
type EntrypointSpec struct {
	Class    string   `yaml:"class"`
	Method   string   `yaml:"method"`
	Receiver string   `yaml:"receiver,omitempty"`
	Args     []string `yaml:"args,omitempty"`
}

// NewDefault returns a default config: context-insensitive, no smushing, no reflection.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Options: Options{
			ContextPolicy:           PolicyInsensitive,
			K:                       0,
			ObjectSensitivityDepth:  0,
			HeapContextDepth:        DefaultHeapContextDepth,
			HandleCallApply:         false,
			UseConstantSpecificKeys: false,
			Reflection:              ReflectionNone,
			MaxSteps:                DefaultMaxSteps,
			LogLevel:                int(InfoLevel),
			SilenceWarn:             false,
		},
		Summaries: map[string][]string{},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadFromBytes(filename, b)
}

// LoadFromBytes parses the yaml configuration in b. The filename is used to resolve relative paths.
func LoadFromBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}
	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.ContextPolicy == "" {
		cfg.ContextPolicy = PolicyInsensitive
	}
	if cfg.Reflection == "" {
		cfg.Reflection = ReflectionNone
	}
	if cfg.Smushing.Many.Enabled && cfg.Smushing.Many.Limit == 0 {
		cfg.Smushing.Many.Limit = DefaultSmushManyLimit
	}

	compileAll(cfg.FactoryMethods)
	compileAll(cfg.ContainerClasses)
	compileAll(cfg.NoEffectMethods)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error describing every malformed option combination of the config.
func (c Config) Validate() error {
	var errs []error
	if c.K < 0 {
		errs = append(errs, fmt.Errorf("k must be non-negative, got %d", c.K))
	}
	if c.ObjectSensitivityDepth < 0 {
		errs = append(errs, fmt.Errorf("object-sensitivity-depth must be non-negative, got %d",
			c.ObjectSensitivityDepth))
	}
	if c.HeapContextDepth < -1 {
		errs = append(errs, fmt.Errorf("heap-context-depth must be -1 or more, got %d", c.HeapContextDepth))
	}
	if c.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("max-steps must be non-negative, got %d", c.MaxSteps))
	}
	switch c.ContextPolicy {
	case PolicyInsensitive, PolicyOneLevelSite:
	case PolicyCallString:
		if c.K == 0 {
			errs = append(errs, fmt.Errorf("context policy %s requires k > 0", c.ContextPolicy))
		}
	case PolicyObject:
		if c.ObjectSensitivityDepth == 0 {
			errs = append(errs, fmt.Errorf("context policy %s requires object-sensitivity-depth > 0",
				c.ContextPolicy))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown context policy %q", c.ContextPolicy))
	}
	switch c.Reflection {
	case ReflectionNone, ReflectionFull:
	default:
		errs = append(errs, fmt.Errorf("unknown reflection mode %q", c.Reflection))
	}
	for name, b := range c.Smushing.bounds() {
		if b.Limit < 0 {
			errs = append(errs, fmt.Errorf("smushing limit for %s must be non-negative, got %d", name, b.Limit))
		}
	}
	for i, e := range c.Entrypoints {
		if e.Class == "" || e.Method == "" {
			errs = append(errs, fmt.Errorf("entrypoint %d must name a class and a method", i))
		}
	}
	return errors.Join(errs...)
}

func (s SmushingOptions) bounds() map[string]CardinalityBound {
	return map[string]CardinalityBound{
		"arrays":     s.Arrays,
		"primitives": s.Primitives,
		"strings":    s.Strings,
		"throwables": s.Throwables,
		"many":       s.Many,
	}
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// Below are functions used to query the configuration on specific facts

// IsFactoryMethod returns true if the method matches a factory method identifier of the config
func (c Config) IsFactoryMethod(language, class, method string) bool {
	return ExistsCid(c.FactoryMethods, CodeIdentifier{Language: language, Class: class, Method: method})
}

// IsContainerClass returns true if the class matches a container class identifier of the config
func (c Config) IsContainerClass(language, class string) bool {
	return ExistsCid(c.ContainerClasses, CodeIdentifier{Language: language, Class: class})
}

// IsNoEffectMethod returns true if the method matches a no-effect method identifier of the config
func (c Config) IsNoEffectMethod(language, class, method string) bool {
	return ExistsCid(c.NoEffectMethods, CodeIdentifier{Language: language, Class: class, Method: method})
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// ExceedsMaxSteps returns true if the solver has run more steps than allowed by the configuration.
// If the configuration setting is <= 0, then this returns false.
func (c Config) ExceedsMaxSteps(steps int) bool {
	if c.MaxSteps <= 0 {
		return false
	}
	return steps >= c.MaxSteps
}
